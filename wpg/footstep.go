// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wpg is the walking-pattern generator: it keeps the full list
// of footsteps for a walk and, on each control tick, slices out the
// next preview window of ZMP references, box constraints and sampling
// times that feed an smpc.Solver.
package wpg

import "math"

// Pose2D is a planar position and heading, expressed in the world frame.
type Pose2D struct {
	X, Y  float64
	Angle float64
}

// ZMPBounds is the rectangular ZMP constraint around a footstep's
// reference point, axis-aligned with the footstep's own heading:
// Front/Back bound the local x axis, Left/Right the local y axis.
type ZMPBounds struct {
	Front, Left, Back, Right float64
}

// FootstepType distinguishes single support on either foot from double
// support; Auto is a pseudo-type accepted only by AddFootstep, resolved
// immediately to an alternating SSLeft/SSRight (or DoubleSupport for the
// very first step).
type FootstepType int

const (
	SSLeft FootstepType = iota
	SSRight
	DoubleSupport
	Auto
)

// Footstep is one entry in a walk: the support pose, its ZMP box, its
// type, and how long (in milliseconds) it holds before the next step. Composition replaces the original's Point2D/
// RectangularConstraint_ZMP multiple inheritance.
type Footstep struct {
	Pose       Pose2D
	ZMP        ZMPBounds
	Type       FootstepType
	PeriodMs   int // total duration of this step
	TimeLeftMs int // remaining duration, decremented by FormPreviewWindow
}

// zmpReference returns the footstep's ZMP reference point: the pose
// offset forward by half the front/back margin, matching
// WMG::AddFootstep's zref_offset.
func (f Footstep) zmpReference() (x, y float64) {
	off := (f.ZMP.Front - f.ZMP.Back) / 2
	c, s := math.Cos(f.Pose.Angle), math.Sin(f.Pose.Angle)
	return f.Pose.X + c*off, f.Pose.Y + s*off
}

// FootstepOption configures one AddFootstep call. The three original
// overloads (bare pose, pose+timing, pose+timing+constraint) become
// call sites that simply omit trailing options.
type FootstepOption func(*footstepSpec)

type footstepSpec struct {
	nThis, nTotal int
	constraint    *ZMPBounds
	typ           FootstepType
}

// WithSplit sets how many preview-window samples this step holds (nThis)
// out of the total samples shared with the double-support steps
// inserted before it (nTotal - nThis of them).
func WithSplit(nThis, nTotal int) FootstepOption {
	return func(s *footstepSpec) { s.nThis, s.nTotal = nThis, nTotal }
}

// WithConstraint overrides the default ZMP box for this step only.
func WithConstraint(d ZMPBounds) FootstepOption {
	return func(s *footstepSpec) { s.constraint = &d }
}

// WithType overrides automatic SS alternation for this step.
func WithType(t FootstepType) FootstepOption {
	return func(s *footstepSpec) { s.typ = t }
}
