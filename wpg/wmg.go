// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wpg

import (
	"fmt"
	"math"
	"os"

	"github.com/wuyou33/smpc-solver/internal/ulog"
)

// PreviewStatus reports whether FormPreviewWindow produced a full window
// or ran out of footsteps.
type PreviewStatus int

const (
	PreviewOK PreviewStatus = iota
	// PreviewHalt means the walk list was exhausted, or a sample would
	// straddle a footstep boundary (the original's "mid-interval split
	// returns HALT" behavior, kept as documented rather than silently
	// clamping the sample to the boundary).
	PreviewHalt
)

// NAO-shaped safety-margin default ZMP boxes, as WMG's constructor seeds
// def_ss_constraint/def_ds_constraint.
var (
	DefaultSSConstraint = ZMPBounds{Front: 0.09, Left: 0.025, Back: 0.03, Right: 0.025}
	DefaultDSConstraint = ZMPBounds{Front: 0.07, Left: 0.025, Back: 0.025, Right: 0.025}
)

// WMG holds the full footstep list for a walk and the sliding-window
// bookkeeping needed to carve preview windows out of it.
type WMG struct {
	N                int
	SamplingPeriodMs int
	StepHeight       float64

	FS []Footstep

	currentStepNumber int
	firstPreviewStep  int
	lastTimeDecrement int

	ssConstraint ZMPBounds
	dsConstraint ZMPBounds

	Log *ulog.Logger
}

// New allocates a WMG for an N-sample preview window with a fixed
// sampling period, and NAO-shaped default ZMP boxes (override per call
// with WithConstraint).
func New(n, samplingPeriodMs int, stepHeight float64) *WMG {
	return &WMG{
		N:                n,
		SamplingPeriodMs: samplingPeriodMs,
		StepHeight:       stepHeight,
		ssConstraint:     DefaultSSConstraint,
		dsConstraint:     DefaultDSConstraint,
	}
}

// AddFootstep appends one footstep, relative to the previous one (dx, dy,
// dtheta); coordinates are absolute for the very first step. Double
// support steps implied by WithSplit's (nThis, nTotal) pair are inserted
// automatically between the previous footstep and the new one.
func (w *WMG) AddFootstep(dx, dy, dtheta float64, opts ...FootstepOption) {
	spec := footstepSpec{nThis: 4, nTotal: 4, typ: Auto}
	for _, opt := range opts {
		opt(&spec)
	}
	constraint := w.ssConstraint
	if spec.constraint != nil {
		constraint = *spec.constraint
	}

	if len(w.FS) == 0 {
		typ := spec.typ
		if typ == Auto {
			typ = DoubleSupport
		}
		pose := Pose2D{X: dx, Y: dy, Angle: dtheta}
		fs := Footstep{Pose: pose, ZMP: constraint, Type: typ, PeriodMs: spec.nThis * w.SamplingPeriodMs}
		fs.TimeLeftMs = fs.PeriodMs
		w.FS = append(w.FS, fs)
		return
	}

	typ := spec.typ
	if typ == Auto {
		switch w.FS[len(w.FS)-1].Type {
		case SSLeft:
			typ = SSRight
		case SSRight:
			typ = SSLeft
		default:
			typ = SSRight
		}
	}

	prev := w.FS[len(w.FS)-1].Pose
	c, s := math.Cos(prev.Angle), math.Sin(prev.Angle)
	nextPose := Pose2D{
		X:     prev.X + c*dx - s*dy,
		Y:     prev.Y + s*dx + c*dy,
		Angle: prev.Angle + dtheta,
	}

	dsNum := spec.nTotal - spec.nThis
	if dsNum > 0 {
		theta := 1.0 / float64(dsNum+1)
		angleShift := dtheta * theta
		xShift, yShift := dx*theta, dy*theta
		dsPose := prev
		for i := 0; i < dsNum; i++ {
			dc, ds := math.Cos(dsPose.Angle), math.Sin(dsPose.Angle)
			dsPose = Pose2D{
				X:     dsPose.X + dc*xShift - ds*yShift,
				Y:     dsPose.Y + ds*xShift + dc*yShift,
				Angle: dsPose.Angle + angleShift,
			}
			fs := Footstep{Pose: dsPose, ZMP: w.dsConstraint, Type: DoubleSupport, PeriodMs: w.SamplingPeriodMs}
			fs.TimeLeftMs = fs.PeriodMs
			w.FS = append(w.FS, fs)
		}
	}

	fs := Footstep{Pose: nextPose, ZMP: constraint, Type: typ, PeriodMs: spec.nThis * w.SamplingPeriodMs}
	fs.TimeLeftMs = fs.PeriodMs
	w.FS = append(w.FS, fs)
}

// FormPreviewWindow fills T, angle, zrefX, zrefY, lb, ub (each of the
// appropriate length for w.N intervals, lb/ub length 2N) from the
// footstep list starting at the current preview position, then advances
// past however much of the first sample's duration has elapsed.
func (w *WMG) FormPreviewWindow(T, angle, zrefX, zrefY, lb, ub []float64) PreviewStatus {
	winStep := w.currentStepNumber
	stepTimeLeft := w.FS[winStep].TimeLeftMs

	i := 0
	for i < w.N {
		if stepTimeLeft > 0 {
			fs := w.FS[winStep]
			angle[i] = fs.Pose.Angle
			zx, zy := fs.zmpReference()
			zrefX[i], zrefY[i] = zx, zy

			lb[2*i] = -fs.ZMP.Back
			ub[2*i] = fs.ZMP.Front
			lb[2*i+1] = -fs.ZMP.Right
			ub[2*i+1] = fs.ZMP.Left

			if w.SamplingPeriodMs > stepTimeLeft {
				w.Log.Logf(ulog.Summary, "wpg: preview window halted at sample %d, step %d\n", i, winStep)
				return PreviewHalt
			}
			stepTimeLeft -= w.SamplingPeriodMs
			T[i] = float64(w.SamplingPeriodMs) / 1000
			i++
		} else {
			winStep++
			if winStep == len(w.FS) {
				return PreviewHalt
			}
			stepTimeLeft = w.FS[winStep].TimeLeftMs
		}
	}

	for w.FS[w.currentStepNumber].TimeLeftMs == 0 {
		w.currentStepNumber++
	}
	w.firstPreviewStep = w.currentStepNumber
	w.lastTimeDecrement = w.SamplingPeriodMs
	w.FS[w.currentStepNumber].TimeLeftMs -= w.SamplingPeriodMs
	if w.FS[w.currentStepNumber].TimeLeftMs == 0 {
		w.currentStepNumber++
	}
	return PreviewOK
}

// IsSupportSwitchNeeded reports whether the step that will be first in
// the next preview window begins a new single support different from
// the previous one — the cue to swap the support foot in the caller's
// kinematics chain.
func (w *WMG) IsSupportSwitchNeeded() bool {
	cur := w.FS[w.currentStepNumber]
	if cur.Type == DoubleSupport {
		return false
	}
	if w.currentStepNumber != 0 &&
		cur.PeriodMs == cur.TimeLeftMs &&
		w.FS[w.getPrevSS(w.firstPreviewStep)].Type != cur.Type {
		return true
	}
	return false
}

// ChangeNextSSPosition overwrites the pose of the next single-support
// step. The original leaves the double-support steps leading into it
// unchanged (see its own @todo on changeNextSSPosition) — this is kept
// as documented behavior, not silently fixed, since correcting it would
// require re-deriving the intermediate double-support interpolation this
// package never had a reference implementation for.
func (w *WMG) ChangeNextSSPosition(pose Pose2D) {
	w.FS[w.getNextSS(w.firstPreviewStep)].Pose = pose
}

func (w *WMG) getPrevSS(from int) int {
	for i := from - 1; i >= 0; i-- {
		if w.FS[i].Type != DoubleSupport {
			return i
		}
	}
	return 0
}

func (w *WMG) getNextSS(from int) int {
	for i := from; i < len(w.FS); i++ {
		if w.FS[i].Type != DoubleSupport {
			return i
		}
	}
	return len(w.FS) - 1
}

// GetFootsteps returns the (x, y, angle) of every single-support footstep
// in the list, in order.
func (w *WMG) GetFootsteps() (x, y, angle []float64) {
	for _, fs := range w.FS {
		if fs.Type == SSLeft || fs.Type == SSRight {
			x = append(x, fs.Pose.X)
			y = append(y, fs.Pose.Y)
			angle = append(angle, fs.Pose.Angle)
		}
	}
	return
}

// FSToFile emits an Octave/MATLAB script plotting the footstep list,
// mirroring WMG::FS2file. This is a debugging aid, not part of the
// solver's real-time path.
func (w *WMG) FSToFile(filename string, plotDS bool) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "%%\n%% Footsteps generated by the walking-pattern generator\n%%\n\ncla;\nclear FS;\n\n")
	for i, fs := range w.FS {
		if !plotDS && fs.Type == DoubleSupport {
			continue
		}
		fmt.Fprintf(f, "FS(%d).a = %f;\nFS(%d).p = [%f;%f];\nFS(%d).d = [%f;%f;%f;%f];\n",
			i+1, fs.Pose.Angle, i+1, fs.Pose.X, fs.Pose.Y, i+1,
			fs.ZMP.Front, fs.ZMP.Left, fs.ZMP.Back, fs.ZMP.Right)
		if fs.Type == DoubleSupport {
			fmt.Fprintf(f, "FS(%d).type = 1;\n\n", i+1)
		} else {
			fmt.Fprintf(f, "FS(%d).type = 2;\n\n", i+1)
		}
	}
	fmt.Fprintf(f, "hold on\nfor i=1:length(FS)\n")
	fmt.Fprintf(f, "    if FS(i).type == 1;\n        plot(FS(i).p(1),FS(i).p(2),'gs','MarkerFaceColor','r','MarkerSize',2)\n    end\n")
	fmt.Fprintf(f, "    if FS(i).type == 2;\n        plot(FS(i).p(1),FS(i).p(2),'gs','MarkerFaceColor','g','MarkerSize',4)\n    end\nend\n")
	fmt.Fprintf(f, "grid on\n")
	return nil
}
