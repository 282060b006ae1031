// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wpg

import "math"

// GetFeetPositions returns the world-frame poses of both feet
// shiftMs after the current preview position. During double support
// both feet are placed a fixed half-stance either side of the DS
// footstep's own pose (see dsFeetPositions); the poses of the adjacent
// single-support footsteps are not used. During single support the
// swing foot is interpolated with a cubic Bézier arc (flat takeoff and
// landing, apex at StepHeight) between the previous and next support,
// while the standing foot stays put.
func (w *WMG) GetFeetPositions(shiftMs int) (left, right Pose2D, leftZ, rightZ float64) {
	supportNumber := w.firstPreviewStep
	stepTimeLeft := w.FS[supportNumber].TimeLeftMs + w.lastTimeDecrement

	for shiftMs > stepTimeLeft {
		shiftMs -= stepTimeLeft
		supportNumber++
		if supportNumber >= len(w.FS) {
			return left, right, leftZ, rightZ
		}
		stepTimeLeft = w.FS[supportNumber].TimeLeftMs
	}

	fs := w.FS[supportNumber]
	if fs.Type == DoubleSupport {
		return w.dsFeetPositions(supportNumber)
	}

	theta := float64((fs.PeriodMs-stepTimeLeft)+shiftMs) / float64(fs.PeriodMs)
	return w.ssFeetPositionsBezier(supportNumber, theta)
}

// dsFeetPositions places both feet on the double-support footstep's own
// pose, offset by a fixed stance half-width along its local y axis,
// since a DS entry records one averaged support pose rather than two.
func (w *WMG) dsFeetPositions(i int) (left, right Pose2D, leftZ, rightZ float64) {
	fs := w.FS[i]
	const halfStance = 0.05
	c, s := math.Cos(fs.Pose.Angle), math.Sin(fs.Pose.Angle)
	left = Pose2D{X: fs.Pose.X - s*halfStance, Y: fs.Pose.Y + c*halfStance, Angle: fs.Pose.Angle}
	right = Pose2D{X: fs.Pose.X + s*halfStance, Y: fs.Pose.Y - c*halfStance, Angle: fs.Pose.Angle}
	return left, right, 0, 0
}

// ssFeetPositionsBezier places the support foot on the current SS
// footstep, and interpolates the swing foot along a cubic Bézier from
// the previous SS footstep's pose to the one after it, with control
// points offset along the path to give a flat takeoff/landing and a
// height profile that is a plain parabola through (0,0), (1,0) peaking
// at StepHeight at theta=0.5.
func (w *WMG) ssFeetPositionsBezier(i int, theta float64) (left, right Pose2D, leftZ, rightZ float64) {
	fs := w.FS[i]
	support := fs.Pose

	prevSwing := w.FS[w.getPrevSS(i)].Pose
	nextSwing := w.FS[w.getNextSS(i + 1)].Pose
	swing := bezierPose(prevSwing, nextSwing, theta)
	swingZ := 4 * w.StepHeight * theta * (1 - theta)

	if fs.Type == SSLeft {
		return support, swing, 0, swingZ
	}
	return swing, support, swingZ, 0
}

// bezierPose interpolates a cubic Bézier in (x, y) with control points
// placed a third and two-thirds of the way along the straight line
// between from and to, giving a flat tangent at both endpoints; angle is
// interpolated linearly.
func bezierPose(from, to Pose2D, theta float64) Pose2D {
	p0 := [2]float64{from.X, from.Y}
	p3 := [2]float64{to.X, to.Y}
	p1 := [2]float64{p0[0] + (p3[0]-p0[0])/3, p0[1] + (p3[1]-p0[1])/3}
	p2 := [2]float64{p0[0] + 2*(p3[0]-p0[0])/3, p0[1] + 2*(p3[1]-p0[1])/3}

	u := 1 - theta
	bx := u*u*u*p0[0] + 3*u*u*theta*p1[0] + 3*u*theta*theta*p2[0] + theta*theta*theta*p3[0]
	by := u*u*u*p0[1] + 3*u*u*theta*p1[1] + 3*u*theta*theta*p2[1] + theta*theta*theta*p3[1]

	return Pose2D{
		X:     bx,
		Y:     by,
		Angle: from.Angle + theta*(to.Angle-from.Angle),
	}
}
