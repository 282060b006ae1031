// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wpg

import (
	"math"
	"testing"
)

func walkFixture() *WMG {
	w := New(16, 100, 0.02)
	w.AddFootstep(0, 0, 0, WithSplit(4, 4), WithType(DoubleSupport))
	w.AddFootstep(0, 0.05, 0, WithSplit(8, 8), WithType(SSLeft))
	for i := 0; i < 6; i++ {
		w.AddFootstep(0.04, -0.1, 0, WithSplit(8, 10))
	}
	w.AddFootstep(0, 0.05, 0, WithSplit(8, 8))
	return w
}

func TestAddFootstepAlternatesSupport(t *testing.T) {
	w := walkFixture()
	seenLeft, seenRight := false, false
	for _, fs := range w.FS {
		switch fs.Type {
		case SSLeft:
			seenLeft = true
		case SSRight:
			seenRight = true
		}
	}
	if !seenLeft || !seenRight {
		t.Fatalf("expected alternating SS types, got FS=%+v", w.FS)
	}
}

func TestAddFootstepInsertsDoubleSupport(t *testing.T) {
	w := New(16, 100, 0.02)
	w.AddFootstep(0, 0, 0, WithSplit(4, 4), WithType(DoubleSupport))
	w.AddFootstep(0, 0.05, 0, WithSplit(8, 8), WithType(SSLeft))
	w.AddFootstep(0.04, -0.1, 0, WithSplit(8, 10), WithType(SSRight))

	dsCount := 0
	for _, fs := range w.FS {
		if fs.Type == DoubleSupport {
			dsCount++
		}
	}
	if dsCount != 3 {
		t.Fatalf("expected 1 initial DS + 2 inserted DS steps, got %d DS steps in %+v", dsCount, w.FS)
	}
}

func TestFormPreviewWindowFillsArrays(t *testing.T) {
	w := walkFixture()
	n := w.N
	T := make([]float64, n)
	angle := make([]float64, n)
	zx := make([]float64, n)
	zy := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)

	status := w.FormPreviewWindow(T, angle, zx, zy, lb, ub)
	if status != PreviewOK {
		t.Fatalf("expected PreviewOK, got %v", status)
	}
	for i := 0; i < n; i++ {
		if T[i] != 0.1 {
			t.Errorf("T[%d] = %v, want 0.1", i, T[i])
		}
		if ub[2*i] <= lb[2*i] || ub[2*i+1] <= lb[2*i+1] {
			t.Errorf("interval %d: box bounds not ordered lb<ub: lb=%v ub=%v", i, lb[2*i:2*i+2], ub[2*i:2*i+2])
		}
	}
}

func TestFormPreviewWindowHaltsAtEndOfWalk(t *testing.T) {
	w := New(64, 100, 0.02)
	w.AddFootstep(0, 0, 0, WithSplit(2, 2), WithType(DoubleSupport))
	w.AddFootstep(0, 0.05, 0, WithSplit(2, 2), WithType(SSLeft))

	n := w.N
	T := make([]float64, n)
	angle := make([]float64, n)
	zx := make([]float64, n)
	zy := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)

	if status := w.FormPreviewWindow(T, angle, zx, zy, lb, ub); status != PreviewHalt {
		t.Fatalf("expected PreviewHalt once the walk is exhausted, got %v", status)
	}
}

func TestIsSupportSwitchNeeded(t *testing.T) {
	w := walkFixture()
	n := w.N
	T := make([]float64, n)
	angle := make([]float64, n)
	zx := make([]float64, n)
	zy := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)

	sawSwitch := false
	for i := 0; i < 6; i++ {
		if w.FormPreviewWindow(T, angle, zx, zy, lb, ub) != PreviewOK {
			break
		}
		if w.IsSupportSwitchNeeded() {
			sawSwitch = true
		}
	}
	if !sawSwitch {
		t.Fatalf("expected at least one support switch over a multi-step walk")
	}
}

func TestGetFootstepsOnlyReturnsSingleSupport(t *testing.T) {
	w := walkFixture()
	x, y, angle := w.GetFootsteps()
	if len(x) != len(y) || len(y) != len(angle) {
		t.Fatalf("mismatched GetFootsteps slice lengths: %d %d %d", len(x), len(y), len(angle))
	}
	ssCount := 0
	for _, fs := range w.FS {
		if fs.Type == SSLeft || fs.Type == SSRight {
			ssCount++
		}
	}
	if len(x) != ssCount {
		t.Fatalf("GetFootsteps returned %d entries, want %d SS footsteps", len(x), ssCount)
	}
}

func TestGetFeetPositionsSingleSupportLiftsOneFoot(t *testing.T) {
	w := walkFixture()
	n := w.N
	T := make([]float64, n)
	angle := make([]float64, n)
	zx := make([]float64, n)
	zy := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)
	if w.FormPreviewWindow(T, angle, zx, zy, lb, ub) != PreviewOK {
		t.Fatalf("fixture preview window unexpectedly halted")
	}

	// The fixture's first step is 400 ms of double support, so 450 ms
	// ahead lands 50 ms into the first single-support step.
	left, right, leftZ, rightZ := w.GetFeetPositions(450)
	if math.Abs(leftZ) > w.StepHeight+1e-9 || math.Abs(rightZ) > w.StepHeight+1e-9 {
		t.Fatalf("swing height exceeded StepHeight: leftZ=%v rightZ=%v stepHeight=%v", leftZ, rightZ, w.StepHeight)
	}
	if leftZ != 0 && rightZ != 0 {
		t.Fatalf("expected exactly one foot airborne during single support, got leftZ=%v rightZ=%v", leftZ, rightZ)
	}
	_ = left
	_ = right
}
