// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smpcqp_test exercises wpg and smpc together: a walking-pattern
// generator feeds one preview window into a Solver and the resulting
// first-iterate trajectory is checked against the ZMP box it was given,
// the way a real control-loop tick would drive the two packages.
package smpcqp_test

import (
	"testing"

	"github.com/wuyou33/smpc-solver/smpc"
	"github.com/wuyou33/smpc-solver/wpg"
)

func TestWPGDrivenPreviewProducesFeasibleFirstIterate(t *testing.T) {
	const n = 12
	const hCoM = 0.261

	w := wpg.New(n, 100, 0.02)
	w.AddFootstep(0, 0, 0, wpg.WithSplit(4, 4), wpg.WithType(wpg.DoubleSupport))
	w.AddFootstep(0, 0.05, 0, wpg.WithSplit(8, 8), wpg.WithType(wpg.SSLeft))
	for i := 0; i < 4; i++ {
		w.AddFootstep(0.04, -0.1, 0, wpg.WithSplit(8, 10))
	}
	w.AddFootstep(0, 0.05, 0, wpg.WithSplit(8, 8))

	T := make([]float64, n)
	angle := make([]float64, n)
	zrefX := make([]float64, n)
	zrefY := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)

	if status := w.FormPreviewWindow(T, angle, zrefX, zrefY, lb, ub); status != wpg.PreviewOK {
		t.Fatalf("FormPreviewWindow: unexpected %v", status)
	}

	H := make([]float64, n)
	for i := range H {
		H[i] = hCoM
	}

	s := smpc.New(n, smpc.KindActiveSet, smpc.DefaultGains())
	s.SetParameters(T, H, angle, zrefX, zrefY, lb, ub, hCoM)
	s.FormInitFP([6]float64{})

	status, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !status.Converged {
		t.Fatalf("solve did not converge, active=%d", status.ActiveCount)
	}

	next := s.GetNextState()
	if next[0] != next[0] || next[3] != next[3] { // NaN guard
		t.Fatalf("GetNextState produced NaN: %+v", next)
	}

	x := s.X()
	const eps = 1e-9
	for i := 0; i < n; i++ {
		for axis := 0; axis < 2; axis++ {
			id := 2*i + axis
			z := x[smpc.ZMPIndex(i, axis)]
			if z < lb[id]-eps || z > ub[id]+eps {
				t.Errorf("interval %d axis %d: z=%v outside [%v,%v]", i, axis, z, lb[id], ub[id])
			}
		}
	}
}
