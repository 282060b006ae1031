// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "testing"

func newTestSolver(n int, kind SolverKind) *Solver {
	s := New(n, kind, DefaultGains())
	T := make([]float64, n)
	H := make([]float64, n)
	angle := make([]float64, n)
	zrefX := make([]float64, n)
	zrefY := make([]float64, n)
	lb := make([]float64, 2*n)
	ub := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		T[i] = 0.1
		H[i] = 0.261
		zrefX[i] = 0.02
		lb[2*i], ub[2*i] = -0.03, 0.09
		lb[2*i+1], ub[2*i+1] = -0.025, 0.025
	}
	s.SetParameters(T, H, angle, zrefX, zrefY, lb, ub, 0.261)
	s.FormInitFP([6]float64{})
	return s
}

func TestSolverActiveSetConverges(t *testing.T) {
	s := newTestSolver(10, KindActiveSet)
	status, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !status.Converged {
		t.Fatalf("active-set solve did not converge")
	}
}

func TestSolverInteriorPointConverges(t *testing.T) {
	s := newTestSolver(10, KindInteriorPoint)
	status, err := s.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !status.Converged {
		t.Fatalf("interior-point solve did not converge within the outer-iteration budget")
	}
}

// TestInteriorPointMatchesActiveSet exercises scenario S3: on the same
// preview window, the interior-point and active-set drivers must converge
// to the same ZMP trajectory within a small tolerance. The fixture's two
// axes carry different box widths (and newTestSolver's zrefX/zrefY split
// pulls the optimum off the box center asymmetrically), so this also
// guards against the interior-point factor reusing one axis's log-barrier
// Hessian for the other.
func TestInteriorPointMatchesActiveSet(t *testing.T) {
	const n = 8
	as := newTestSolver(n, KindActiveSet)
	ip := newTestSolver(n, KindInteriorPoint)

	if _, err := as.Solve(); err != nil {
		t.Fatalf("active-set Solve: %v", err)
	}
	status, err := ip.Solve()
	if err != nil {
		t.Fatalf("interior-point Solve: %v", err)
	}
	if !status.Converged {
		t.Fatalf("interior-point solve did not converge")
	}

	const tol = 1e-3
	for i := 0; i < n; i++ {
		for axis := 0; axis < 2; axis++ {
			zAS := as.X()[ZMPIndex(i, axis)]
			zIP := ip.X()[ZMPIndex(i, axis)]
			if diff := zAS - zIP; diff > tol || diff < -tol {
				t.Errorf("interval %d axis %d: active-set z=%v, interior-point z=%v", i, axis, zAS, zIP)
			}
		}
	}
}

func TestGetNextStateRoundTripsThroughOrigAndTilde(t *testing.T) {
	s := newTestSolver(6, KindActiveSet)
	if _, err := s.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	tilde := s.GetNextStateTilde()
	orig := s.GetNextState()

	p := s.Params
	back := orig
	StateTripleOrigToTilde(&back, p.H[0])
	const eps = 1e-9
	for i := range tilde {
		if diff := tilde[i] - back[i]; diff > eps || diff < -eps {
			t.Errorf("state[%d]: tilde=%v orig-recovered=%v", i, tilde[i], back[i])
		}
	}
}

func TestGetFirstControlsWithinDecisionVector(t *testing.T) {
	s := newTestSolver(4, KindActiveSet)
	if _, err := s.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	u := s.GetFirstControls()
	idx := ControlIndex(s.Params.N, 0)
	if u[0] != s.X()[idx] || u[1] != s.X()[idx+1] {
		t.Fatalf("GetFirstControls mismatch with decision vector: %v vs %v,%v", u, s.X()[idx], s.X()[idx+1])
	}
}
