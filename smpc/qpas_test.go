// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import (
	"math"
	"testing"
)

func testProblem(n int) (*ProblemParameters, []float64) {
	p := NewProblemParameters(n, DefaultGains())
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
		zrefX[i] = 0.05 * float64(i)
		zrefY[i] = 0.0
		lb[2*i], ub[2*i] = -0.03, 0.09
		lb[2*i+1], ub[2*i+1] = -0.025, 0.025
	}
	p.SetParameters(T, H, angle, zrefX, zrefY, lb, ub, 0.261)

	x := make([]float64, NumVar*n)
	return p, x
}

func equalityResidualNorm(p *ProblemParameters, x []float64) float64 {
	s := make([]float64, NumStateVar*p.N)
	formEx(p, x, s)
	// formEx assumes the true initial state already folded into block 0,
	// so a feasible x (as produced by qpAS.solve from an all-zero start)
	// has residual zero everywhere past block 0's own def.
	maxAbs := 0.0
	for _, v := range s {
		if av := math.Abs(v); av > maxAbs {
			maxAbs = av
		}
	}
	return maxAbs
}

func TestQPASBoxFeasible(t *testing.T) {
	n := 6
	p, x := testProblem(n)
	q := newQPAS(n, 64, nil)
	res, err := q.solve(p, x)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.Converged {
		t.Fatalf("active-set solve did not converge within budget, active=%d", res.ActiveCount)
	}
	const eps = 1e-9
	for i := 0; i < n; i++ {
		for axis := 0; axis < 2; axis++ {
			id := constraintIndex(i, axis)
			z := x[ZMPIndex(i, axis)]
			if z < p.LB[id]-eps || z > p.UB[id]+eps {
				t.Errorf("interval %d axis %d: z=%v outside [%v,%v]", i, axis, z, p.LB[id], p.UB[id])
			}
		}
	}
}

func TestQPASEqualityFeasible(t *testing.T) {
	n := 5
	p, x := testProblem(n)
	q := newQPAS(n, 64, nil)
	if _, err := q.solve(p, x); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if res := equalityResidualNorm(p, x); res > 1e-7 {
		t.Errorf("equality residual too large: %v", res)
	}
}

func TestQPASActiveMultipliersNonNegative(t *testing.T) {
	n := 8
	p, x := testProblem(n)
	// Tighten bounds so the reference is infeasible and some box
	// constraints must activate.
	for i := 0; i < n; i++ {
		p.UB[2*i] = 0.02
	}
	q := newQPAS(n, 128, nil)
	res, err := q.solve(p, x)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.Converged {
		t.Fatalf("did not converge, active=%d", res.ActiveCount)
	}
	if res.ActiveCount == 0 {
		t.Skip("fixture did not force any active constraint")
	}
	lambda := q.factor.getLambda(res.ActiveCount)
	for i, lv := range lambda {
		if lv < -1e-8 {
			t.Errorf("multiplier %d negative at convergence: %v", i, lv)
		}
	}
}

func TestQPASResolveFromConvergedPoint(t *testing.T) {
	n := 6
	p, x := testProblem(n)
	for i := 0; i < n; i++ {
		p.UB[2*i] = 0.02
	}
	q := newQPAS(n, 128, nil)
	res, err := q.solve(p, x)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !res.Converged {
		t.Fatalf("did not converge")
	}
	// Re-solving from the converged point, starting again from an empty
	// working set, should converge a second time.
	res2, err := q.solve(p, x)
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if !res2.Converged {
		t.Fatalf("second solve did not converge")
	}
}
