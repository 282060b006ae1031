// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blas

import (
	"math"
	"testing"
)

func TestDaxpy(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 4, 3, 2, 1}
	Daxpy(5, 2, x, y)
	want := []float64{7, 8, 9, 10, 11}
	for i := range want {
		if y[i] != want[i] {
			t.Fatalf("y[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}

func TestDdot(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{4, 5, 6}
	got := Ddot(3, x, y)
	if got != 32 {
		t.Fatalf("Ddot = %v, want 32", got)
	}
}

func TestDscal(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	Dscal(6, 2, x)
	want := []float64{2, 4, 6, 8, 10, 12}
	for i := range want {
		if x[i] != want[i] {
			t.Fatalf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestDnrm2(t *testing.T) {
	got := Dnrm2(2, []float64{3, 4})
	if math.Abs(got-5) > 1e-12 {
		t.Fatalf("Dnrm2 = %v, want 5", got)
	}
}

func TestDzero(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	Dzero(x)
	for i, v := range x {
		if v != 0 {
			t.Fatalf("x[%d] = %v, want 0", i, v)
		}
	}
}

func TestGivensZeroesSecondComponent(t *testing.T) {
	a, b := 3.0, 4.0
	c, s, sig := G1(a, b)
	xr, yr := G2(c, s, a, b)
	if math.Abs(xr-sig) > 1e-12 {
		t.Fatalf("xr = %v, want sig = %v", xr, sig)
	}
	if math.Abs(yr) > 1e-12 {
		t.Fatalf("yr = %v, want 0", yr)
	}
}
