// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blas provides the small set of Level-1 BLAS-style routines the
// structured Cholesky factor and QP drivers need over flat []float64
// decision vectors, in place of pulling in a general-purpose linear
// algebra dependency for a handful of length-N loops.
package blas

import "math"

const zero = 0.0
const one = 1.0

// Daxpy performs constant times a vector plus a vector operation, dy += da*dx.
func Daxpy(n int, da float64, dx []float64, dy []float64) {
	if n <= 0 || da == 0.0 {
		return
	}
	m := uint(n % 4)
	if m > uint(len(dx)) || m > uint(len(dy)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dy[i] += da * dx[i]
	}
	if n < 4 {
		return
	}
	for i := m; i < uint(n); i += 4 {
		x := dx[i : i+4 : i+4]
		y := dy[i : i+4 : i+4]
		y[0] += da * x[0]
		y[1] += da * x[1]
		y[2] += da * x[2]
		y[3] += da * x[3]
	}
}

// Ddot computes the dot product of two vectors.
func Ddot(n int, dx, dy []float64) (dot float64) {
	if n <= 0 {
		return 0.0
	}
	m := uint(n % 5)
	if m > uint(len(dx)) || m > uint(len(dy)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dot += dx[i] * dy[i]
	}
	if n < 5 {
		return dot
	}
	for i := m; i < uint(n); i += 5 {
		x := dx[i : i+5 : i+5]
		y := dy[i : i+5 : i+5]
		dot += x[0]*y[0] + x[1]*y[1] + x[2]*y[2] + x[3]*y[3] + x[4]*y[4]
	}
	return dot
}

// Dscal scales a vector by a constant, dx *= da.
func Dscal(n int, da float64, dx []float64) {
	if n <= 0 {
		return
	}
	m := uint(n % 5)
	if m > uint(len(dx)) {
		panic("bound check error")
	}
	for i := uint(0); i < m; i++ {
		dx[i] *= da
	}
	if n < 5 {
		return
	}
	for i := m; i < uint(n); i += 5 {
		d := dx[i : i+5 : i+5]
		d[0] *= da
		d[1] *= da
		d[2] *= da
		d[3] *= da
		d[4] *= da
	}
}

// Dnrm2 computes the Euclidean norm of a vector.
func Dnrm2(n int, x []float64) float64 {
	if n < 1 {
		return zero
	}
	if uint(n) > uint(len(x)) {
		panic("bound check error")
	}
	if n == 1 {
		return math.Abs(x[0])
	}

	scale := zero
	ssq := one
	for i := 0; i < n; i++ {
		if absxi := math.Abs(x[i]); absxi > 0 {
			if scale < absxi {
				sxi := scale / absxi
				ssq = 1 + ssq*sxi*sxi
				scale = absxi
			} else {
				sxi := absxi / scale
				ssq += sxi * sxi
			}
		}
	}
	return scale * math.Sqrt(ssq)
}

// Dzero fills a vector with zero.
func Dzero(dx []float64) {
	n := uint(len(dx))
	m := n % 5
	for i := uint(0); i < m; i++ {
		dx[i] = zero
	}
	if n < 5 {
		return
	}
	for i := m; i < n; i += 5 {
		d := dx[i : i+5 : i+5]
		d[0] = zero
		d[1] = zero
		d[2] = zero
		d[3] = zero
		d[4] = zero
	}
}

// G1 constructs a Givens rotation (c, s) such that
//
//	[ c  s] [a]   [sig]
//	[-s  c] [b] = [ 0 ]
//
// and sig = sqrt(a²+b²) >= 0; c carries the sign of a (or, when
// |b| >= |a|, s carries the sign of b).
func G1(a, b float64) (c, s, sig float64) {
	var xr, yr float64
	if xa, xb := math.Abs(a), math.Abs(b); xa > xb {
		xr = b / a
		yr = math.Sqrt(1 + xr*xr)
		c = math.Copysign(1/yr, a)
		s = c * xr
		sig = xa * yr
	} else if xb > 0 {
		xr = a / b
		yr = math.Sqrt(1 + xr*xr)
		s = math.Copysign(1/yr, b)
		c = s * xr
		sig = xb * yr
	} else {
		s = 1
	}
	return
}

// G2 applies the Givens rotation matrix computed by G1 to a pair (x, y).
func G2(c, s, x, y float64) (xr, yr float64) {
	xr = c*x + s*y
	yr = -s*x + c*y
	return
}
