// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "math"

// mat3 is a dense 3x3 matrix stored column-major: element (row, col) lives
// at index col*3+row. The structured Cholesky factors of ecL are stored
// this way because a lower-triangular matrix's nonzero entries then occupy
// a contiguous run per column, matching the [a 0 0; b c 0; d e f] layout
// described for the diagonal blocks.
type mat3 [9]float64

func (m mat3) at(row, col int) float64    { return m[col*3+row] }
func (m *mat3) set(row, col int, v float64) { m[col*3+row] = v }

func (a mat3) mul(b mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a.at(i, k) * b.at(k, j)
			}
			r.set(i, j, s)
		}
	}
	return r
}

func (a mat3) mulVec(v [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = a.at(i, 0)*v[0] + a.at(i, 1)*v[1] + a.at(i, 2)*v[2]
	}
	return r
}

func (a mat3) transpose() mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.set(i, j, a.at(j, i))
		}
	}
	return r
}

func (a mat3) sub(b mat3) mat3 {
	var r mat3
	for i := range a {
		r[i] = a[i] - b[i]
	}
	return r
}

func (a mat3) scale(s float64) mat3 {
	var r mat3
	for i := range a {
		r[i] = a[i] * s
	}
	return r
}

// diagMat3 builds a diagonal matrix from three entries.
func diagMat3(d0, d1, d2 float64) mat3 {
	var m mat3
	m.set(0, 0, d0)
	m.set(1, 1, d1)
	m.set(2, 2, d2)
	return m
}

// outer3 computes v*vT*s, a rank-1 3x3 update scaled by s.
func outer3(v [3]float64, s float64) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.set(i, j, v[i]*v[j]*s)
		}
	}
	return r
}

// cholesky3 factors a's symmetric part as L*Lt with L lower triangular,
// returning ok=false if a diagonal pivot is not strictly positive (the
// NumericError condition of the active-set/interior-point extensions).
func cholesky3(a mat3) (l mat3, ok bool) {
	a00 := a.at(0, 0)
	if a00 <= 0 {
		return l, false
	}
	l00 := math.Sqrt(a00)
	l10 := a.at(1, 0) / l00
	l20 := a.at(2, 0) / l00

	d11 := a.at(1, 1) - l10*l10
	if d11 <= 0 {
		return l, false
	}
	l11 := math.Sqrt(d11)
	l21 := (a.at(2, 1) - l20*l10) / l11

	d22 := a.at(2, 2) - l20*l20 - l21*l21
	if d22 <= 0 {
		return l, false
	}
	l22 := math.Sqrt(d22)

	l.set(0, 0, l00)
	l.set(1, 0, l10)
	l.set(2, 0, l20)
	l.set(1, 1, l11)
	l.set(2, 1, l21)
	l.set(2, 2, l22)
	return l, true
}

// forwardSolve3 solves L*x = rhs for lower triangular L.
func forwardSolve3(l mat3, rhs [3]float64) [3]float64 {
	var x [3]float64
	x[0] = rhs[0] / l.at(0, 0)
	x[1] = (rhs[1] - l.at(1, 0)*x[0]) / l.at(1, 1)
	x[2] = (rhs[2] - l.at(2, 0)*x[0] - l.at(2, 1)*x[1]) / l.at(2, 2)
	return x
}

// backSolve3T solves Lt*x = rhs for lower triangular L (i.e. back
// substitution against its transpose).
func backSolve3T(l mat3, rhs [3]float64) [3]float64 {
	var x [3]float64
	x[2] = rhs[2] / l.at(2, 2)
	x[1] = (rhs[1] - l.at(2, 1)*x[2]) / l.at(1, 1)
	x[0] = (rhs[0] - l.at(1, 0)*x[1] - l.at(2, 0)*x[2]) / l.at(0, 0)
	return x
}

// solveLXeqB3 solves L*X = B columnwise for lower triangular L, returning X.
func solveLXeqB3(l, b mat3) mat3 {
	var x mat3
	for col := 0; col < 3; col++ {
		rhs := [3]float64{b.at(0, col), b.at(1, col), b.at(2, col)}
		sol := forwardSolve3(l, rhs)
		x.set(0, col, sol[0])
		x.set(1, col, sol[1])
		x.set(2, col, sol[2])
	}
	return x
}
