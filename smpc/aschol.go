// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import (
	"math"

	"github.com/wuyou33/smpc-solver/internal/blas"
)

// activeSetFactor augments an eqConstraintFactor with rows for the
// currently active inequality constraints, following the incremental
// bordered-Cholesky scheme of the active-set Cholesky extension: each
// activated constraint contributes one row, computed once by forward-
// solving its (mostly zero) coefficient vector against the existing
// factor and eliminating against already-active rows in turn. Row storage
// is a fixed pool of 2N slots addressed through a permutation (order) so
// a downdate can "remove" a row by reshuffling indices rather than
// copying memory, matching the pointer-rotation trick of icL_mem.
type activeSetFactor struct {
	ecl *eqConstraintFactor
	n   int

	rows  [][]float64 // 2N preallocated rows, length n*NumStateVar+2N each
	order []int       // order[k] = physical slot holding logical row k

	nu []float64 // n*NumStateVar + 2N: dual variables, tail is lambda
	z  []float64 // same length, the cached RHS used by resolve/downdate

	xiHg []float64 // NumVar*n scratch: -(x + i2Hg on ZMP rows)
	wEcl []float64 // n*NumStateVar scratch for update's seed vector
}

func newActiveSetFactor(n int) *activeSetFactor {
	rowLen := n*NumStateVar + 2*n
	rows := make([][]float64, 2*n)
	order := make([]int, 2*n)
	for k := range rows {
		rows[k] = make([]float64, rowLen)
		order[k] = k
	}
	return &activeSetFactor{
		ecl:   newEqConstraintFactor(n),
		n:     n,
		rows:  rows,
		order: order,
		nu:    make([]float64, rowLen),
		z:     make([]float64, rowLen),
		xiHg:  make([]float64, NumVar*n),
		wEcl:  make([]float64, n*NumStateVar),
	}
}

func (f *activeSetFactor) row(k int) []float64 { return f.rows[f.order[k]] }

// solve forms ecL and returns the equality-feasible (no active
// inequalities) Newton step: s = E*(-x - i2Hg on ZMP rows); z = ecL⁻¹s
// (forward); nu = ecLᵀ⁻¹z (backward); dx = Eᵀnu; dx ← -x - i2Q*dx - i2Hg.
func (f *activeSetFactor) solve(p *ProblemParameters, i2Hg []float64, x []float64, dx []float64) error {
	if err := f.ecl.Form(p, nil, nil); err != nil {
		return err
	}

	n := p.N
	for i := 0; i < NumVar*n; i++ {
		f.xiHg[i] = -x[i]
	}
	for i := 0; i < 2*n; i++ {
		f.xiHg[i*3] -= i2Hg[i]
	}

	s := f.z[:NumStateVar*n]
	formEx(p, f.xiHg, s)
	f.ecl.ForwardSolve(s)
	copy(f.z[:NumStateVar*n], s)
	nu := f.nu[:NumStateVar*n]
	copy(nu, s)
	f.ecl.BackwardSolve(nu)

	formETx(p, nu, dx)
	for i := 0; i < n*NumStateVar; i++ {
		dx[i] = f.xiHg[i] - p.i2Q[i%3]*dx[i]
	}
	for i := n * NumStateVar; i < NumVar*n; i++ {
		dx[i] = f.xiHg[i] - p.i2P*dx[i]
	}
	return nil
}

// upResolve appends a row for the newly activated constraint W[nW-1] and
// re-solves.
func (f *activeSetFactor) upResolve(p *ProblemParameters, i2Hg []float64, constraints []constraint, nW int, W []int, x []float64, dx []float64) error {
	icNum := nW - 1
	c := constraints[W[icNum]]
	if err := f.update(p, c, icNum); err != nil {
		return err
	}
	f.updateZ(p, i2Hg, c, icNum, x)
	f.resolve(p, i2Hg, constraints, nW, W, x, dx)
	return nil
}

// update computes the bordered-Cholesky row for constraint c: forward-
// solve its seed vector through ecL, then eliminate in turn against the
// icNum rows already active.
func (f *activeSetFactor) update(p *ProblemParameters, c constraint, icNum int) error {
	n := p.N
	stateLen := n * NumStateVar
	wEcl := f.wEcl
	for i := range wEcl {
		wEcl[i] = 0
	}
	wEcl[c.stateOffset()] = p.i2Q[0] * c.sign
	if c.interval < n-1 {
		wEcl[ZMPIndex(c.interval+1, c.axis)] = -p.i2Q[0] * c.sign
	}
	f.ecl.ForwardSolve(wEcl)

	newRow := f.rows[f.order[icNum]]
	copy(newRow[:stateLen], wEcl)

	diag := p.i2Q[0] - blas.Ddot(stateLen, wEcl, wEcl)
	for j := 0; j < icNum; j++ {
		rowJ := f.row(j)
		s := -blas.Ddot(stateLen, rowJ[:stateLen], wEcl)
		for m := 0; m < j; m++ {
			s -= rowJ[stateLen+m] * newRow[stateLen+m]
		}
		newRow[stateLen+j] = s / rowJ[stateLen+j]
		diag -= newRow[stateLen+j] * newRow[stateLen+j]
	}
	if diag <= 0 {
		return ErrNumeric
	}
	newRow[stateLen+icNum] = math.Sqrt(diag)
	return nil
}

// updateZ extends the cached z/nu vectors with the entry for the newly
// added row, by forward-eliminating the new constraint's contribution to
// the right-hand side against its own freshly formed row.
func (f *activeSetFactor) updateZ(p *ProblemParameters, i2Hg []float64, c constraint, icNum int, x []float64) {
	n := p.N
	stateLen := n * NumStateVar
	zind := stateLen + icNum

	ctrlIdx := 2*c.interval + c.axis
	zn := -(i2Hg[ctrlIdx] + x[c.stateOffset()]) * c.sign

	row := f.row(icNum)
	zn -= blas.Ddot(stateLen, row[:stateLen], f.z[:stateLen])
	for m := 0; m < icNum; m++ {
		zn -= f.z[stateLen+m] * row[stateLen+m]
	}
	val := zn / row[zind]
	f.z[zind] = val
	f.nu[zind] = val
	copy(f.nu[:zind], f.z[:zind])
}

// resolve performs backward substitution through the active rows (most
// recent first), then through ecL, recovering nu and the feasible step.
func (f *activeSetFactor) resolve(p *ProblemParameters, iHg []float64, constraints []constraint, nW int, W []int, x []float64, dx []float64) {
	n := p.N
	stateLen := n * NumStateVar

	for i := nW - 1; i >= 0; i-- {
		lastEl := stateLen + i
		row := f.row(i)
		f.nu[lastEl] /= row[lastEl]
		for j := lastEl - 1; j >= ZMPIndex(W[i]/2, 0); j-- {
			f.nu[j] -= f.nu[lastEl] * row[j]
		}
	}
	nu := f.nu[:stateLen]
	f.ecl.BackwardSolve(nu)

	formETx(p, nu, dx)
	for i := 0; i < n*NumStateVar; i++ {
		dx[i] = -x[i] - p.i2Q[i%3]*dx[i]
	}
	for i := n * NumStateVar; i < NumVar*n; i++ {
		dx[i] = -x[i] - p.i2P*dx[i]
	}
	for i := 0; i < 2*n; i++ {
		dx[i*3] -= iHg[i]
	}

	lambda := f.nu[stateLen : stateLen+nW]
	for i := 0; i < nW; i++ {
		c := constraints[W[i]]
		dx[c.stateOffset()] -= p.i2Q[0] * c.sign * lambda[i]
	}
}

// downResolve removes row indExclude from the active set, recomputing the
// affected tail of z via downdate, then re-solves.
func (f *activeSetFactor) downResolve(p *ProblemParameters, iHg []float64, constraints []constraint, nW int, W []int, indExclude int, x []float64, dx []float64) {
	n := p.N
	stateLen := n * NumStateVar

	zTmp := 0.0
	for i := nW; i > indExclude; i-- {
		zind := stateLen + i
		row := f.row(i)
		zn := f.z[zind] * row[zind]
		f.z[zind] = zTmp
		for j := stateLen + indExclude; j < zind; j++ {
			zn += f.z[j] * row[j]
		}
		zTmp = zn
	}
	f.z[stateLen+indExclude] = zTmp

	f.downdate(nW, indExclude)

	for i := indExclude; i < nW; i++ {
		zind := stateLen + i
		row := f.row(i)
		zn := f.z[zind]
		for j := stateLen + indExclude; j < zind; j++ {
			zn -= f.z[j] * row[j]
		}
		f.z[zind] = zn / row[zind]
	}

	copy(f.nu[:stateLen+nW], f.z[:stateLen+nW])
	f.resolve(p, iHg, constraints, nW, W, x, dx)
}

// downdate removes logical row indExclude by rotating it to the end of
// the active ordering, then applies a Givens rotation to every remaining
// row below it so the two affected columns stay lower triangular, with a
// sign flip to keep the new diagonal positive.
func (f *activeSetFactor) downdate(nW, indExclude int) {
	n := f.n
	stateLen := n * NumStateVar

	excludedPhys := f.order[indExclude]
	for i := indExclude + 1; i < nW+1; i++ {
		f.order[i-1] = f.order[i]
	}
	f.order[nW] = excludedPhys

	for i := indExclude; i < nW; i++ {
		elIndex := stateLen + i
		row := f.row(i)
		x1, x2 := row[elIndex], row[elIndex+1]

		c, s, _ := blas.G1(x1, x2)
		// Apply rotation so the second component vanishes; fabs/sign
		// flip keeps the diagonal positive as required by Cholesky.
		r0, _ := blas.G2(c, s, x1, x2)
		sign := 1.0
		if r0 < 0 {
			sign = -1.0
		}
		row[elIndex] = math.Abs(r0)
		row[elIndex+1] = 0

		for j := i + 1; j < nW; j++ {
			rowJ := f.row(j)
			y1, y2 := rowJ[elIndex], rowJ[elIndex+1]
			ry0, ry1 := blas.G2(c, s, y1, y2)
			rowJ[elIndex] = sign * ry0
			rowJ[elIndex+1] = ry1
		}
	}
}

// getLambda returns the lambda segment of nu: the last nW entries.
func (f *activeSetFactor) getLambda(nW int) []float64 {
	stateLen := f.n * NumStateVar
	return f.nu[stateLen : stateLen+nW]
}

