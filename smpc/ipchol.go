// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

// interiorPointFactor shares the ecL construction with the active-set
// extension but absorbs a per-interval-per-axis diagonal perturbation
// i2hess coming from the log-barrier Hessian at the current iterate,
// instead of augmenting rows for active inequalities. The x and y ZMP
// rows generally sit at different distances from their box boundaries,
// so the perturbation (and hence the factor) is formed independently per
// axis — see eqConstraintFactor.Form.
type interiorPointFactor struct {
	ecl *eqConstraintFactor
	n   int

	xTmp   []float64 // NumVar*n scratch
	s      []float64 // NumStateVar*n scratch
	dPertX []float64 // n scratch: x-axis ZMP-row Hessian perturbation
	dPertY []float64 // n scratch: y-axis ZMP-row Hessian perturbation
}

func newInteriorPointFactor(n int) *interiorPointFactor {
	return &interiorPointFactor{
		ecl:    newEqConstraintFactor(n),
		n:      n,
		xTmp:   make([]float64, NumVar*n),
		s:      make([]float64, NumStateVar*n),
		dPertX: make([]float64, n),
		dPertY: make([]float64, n),
	}
}

// solve rebuilds ecL with the i2hess perturbation on the ZMP row of every
// state block, then performs the same forward/backward solve as the
// active-set factor's equality-only solve, but with the barrier Newton
// step i2hessGrad (instead of -x - i2Hg) on ZMP rows and i2hess in place
// of i2Q on ZMP rows.
func (f *interiorPointFactor) solve(p *ProblemParameters, i2hessGrad []float64, i2hess []float64, x []float64, dx []float64) error {
	n := p.N

	// i2hess is given per (interval, axis); each axis gets its own
	// perturbation and hence its own factor chain.
	for i := 0; i < n; i++ {
		f.dPertX[i] = i2hess[2*i]
		f.dPertY[i] = i2hess[2*i+1]
	}
	if err := f.ecl.Form(p, f.dPertX, f.dPertY); err != nil {
		return err
	}

	for i := 0; i < NumVar*n; i++ {
		f.xTmp[i] = -x[i]
	}
	for i := 0; i < 2*n; i++ {
		f.xTmp[i*3] = i2hessGrad[i]
	}

	s := f.s
	formEx(p, f.xTmp, s)
	f.ecl.ForwardSolve(s)
	f.ecl.BackwardSolve(s)

	formETx(p, s, dx)
	for i := 0; i < n; i++ {
		dx[ZMPIndex(i, 0)] = f.xTmp[ZMPIndex(i, 0)] - i2hess[2*i]*dx[ZMPIndex(i, 0)]
		dx[ZMPIndex(i, 0)+1] = f.xTmp[ZMPIndex(i, 0)+1] - p.i2Q[1]*dx[ZMPIndex(i, 0)+1]
		dx[ZMPIndex(i, 0)+2] = f.xTmp[ZMPIndex(i, 0)+2] - p.i2Q[2]*dx[ZMPIndex(i, 0)+2]
		dx[ZMPIndex(i, 1)] = f.xTmp[ZMPIndex(i, 1)] - i2hess[2*i+1]*dx[ZMPIndex(i, 1)]
		dx[ZMPIndex(i, 1)+1] = f.xTmp[ZMPIndex(i, 1)+1] - p.i2Q[1]*dx[ZMPIndex(i, 1)+1]
		dx[ZMPIndex(i, 1)+2] = f.xTmp[ZMPIndex(i, 1)+2] - p.i2Q[2]*dx[ZMPIndex(i, 1)+2]
	}
	for i := n * NumStateVar; i < NumVar*n; i++ {
		dx[i] = f.xTmp[i] - p.i2P*dx[i]
	}
	return nil
}
