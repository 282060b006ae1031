// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "github.com/wuyou33/smpc-solver/internal/ulog"

// ASResult reports the outcome of one active-set solve: whether it found
// a KKT point within the iteration budget, and how many inequality
// constraints ended up active.
type ASResult struct {
	Converged   bool
	ActiveCount int
}

const asTieBreakTol = 1e-10

// qpAS is the primal active-set driver: starting from an equality-
// feasible point with an empty working set, it repeatedly steps toward
// the nearest blocking ZMP bound (activating it) or, once a full Newton
// step stays feasible, inspects the Lagrange multipliers and drops the
// most negative one, until every multiplier is non-negative.
type qpAS struct {
	factor      *activeSetFactor
	constraints []constraint
	w           []int
	i2Hg        []float64
	dx          []float64
	maxIter     int
	log         *ulog.Logger
}

func newQPAS(n int, maxIter int, log *ulog.Logger) *qpAS {
	return &qpAS{
		factor:      newActiveSetFactor(n),
		constraints: make([]constraint, 2*n),
		w:           make([]int, 2*n),
		i2Hg:        make([]float64, 2*n),
		dx:          make([]float64, NumVar*n),
		maxIter:     maxIter,
		log:         log,
	}
}

// formG computes g = -2*Beta*R'*zref on the ZMP rows, then i2Hg = i2Q0*g
// (the inverted Hessian times g, which the factor subtracts from -x).
func (q *qpAS) formG(p *ProblemParameters) {
	beta := 1 / (2 * p.i2Q[0])
	for i := 0; i < p.N; i++ {
		c, s := p.CosTheta[i], p.SinTheta[i]
		gx := -2 * beta * (c*p.ZRefX[i] + s*p.ZRefY[i])
		gy := -2 * beta * (-s*p.ZRefX[i] + c*p.ZRefY[i])
		q.i2Hg[2*i] = p.i2Q[0] * gx
		q.i2Hg[2*i+1] = p.i2Q[0] * gy
	}
}

// solve runs the active-set loop in place on x, returning the number of
// active constraints on success.
func (q *qpAS) solve(p *ProblemParameters, x []float64) (ASResult, error) {
	q.formG(p)
	nW := 0

	if err := q.factor.solve(p, q.i2Hg, x, q.dx); err != nil {
		return ASResult{}, err
	}

	for iter := 0; iter < q.maxIter; iter++ {
		alpha, blockID := q.boundaryStep(p, x, q.w[:nW])
		q.log.Logf(ulog.Iter, "qp_as iter=%d nW=%d alpha=%v\n", iter, nW, alpha)

		if blockID >= 0 {
			blas64axpy(alpha, q.dx, x)
			q.w[nW] = blockID
			nW++
			if err := q.factor.upResolve(p, q.i2Hg, q.constraints, nW, q.w, x, q.dx); err != nil {
				return ASResult{}, err
			}
			continue
		}

		blas64axpy(1, q.dx, x)
		if nW == 0 {
			return ASResult{Converged: true, ActiveCount: 0}, nil
		}

		lambda := q.factor.getLambda(nW)
		minIdx, minVal := 0, lambda[0]
		for i := 1; i < nW; i++ {
			if lambda[i] < minVal {
				minVal, minIdx = lambda[i], i
			}
		}
		if minVal >= -1e-9 {
			return ASResult{Converged: true, ActiveCount: nW}, nil
		}

		indExclude := minIdx
		copy(q.w[indExclude:nW-1], q.w[indExclude+1:nW])
		nW--
		q.factor.downResolve(p, q.i2Hg, q.constraints, nW, q.w, indExclude, x, q.dx)
	}

	return ASResult{Converged: false, ActiveCount: nW}, nil
}

// boundaryStep finds the largest alpha in (0,1] keeping x+alpha*dx within
// the ZMP box on every inactive constraint, and the id of the first
// blocking constraint encountered at that alpha (ties broken by the
// lowest constraint id, since intervals are scanned in order).
func (q *qpAS) boundaryStep(p *ProblemParameters, x []float64, activeW []int) (float64, int) {
	alpha := 1.0
	blockID := -1
	for i := 0; i < p.N; i++ {
		for axis := 0; axis < 2; axis++ {
			id := constraintIndex(i, axis)
			active := false
			for _, w := range activeW {
				if w == id {
					active = true
					break
				}
			}
			if active {
				continue
			}
			off := ZMPIndex(i, axis)
			z, d := x[off], q.dx[off]
			if d == 0 {
				continue
			}
			var bound float64
			var sign float64
			if d > 0 {
				bound, sign = p.UB[id], 1
			} else {
				bound, sign = p.LB[id], -1
			}
			cand := (bound - z) / d
			if cand < alpha-asTieBreakTol {
				alpha, blockID = cand, id
				q.constraints[id] = constraint{interval: i, axis: axis, sign: sign, bound: bound}
			} else if cand < alpha+asTieBreakTol && blockID >= 0 && id < blockID {
				alpha, blockID = cand, id
				q.constraints[id] = constraint{interval: i, axis: axis, sign: sign, bound: bound}
			}
		}
	}
	if alpha >= 1 {
		return 1, -1
	}
	if alpha < 0 {
		alpha = 0
	}
	return alpha, blockID
}

func blas64axpy(alpha float64, dx, x []float64) {
	for i := range x {
		x[i] += alpha * dx[i]
	}
}
