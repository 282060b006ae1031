// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import (
	"math"

	"github.com/wuyou33/smpc-solver/internal/ulog"
)

// IPParams configures the interior-point driver's barrier continuation
// and backtracking line search.
type IPParams struct {
	T0       float64
	Mu       float64
	BsAlpha  float64
	BsBeta   float64
	MaxInner int
	TolOut   float64
}

// DefaultIPParams mirrors the constants used throughout the original
// barrier continuation: t0=1, mu=10, a conservative Armijo slope, and a
// bisection factor of one half.
func DefaultIPParams() IPParams {
	return IPParams{T0: 1, Mu: 10, BsAlpha: 0.01, BsBeta: 0.5, MaxInner: 20, TolOut: 1e-3}
}

// IPResult reports whether the barrier continuation terminated within its
// outer-iteration budget and how many outer/inner steps it took.
type IPResult struct {
	Converged  bool
	OuterIters int
	InnerIters int
}

// qpIP is the primal interior-point driver: for a fixed barrier weight t
// it runs Newton's method on the log-barrier objective with a
// backtracking Armijo line search, then grows t geometrically until the
// duality-gap proxy 2N/t falls under the target tolerance.
type qpIP struct {
	factor *interiorPointFactor

	g          []float64 // 2N, -2*Beta*R'*zref, same construction as qpAS
	grad       []float64 // 2N, barrier-augmented ZMP-row gradient
	i2hess     []float64 // 2N, inverted barrier-augmented Hessian
	i2hessGrad []float64 // 2N, -grad*i2hess
	dX         []float64 // NumVar*n
	trial      []float64 // NumVar*n scratch for line-search trial points

	maxOuter int
	log      *ulog.Logger
}

func newQPIP(n int, maxOuter int, log *ulog.Logger) *qpIP {
	return &qpIP{
		factor:     newInteriorPointFactor(n),
		g:          make([]float64, 2*n),
		grad:       make([]float64, 2*n),
		i2hess:     make([]float64, 2*n),
		i2hessGrad: make([]float64, 2*n),
		dX:         make([]float64, NumVar*n),
		trial:      make([]float64, NumVar*n),
		maxOuter:   maxOuter,
		log:        log,
	}
}

func (q *qpIP) formG(p *ProblemParameters) {
	beta := 1 / (2 * p.i2Q[0])
	for i := 0; i < p.N; i++ {
		c, s := p.CosTheta[i], p.SinTheta[i]
		q.g[2*i] = -2 * beta * (c*p.ZRefX[i] + s*p.ZRefY[i])
		q.g[2*i+1] = -2 * beta * (-s*p.ZRefX[i] + c*p.ZRefY[i])
	}
}

// formGradHessLogbar computes the barrier-augmented gradient and inverted
// Hessian on every ZMP row, for barrier weight kappa = 1/t.
func (q *qpIP) formGradHessLogbar(p *ProblemParameters, x []float64, kappa float64) {
	q0 := 1 / p.i2Q[0]
	for i := 0; i < p.N; i++ {
		for axis := 0; axis < 2; axis++ {
			id := constraintIndex(i, axis)
			z := x[ZMPIndex(i, axis)]
			ub, lb := p.UB[id], p.LB[id]
			ubGap, lbGap := ub-z, z-lb

			q.grad[id] = q0*z + q.g[id] + kappa*(1/ubGap-1/lbGap)
			hess := q0 + kappa*(1/(ubGap*ubGap)+1/(lbGap*lbGap))
			q.i2hess[id] = 1 / hess
			q.i2hessGrad[id] = -q.grad[id] * q.i2hess[id]
		}
	}
}

// slope computes grad(phi)'*dir at x, the directional derivative the
// Armijo test compares phi's actual decrease against. The ZMP rows carry
// the barrier-augmented gradient already formed in q.grad; the velocity,
// acceleration and jerk-control components have no barrier term, so
// their gradient is the plain quadratic-cost derivative.
func (q *qpIP) slope(p *ProblemParameters, x, dir []float64) float64 {
	s := 0.0
	for i := 0; i < p.N; i++ {
		for axis := 0; axis < 2; axis++ {
			id := constraintIndex(i, axis)
			base := ZMPIndex(i, axis)
			s += q.grad[id] * dir[base]
			s += (x[base+1] / p.i2Q[1]) * dir[base+1]
			s += (x[base+2] / p.i2Q[2]) * dir[base+2]
		}
	}
	for i := p.N * NumStateVar; i < NumVar*p.N; i++ {
		s += (x[i] / p.i2P) * dir[i]
	}
	return s
}

// formPhi evaluates the log-barrier merit function at x for barrier
// weight kappa.
func (q *qpIP) formPhi(p *ProblemParameters, x []float64, kappa float64) float64 {
	phi := 0.0
	for i := 0; i < p.N; i++ {
		for axis := 0; axis < 2; axis++ {
			id := constraintIndex(i, axis)
			z := x[ZMPIndex(i, axis)]
			ub, lb := p.UB[id], p.LB[id]
			phi += 0.5/p.i2Q[0]*z*z + q.g[id]*z
			phi -= kappa * (math.Log(ub-z) + math.Log(z-lb))
		}
		v, a := x[ZMPIndex(i, 0)+1], x[ZMPIndex(i, 0)+2]
		vy, ay := x[ZMPIndex(i, 1)+1], x[ZMPIndex(i, 1)+2]
		phi += 0.5 / p.i2Q[1] * (v*v + vy*vy)
		phi += 0.5 / p.i2Q[2] * (a*a + ay*ay)
	}
	for i := p.N * NumStateVar; i < NumVar*p.N; i++ {
		phi += 0.5 / p.i2P * x[i] * x[i]
	}
	return phi
}

// initAlpha bisects alpha downward from 1 by bsBeta until x+alpha*dX sits
// strictly inside the ZMP box on every row with a nonzero step.
func (q *qpIP) initAlpha(p *ProblemParameters, x []float64, bsBeta float64) float64 {
	alpha := 1.0
	for iter := 0; iter < 64; iter++ {
		feasible := true
		for i := 0; i < p.N && feasible; i++ {
			for axis := 0; axis < 2; axis++ {
				d := q.dX[ZMPIndex(i, axis)]
				if d == 0 {
					continue
				}
				id := constraintIndex(i, axis)
				v := x[ZMPIndex(i, axis)] + alpha*d
				if v <= p.LB[id] || v >= p.UB[id] {
					feasible = false
					break
				}
			}
		}
		if feasible {
			return alpha
		}
		alpha *= bsBeta
	}
	return alpha
}

// solveInner runs Newton's method with Armijo backtracking for a fixed
// barrier weight t, mutating x in place.
func (q *qpIP) solveInner(p *ProblemParameters, x []float64, t float64, ip IPParams) (int, error) {
	kappa := 1 / t
	iters := 0
	for ; iters < ip.MaxInner; iters++ {
		q.formGradHessLogbar(p, x, kappa)
		if err := q.factor.solve(p, q.i2hessGrad, q.i2hess, x, q.dX); err != nil {
			return iters, err
		}

		alpha := q.initAlpha(p, x, ip.BsBeta)
		phi0 := q.formPhi(p, x, kappa)
		slope := q.slope(p, x, q.dX)

		for alpha >= ip.TolOut {
			copy(q.trial, x)
			blas64axpy(alpha, q.dX, q.trial)
			if q.formPhi(p, q.trial, kappa) <= phi0+ip.BsAlpha*alpha*slope {
				break
			}
			alpha *= ip.BsBeta
		}
		blas64axpy(alpha, q.dX, x)
		q.log.Logf(ulog.Iter, "qp_ip t=%v inner=%d alpha=%v\n", t, iters, alpha)
	}
	return iters, nil
}

// solve runs the full outer barrier-continuation loop.
func (q *qpIP) solve(p *ProblemParameters, x []float64, ip IPParams) (IPResult, error) {
	q.formG(p)
	t := ip.T0
	totalInner := 0
	outer := 0
	for ; outer < q.maxOuter; outer++ {
		inner, err := q.solveInner(p, x, t, ip)
		totalInner += inner
		if err != nil {
			return IPResult{OuterIters: outer, InnerIters: totalInner}, err
		}
		if float64(2*p.N)/t < ip.TolOut {
			return IPResult{Converged: true, OuterIters: outer + 1, InnerIters: totalInner}, nil
		}
		t *= ip.Mu
	}
	return IPResult{Converged: false, OuterIters: outer, InnerIters: totalInner}, nil
}
