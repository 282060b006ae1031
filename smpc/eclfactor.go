// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "errors"

// ErrNumeric signals that a Cholesky diagonal pivot failed to stay
// strictly positive during formation or update. It indicates
// either linear dependence among the active constraints or loss of
// positive definiteness of the reduced Hessian; it is fatal for the
// current Solve call and the caller must start the next tick fresh.
var ErrNumeric = errors.New("smpc: cholesky pivot is not positive")

// jerkDynamics returns the 3x3 state transition A and the 3x1 control
// coupling B for one sampling interval of the triple-integrator CoM/ZMP
// model: acceleration integrates the jerk, velocity integrates
// acceleration, and the tilde (ZMP) position integrates velocity with a
// correction dh for any change in CoM height between intervals.
//
//	a' = a + T*j
//	v' = v + T*a + (T²/2)*j
//	z' = z + T*v + (T²/2 - dh)*a + (T³/6 - h*T)*j
func jerkDynamics(t, h, dh float64) (a mat3, b [3]float64) {
	a.set(0, 0, 1)
	a.set(0, 1, t)
	a.set(0, 2, t*t/2-dh)
	a.set(1, 1, 1)
	a.set(1, 2, t)
	a.set(2, 2, 1)

	b[0] = t*t*t/6 - h*t
	b[1] = t * t / 2
	b[2] = t
	return a, b
}

// eqConstraintFactor is the Cholesky factor ecL of the Schur complement
// M = E*Hinv*Eᵀ of the block-tridiagonal equality-constraint Jacobian E
// against the inverted (diagonal) Hessian Hinv = diag(i2Q, i2P). The x and
// y CoM/ZMP chains share identical dynamics coefficients but, under the
// interior-point path, generally carry different log-barrier Hessian
// perturbations on their ZMP row (the two axes sit at different distances
// from their respective box boundaries) — so each axis gets its own chain
// of N diagonal blocks and N-1 off-diagonal blocks; ForwardSolve/
// BackwardSolve pick the matching axis's chain for each 3-component group
// of a 6N state vector.
type eqConstraintFactor struct {
	n     int
	diag  [2][]mat3 // diag[axis][i]: N diagonal 3x3 Cholesky blocks
	ndiag [2][]mat3 // ndiag[axis][i]: N-1 off-diagonal (coupling) 3x3 blocks
}

func newEqConstraintFactor(n int) *eqConstraintFactor {
	f := &eqConstraintFactor{n: n}
	for axis := 0; axis < 2; axis++ {
		f.diag[axis] = make([]mat3, n)
		f.ndiag[axis] = make([]mat3, max(n-1, 0))
	}
	return f
}

// Form computes the block Cholesky recurrence described in the component
// design, once per axis: L₀ factors M[0,0]; for i=1..N-1, the coupling
// block is solved against L[i-1] and the new diagonal block factors
// M[i,i] - ndiag[i-1]*ndiag[i-1]ᵀ. i2hessX/i2hessY supply a per-interval
// Hessian perturbation for their respective axis (nil for the active-set
// path, the inverted log-barrier Hessian for the interior-point path) —
// each replaces i2Q[0] as the ZMP-position entry of its interval's
// inverted Hessian wherever that interval's state enters M.
func (f *eqConstraintFactor) Form(p *ProblemParameters, i2hessX, i2hessY []float64) error {
	n := p.N
	f.n = n
	if len(f.diag[0]) != n {
		for axis := 0; axis < 2; axis++ {
			f.diag[axis] = make([]mat3, n)
			f.ndiag[axis] = make([]mat3, max(n-1, 0))
		}
	}

	i2q := diagMat3(p.i2Q[0], p.i2Q[1], p.i2Q[2])
	perturb := [2][]float64{i2hessX, i2hessY}

	for axis := 0; axis < 2; axis++ {
		i2hess := perturb[axis]
		diag := f.diag[axis]
		ndiag := f.ndiag[axis]

		qOf := func(i int) mat3 {
			q := i2q
			if i2hess != nil {
				q.set(0, 0, i2hess[i])
			}
			return q
		}
		for i := 0; i < n; i++ {
			a, b := jerkDynamics(p.T[i], p.H[i], p.DH[i])
			m := addMat3(qOf(i), outer3(b, p.i2P))

			if i > 0 {
				m = addMat3(m, a.mul(qOf(i-1)).mul(a.transpose()))
			}

			if i > 0 {
				m = m.sub(ndiag[i-1].mul(ndiag[i-1].transpose()))
			}

			l, ok := cholesky3(m)
			if !ok {
				return ErrNumeric
			}
			diag[i] = l

			if i < n-1 {
				aNext, _ := jerkDynamics(p.T[i+1], p.H[i+1], p.DH[i+1])
				// target = -Q_i * A_{i+1}ᵀ  (since M[i+1,i] = -A_{i+1}*Q_i, with
				// Q_i interval i's inverted-Hessian diagonal)
				target := qOf(i).mul(aNext.transpose()).scale(-1)
				ndiagT := solveLXeqB3(l, target)
				ndiag[i] = ndiagT.transpose()
			}
		}
	}
	return nil
}

func addMat3(a, b mat3) mat3 {
	var r mat3
	for i := range a {
		r[i] = a[i] + b[i]
	}
	return r
}

// ForwardSolve solves ecL*z = rhs in place over a 6N-length vector
// (state-triple pairs for x and y interleaved per block, matching the
// decision-vector state segment layout).
func (f *eqConstraintFactor) ForwardSolve(v []float64) {
	n := f.n
	for i := 0; i < n; i++ {
		for axis := 0; axis < 2; axis++ {
			base := i*NumStateVar + axis*3
			r := [3]float64{v[base], v[base+1], v[base+2]}
			if i > 0 {
				prevBase := (i-1)*NumStateVar + axis*3
				prev := [3]float64{v[prevBase], v[prevBase+1], v[prevBase+2]}
				c := f.ndiag[axis][i-1].mulVec(prev)
				r[0] -= c[0]
				r[1] -= c[1]
				r[2] -= c[2]
			}
			x := forwardSolve3(f.diag[axis][i], r)
			v[base], v[base+1], v[base+2] = x[0], x[1], x[2]
		}
	}
}

// BackwardSolve solves ecLᵀ*x = z in place, the companion to ForwardSolve.
func (f *eqConstraintFactor) BackwardSolve(v []float64) {
	n := f.n
	for i := n - 1; i >= 0; i-- {
		for axis := 0; axis < 2; axis++ {
			base := i*NumStateVar + axis*3
			r := [3]float64{v[base], v[base+1], v[base+2]}
			if i < n-1 {
				nextBase := (i+1)*NumStateVar + axis*3
				next := [3]float64{v[nextBase], v[nextBase+1], v[nextBase+2]}
				c := f.ndiag[axis][i].transpose().mulVec(next)
				r[0] -= c[0]
				r[1] -= c[1]
				r[2] -= c[2]
			}
			x := backSolve3T(f.diag[axis][i], r)
			v[base], v[base+1], v[base+2] = x[0], x[1], x[2]
		}
	}
}

// formEx computes s = E*v, where v is a full 8N decision vector (6N state
// components followed by 2N control components) and s is the 6N
// equality-residual vector: s[block i, axis] = state_i - A_i*state_{i-1}
// - B_i*u_i (state_{-1} implicitly zero — callers fold the true initial
// state into v's first block before calling, as form_init_fp does).
func formEx(p *ProblemParameters, v []float64, s []float64) {
	n := p.N
	for i := 0; i < n; i++ {
		a, b := jerkDynamics(p.T[i], p.H[i], p.DH[i])
		for axis := 0; axis < 2; axis++ {
			base := i*NumStateVar + axis*3
			cur := [3]float64{v[base], v[base+1], v[base+2]}
			res := cur
			if i > 0 {
				prevBase := (i-1)*NumStateVar + axis*3
				prev := [3]float64{v[prevBase], v[prevBase+1], v[prevBase+2]}
				ap := a.mulVec(prev)
				res[0] -= ap[0]
				res[1] -= ap[1]
				res[2] -= ap[2]
			}
			u := v[ControlIndex(n, i)+axis]
			res[0] -= b[0] * u
			res[1] -= b[1] * u
			res[2] -= b[2] * u
			s[base], s[base+1], s[base+2] = res[0], res[1], res[2]
		}
	}
}

// formETx computes dx = Eᵀ*nu for a 6N dual vector nu, writing into an 8N
// vector dx (state components then control components).
func formETx(p *ProblemParameters, nu []float64, dx []float64) {
	n := p.N
	for i := 0; i < NumVar*n; i++ {
		dx[i] = 0
	}
	for i := 0; i < n; i++ {
		_, b := jerkDynamics(p.T[i], p.H[i], p.DH[i])
		for axis := 0; axis < 2; axis++ {
			base := i*NumStateVar + axis*3
			nuI := [3]float64{nu[base], nu[base+1], nu[base+2]}
			dx[base] += nuI[0]
			dx[base+1] += nuI[1]
			dx[base+2] += nuI[2]

			if i < n-1 {
				nextBase := (i+1)*NumStateVar + axis*3
				nuNext := [3]float64{nu[nextBase], nu[nextBase+1], nu[nextBase+2]}
				aNext, _ := jerkDynamics(p.T[i+1], p.H[i+1], p.DH[i+1])
				c := aNext.transpose().mulVec(nuNext)
				dx[base] -= c[0]
				dx[base+1] -= c[1]
				dx[base+2] -= c[2]
			}

			ctrl := ControlIndex(n, i) + axis
			dx[ctrl] -= b[0]*nuI[0] + b[1]*nuI[1] + b[2]*nuI[2]
		}
	}
}
