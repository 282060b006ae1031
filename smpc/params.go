// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "math"

// Fixed layout constants of the decision vector, mirroring the C++
// SMPC_NUM_STATE_VAR / SMPC_NUM_CONTROL_VAR / SMPC_NUM_VAR macros.
const (
	NumStateVar   = 6
	NumControlVar = 2
	NumVar        = NumStateVar + NumControlVar
)

// Gains groups the three tuning weights and the regularization/tolerance
// pair a Solver is constructed with. Alpha weights CoM velocity tracking,
// Beta weights ZMP position tracking, Gamma weights jerk magnitude.
type Gains struct {
	Alpha          float64
	Beta           float64
	Gamma          float64
	Regularization float64
	Tol            float64
}

// DefaultGains returns the constructor defaults used throughout the
// original solver (Alpha=150, Beta=2000, Gamma=1, regularization=0.01,
// tol=1e-7).
func DefaultGains() Gains {
	return Gains{Alpha: 150.0, Beta: 2000.0, Gamma: 1.0, Regularization: 0.01, Tol: 1e-7}
}

// ProblemParameters is the immutable-per-solve description of one preview
// window: sampling times, CoM height ratios, per-interval rotation, ZMP
// references and box bounds, plus the inverted-Hessian diagonal derived
// once from Gains. It is held by value/reference by every Cholesky
// extension and driver — there is no inheritance chain.
type ProblemParameters struct {
	N int

	T        []float64 // sampling period per interval [s]
	H        []float64 // CoM height / gravity per interval
	DH       []float64 // H[i] - H[i-1] (H[-1] taken as the initial H0)
	CosTheta []float64
	SinTheta []float64

	ZRefX []float64 // ZMP reference, local frame
	ZRefY []float64

	LB []float64 // length 2N: LB[2i]=x lower, LB[2i+1]=y lower
	UB []float64 // length 2N: UB[2i]=x upper, UB[2i+1]=y upper

	// i2Q holds the inverted half-Hessian diagonal shared by every state
	// triple: i2Q[0] corresponds to the ZMP-position row, i2Q[1] to
	// velocity, i2Q[2] to acceleration/regularization.
	i2Q [3]float64
	// i2P is the inverted half-Hessian entry for the jerk control.
	i2P float64
}

// NewProblemParameters allocates a ProblemParameters sized for N intervals
// with its inverted-Hessian diagonal derived from gains. Callers fill in
// T, H, DH, CosTheta, SinTheta, ZRefX, ZRefY, LB, UB via SetParameters.
func NewProblemParameters(n int, gains Gains) *ProblemParameters {
	p := &ProblemParameters{
		N:        n,
		T:        make([]float64, n),
		H:        make([]float64, n),
		DH:       make([]float64, n),
		CosTheta: make([]float64, n),
		SinTheta: make([]float64, n),
		ZRefX:    make([]float64, n),
		ZRefY:    make([]float64, n),
		LB:       make([]float64, 2*n),
		UB:       make([]float64, 2*n),
	}
	p.setGains(gains)
	return p
}

func (p *ProblemParameters) setGains(g Gains) {
	p.i2Q[0] = 1 / (2 * g.Beta)
	p.i2Q[1] = 1 / (2 * g.Alpha)
	p.i2Q[2] = 1 / (2 * g.Regularization)
	p.i2P = 1 / (2 * g.Gamma)
}

// SetParameters fills the per-interval arrays. h0 is the CoM height ratio
// in effect just before the first interval, used to compute DH[0].
func (p *ProblemParameters) SetParameters(T, H, angle, zrefX, zrefY, lb, ub []float64, h0 float64) {
	n := p.N
	if len(T) != n || len(H) != n || len(angle) != n || len(zrefX) != n || len(zrefY) != n ||
		len(lb) != 2*n || len(ub) != 2*n {
		panic("bound check error")
	}
	copy(p.T, T)
	copy(p.H, H)
	copy(p.ZRefX, zrefX)
	copy(p.ZRefY, zrefY)
	copy(p.LB, lb)
	copy(p.UB, ub)

	prevH := h0
	for i := 0; i < n; i++ {
		p.DH[i] = H[i] - prevH
		prevH = H[i]
		p.CosTheta[i] = math.Cos(angle[i])
		p.SinTheta[i] = math.Sin(angle[i])
	}
}

// StateIndex returns the offset in X of the start of state block i.
func StateIndex(i int) int { return i * NumStateVar }

// ControlIndex returns the offset in X of the start of control block i,
// within a decision vector of total length N*NumVar.
func ControlIndex(n, i int) int { return n*NumStateVar + i*NumControlVar }

// ZMPIndex returns the offset of the ZMP position component (x if axis==0,
// y if axis==1) of state block i.
func ZMPIndex(i, axis int) int { return i*NumStateVar + axis*3 }
