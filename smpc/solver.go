// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package smpc implements the jerk-minimizing CoM trajectory QP at the
// core of a biped walking-pattern generator: given a preview window of
// ZMP references and box constraints, it solves for the piecewise-
// constant CoM jerk that tracks the reference while keeping the ZMP
// inside the support polygon, via either a primal active-set or a
// primal log-barrier interior-point driver sharing one structured
// block-Cholesky factorization of the dynamics.
package smpc

import "github.com/wuyou33/smpc-solver/internal/ulog"

// Solver is the public facade: construct one per robot/gait, call
// SetParameters and FormInitFP once per preview window, Solve to update
// the internal decision vector, then read the result back out with
// GetNextState/GetNextStateTilde/GetFirstControls.
type Solver struct {
	Params *ProblemParameters
	Kind   SolverKind
	IP     IPParams
	Log    *ulog.Logger

	x  []float64 // NumVar*N decision vector, state-then-control layout
	as *qpAS
	ip *qpIP
}

// New allocates a Solver for a fixed preview length n, matching the
// original constructor's (N, sol_type, Alpha, Beta, Gamma, regularization,
// tol) signature split into Gains and SolverKind.
func New(n int, kind SolverKind, gains Gains) *Solver {
	return &Solver{
		Params: NewProblemParameters(n, gains),
		Kind:   kind,
		IP:     DefaultIPParams(),
		x:      make([]float64, NumVar*n),
		as:     newQPAS(n, 8*n+16, nil),
		ip:     newQPIP(n, 32, nil),
	}
}

// SetLogger attaches a leveled logger to both drivers; pass nil to
// silence them again.
func (s *Solver) SetLogger(log *ulog.Logger) {
	s.Log = log
	s.as.log = log
	s.ip.log = log
}

// SetParameters forwards to ProblemParameters.SetParameters.
func (s *Solver) SetParameters(T, H, angle, zrefX, zrefY, lb, ub []float64, h0 float64) {
	s.Params.SetParameters(T, H, angle, zrefX, zrefY, lb, ub, h0)
}

// FormInitFP builds the initial decision vector by forward-simulating
// the jerk dynamics from initState (tilde frame, world axes: zx, vx, ax,
// zy, vy, ay) with zero jerk at every interval, then rotating each block
// into its own interval's bar frame. This gives a dynamically consistent
// starting point for both drivers; the zero-jerk propagation is what the
// rest of the package's contract means by "folding the true initial
// state into block 0" — every later block follows purely from the
// dynamics, not from the ZMP reference, so Solve is free to pull the
// trajectory toward zrefX/zrefY from here.
func (s *Solver) FormInitFP(initState [6]float64) {
	p := s.Params
	n := p.N
	cur := initState
	StateTripleTildeToBar(&cur, p.CosTheta[0], p.SinTheta[0])

	for i := 0; i < n; i++ {
		if i > 0 {
			prevBar := cur
			StateTripleBarToTilde(&prevBar, p.CosTheta[i-1], p.SinTheta[i-1])
			cur = prevBar
			StateTripleTildeToBar(&cur, p.CosTheta[i], p.SinTheta[i])
		}
		a, _ := jerkDynamics(p.T[i], p.H[i], p.DH[i])
		var xAxis, yAxis [3]float64
		copy(xAxis[:], cur[0:3])
		copy(yAxis[:], cur[3:6])
		xAxis = a.mulVec(xAxis)
		yAxis = a.mulVec(yAxis)

		base := StateIndex(i)
		s.x[base], s.x[base+1], s.x[base+2] = xAxis[0], xAxis[1], xAxis[2]
		s.x[base+3], s.x[base+4], s.x[base+5] = yAxis[0], yAxis[1], yAxis[2]

		cur = [6]float64{xAxis[0], xAxis[1], xAxis[2], yAxis[0], yAxis[1], yAxis[2]}
	}
	for i := n * NumStateVar; i < NumVar*n; i++ {
		s.x[i] = 0
	}
}

// Solve runs the configured driver over the current decision vector and
// reports its outcome. Only ErrNumeric is ever returned as a non-nil
// error; a failure to converge within budget is reported via
// Status.Converged, not an error, since a timed-out solve still leaves a
// usable (if suboptimal) trajectory in x.
func (s *Solver) Solve() (Status, error) {
	switch s.Kind {
	case KindInteriorPoint:
		res, err := s.ip.solve(s.Params, s.x, s.IP)
		if err != nil {
			return Status{Kind: s.Kind}, err
		}
		return Status{Kind: s.Kind, Converged: res.Converged, Iterations: res.OuterIters}, nil
	default:
		res, err := s.as.solve(s.Params, s.x)
		if err != nil {
			return Status{Kind: s.Kind}, err
		}
		return Status{Kind: s.Kind, Converged: res.Converged, ActiveCount: res.ActiveCount}, nil
	}
}

// GetNextStateTilde returns the ZMP-frame state of interval 0, rotated
// back into the world frame.
func (s *Solver) GetNextStateTilde() [6]float64 {
	p := s.Params
	var out [6]float64
	copy(out[:], s.x[0:NumStateVar])
	StateTripleBarToTilde(&out, p.CosTheta[0], p.SinTheta[0])
	return out
}

// GetNextState returns the CoM-position state of interval 0, in the
// world frame.
func (s *Solver) GetNextState() [6]float64 {
	out := s.GetNextStateTilde()
	StateTripleTildeToOrig(&out, s.Params.H[0])
	return out
}

// GetFirstControls returns the jerk control (x, y) applied over interval
// 0, the value a caller actually sends to the robot before the next tick.
func (s *Solver) GetFirstControls() [2]float64 {
	idx := ControlIndex(s.Params.N, 0)
	return [2]float64{s.x[idx], s.x[idx+1]}
}

// X exposes the full decision vector, mainly for tests and for seeding
// GetNextState-style helpers in the walking-pattern generator's own
// tests.
func (s *Solver) X() []float64 { return s.x }
