// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

import "fmt"

// SolverKind selects which QP driver Solver.Solve runs.
type SolverKind int

const (
	// KindActiveSet runs the primal active-set driver (qpAS): fast,
	// exact, well suited to the small number of ZMP-box activations
	// typical of one preview window.
	KindActiveSet SolverKind = iota
	// KindInteriorPoint runs the primal log-barrier driver (qpIP): a
	// fallback when the active set thrashes or the caller wants a
	// fixed iteration-shape solve.
	KindInteriorPoint
)

func (k SolverKind) String() string {
	switch k {
	case KindActiveSet:
		return "active-set"
	case KindInteriorPoint:
		return "interior-point"
	default:
		return fmt.Sprintf("SolverKind(%d)", int(k))
	}
}

// Status reports the outcome of a Solve call in a driver-agnostic shape.
// Converged is false only when the iteration budget was exhausted without
// reaching a KKT point (active-set) or the outer tolerance (interior-
// point). If factorization failed outright, Solve returns ErrNumeric as
// its error alongside the Status, in which case Converged is meaningless.
type Status struct {
	Kind        SolverKind
	Converged   bool
	Iterations  int
	ActiveCount int // active-set only; 0 for interior-point
}
