// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

// constraint describes one rectangular ZMP bound, expressed as a linear
// inequality on a single ZMP position component (the decision vector's
// state is already rotated into the support-local bar frame, so each
// bound is axis-aligned rather than a general rotated row as in a world-
// frame formulation). Sign is +1 for an upper bound (z - ub <= 0) and -1
// for a lower bound (lb - z <= 0), matching the gradient direction the
// active-set driver steps along.
type constraint struct {
	interval int // interval index i
	axis     int // 0 = x, 1 = y
	sign     float64
	bound    float64
}

func (c constraint) stateOffset() int { return ZMPIndex(c.interval, c.axis) }

// index numbers constraints 2i (x) and 2i+1 (y) per interval i, matching
// the invariant in the data model that active-set indices never repeat.
func constraintIndex(interval, axis int) int { return 2*interval + axis }
