// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package smpc

// A state triple is always laid out as (z, v, a): ZMP/CoM position, CoM
// velocity, CoM acceleration. The three representations below differ in
// what the position component means and in which frame it is expressed:
//
//   - tilde: z is the ZMP position, expressed in the world frame.
//   - bar:   z is the ZMP position, expressed in the support-local frame
//     obtained by rotating the world frame by the interval's angle.
//   - orig:  z is the CoM position (not ZMP), expressed in the world frame.
//
// All eight transforms below are O(1) and change only the position
// component of state — velocity and acceleration are frame- and
// representation-invariant by construction of the model. TildeToOrig and
// OrigToTilde return the converted position; the others work in place.

// TildeToBar rotates the ZMP position pair (x, y) from the world frame
// into the support-local frame at angle theta (given as cos/sin).
func TildeToBar(x, y *float64, cosTheta, sinTheta float64) {
	zx, zy := *x, *y
	*x = cosTheta*zx + sinTheta*zy
	*y = -sinTheta*zx + cosTheta*zy
}

// BarToTilde is the inverse rotation of TildeToBar.
func BarToTilde(x, y *float64, cosTheta, sinTheta float64) {
	zx, zy := *x, *y
	*x = cosTheta*zx - sinTheta*zy
	*y = sinTheta*zx + cosTheta*zy
}

// TildeToOrig converts a ZMP position to the CoM position it was derived
// from, given the height-over-gravity ratio h and the CoM acceleration a:
// p = z + h*a.
func TildeToOrig(z, a float64, h float64) float64 {
	return z + h*a
}

// OrigToTilde is the inverse of TildeToOrig: z = p - h*a.
func OrigToTilde(p, a float64, h float64) float64 {
	return p - h*a
}

// StateTripleBarToTilde rotates an entire 6-vector (zx, vx, ax, zy, vy, ay)
// out of the support-local frame, leaving velocity/acceleration untouched.
func StateTripleBarToTilde(s *[6]float64, cosTheta, sinTheta float64) {
	BarToTilde(&s[0], &s[3], cosTheta, sinTheta)
}

// StateTripleTildeToBar is the inverse of StateTripleBarToTilde.
func StateTripleTildeToBar(s *[6]float64, cosTheta, sinTheta float64) {
	TildeToBar(&s[0], &s[3], cosTheta, sinTheta)
}

// StateTripleTildeToOrig replaces the ZMP position components of s with
// the corresponding CoM position components.
func StateTripleTildeToOrig(s *[6]float64, h float64) {
	s[0] = TildeToOrig(s[0], s[2], h)
	s[3] = TildeToOrig(s[3], s[5], h)
}

// StateTripleOrigToTilde is the inverse of StateTripleTildeToOrig.
func StateTripleOrigToTilde(s *[6]float64, h float64) {
	s[0] = OrigToTilde(s[0], s[2], h)
	s[3] = OrigToTilde(s[3], s[5], h)
}
