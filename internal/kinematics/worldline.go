// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinematics

import "gonum.org/v1/gonum/spatial/r3"

// Waypoint is one sampled event on a worldline.
type Waypoint struct {
	CoordTime  float64 `json:"t" yaml:"t"`     // s
	Position   r3.Vec  `json:"r" yaml:"r"`     // m
	ProperTime float64 `json:"tau" yaml:"tau"` // s
	Beta       float64 `json:"beta" yaml:"beta"`
}

// Worldline is an ordered, immutable sequence of waypoints together with
// the indices at which its phases begin and end. Accessors return copies.
type Worldline struct {
	points     []Waypoint
	boundaries []int
}

// NewWorldline copies points and boundary indices into a Worldline.
// A nil boundaries slice marks only the endpoints.
func NewWorldline(points []Waypoint, boundaries []int) Worldline {
	w := Worldline{points: append([]Waypoint(nil), points...)}
	if boundaries == nil && len(points) > 0 {
		boundaries = []int{0, len(points) - 1}
	}
	w.boundaries = append([]int(nil), boundaries...)
	return w
}

// Len returns the number of waypoints.
func (w Worldline) Len() int { return len(w.points) }

// At returns waypoint i.
func (w Worldline) At(i int) Waypoint { return w.points[i] }

// First returns the departure waypoint.
func (w Worldline) First() Waypoint { return w.points[0] }

// Last returns the final waypoint.
func (w Worldline) Last() Waypoint { return w.points[len(w.points)-1] }

// Points returns a copy of all waypoints.
func (w Worldline) Points() []Waypoint {
	return append([]Waypoint(nil), w.points...)
}

// Boundaries returns a copy of the phase-boundary waypoint indices.
func (w Worldline) Boundaries() []int {
	return append([]int(nil), w.boundaries...)
}

// BoundaryTimes returns the coordinate time at each phase boundary.
func (w Worldline) BoundaryTimes() []float64 {
	out := make([]float64, len(w.boundaries))
	for i, idx := range w.boundaries {
		out[i] = w.points[idx].CoordTime
	}
	return out
}

// ChordBetas returns |Δr|/(cΔt) for each consecutive pair of waypoints,
// repeating the last value so the result aligns with the waypoints.
// Steps with non-positive Δt report 1.
func (w Worldline) ChordBetas(c float64) []float64 {
	n := len(w.points)
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n-1; i++ {
		a, b := w.points[i], w.points[i+1]
		dt := b.CoordTime - a.CoordTime
		if dt <= 0 {
			out[i] = 1
			continue
		}
		out[i] = r3.Norm(r3.Sub(b.Position, a.Position)) / (c * dt)
	}
	if n > 1 {
		out[n-1] = out[n-2]
	}
	return out
}

// PeakBeta returns the largest sampled speed fraction.
func (w Worldline) PeakBeta() float64 {
	peak := 0.0
	for _, p := range w.points {
		if p.Beta > peak {
			peak = p.Beta
		}
	}
	return peak
}

// MaxExcursion returns the largest distance of any waypoint from the first.
func (w Worldline) MaxExcursion() float64 {
	if len(w.points) == 0 {
		return 0
	}
	origin := w.points[0].Position
	far := 0.0
	for _, p := range w.points[1:] {
		if d := r3.Norm(r3.Sub(p.Position, origin)); d > far {
			far = d
		}
	}
	return far
}

// State is the kinematic state carried across phase boundaries. Rapidity
// is measured along the direction of the phase being integrated.
type State struct {
	Position   r3.Vec
	CoordTime  float64
	ProperTime float64
	Rapidity   float64
}

// Waypoint returns the state as a sampled event.
func (s State) Waypoint() Waypoint {
	return Waypoint{
		CoordTime:  s.CoordTime,
		Position:   s.Position,
		ProperTime: s.ProperTime,
		Beta:       absTanh(s.Rapidity),
	}
}
