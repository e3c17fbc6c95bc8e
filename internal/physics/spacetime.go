// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package physics

import "gonum.org/v1/gonum/spatial/r3"

// Interval returns the Minkowski interval s² = −c²Δt² + |Δr|² between two
// events. Negative values are timelike.
func (k Constants) Interval(dt float64, dr r3.Vec) float64 {
	ct := k.SpeedOfLight * dt
	return -ct*ct + r3.Dot(dr, dr)
}

// IsTimelike reports whether the second event lies strictly inside the
// future light cone of the first.
func (k Constants) IsTimelike(dt float64, dr r3.Vec) bool {
	return dt > 0 && k.Interval(dt, dr) < 0
}
