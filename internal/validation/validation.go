// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validation holds pure physical-consistency checks over a
// worldline. Each boolean check has a diagnostic companion that reports
// the offending index or the measured error.
package validation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/kinematics"
	"github.com/pdiddy/marte/internal/physics"
)

// FirstSuperluminal returns the index of the first waypoint whose step to
// the next one moves at or above c, or has non-positive coordinate time.
// It returns -1 when every step is subluminal.
func FirstSuperluminal(w kinematics.Worldline, k physics.Constants) int {
	c := k.SpeedOfLight
	for i := 0; i+1 < w.Len(); i++ {
		a, b := w.At(i), w.At(i+1)
		dt := b.CoordTime - a.CoordTime
		if dt <= 0 {
			return i
		}
		if r3.Norm(r3.Sub(b.Position, a.Position))/dt >= c {
			return i
		}
	}
	return -1
}

// Subluminal reports whether every chord speed is strictly below c.
func Subluminal(w kinematics.Worldline, k physics.Constants) bool {
	return FirstSuperluminal(w, k) < 0
}

// ProperTimeError returns |τ_final − τ_initial − expected| / expected.
// An empty worldline or a non-positive expectation returns +Inf.
func ProperTimeError(w kinematics.Worldline, expected float64) float64 {
	if w.Len() == 0 || !(expected > 0) {
		return math.Inf(1)
	}
	elapsed := w.Last().ProperTime - w.First().ProperTime
	return math.Abs(elapsed-expected) / expected
}

// ProperTimeConsistent reports whether the elapsed proper time matches
// expected within the relative tolerance rtol.
func ProperTimeConsistent(w kinematics.Worldline, expected, rtol float64) bool {
	return ProperTimeError(w, expected) <= rtol
}

// RendezvousMiss returns the distance between the final waypoint and target.
func RendezvousMiss(w kinematics.Worldline, target r3.Vec) float64 {
	if w.Len() == 0 {
		return math.Inf(1)
	}
	return r3.Norm(r3.Sub(w.Last().Position, target))
}

// RendezvousMatch reports whether the final waypoint lies within atol
// metres of target.
func RendezvousMatch(w kinematics.Worldline, target r3.Vec, atol float64) bool {
	return RendezvousMiss(w, target) <= atol
}

// FirstSpacelike returns the index of the first waypoint whose separation
// from the next one is not timelike, or -1.
func FirstSpacelike(w kinematics.Worldline, k physics.Constants) int {
	for i := 0; i+1 < w.Len(); i++ {
		a, b := w.At(i), w.At(i+1)
		if !k.IsTimelike(b.CoordTime-a.CoordTime, r3.Sub(b.Position, a.Position)) {
			return i
		}
	}
	return -1
}

// Causal reports whether consecutive waypoints are all timelike separated.
func Causal(w kinematics.Worldline, k physics.Constants) bool {
	return FirstSpacelike(w, k) < 0
}

// Report collects every check for one worldline.
type Report struct {
	Subluminal      bool    `json:"subluminal" yaml:"subluminal"`
	Causal          bool    `json:"causal" yaml:"causal"`
	ProperTime      bool    `json:"proper_time" yaml:"proper_time"`
	Rendezvous      bool    `json:"rendezvous" yaml:"rendezvous"`
	ProperTimeError float64 `json:"proper_time_error" yaml:"proper_time_error"`
	RendezvousMiss  float64 `json:"rendezvous_miss" yaml:"rendezvous_miss"`
	FirstViolation  int     `json:"first_violation" yaml:"first_violation"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return r.Subluminal && r.Causal && r.ProperTime && r.Rendezvous
}

// Tolerances configures Check.
type Tolerances struct {
	ProperTimeRTol float64
	RendezvousATol float64
}

// Check runs every validation against w.
func Check(w kinematics.Worldline, k physics.Constants, expectedTau float64, target r3.Vec, tol Tolerances) Report {
	r := Report{
		FirstViolation:  FirstSuperluminal(w, k),
		ProperTimeError: ProperTimeError(w, expectedTau),
		RendezvousMiss:  RendezvousMiss(w, target),
	}
	r.Subluminal = r.FirstViolation < 0
	r.Causal = Causal(w, k)
	r.ProperTime = r.ProperTimeError <= tol.ProperTimeRTol
	r.Rendezvous = r.RendezvousMiss <= tol.RendezvousATol
	return r
}
