// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kinematics integrates relativistic motion under proper
// acceleration. A phase is a stretch of proper time with a fixed thrust
// direction and either a constant signed acceleration (closed form) or an
// acceleration Schedule (numerical). Phases chain into a Worldline.
package kinematics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/physics"
)

// ErrInvalidPhase indicates a phase that cannot be integrated.
var ErrInvalidPhase = errors.New("invalid phase")

// inertialThreshold is the |a| below which a phase is treated as coasting.
const inertialThreshold = 1e-20

// Phase is one segment of a trajectory. When Schedule is set it overrides
// Accel and the phase is integrated numerically.
type Phase struct {
	Accel     float64   // signed proper acceleration, m/s²
	Schedule  *Schedule // optional time-varying acceleration
	Duration  float64   // s of proper time
	Direction r3.Vec    // thrust axis; normalized before use
}

func (p Phase) validate(samples int) (r3.Vec, error) {
	if p.Duration < 0 || math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) {
		return r3.Vec{}, fmt.Errorf("%w: duration %g", ErrInvalidPhase, p.Duration)
	}
	if samples < 2 {
		return r3.Vec{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidPhase, samples)
	}
	norm := r3.Norm(p.Direction)
	if !(norm > 0) || math.IsInf(norm, 0) {
		return r3.Vec{}, fmt.Errorf("%w: direction must be a non-zero vector", ErrInvalidPhase)
	}
	if p.Schedule != nil {
		if err := p.Schedule.Profile.Validate(); err != nil {
			return r3.Vec{}, err
		}
	}
	return r3.Scale(1/norm, p.Direction), nil
}

// Integrator propagates a State through a Phase.
type Integrator struct {
	c float64
}

// NewIntegrator returns an integrator using the speed of light in k.
func NewIntegrator(k physics.Constants) Integrator {
	return Integrator{c: k.SpeedOfLight}
}

// Integrate returns samples evenly spaced in proper time across the phase,
// the first equal to start, and the state at the end of the phase.
func (in Integrator) Integrate(p Phase, start State, samples int) ([]Waypoint, State, error) {
	dir, err := p.validate(samples)
	if err != nil {
		return nil, State{}, err
	}
	if p.Schedule != nil {
		return in.numeric(p, dir, start, samples)
	}
	return in.closedForm(p.Accel, p.Duration, dir, start, samples)
}

// closedForm evaluates hyperbolic motion exactly at each sample.
func (in Integrator) closedForm(a, duration float64, dir r3.Vec, start State, samples int) ([]Waypoint, State, error) {
	c := in.c
	phi0 := start.Rapidity
	sinh0, cosh0 := math.Sinh(phi0), math.Cosh(phi0)

	at := func(tau float64) State {
		var dt, dx, phi float64
		if math.Abs(a) < inertialThreshold {
			phi = phi0
			dt = tau * cosh0
			dx = c * sinh0 * tau
		} else {
			phi = phi0 + a*tau/c
			dt = c / a * (math.Sinh(phi) - sinh0)
			dx = c * c / a * (math.Cosh(phi) - cosh0)
		}
		return State{
			Position:   r3.Add(start.Position, r3.Scale(dx, dir)),
			CoordTime:  start.CoordTime + dt,
			ProperTime: start.ProperTime + tau,
			Rapidity:   phi,
		}
	}

	taus := span(duration, samples)
	out := make([]Waypoint, samples)
	out[0] = start.Waypoint()
	for i := 1; i < samples; i++ {
		out[i] = at(taus[i]).Waypoint()
	}
	return out, at(duration), nil
}

// numeric integrates a scheduled phase with trapezoidal rapidity updates.
// The midpoint rapidity of each step drives the coordinate time and
// displacement increments.
func (in Integrator) numeric(p Phase, dir r3.Vec, start State, samples int) ([]Waypoint, State, error) {
	taus, accels, err := p.Schedule.Sample(p.Duration, samples)
	if err != nil {
		return nil, State{}, err
	}

	c := in.c
	out := make([]Waypoint, samples)
	out[0] = start.Waypoint()
	s := start
	for i := 1; i < samples; i++ {
		dtau := taus[i] - taus[i-1]
		dphi := (accels[i-1] + accels[i]) / 2 * dtau / c
		mid := s.Rapidity + dphi/2

		s.Rapidity += dphi
		s.CoordTime += math.Cosh(mid) * dtau
		s.Position = r3.Add(s.Position, r3.Scale(c*math.Sinh(mid)*dtau, dir))
		s.ProperTime = start.ProperTime + taus[i]
		out[i] = s.Waypoint()
	}
	return out, s, nil
}

func absTanh(phi float64) float64 {
	return math.Abs(math.Tanh(phi))
}
