// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/marte/internal/ephemeris"
	"github.com/pdiddy/marte/pkg/types"
)

// ErrInvalidInput is wrapped by every InputError.
var ErrInvalidInput = errors.New("invalid trajectory request")

// InputError reports a request rejected before any numerical work.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Problem is a round-trip boundary-value problem. Times are coordinate
// seconds except ProperTime, which is the traveler's clock.
type Problem struct {
	Departure    float64 // t0, s
	Arrival      float64 // tf, s
	ProperTime   float64 // τ, s
	Acceleration float64 // proper acceleration magnitude, m/s²
	Mass         float64 // reference rest mass, kg
	Target       ephemeris.Oracle
}

// Validate checks the request invariants: τ > 0, tf > t0, τ < tf − t0,
// a > 0, mass > 0, and a target oracle.
func (p Problem) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case !finite(p.Departure) || !finite(p.Arrival) || !finite(p.ProperTime) ||
		!finite(p.Acceleration) || !finite(p.Mass):
		return &InputError{Field: "request", Reason: "contains a non-finite value"}
	case p.ProperTime <= 0:
		return &InputError{Field: "proper_time", Reason: fmt.Sprintf("must be positive, got %g", p.ProperTime)}
	case p.Arrival <= p.Departure:
		return &InputError{Field: "arrival", Reason: fmt.Sprintf("must be after departure (%g <= %g)", p.Arrival, p.Departure)}
	case p.ProperTime >= p.Arrival-p.Departure:
		return &InputError{Field: "proper_time", Reason: fmt.Sprintf("must be less than the coordinate duration %g, got %g", p.Arrival-p.Departure, p.ProperTime)}
	case p.Acceleration <= 0:
		return &InputError{Field: "acceleration", Reason: fmt.Sprintf("must be positive, got %g", p.Acceleration)}
	case p.Mass <= 0:
		return &InputError{Field: "mass", Reason: fmt.Sprintf("must be positive, got %g", p.Mass)}
	case p.Target == nil:
		return &InputError{Field: "target", Reason: "ephemeris oracle is required"}
	}
	return nil
}

// Request returns the serializable form of the problem.
func (p Problem) Request(model Model, ephemerisModel string) types.TrajectoryRequest {
	return types.TrajectoryRequest{
		Departure:    p.Departure,
		Arrival:      p.Arrival,
		ProperTime:   p.ProperTime,
		Acceleration: p.Acceleration,
		Mass:         p.Mass,
		Model:        string(model),
		Ephemeris:    ephemerisModel,
	}
}
