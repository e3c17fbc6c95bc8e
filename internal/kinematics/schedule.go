// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinematics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrUnknownProfile indicates an acceleration profile name that is not
// one of the supported kinds.
var ErrUnknownProfile = errors.New("unknown acceleration profile")

// Profile names an acceleration schedule shape.
type Profile string

const (
	// ProfileStep holds the peak magnitude for the whole phase.
	ProfileStep Profile = "step"

	// ProfileLinearRamp ramps linearly to the peak and back down.
	ProfileLinearRamp Profile = "linear_ramp"

	// ProfileSCurve ramps along a half cosine to the peak and back down.
	ProfileSCurve Profile = "s_curve"
)

// Profiles lists the supported profiles in display order.
var Profiles = []Profile{ProfileStep, ProfileLinearRamp, ProfileSCurve}

// ParseProfile maps a profile name to a Profile. Matching ignores case and
// accepts hyphens in place of underscores.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate returns ErrUnknownProfile for anything but the three kinds.
func (p Profile) Validate() error {
	switch p {
	case ProfileStep, ProfileLinearRamp, ProfileSCurve:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProfile, string(p))
	}
}

// Schedule describes a time-varying proper acceleration over one phase.
// Peak is signed; the shape scales it between zero and one.
type Schedule struct {
	Profile Profile `json:"profile" yaml:"profile"`
	Peak    float64 `json:"peak" yaml:"peak"` // m/s²
	Ramp    float64 `json:"ramp" yaml:"ramp"` // s of proper time
}

// rampFor clamps the ramp to half the phase duration.
func (s Schedule) rampFor(duration float64) float64 {
	return math.Max(0, math.Min(s.Ramp, duration/2))
}

// At returns the acceleration at proper time tau into a phase of the given
// duration.
func (s Schedule) At(tau, duration float64) float64 {
	ramp := s.rampFor(duration)

	switch s.Profile {
	case ProfileLinearRamp:
		switch {
		case tau < ramp:
			return s.Peak * tau / ramp
		case tau > duration-ramp:
			return s.Peak * (duration - tau) / ramp
		}
		return s.Peak
	case ProfileSCurve:
		switch {
		case tau < ramp:
			return s.Peak * (1 - math.Cos(math.Pi*tau/ramp)) / 2
		case tau > duration-ramp:
			return s.Peak * (1 - math.Cos(math.Pi*(duration-tau)/ramp)) / 2
		}
		return s.Peak
	default:
		return s.Peak
	}
}

// Sample returns n evenly spaced proper-time samples covering [0, duration]
// and the acceleration at each.
func (s Schedule) Sample(duration float64, n int) (taus, accels []float64, err error) {
	if err := s.Profile.Validate(); err != nil {
		return nil, nil, err
	}
	if duration < 0 || math.IsNaN(duration) {
		return nil, nil, fmt.Errorf("%w: duration %g", ErrInvalidPhase, duration)
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidPhase, n)
	}

	taus = span(duration, n)
	accels = make([]float64, n)
	for i, tau := range taus {
		accels[i] = s.At(tau, duration)
	}
	return taus, accels, nil
}

// MaxJerk returns the analytic bound on |da/dτ| for the profile. A step
// profile has an unbounded jerk at its edges and reports +Inf; a zero
// ramp does the same for the shaped profiles.
func MaxJerk(p Profile, peak, ramp float64) float64 {
	peak = math.Abs(peak)
	if p == ProfileStep || ramp <= 0 {
		if peak == 0 {
			return 0
		}
		return math.Inf(1)
	}
	switch p {
	case ProfileLinearRamp:
		return peak / ramp
	case ProfileSCurve:
		return peak * math.Pi / (2 * ramp)
	}
	return math.NaN()
}

// span returns n evenly spaced values over [0, duration] whose last value
// is exactly duration.
func span(duration float64, n int) []float64 {
	taus := floats.Span(make([]float64, n), 0, duration)
	taus[n-1] = duration
	return taus
}
