// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package physics provides the physical constants and special-relativity
// primitives shared by the integrator, the solver, and validation. Every
// function is pure; constants are passed explicitly so tests can run in
// natural units.
package physics

import (
	"errors"
	"fmt"

	"github.com/pdiddy/marte/pkg/types"
)

// ErrInvalidConstants indicates a non-positive physical constant.
var ErrInvalidConstants = errors.New("invalid physical constants")

// Constants carries the values every computation depends on.
type Constants struct {
	SpeedOfLight    float64 // m/s
	StandardGravity float64 // m/s²
	Year            float64 // s
	AU              float64 // m
}

// SI returns the standard SI constants.
func SI() Constants {
	return FromConfig(types.DefaultEngineConfig().Physics)
}

// FromConfig converts the physics configuration section into Constants.
func FromConfig(cfg types.PhysicsConfig) Constants {
	return Constants{
		SpeedOfLight:    cfg.SpeedOfLight,
		StandardGravity: cfg.StandardGravity,
		Year:            cfg.Year,
		AU:              cfg.AU,
	}
}

// Validate reports whether every constant is strictly positive.
func (k Constants) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"speed_of_light", k.SpeedOfLight},
		{"standard_gravity", k.StandardGravity},
		{"year", k.Year},
		{"au", k.AU},
	}
	for _, c := range checks {
		if !(c.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidConstants, c.name, c.value)
		}
	}
	return nil
}

// LightYear returns the distance light travels in one Year.
func (k Constants) LightYear() float64 {
	return k.SpeedOfLight * k.Year
}

// Years converts seconds to years.
func (k Constants) Years(seconds float64) float64 {
	return seconds / k.Year
}

// Seconds converts years to seconds.
func (k Constants) Seconds(years float64) float64 {
	return years * k.Year
}
