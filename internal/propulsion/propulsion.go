// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package propulsion computes reaction-mass budgets for a trajectory from
// its total rapidity change, using the relativistic rocket equation.
package propulsion

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/marte/internal/physics"
)

// ErrExhaustVelocity indicates an exhaust velocity outside (0, c].
var ErrExhaustVelocity = errors.New("exhaust velocity must be in (0, c]")

// Budget is the reaction mass needed for one trajectory.
type Budget struct {
	RapidityChange  float64 `json:"rapidity_change" yaml:"rapidity_change"`
	ExhaustVelocity float64 `json:"exhaust_velocity" yaml:"exhaust_velocity"` // m/s
	MassRatio       float64 `json:"mass_ratio" yaml:"mass_ratio"`             // initial / final
	DryMass         float64 `json:"dry_mass" yaml:"dry_mass"`                 // kg
	PropellantMass  float64 `json:"propellant_mass" yaml:"propellant_mass"`   // kg
	PropellantShare float64 `json:"propellant_share" yaml:"propellant_share"` // of initial mass
}

// MassRatio returns m₀/m₁ = exp(Δφ / atanh(vₑ/c)) for a rapidity change
// Δφ. A photon drive (vₑ = c) has ratio exp(Δφ).
func MassRatio(k physics.Constants, deltaPhi, exhaust float64) (float64, error) {
	c := k.SpeedOfLight
	if !(exhaust > 0) || exhaust > c {
		return 0, fmt.Errorf("%w: got %g m/s", ErrExhaustVelocity, exhaust)
	}
	if deltaPhi < 0 {
		return 0, fmt.Errorf("rapidity change must be non-negative, got %g", deltaPhi)
	}
	if exhaust == c {
		return math.Exp(deltaPhi), nil
	}
	return math.Exp(deltaPhi / math.Atanh(exhaust/c)), nil
}

// NewBudget returns the propellant needed to deliver deltaPhi to a craft
// whose mass at burnout is dryMass.
func NewBudget(k physics.Constants, deltaPhi, exhaust, dryMass float64) (Budget, error) {
	if !(dryMass > 0) {
		return Budget{}, fmt.Errorf("dry mass must be positive, got %g", dryMass)
	}
	ratio, err := MassRatio(k, deltaPhi, exhaust)
	if err != nil {
		return Budget{}, err
	}
	prop := dryMass * (ratio - 1)
	return Budget{
		RapidityChange:  deltaPhi,
		ExhaustVelocity: exhaust,
		MassRatio:       ratio,
		DryMass:         dryMass,
		PropellantMass:  prop,
		PropellantShare: prop / (prop + dryMass),
	}, nil
}
