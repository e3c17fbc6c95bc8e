// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Lorentz returns γ = 1/√(1−β²). It returns +Inf for |β| ≥ 1.
func Lorentz(beta float64) float64 {
	b2 := beta * beta
	if b2 >= 1 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(1-b2)
}

// Rapidity returns φ = atanh(β).
func Rapidity(beta float64) float64 {
	return math.Atanh(beta)
}

// BetaFromRapidity returns β = tanh(φ).
func BetaFromRapidity(phi float64) float64 {
	return math.Tanh(phi)
}

// ProperTimeElapsed returns the proper time of a clock moving at constant β
// over a coordinate interval dt.
func ProperTimeElapsed(beta, dt float64) float64 {
	b2 := beta * beta
	if b2 >= 1 {
		return 0
	}
	return dt * math.Sqrt(1-b2)
}

// KineticEnergy returns (γ−1)mc² in joules.
func (k Constants) KineticEnergy(beta, mass float64) float64 {
	c := k.SpeedOfLight
	return (Lorentz(beta) - 1) * mass * c * c
}

// Momentum returns the magnitude γmβc in kg·m/s.
func (k Constants) Momentum(beta, mass float64) float64 {
	return Lorentz(beta) * mass * beta * k.SpeedOfLight
}

// Beta returns |v|/c.
func (k Constants) Beta(v r3.Vec) float64 {
	return r3.Norm(v) / k.SpeedOfLight
}

// VelocityAddition returns the velocity u of an object as measured in a
// frame moving at v, both given in the same inertial frame:
//
//	u' = [u/γ − v + γ/(c²(1+γ)) (u·v) v] / (1 − u·v/c²)
//
// with γ the Lorentz factor of v. The result is subluminal whenever both
// inputs are.
func (k Constants) VelocityAddition(u, v r3.Vec) r3.Vec {
	c2 := k.SpeedOfLight * k.SpeedOfLight
	gamma := Lorentz(k.Beta(v))
	uv := r3.Dot(u, v)

	num := r3.Sub(r3.Scale(1/gamma, u), v)
	num = r3.Add(num, r3.Scale(gamma/(c2*(1+gamma))*uv, v))
	return r3.Scale(1/(1-uv/c2), num)
}
