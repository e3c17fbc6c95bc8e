// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ephemeris provides rendezvous-target positions and velocities as
// functions of coordinate time.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

// ErrUnknownModel indicates an ephemeris model name that is not supported.
var ErrUnknownModel = errors.New("unknown ephemeris model")

// Oracle returns the rendezvous target's state at coordinate time t (s).
type Oracle interface {
	Position(t float64) r3.Vec
	Velocity(t float64) r3.Vec
}

// Fixed is a target at rest.
type Fixed struct {
	Point r3.Vec
}

func (f Fixed) Position(float64) r3.Vec { return f.Point }
func (f Fixed) Velocity(float64) r3.Vec { return r3.Vec{} }

// Circular is uniform motion on a circle in the xy-plane about the origin.
type Circular struct {
	Radius          float64 // m
	AngularVelocity float64 // rad/s
	Phase           float64 // rad at t = 0
}

// NewCircular returns a circular orbit of the given radius and period.
func NewCircular(radius, period, phase float64) Circular {
	return Circular{Radius: radius, AngularVelocity: 2 * math.Pi / period, Phase: phase}
}

func (o Circular) Position(t float64) r3.Vec {
	s, c := math.Sincos(o.AngularVelocity*t + o.Phase)
	return r3.Vec{X: o.Radius * c, Y: o.Radius * s}
}

func (o Circular) Velocity(t float64) r3.Vec {
	s, c := math.Sincos(o.AngularVelocity*t + o.Phase)
	v := o.Radius * o.AngularVelocity
	return r3.Vec{X: -v * s, Y: v * c}
}

// Elliptical is a Keplerian orbit in the xy-plane with the attracting body
// at the origin and perihelion on the rotated x-axis at t = 0.
type Elliptical struct {
	SemiMajor    float64 // m
	Eccentricity float64
	Period       float64 // s
	Phase        float64 // argument of perihelion, rad
}

func (o Elliptical) anomaly(t float64) (E, meanMotion float64) {
	meanMotion = 2 * math.Pi / o.Period
	return SolveKepler(meanMotion*t, o.Eccentricity), meanMotion
}

func (o Elliptical) rotate(x, y float64) r3.Vec {
	s, c := math.Sincos(o.Phase)
	return r3.Vec{X: x*c - y*s, Y: x*s + y*c}
}

func (o Elliptical) Position(t float64) r3.Vec {
	E, _ := o.anomaly(t)
	a, e := o.SemiMajor, o.Eccentricity
	sinE, cosE := math.Sincos(E)
	return o.rotate(a*(cosE-e), a*math.Sqrt(1-e*e)*sinE)
}

func (o Elliptical) Velocity(t float64) r3.Vec {
	E, n := o.anomaly(t)
	a, e := o.SemiMajor, o.Eccentricity
	sinE, cosE := math.Sincos(E)
	dE := n / (1 - e*cosE)
	return o.rotate(-a*sinE*dE, a*math.Sqrt(1-e*e)*cosE*dE)
}

// keplerIterations bounds the Newton iteration; convergence for e < 1
// takes well under ten steps.
const keplerIterations = 50

// SolveKepler returns the eccentric anomaly E in [0, 2π) satisfying
// M = E − e·sin E, for 0 ≤ e < 1.
func SolveKepler(M, e float64) float64 {
	M = math.Mod(M, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for i := 0; i < keplerIterations; i++ {
		step := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= step
		if math.Abs(step) < 1e-14 {
			break
		}
	}
	return E
}

// New builds the oracle named by cfg.Model. Zero radius and period fall
// back to one AU and one year.
func New(cfg types.EphemerisConfig, k physics.Constants) (Oracle, error) {
	radius := cfg.Radius
	if radius == 0 {
		radius = k.AU
	}
	period := cfg.Period
	if period == 0 {
		period = k.Year
	}
	if radius < 0 || period < 0 {
		return nil, fmt.Errorf("ephemeris radius and period must be positive")
	}

	switch strings.ToLower(cfg.Model) {
	case "", types.EphemerisCircular:
		return NewCircular(radius, period, cfg.Phase), nil
	case types.EphemerisElliptical:
		if cfg.Eccentricity < 0 || cfg.Eccentricity >= 1 {
			return nil, fmt.Errorf("eccentricity %g outside [0, 1)", cfg.Eccentricity)
		}
		return Elliptical{
			SemiMajor:    radius,
			Eccentricity: cfg.Eccentricity,
			Period:       period,
			Phase:        cfg.Phase,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}
}
