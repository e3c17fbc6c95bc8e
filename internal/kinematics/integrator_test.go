// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/physics"
)

var xhat = r3.Vec{X: 1}

func TestIntegrateClosedFormOneGOneYear(t *testing.T) {
	k := physics.SI()
	in := NewIntegrator(k)
	g, c, yr := k.StandardGravity, k.SpeedOfLight, k.Year

	samples, end, err := in.Integrate(Phase{Accel: g, Duration: yr, Direction: xhat}, State{}, 100)
	require.NoError(t, err)
	require.Len(t, samples, 100)

	first := samples[0]
	assert.Equal(t, 0.0, first.CoordTime)
	assert.Equal(t, 0.0, first.ProperTime)
	assert.Equal(t, r3.Vec{}, first.Position)
	assert.Equal(t, 0.0, first.Beta)

	for i := 1; i < len(samples); i++ {
		assert.Greater(t, samples[i].Beta, samples[i-1].Beta, "beta must increase at sample %d", i)
		assert.Greater(t, samples[i].CoordTime, samples[i-1].CoordTime)
	}

	phi := g * yr / c
	beta := math.Tanh(phi)
	assert.InDelta(t, 0.775, beta, 1e-3)
	assert.InDelta(t, 1.58, math.Cosh(phi), 1e-2)

	last := samples[len(samples)-1]
	assert.InDelta(t, beta, last.Beta, 1e-12)
	assert.InDelta(t, yr, last.ProperTime, 1e-6)
	assert.InEpsilon(t, c/g*math.Sinh(phi), last.CoordTime, 1e-12)
	assert.InEpsilon(t, c*c/g*(math.Cosh(phi)-1), last.Position.X, 1e-12)
	assert.Equal(t, 0.0, last.Position.Y)

	assert.InDelta(t, phi, end.Rapidity, 1e-12)
	assert.Equal(t, last.CoordTime, end.CoordTime)
	assert.Equal(t, last.Position, end.Position)

	// Coordinate time exceeds proper time once moving.
	assert.Greater(t, last.CoordTime, last.ProperTime)
}

func TestIntegrateInertial(t *testing.T) {
	k := physics.SI()
	in := NewIntegrator(k)
	beta := 0.6
	start := State{
		Position:  r3.Vec{X: 1, Y: 2, Z: 3},
		CoordTime: 10,
		Rapidity:  physics.Rapidity(beta),
	}

	samples, end, err := in.Integrate(Phase{Duration: 80, Direction: r3.Vec{Y: 2}}, start, 5)
	require.NoError(t, err)

	dt := end.CoordTime - start.CoordTime
	assert.InDelta(t, 100, dt, 1e-9) // γ = 1.25
	assert.InDelta(t, beta*k.SpeedOfLight*dt, end.Position.Y-start.Position.Y, 1e-3)
	assert.InDelta(t, start.Rapidity, end.Rapidity, 1e-15)
	for _, s := range samples {
		assert.InDelta(t, beta, s.Beta, 1e-12)
	}
}

func TestIntegrateNegativeAcceleration(t *testing.T) {
	k := physics.SI()
	in := NewIntegrator(k)
	g := k.StandardGravity

	_, mid, err := in.Integrate(Phase{Accel: g, Duration: 1e7, Direction: xhat}, State{}, 10)
	require.NoError(t, err)
	_, end, err := in.Integrate(Phase{Accel: -g, Duration: 1e7, Direction: xhat}, mid, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0, end.Rapidity, 1e-12)
	assert.InEpsilon(t, 2*mid.Position.X, end.Position.X, 1e-9)
	assert.InEpsilon(t, 2*mid.CoordTime, end.CoordTime, 1e-9)
}

func TestIntegrateNumericMatchesClosedForm(t *testing.T) {
	k := physics.SI()
	in := NewIntegrator(k)
	g := k.StandardGravity
	duration := 0.5 * k.Year

	_, exact, err := in.Integrate(Phase{Accel: g, Duration: duration, Direction: xhat}, State{}, 2)
	require.NoError(t, err)

	step := &Schedule{Profile: ProfileStep, Peak: g}
	samples, approx, err := in.Integrate(Phase{Schedule: step, Duration: duration, Direction: xhat}, State{}, 2001)
	require.NoError(t, err)
	require.Len(t, samples, 2001)

	assert.InDelta(t, exact.Rapidity, approx.Rapidity, 1e-10)
	assert.InEpsilon(t, exact.CoordTime, approx.CoordTime, 1e-6)
	assert.InEpsilon(t, exact.Position.X, approx.Position.X, 1e-6)
	assert.InDelta(t, duration, approx.ProperTime, 1e-6)
}

func TestIntegrateNumericRapidityArea(t *testing.T) {
	k := physics.SI()
	in := NewIntegrator(k)
	g := k.StandardGravity
	duration := 1e6
	ramp := 2e5

	for _, p := range []Profile{ProfileLinearRamp, ProfileSCurve} {
		t.Run(string(p), func(t *testing.T) {
			s := &Schedule{Profile: p, Peak: g, Ramp: ramp}
			samples, end, err := in.Integrate(Phase{Schedule: s, Duration: duration, Direction: xhat}, State{}, 10001)
			require.NoError(t, err)

			// Both shapes lose half the peak over each ramp.
			want := g * (duration - ramp) / k.SpeedOfLight
			assert.InEpsilon(t, want, end.Rapidity, 1e-6)

			for i := 1; i < len(samples); i++ {
				assert.GreaterOrEqual(t, samples[i].Beta, samples[i-1].Beta)
			}
		})
	}
}

func TestIntegrateInvalidPhase(t *testing.T) {
	in := NewIntegrator(physics.SI())

	tests := []struct {
		name    string
		phase   Phase
		samples int
		target  error
	}{
		{"negative duration", Phase{Accel: 1, Duration: -1, Direction: xhat}, 5, ErrInvalidPhase},
		{"one sample", Phase{Accel: 1, Duration: 1, Direction: xhat}, 1, ErrInvalidPhase},
		{"zero direction", Phase{Accel: 1, Duration: 1}, 5, ErrInvalidPhase},
		{"NaN duration", Phase{Accel: 1, Duration: math.NaN(), Direction: xhat}, 5, ErrInvalidPhase},
		{"unknown profile", Phase{Schedule: &Schedule{Profile: "zigzag"}, Duration: 1, Direction: xhat}, 5, ErrUnknownProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := in.Integrate(tt.phase, State{}, tt.samples)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestIntegrateZeroDuration(t *testing.T) {
	in := NewIntegrator(physics.SI())
	start := State{Position: r3.Vec{X: 5}, CoordTime: 3, ProperTime: 2, Rapidity: 0.4}

	samples, end, err := in.Integrate(Phase{Accel: 9.8, Duration: 0, Direction: xhat}, start, 3)
	require.NoError(t, err)
	assert.Len(t, samples, 3)
	assert.Equal(t, start.CoordTime, end.CoordTime)
	assert.Equal(t, start.Position, end.Position)
	assert.Equal(t, start.Rapidity, end.Rapidity)
}

func TestIntegrateNormalizesDirection(t *testing.T) {
	in := NewIntegrator(physics.SI())

	_, unit, err := in.Integrate(Phase{Accel: 9.8, Duration: 1000, Direction: r3.Vec{Z: 1}}, State{}, 2)
	require.NoError(t, err)
	_, scaled, err := in.Integrate(Phase{Accel: 9.8, Duration: 1000, Direction: r3.Vec{Z: 42}}, State{}, 2)
	require.NoError(t, err)

	assert.InDelta(t, unit.Position.Z, scaled.Position.Z, 1e-9)
}
