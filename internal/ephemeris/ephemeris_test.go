// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ephemeris

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

func TestCircularEarth(t *testing.T) {
	k := physics.SI()
	o := NewCircular(k.AU, k.Year, 0)

	p0 := o.Position(0)
	assert.InDelta(t, k.AU, p0.X, 1e-3)
	assert.InDelta(t, 0, p0.Y, 1e-3)

	// A quarter period later the target is on the y-axis.
	pq := o.Position(k.Year / 4)
	assert.InDelta(t, 0, pq.X, 1)
	assert.InDelta(t, k.AU, pq.Y, 1)

	// Whole periods return to the start.
	assert.InDelta(t, 0, r3.Norm(r3.Sub(o.Position(12*k.Year), p0)), 1e3)

	v := o.Velocity(0)
	assert.InEpsilon(t, 2*math.Pi*k.AU/k.Year, v.Y, 1e-12)
	assert.InDelta(t, 0, r3.Dot(v, p0)/k.AU, 1e-6)
}

func TestSolveKepler(t *testing.T) {
	tests := []struct {
		M, e float64
	}{
		{0, 0},
		{1, 0},
		{0.5, 0.0167},
		{3, 0.3},
		{math.Pi, 0.9},
		{6, 0.95},
		{-1, 0.5},
		{20, 0.2},
	}
	for _, tt := range tests {
		E := SolveKepler(tt.M, tt.e)
		m := math.Mod(tt.M, 2*math.Pi)
		if m < 0 {
			m += 2 * math.Pi
		}
		assert.InDelta(t, m, E-tt.e*math.Sin(E), 1e-12, "M=%g e=%g", tt.M, tt.e)
		assert.GreaterOrEqual(t, E, 0.0)
		assert.Less(t, E, 2*math.Pi+1e-12)
	}
	assert.InDelta(t, math.Pi, SolveKepler(math.Pi, 0.5), 1e-12)
}

func TestEllipticalApsides(t *testing.T) {
	k := physics.SI()
	e := 0.0167
	o := Elliptical{SemiMajor: k.AU, Eccentricity: e, Period: k.Year}

	peri := r3.Norm(o.Position(0))
	aph := r3.Norm(o.Position(k.Year / 2))
	assert.InEpsilon(t, k.AU*(1-e), peri, 1e-12)
	assert.InEpsilon(t, k.AU*(1+e), aph, 1e-12)

	// Faster at perihelion than aphelion.
	assert.Greater(t, r3.Norm(o.Velocity(0)), r3.Norm(o.Velocity(k.Year/2)))
}

func TestEllipticalVelocityMatchesFiniteDifference(t *testing.T) {
	k := physics.SI()
	o := Elliptical{SemiMajor: k.AU, Eccentricity: 0.2, Period: k.Year, Phase: 0.7}

	tm := 0.3 * k.Year
	h := 10.0
	fd := r3.Scale(1/(2*h), r3.Sub(o.Position(tm+h), o.Position(tm-h)))
	v := o.Velocity(tm)
	assert.InEpsilon(t, r3.Norm(fd), r3.Norm(v), 1e-6)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(fd, v))/r3.Norm(v), 1e-6)
}

func TestNew(t *testing.T) {
	k := physics.SI()

	tests := []struct {
		name    string
		cfg     types.EphemerisConfig
		want    any
		wantErr error
	}{
		{"default circular", types.EphemerisConfig{}, Circular{}, nil},
		{"circular", types.EphemerisConfig{Model: "circular"}, Circular{}, nil},
		{"elliptical", types.EphemerisConfig{Model: "Elliptical", Eccentricity: 0.0167}, Elliptical{}, nil},
		{"unknown", types.EphemerisConfig{Model: "horizons"}, nil, ErrUnknownModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.cfg, k)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, o)
			assert.InEpsilon(t, k.AU*(1-tt.cfg.Eccentricity), r3.Norm(o.Position(0)), 1e-12)
		})
	}

	_, err := New(types.EphemerisConfig{Model: "elliptical", Eccentricity: 1.2}, k)
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	f := Fixed{Point: r3.Vec{X: 1, Y: 2}}
	assert.Equal(t, r3.Vec{X: 1, Y: 2}, f.Position(123))
	assert.Equal(t, r3.Vec{}, f.Velocity(123))
}
