// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/physics"
)

// Assembler chains phases into a single worldline.
type Assembler struct {
	integrator Integrator
}

// NewAssembler returns an assembler using the constants in k.
func NewAssembler(k physics.Constants) Assembler {
	return Assembler{integrator: NewIntegrator(k)}
}

// Assemble integrates phases in order from start, feeding each end state
// into the next phase. The first sample of every phase after the first is
// dropped since it repeats the previous phase's last sample. The returned
// worldline records len(phases)+1 boundary indices.
func (a Assembler) Assemble(phases []Phase, start State, samplesPerPhase int) (Worldline, State, error) {
	if len(phases) == 0 {
		return Worldline{}, State{}, fmt.Errorf("%w: no phases to assemble", ErrInvalidPhase)
	}
	if samplesPerPhase < 2 {
		return Worldline{}, State{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidPhase, samplesPerPhase)
	}

	points := make([]Waypoint, 0, len(phases)*(samplesPerPhase-1)+1)
	boundaries := make([]int, 0, len(phases)+1)
	boundaries = append(boundaries, 0)

	state := start
	for i, p := range phases {
		samples, end, err := a.integrator.Integrate(p, state, samplesPerPhase)
		if err != nil {
			return Worldline{}, State{}, fmt.Errorf("phase %d: %w", i+1, err)
		}
		if i > 0 {
			samples = samples[1:]
		}
		points = append(points, samples...)
		boundaries = append(boundaries, len(points)-1)
		state = end
	}
	return Worldline{points: points, boundaries: boundaries}, state, nil
}

// Legs parameterizes a four-phase round trip at constant proper
// acceleration: accelerate and brake along DirOut, then accelerate and
// brake along DirIn. Each leg is mirrored, so the traveler is at rest at
// the turnaround and on arrival.
type Legs struct {
	Accel   float64 // magnitude, m/s²
	OutHalf float64 // proper time of each outbound phase, s
	InHalf  float64 // proper time of each inbound phase, s
	DirOut  r3.Vec
	DirIn   r3.Vec
}

// Phases expands the legs into the four constant-acceleration phases.
func (l Legs) Phases() []Phase {
	return []Phase{
		{Accel: l.Accel, Duration: l.OutHalf, Direction: l.DirOut},
		{Accel: -l.Accel, Duration: l.OutHalf, Direction: l.DirOut},
		{Accel: l.Accel, Duration: l.InHalf, Direction: l.DirIn},
		{Accel: -l.Accel, Duration: l.InHalf, Direction: l.DirIn},
	}
}

// Brachistochrone assembles the four-phase round trip described by legs.
// The result has 4(n−1)+1 waypoints and five boundary timestamps.
func (a Assembler) Brachistochrone(legs Legs, start State, samplesPerPhase int) (Worldline, error) {
	w, _, err := a.Assemble(legs.Phases(), start, samplesPerPhase)
	return w, err
}
