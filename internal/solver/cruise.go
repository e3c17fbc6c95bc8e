// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/kinematics"
	"github.com/pdiddy/marte/internal/physics"
)

// SolveCruise fits a round trip of two equal-duration constant-velocity
// legs with instantaneous boosts at departure, turnaround, and arrival.
// Speed follows from τ = Δt·√(1−β²); the turnaround is at the coordinate
// midpoint. The outbound heading solves the triangle formed by the two
// legs and the target's net displacement; both mirror-image solutions are
// evaluated and the one with the smaller rendezvous miss is kept.
func (s *Solver) SolveCruise(p Problem, w io.Writer) (Candidate, error) {
	if err := p.Validate(); err != nil {
		return Candidate{}, err
	}

	c := s.k.SpeedOfLight
	span := p.Arrival - p.Departure
	ratio := p.ProperTime / span
	beta := math.Sqrt(1 - ratio*ratio)
	half := span / 2
	leg := beta * c * half

	r0 := p.Target.Position(p.Departure)
	rf := p.Target.Position(p.Arrival)
	d := r3.Sub(rf, r0)
	dist := r3.Norm(d)

	if w == nil {
		w = io.Discard
	}
	if dist > 2*leg {
		fmt.Fprintf(w, "warning: target displacement %.4g m exceeds round-trip reach %.4g m\n", dist, 2*leg)
	}

	alpha := baseHeading(p)
	offset := 0.0
	if dist > 1 && leg > 0 {
		offset = math.Acos(math.Max(-1, math.Min(1, dist/(2*leg))))
	}

	type branch struct {
		heading       float64
		turn, end     r3.Vec
		dirOut, dirIn r3.Vec
		miss          float64
	}
	eval := func(heading float64) branch {
		out := r3.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
		turn := r3.Add(r0, r3.Scale(leg, out))
		in := r3.Sub(rf, turn)
		if n := r3.Norm(in); n > 0 {
			in = r3.Scale(1/n, in)
		} else {
			in = r3.Scale(-1, out)
		}
		end := r3.Add(turn, r3.Scale(leg, in))
		return branch{heading, turn, end, out, in, r3.Norm(r3.Sub(end, rf))}
	}

	best := eval(alpha + offset)
	if alt := eval(alpha - offset); alt.miss < best.miss {
		best = alt
	}

	tTurn := p.Departure + half
	wl := kinematics.NewWorldline([]kinematics.Waypoint{
		{CoordTime: p.Departure, Position: r0, ProperTime: 0, Beta: beta},
		{CoordTime: tTurn, Position: best.turn, ProperTime: p.ProperTime / 2, Beta: beta},
		{CoordTime: p.Arrival, Position: best.end, ProperTime: p.ProperTime, Beta: beta},
	}, []int{0, 1, 2})

	vOut := r3.Scale(beta*c, best.dirOut)
	vIn := r3.Scale(beta*c, best.dirIn)
	phi := physics.Rapidity(beta)
	turnPhi := physics.Rapidity(math.Min(s.k.Beta(s.k.VelocityAddition(vIn, vOut)), 1))

	heading := math.Mod(best.heading, 2*math.Pi)
	if heading < 0 {
		heading += 2 * math.Pi
	}

	cand := Candidate{
		Model:           ModelConstantVelocity,
		Worldline:       wl,
		OutHalf:         p.ProperTime / 2,
		InHalf:          p.ProperTime / 2,
		Heading:         heading,
		DirectionOut:    best.dirOut,
		DirectionIn:     best.dirIn,
		PeakBeta:        beta,
		PeakGamma:       physics.Lorentz(beta),
		PhaseBoundaries: wl.BoundaryTimes(),
		TurnaroundTime:  tTurn,
		BetaProfile:     []float64{beta, beta, beta},
		RapidityChange:  2*phi + turnPhi,
		Energy:          s.k.KineticEnergy(beta, p.Mass),
		ArrivalVelocity: s.k.VelocityAddition(vIn, p.Target.Velocity(p.Arrival)),
		Iterations:      1,
	}
	s.fillResidual(&cand, p)
	return s.accept(cand, p, true, s.cfg.ProperTimeRTol), nil
}
