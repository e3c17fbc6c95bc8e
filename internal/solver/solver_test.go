// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/ephemeris"
	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

// --- test helpers ---

func testSolver(t *testing.T) (*Solver, physics.Constants) {
	t.Helper()
	k := physics.SI()
	return New(k, types.SolverConfig{Workers: 4}), k
}

func earth(k physics.Constants) ephemeris.Oracle {
	return ephemeris.NewCircular(k.AU, k.Year, 0)
}

func problem(k physics.Constants, tfYears, tauYears float64) Problem {
	return Problem{
		Departure:    0,
		Arrival:      tfYears * k.Year,
		ProperTime:   tauYears * k.Year,
		Acceleration: k.StandardGravity,
		Mass:         1000,
		Target:       earth(k),
	}
}

// drifting moves at constant velocity from the origin.
type drifting struct{ v r3.Vec }

func (d drifting) Position(t float64) r3.Vec { return r3.Scale(t, d.v) }
func (d drifting) Velocity(float64) r3.Vec   { return d.v }

// --- input validation ---

func TestProblemValidate(t *testing.T) {
	k := physics.SI()
	valid := problem(k, 12, 7)

	tests := []struct {
		name   string
		mutate func(*Problem)
		field  string
	}{
		{"proper time equals budget", func(p *Problem) { p.ProperTime = p.Arrival }, "proper_time"},
		{"proper time exceeds budget", func(p *Problem) { p.ProperTime = 2 * p.Arrival }, "proper_time"},
		{"zero proper time", func(p *Problem) { p.ProperTime = 0 }, "proper_time"},
		{"arrival before departure", func(p *Problem) { p.Departure = p.Arrival + 1 }, "arrival"},
		{"zero acceleration", func(p *Problem) { p.Acceleration = 0 }, "acceleration"},
		{"negative mass", func(p *Problem) { p.Mass = -1 }, "mass"},
		{"nil target", func(p *Problem) { p.Target = nil }, "target"},
		{"NaN", func(p *Problem) { p.Arrival = math.NaN() }, "request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}

	assert.NoError(t, valid.Validate())
}

func TestSolveRejectsInputBeforeSolving(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 5, 5)

	var log bytes.Buffer
	cand, err := s.Solve(p, &log)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, Candidate{}, cand)
	assert.Empty(t, log.String(), "no attempt should run")

	_, err = s.SolveCruise(p, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// --- constant acceleration ---

func TestSolveTwelveYearRoundTrip(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 12, 7)

	cand, err := s.Solve(p, nil)
	require.NoError(t, err)

	require.True(t, cand.Converged, "rejection: %s, checks: %+v", cand.Rejection, cand.Checks)
	assert.Equal(t, RejectNone, cand.Rejection)
	assert.Equal(t, ModelConstantAcceleration, cand.Model)

	assert.Greater(t, cand.PeakBeta, 0.9)
	assert.Less(t, cand.PeakBeta, 1.0)
	assert.InDelta(t, 1/math.Sqrt(1-cand.PeakBeta*cand.PeakBeta), cand.PeakGamma, 1e-9)
	assert.True(t, cand.Checks.Subluminal)
	assert.True(t, cand.Checks.Causal)

	require.Len(t, cand.PhaseBoundaries, 5)
	for i := 1; i < 5; i++ {
		assert.Greater(t, cand.PhaseBoundaries[i], cand.PhaseBoundaries[i-1])
	}
	assert.Equal(t, cand.PhaseBoundaries[2], cand.TurnaroundTime)
	assert.Equal(t, 4*500-3, cand.Worldline.Len())
	assert.Len(t, cand.BetaProfile, cand.Worldline.Len())

	assert.InEpsilon(t, p.ProperTime, cand.TotalProperTime, 1e-4)
	assert.InDelta(t, cand.OutHalf, cand.InHalf, 1e-6*cand.OutHalf)

	// Fixed acceleration cannot stretch seven proper years to twelve
	// coordinate years; the trip lands about half a year early.
	assert.InDelta(t, -0.52, k.Years(cand.ArrivalSlip), 0.02)
	assert.InDelta(t, cand.ArrivalSlip/k.Year, cand.Residual[2], 1e-12)

	assert.Greater(t, cand.Energy, 0.0)
	assert.InDelta(t, 2*k.StandardGravity*(cand.OutHalf+cand.InHalf)/k.SpeedOfLight, cand.RapidityChange, 1e-9)
	assert.InDelta(t, 2*math.Pi*k.AU/k.Year, r3.Norm(cand.ArrivalVelocity), 1)
}

func TestSolveDisplacedTarget(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2.5, 2)

	cand, err := s.Solve(p, nil)
	require.NoError(t, err)
	require.True(t, cand.Converged, "rejection: %s, checks: %+v", cand.Rejection, cand.Checks)

	d := r3.Sub(p.Target.Position(p.Arrival), p.Target.Position(p.Departure))
	assert.InDelta(t, 1, math.Abs(r3.Dot(cand.DirectionOut, r3.Unit(d))), 1e-6)
	assert.Greater(t, cand.OutHalf, cand.InHalf, "heading toward the target needs the longer outbound leg")
	assert.Less(t, cand.RendezvousMiss, s.rendezvousTolerance(cand.Worldline))
	assert.InEpsilon(t, p.ProperTime, cand.TotalProperTime, 1e-4)
}

func TestSolveUnreachableTarget(t *testing.T) {
	s, k := testSolver(t)
	p := Problem{
		Departure:    0,
		Arrival:      2 * k.Year,
		ProperTime:   1 * k.Year,
		Acceleration: k.StandardGravity,
		Mass:         1,
		Target:       drifting{v: r3.Vec{X: 0.9 * k.SpeedOfLight}},
	}

	var log bytes.Buffer
	cand, err := s.Solve(p, &log)
	require.NoError(t, err, "infeasibility is not an input error")
	assert.False(t, cand.Converged)
	assert.NotEqual(t, RejectNone, cand.Rejection)
	assert.False(t, cand.Checks.OK())
	assert.Contains(t, log.String(), "attempt 1/6 did not converge", "retries follow a failed first attempt")
}

func TestSolveRejectsPerturbedRendezvous(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 12, 7)

	cand, err := s.Solve(p, nil)
	require.NoError(t, err)
	require.True(t, cand.Converged, "rejection: %s", cand.Rejection)

	tol := s.rendezvousTolerance(cand.Worldline)
	assert.Less(t, tol, 1e3, "light-year reach still needs sub-kilometre rendezvous")
	assert.Less(t, cand.RendezvousMiss, tol)

	// A relative nudge of 3e-10 on the outbound burn misses by tens of
	// thousands of kilometres.
	nudged, err := s.candidate(p, lmResult{X: []float64{cand.OutHalf * (1 + 3e-10), cand.InHalf, cand.Heading}})
	require.NoError(t, err)
	got := s.accept(nudged, p, true, s.cfg.ProperTimeRTol)

	assert.False(t, got.Converged)
	assert.Equal(t, RejectRendezvous, got.Rejection)
	assert.Greater(t, got.RendezvousMiss, 1e6)
	assert.True(t, got.Checks.ProperTime)
}

func TestAcceptCollapsedBurnIsShort(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2, 1.5)

	cand, err := s.candidate(p, lmResult{X: []float64{0, p.ProperTime / 2, 0}})
	require.NoError(t, err)
	got := s.accept(cand, p, true, s.cfg.ProperTimeRTol)

	assert.False(t, got.Converged)
	assert.Equal(t, RejectShortBurn, got.Rejection)
	assert.False(t, got.Checks.Subluminal, "repeated coordinate times fail the chord check")
}

// --- constant velocity ---

func TestSolveCruiseTwelveYearRoundTrip(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 12, 7)

	cand, err := s.SolveCruise(p, nil)
	require.NoError(t, err)
	require.True(t, cand.Converged, "rejection: %s", cand.Rejection)

	assert.Equal(t, ModelConstantVelocity, cand.Model)
	assert.InDelta(t, math.Sqrt(1-(7.0/12)*(7.0/12)), cand.PeakBeta, 1e-12)
	assert.Len(t, cand.PhaseBoundaries, 3)
	assert.InDelta(t, 6*k.Year, cand.TurnaroundTime, 1e-3)
	assert.Equal(t, 3, cand.Worldline.Len())
	assert.InDelta(t, 0, cand.ArrivalSlip, 1e-6)
	assert.InEpsilon(t, p.ProperTime, cand.TotalProperTime, 1e-12)
}

func TestSolveCruiseDisplacedTarget(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2.5, 2)

	cand, err := s.SolveCruise(p, nil)
	require.NoError(t, err)
	require.True(t, cand.Converged, "rejection: %s", cand.Rejection)

	assert.InDelta(t, 0.6, cand.PeakBeta, 1e-12)
	assert.Less(t, cand.RendezvousMiss, 1e3)

	// Both legs have the same length.
	pts := cand.Worldline.Points()
	out := r3.Norm(r3.Sub(pts[1].Position, pts[0].Position))
	in := r3.Norm(r3.Sub(pts[2].Position, pts[1].Position))
	assert.InEpsilon(t, out, in, 1e-9)
	assert.Less(t, r3.Norm(cand.ArrivalVelocity), k.SpeedOfLight)
}

func TestSolveCruiseUnreachable(t *testing.T) {
	s, k := testSolver(t)
	p := Problem{
		Departure:    0,
		Arrival:      2 * k.Year,
		ProperTime:   1.9 * k.Year,
		Acceleration: k.StandardGravity,
		Mass:         1,
		Target:       drifting{v: r3.Vec{Y: 0.5 * k.SpeedOfLight}},
	}

	var log bytes.Buffer
	cand, err := s.SolveCruise(p, &log)
	require.NoError(t, err)
	assert.False(t, cand.Converged)
	assert.Equal(t, RejectRendezvous, cand.Rejection)
	assert.Contains(t, log.String(), "exceeds round-trip reach")
}

// --- branch search ---

func TestFindBranchesShortSymmetricTrip(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2, 1.5)

	var log bytes.Buffer
	out, err := s.FindBranches(context.Background(), p, 8, &log)
	require.NoError(t, err)

	assert.Equal(t, 8*len(branchMultipliers), out.Attempts)
	require.NotEmpty(t, out.Branches)
	for _, c := range out.Branches {
		assert.True(t, c.Converged)
		assert.True(t, c.Checks.Subluminal)
		assert.InEpsilon(t, p.ProperTime, c.TotalProperTime, 1e-3)
		assert.GreaterOrEqual(t, c.OutHalf, 1.0)
		assert.GreaterOrEqual(t, c.InHalf, 1.0)
	}
	for i := range out.Branches {
		for j := i + 1; j < len(out.Branches); j++ {
			dot := r3.Dot(out.Branches[i].DirectionOut, out.Branches[j].DirectionOut)
			assert.Less(t, math.Abs(dot), 0.999, "branches %d and %d coincide", i, j)
		}
	}
	assert.Contains(t, log.String(), "branch search:")
}

func TestFindBranchesDeterministic(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2, 1.5)

	a, err := s.FindBranches(context.Background(), p, 4, nil)
	require.NoError(t, err)
	b, err := s.FindBranches(context.Background(), p, 4, nil)
	require.NoError(t, err)

	require.Equal(t, len(a.Branches), len(b.Branches))
	for i := range a.Branches {
		assert.Equal(t, a.Branches[i].Heading, b.Branches[i].Heading)
	}
}

func TestFindBranchesInvalidInput(t *testing.T) {
	s, k := testSolver(t)
	p := problem(k, 2, 3)

	var log bytes.Buffer
	out, err := s.FindBranches(context.Background(), p, 8, &log)
	require.NoError(t, err)
	assert.Empty(t, out.Branches)
	assert.Contains(t, log.String(), "skipped")
}

func TestFindBranchesCanceled(t *testing.T) {
	s, k := testSolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.FindBranches(ctx, problem(k, 2, 1.5), 8, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- misc ---

func TestParseModel(t *testing.T) {
	tests := []struct {
		input string
		want  Model
	}{
		{"", ModelConstantAcceleration},
		{"accel", ModelConstantAcceleration},
		{"constant-acceleration", ModelConstantAcceleration},
		{"cruise", ModelConstantVelocity},
		{"CONSTANT_VELOCITY", ModelConstantVelocity},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseModel("warp")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestCandidateSummary(t *testing.T) {
	s, k := testSolver(t)
	cand, err := s.SolveCruise(problem(k, 12, 7), nil)
	require.NoError(t, err)

	sum := cand.Summary()
	assert.Equal(t, cand.Converged, sum.Converged)
	assert.Equal(t, cand.PeakBeta, sum.PeakBeta)
	assert.Equal(t, 3, sum.Waypoints)
	assert.Equal(t, cand.PhaseBoundaries, sum.PhaseBoundaries)
	assert.InDelta(t, cand.Heading*180/math.Pi, sum.HeadingDeg, 1e-12)
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(physics.SI(), types.SolverConfig{MaxIterations: 7})
	cfg := s.Config()

	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, 500, cfg.FineSamples)
	assert.Equal(t, 1e-3, cfg.CoordinateTimeWeight)
	assert.Equal(t, 0.995, cfg.DuplicateDot)
}
