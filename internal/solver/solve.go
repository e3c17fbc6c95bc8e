// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package solver finds round-trip trajectories that leave a moving target,
// turn around, and meet it again at a requested coordinate time after a
// requested proper time has elapsed aboard.
//
// Malformed requests are rejected with an InputError before any numerical
// work. Everything else produces a Candidate; a physically infeasible or
// non-convergent request is a Candidate with Converged false and a
// Rejection reason, never an error.
package solver

import (
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/kinematics"
	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/internal/validation"
	"github.com/pdiddy/marte/pkg/types"
)

// ErrUnknownModel indicates a trajectory model name that is not supported.
var ErrUnknownModel = errors.New("unknown trajectory model")

// Model names a trajectory model.
type Model string

const (
	// ModelConstantAcceleration is the four-phase brachistochrone.
	ModelConstantAcceleration Model = "constant_acceleration"

	// ModelConstantVelocity is two coasting legs with instantaneous boosts.
	ModelConstantVelocity Model = "constant_velocity"
)

// ParseModel maps a model name to a Model. "accel" and "cruise" are
// accepted as short forms.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "", "accel", string(ModelConstantAcceleration):
		return ModelConstantAcceleration, nil
	case "cruise", string(ModelConstantVelocity):
		return ModelConstantVelocity, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// Rejection explains why a candidate was not accepted.
type Rejection string

const (
	RejectNone         Rejection = ""
	RejectNotConverged Rejection = "not_converged"
	RejectSuperluminal Rejection = "superluminal"
	RejectProperTime   Rejection = "proper_time_mismatch"
	RejectRendezvous   Rejection = "rendezvous_miss"
	RejectShortBurn    Rejection = "short_burn"
)

// Candidate is the outcome of one solve.
type Candidate struct {
	Model     Model
	Worldline kinematics.Worldline

	OutHalf      float64 // proper time of each outbound phase, s
	InHalf       float64 // proper time of each inbound phase, s
	Heading      float64 // outbound heading in the xy-plane, rad in [0, 2π)
	DirectionOut r3.Vec
	DirectionIn  r3.Vec
	Acceleration float64

	PeakBeta        float64
	PeakGamma       float64
	PhaseBoundaries []float64 // coordinate times, s
	TurnaroundTime  float64   // s
	BetaProfile     []float64 // chord speed fraction per waypoint

	// Residual is [|Δposition|/c (s), Δτ/ref, Δt/ref] at arrival.
	Residual        [3]float64
	ResidualNorm    float64
	ArrivalSlip     float64 // reached minus requested arrival time, s
	RendezvousMiss  float64 // m
	TotalProperTime float64 // s

	RapidityChange  float64 // Σ|Δφ| over all phases
	Energy          float64 // peak kinetic energy of the reference mass, J
	ArrivalVelocity r3.Vec  // ship velocity in the target's rest frame, m/s

	Checks     validation.Report
	Iterations int
	Converged  bool
	Rejection  Rejection
}

// Summary returns the persisted view of the candidate.
func (c Candidate) Summary() types.CandidateSummary {
	return types.CandidateSummary{
		Converged:       c.Converged,
		Rejection:       string(c.Rejection),
		PeakBeta:        c.PeakBeta,
		PeakGamma:       c.PeakGamma,
		TotalProperTime: c.TotalProperTime,
		TurnaroundTime:  c.TurnaroundTime,
		ArrivalSlip:     c.ArrivalSlip,
		RendezvousMiss:  c.RendezvousMiss,
		ResidualNorm:    c.ResidualNorm,
		HeadingDeg:      c.Heading * 180 / math.Pi,
		DirectionOut:    [3]float64{c.DirectionOut.X, c.DirectionOut.Y, c.DirectionOut.Z},
		PhaseBoundaries: append([]float64(nil), c.PhaseBoundaries...),
		Energy:          c.Energy,
		Waypoints:       c.Worldline.Len(),
	}
}

// retryMultipliers scale the initial half durations when the first
// attempt fails; the heading is offset by π(m−1) for each.
var retryMultipliers = []float64{0.5, 1.5, 0.25, 2.0, 0.1}

// polishIterations caps the refinement run after a converged fit.
const polishIterations = 20

// Solver holds the constants and settings shared by every solve.
type Solver struct {
	k   physics.Constants
	cfg types.SolverConfig
	asm kinematics.Assembler
}

// New returns a solver. Zero-valued settings take their defaults.
func New(k physics.Constants, cfg types.SolverConfig) *Solver {
	return &Solver{k: k, cfg: withDefaults(cfg), asm: kinematics.NewAssembler(k)}
}

func withDefaults(cfg types.SolverConfig) types.SolverConfig {
	def := types.DefaultEngineConfig().Solver
	setInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	setFloat := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	setInt(&cfg.MaxIterations, def.MaxIterations)
	setInt(&cfg.CoarseSamples, def.CoarseSamples)
	setInt(&cfg.FineSamples, def.FineSamples)
	setFloat(&cfg.Tolerance, def.Tolerance)
	setFloat(&cfg.StepTolerance, def.StepTolerance)
	setFloat(&cfg.ProperTimeRTol, def.ProperTimeRTol)
	setFloat(&cfg.SearchProperTimeRTol, def.SearchProperTimeRTol)
	setFloat(&cfg.RendezvousTolerance, def.RendezvousTolerance)
	setFloat(&cfg.RendezvousRelTolerance, def.RendezvousRelTolerance)
	setFloat(&cfg.CoordinateTimeWeight, def.CoordinateTimeWeight)
	setFloat(&cfg.MinHalfDuration, def.MinHalfDuration)
	setFloat(&cfg.DuplicateDot, def.DuplicateDot)
	return cfg
}

// Config returns the effective solver settings.
func (s *Solver) Config() types.SolverConfig { return s.cfg }

func (s *Solver) reference() float64 {
	if s.cfg.ReferenceDuration > 0 {
		return s.cfg.ReferenceDuration
	}
	return s.k.Year
}

func (s *Solver) workers() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// rendezvousTolerance grows with the trajectory's reach so light-year
// excursions are not held to metre precision.
func (s *Solver) rendezvousTolerance(w kinematics.Worldline) float64 {
	return math.Max(s.cfg.RendezvousTolerance, s.cfg.RendezvousRelTolerance*w.MaxExcursion())
}

// guess is a starting point [outHalf, inHalf, heading].
type guess struct {
	out, in, heading float64
}

// baseHeading points from the target's departure position toward its
// arrival position, or along +x when the two coincide.
func baseHeading(p Problem) float64 {
	d := r3.Sub(p.Target.Position(p.Arrival), p.Target.Position(p.Departure))
	if r3.Norm(d) <= 1 {
		return 0
	}
	return math.Atan2(d.Y, d.X)
}

// Solve fits the four-phase constant-acceleration trajectory to p. The
// returned error is non-nil only for invalid input. Progress of retries is
// written to w.
func (s *Solver) Solve(p Problem, w io.Writer) (Candidate, error) {
	if err := p.Validate(); err != nil {
		return Candidate{}, err
	}
	if w == nil {
		w = io.Discard
	}

	base := baseHeading(p)
	q := p.ProperTime / 4
	guesses := []guess{{q, q, base}}
	for _, m := range retryMultipliers {
		guesses = append(guesses, guess{q * m, q * m, base + math.Pi*(m-1)})
	}
	return s.solve(p, guesses, s.cfg.ProperTimeRTol, w), nil
}

// solve runs attempts from each guess until one converges, then builds and
// validates the fine worldline of the last attempt.
func (s *Solver) solve(p Problem, guesses []guess, rtol float64, w io.Writer) Candidate {
	var fit lmResult
	for i, g := range guesses {
		fit = s.fit(p, g)
		if fit.Converged {
			if i > 0 {
				fmt.Fprintf(w, "  converged on attempt %d after %d iterations\n", i+1, fit.Iterations)
			}
			break
		}
		fmt.Fprintf(w, "  attempt %d/%d did not converge after %d iterations\n", i+1, len(guesses), fit.Iterations)
	}

	cand, err := s.candidate(p, fit)
	if err != nil {
		fmt.Fprintf(w, "warning: rebuilding worldline: %v\n", err)
		return Candidate{Model: ModelConstantAcceleration, Rejection: RejectNotConverged}
	}
	return s.accept(cand, p, fit.Converged, rtol)
}

func legsFor(p Problem, x []float64) kinematics.Legs {
	dir := r3.Vec{X: math.Cos(x[2]), Y: math.Sin(x[2])}
	return kinematics.Legs{
		Accel:   p.Acceleration,
		OutHalf: math.Abs(x[0]),
		InHalf:  math.Abs(x[1]),
		DirOut:  dir,
		DirIn:   r3.Scale(-1, dir),
	}
}

func startState(p Problem) kinematics.State {
	return kinematics.State{Position: p.Target.Position(p.Departure), CoordTime: p.Departure}
}

// fit runs one Levenberg–Marquardt attempt on the coarse worldline. The
// residual is the arrival position error per axis in light-reference
// units, the proper-time error, and the weighted coordinate-time error.
func (s *Solver) fit(p Problem, g guess) lmResult {
	c := s.k.SpeedOfLight
	ref := s.reference()
	weight := s.cfg.CoordinateTimeWeight
	start := startState(p)
	target := p.Target.Position(p.Arrival)

	f := func(x []float64) []float64 {
		wl, err := s.asm.Brachistochrone(legsFor(p, x), start, s.cfg.CoarseSamples)
		if err != nil {
			return []float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}
		}
		last := wl.Last()
		d := r3.Sub(last.Position, target)
		return []float64{
			d.X / (c * ref),
			d.Y / (c * ref),
			d.Z / (c * ref),
			(last.ProperTime - start.ProperTime - p.ProperTime) / ref,
			weight * (last.CoordTime - p.Arrival) / ref,
		}
	}

	x0 := []float64{g.out, g.in, g.heading}
	scale := []float64{p.ProperTime / 4, p.ProperTime / 4, 1}
	res := levenbergMarquardt(f, x0, scale, lmSettings{
		MaxIterations: s.cfg.MaxIterations,
		FTol:          s.cfg.Tolerance,
		XTol:          s.cfg.StepTolerance,
	})
	if !res.Converged {
		return res
	}

	// A residual of Tolerance still allows a position error of
	// Tolerance·c·ref (km at one year), so polish until the step or the
	// cost stalls.
	polish := levenbergMarquardt(f, res.X, scale, lmSettings{
		MaxIterations: polishIterations,
		XTol:          s.cfg.StepTolerance,
	})
	if floats.Dot(polish.Residual, polish.Residual) < floats.Dot(res.Residual, res.Residual) {
		res.X, res.Residual = polish.X, polish.Residual
		res.Iterations += polish.Iterations
	}
	return res
}

// candidate rebuilds the fitted trajectory with fine sampling and fills in
// every derived quantity.
func (s *Solver) candidate(p Problem, fit lmResult) (Candidate, error) {
	legs := legsFor(p, fit.X)
	w, err := s.asm.Brachistochrone(legs, startState(p), s.cfg.FineSamples)
	if err != nil {
		return Candidate{}, err
	}

	c := s.k.SpeedOfLight
	peakPhi := p.Acceleration * math.Max(legs.OutHalf, legs.InHalf) / c
	peakBeta := physics.BetaFromRapidity(peakPhi)
	bounds := w.BoundaryTimes()

	heading := math.Mod(fit.X[2], 2*math.Pi)
	if heading < 0 {
		heading += 2 * math.Pi
	}

	cand := Candidate{
		Model:           ModelConstantAcceleration,
		Worldline:       w,
		OutHalf:         legs.OutHalf,
		InHalf:          legs.InHalf,
		Heading:         heading,
		DirectionOut:    legs.DirOut,
		DirectionIn:     legs.DirIn,
		Acceleration:    p.Acceleration,
		PeakBeta:        peakBeta,
		PeakGamma:       math.Cosh(peakPhi),
		PhaseBoundaries: bounds,
		TurnaroundTime:  bounds[2],
		BetaProfile:     w.ChordBetas(c),
		RapidityChange:  2 * p.Acceleration * (legs.OutHalf + legs.InHalf) / c,
		Energy:          s.k.KineticEnergy(peakBeta, p.Mass),
		// The ship is at rest on arrival.
		ArrivalVelocity: s.k.VelocityAddition(r3.Vec{}, p.Target.Velocity(p.Arrival)),
		Iterations:      fit.Iterations,
	}
	s.fillResidual(&cand, p)
	return cand, nil
}

func (s *Solver) fillResidual(cand *Candidate, p Problem) {
	last := cand.Worldline.Last()
	ref := s.reference()
	cand.RendezvousMiss = r3.Norm(r3.Sub(last.Position, p.Target.Position(p.Arrival)))
	cand.TotalProperTime = last.ProperTime
	cand.ArrivalSlip = last.CoordTime - p.Arrival
	cand.Residual = [3]float64{
		cand.RendezvousMiss / s.k.SpeedOfLight,
		(last.ProperTime - p.ProperTime) / ref,
		cand.ArrivalSlip / ref,
	}
	cand.ResidualNorm = floats.Norm(cand.Residual[:], 2)
}

// accept validates the fine worldline and sets Converged or Rejection.
func (s *Solver) accept(cand Candidate, p Problem, converged bool, rtol float64) Candidate {
	tol := validation.Tolerances{
		ProperTimeRTol: rtol,
		RendezvousATol: s.rendezvousTolerance(cand.Worldline),
	}
	cand.Checks = validation.Check(cand.Worldline, s.k, p.ProperTime, p.Target.Position(p.Arrival), tol)

	switch {
	case !converged:
		cand.Rejection = RejectNotConverged
	case cand.Model == ModelConstantAcceleration &&
		(cand.OutHalf < s.cfg.MinHalfDuration || cand.InHalf < s.cfg.MinHalfDuration):
		// A collapsed burn repeats coordinate times, which would otherwise
		// read as superluminal.
		cand.Rejection = RejectShortBurn
	case !cand.Checks.Subluminal || !cand.Checks.Causal:
		cand.Rejection = RejectSuperluminal
	case !cand.Checks.ProperTime:
		cand.Rejection = RejectProperTime
	case !cand.Checks.Rendezvous:
		cand.Rejection = RejectRendezvous
	default:
		cand.Converged = true
		cand.Rejection = RejectNone
	}
	return cand
}
