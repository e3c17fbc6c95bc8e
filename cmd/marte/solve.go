// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marte/internal/catalog"
	"github.com/pdiddy/marte/internal/ephemeris"
	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/internal/propulsion"
	"github.com/pdiddy/marte/internal/solver"
	"github.com/pdiddy/marte/pkg/types"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve one round trip to the rendezvous target",
	Long: `Solve fits a round trip that departs the target at --t0, meets it again at
--tf, and accumulates --tau of proper time aboard.

The constant_acceleration model (default) flies four equal-magnitude burns:
accelerate out, brake to rest at turnaround, accelerate back, brake on
arrival. The constant_velocity model coasts both legs at a fixed speed.

When the request is infeasible the best attempt is still reported, marked
rejected with the reason.`,
	RunE: runSolve,
}

// solveOutput is the serialized result of the solve command.
type solveOutput struct {
	RunID     string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Request   types.TrajectoryRequest `json:"request" yaml:"request"`
	Candidate types.CandidateSummary  `json:"candidate" yaml:"candidate"`
	Budget    *propulsion.Budget      `json:"budget,omitempty" yaml:"budget,omitempty"`
}

func runSolve(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k := physics.FromConfig(cfg.Physics)

	p, err := problemFromFlags(cmd, cfg, k)
	if err != nil {
		return err
	}
	modelName, _ := cmd.Flags().GetString("model")
	model, err := solver.ParseModel(modelName)
	if err != nil {
		return err
	}

	s := solver.New(k, cfg.Solver)
	var cand solver.Candidate
	switch model {
	case solver.ModelConstantVelocity:
		cand, err = s.SolveCruise(p, os.Stderr)
	default:
		cand, err = s.Solve(p, os.Stderr)
	}
	if err != nil {
		return err
	}

	out := solveOutput{
		Request:   p.Request(model, cfg.Ephemeris.Model),
		Candidate: cand.Summary(),
	}

	exhaust, _ := cmd.Flags().GetFloat64("exhaust-beta")
	if exhaust > 0 {
		budget, err := propulsion.NewBudget(k, cand.RapidityChange, exhaust*k.SpeedOfLight, p.Mass)
		if err != nil {
			return fmt.Errorf("propellant budget: %w", err)
		}
		out.Budget = &budget
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		id, err := saveRun(cmd.Context(), cfg.Catalog, types.RunRecord{
			Kind:       types.RunSolve,
			Request:    out.Request,
			Candidates: []types.CandidateSummary{out.Candidate},
		})
		if err != nil {
			return err
		}
		out.RunID = id
	}

	if format != "table" {
		return encode(os.Stdout, format, out)
	}

	fmt.Fprintf(os.Stdout, "%s round trip, tf - t0 = %.4f y, tau = %.4f y\n",
		model, k.Years(p.Arrival-p.Departure), k.Years(p.ProperTime))
	printCandidate(os.Stdout, k, out.Candidate)
	if out.Budget != nil {
		fmt.Fprintf(os.Stdout, "  %-20s %.4g (propellant %.3g kg, %.2f%% of initial mass)\n",
			"mass ratio", out.Budget.MassRatio, out.Budget.PropellantMass, 100*out.Budget.PropellantShare)
	}
	if out.RunID != "" {
		fmt.Fprintf(os.Stdout, "\nSaved run %s\n", out.RunID)
	}
	return nil
}

// --- shared helpers ---

// problemFromFlags builds the boundary-value problem from the request
// flags and the configured target orbit.
func problemFromFlags(cmd *cobra.Command, cfg types.EngineConfig, k physics.Constants) (solver.Problem, error) {
	t0, err := timeFlag(cmd, "t0", k.Year)
	if err != nil {
		return solver.Problem{}, err
	}
	tf, err := timeFlag(cmd, "tf", k.Year)
	if err != nil {
		return solver.Problem{}, err
	}
	tau, err := timeFlag(cmd, "tau", k.Year)
	if err != nil {
		return solver.Problem{}, err
	}
	accelG, _ := cmd.Flags().GetFloat64("accel-g")
	mass, _ := cmd.Flags().GetFloat64("mass")

	if eph, _ := cmd.Flags().GetString("ephemeris"); eph != "" {
		cfg.Ephemeris.Model = eph
	}
	target, err := ephemeris.New(cfg.Ephemeris, k)
	if err != nil {
		return solver.Problem{}, err
	}

	return solver.Problem{
		Departure:    t0,
		Arrival:      tf,
		ProperTime:   tau,
		Acceleration: accelG * k.StandardGravity,
		Mass:         mass,
		Target:       target,
	}, nil
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().String("t0", "0", "departure coordinate time (seconds, or years with a y suffix)")
	cmd.Flags().String("tf", "", "arrival coordinate time (seconds, or years with a y suffix)")
	cmd.Flags().String("tau", "", "proper time aboard (seconds, or years with a y suffix)")
	cmd.Flags().Float64("accel-g", 1, "proper acceleration in standard gravities")
	cmd.Flags().Float64("mass", 1000, "reference rest mass in kg")
	cmd.Flags().String("ephemeris", "", "target orbit model: circular or elliptical (default from config)")
	cmd.Flags().Bool("save", false, "record the run in the catalog")
	cmd.MarkFlagRequired("tf")
	cmd.MarkFlagRequired("tau")
}

// saveRun records run in the catalog and returns its ID.
func saveRun(ctx context.Context, cfg types.CatalogConfig, run types.RunRecord) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := catalog.NewStore(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	id, err := store.Record(ctx, run)
	if err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}
	return id, nil
}

func init() {
	addProblemFlags(solveCmd)
	addOutputFlags(solveCmd)
	solveCmd.Flags().String("model", string(solver.ModelConstantAcceleration), "trajectory model: constant_acceleration or constant_velocity")
	solveCmd.Flags().Float64("exhaust-beta", 0, "exhaust velocity as a fraction of c; reports the propellant budget when set")

	rootCmd.AddCommand(solveCmd)
}
