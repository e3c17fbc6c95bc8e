// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/internal/solver"
	"github.com/pdiddy/marte/pkg/types"
)

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "Search for every distinct round trip satisfying the request",
	Long: `Branches starts the constant-acceleration solver from --n headings spread
over a full turn, each at several burn durations, and keeps the distinct
accepted solutions. Two solutions whose outbound directions are parallel or
antiparallel count as the same branch.

Attempts run concurrently (see --workers). Interrupting stops the search
between attempts.`,
	RunE: runBranches,
}

// branchesOutput is the serialized result of the branches command.
type branchesOutput struct {
	RunID      string                   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Request    types.TrajectoryRequest  `json:"request" yaml:"request"`
	Attempts   int                      `json:"attempts" yaml:"attempts"`
	Duplicates int                      `json:"duplicates" yaml:"duplicates"`
	Rejected   map[string]int           `json:"rejected" yaml:"rejected"`
	Branches   []types.CandidateSummary `json:"branches" yaml:"branches"`
}

func runBranches(cmd *cobra.Command, args []string) error {
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
	if err := p.Validate(); err != nil {
		return err
	}
	n, _ := cmd.Flags().GetInt("n")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := solver.New(k, cfg.Solver)
	res, err := s.FindBranches(ctx, p, n, os.Stderr)
	if err != nil {
		return err
	}

	out := branchesOutput{
		Request:    p.Request(solver.ModelConstantAcceleration, cfg.Ephemeris.Model),
		Attempts:   res.Attempts,
		Duplicates: res.Duplicates,
		Rejected:   make(map[string]int, len(res.Rejected)),
		Branches:   make([]types.CandidateSummary, 0, len(res.Branches)),
	}
	for r, count := range res.Rejected {
		out.Rejected[string(r)] = count
	}
	for _, b := range res.Branches {
		out.Branches = append(out.Branches, b.Summary())
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		id, err := saveRun(ctx, cfg.Catalog, types.RunRecord{
			Kind:       types.RunBranches,
			Request:    out.Request,
			Candidates: out.Branches,
		})
		if err != nil {
			return err
		}
		out.RunID = id
	}

	if format != "table" {
		return encode(os.Stdout, format, out)
	}

	if len(out.Branches) == 0 {
		fmt.Fprintln(os.Stdout, "No branches found.")
	}
	for i, b := range out.Branches {
		fmt.Fprintf(os.Stdout, "Branch %d\n", i+1)
		printCandidate(os.Stdout, k, b)
		fmt.Fprintln(os.Stdout)
	}
	fmt.Fprintf(os.Stdout, "%d branches from %d attempts (%d duplicates)\n",
		len(out.Branches), out.Attempts, out.Duplicates)
	if out.RunID != "" {
		fmt.Fprintf(os.Stdout, "Saved run %s\n", out.RunID)
	}
	return nil
}

func init() {
	addProblemFlags(branchesCmd)
	addOutputFlags(branchesCmd)
	branchesCmd.Flags().Int("n", 8, "number of starting headings")
	branchesCmd.Flags().Int("workers", 0, "concurrent solver attempts (0 = GOMAXPROCS)")
	viper.BindPFlag("solver.workers", branchesCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(branchesCmd)
}
