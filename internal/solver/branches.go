// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package solver

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// branchMultipliers scale the τ/4 half-duration guess at every angle.
var branchMultipliers = []float64{1.0, 0.5, 1.5, 0.25, 2.0}

// BranchOutput holds the distinct accepted branches and search statistics.
type BranchOutput struct {
	Branches   []Candidate
	Attempts   int
	Duplicates int
	Rejected   map[Rejection]int
}

// FindBranches solves p from n headings spread over a full turn, each at
// every duration multiplier, and returns the distinct accepted
// candidates in guess order. Invalid input is logged to w and yields an
// empty result. The only error is cancellation of ctx.
func (s *Solver) FindBranches(ctx context.Context, p Problem, n int, w io.Writer) (BranchOutput, error) {
	if w == nil {
		w = io.Discard
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(w, "branch search skipped: %v\n", err)
		return BranchOutput{Rejected: map[Rejection]int{}}, nil
	}
	if n < 1 {
		n = 1
	}

	base := baseHeading(p)
	q := p.ProperTime / 4
	guesses := make([]guess, 0, n*len(branchMultipliers))
	for i := 0; i < n; i++ {
		angle := base + 2*math.Pi*float64(i)/float64(n)
		for _, m := range branchMultipliers {
			guesses = append(guesses, guess{q * m, q * m, angle})
		}
	}

	results := make([]Candidate, len(guesses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, gs := range guesses {
		i, gs := i, gs
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.solve(p, []guess{gs}, s.cfg.SearchProperTimeRTol, io.Discard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BranchOutput{}, fmt.Errorf("branch search: %w", err)
	}

	out := BranchOutput{Attempts: len(guesses), Rejected: make(map[Rejection]int)}
	for _, c := range results {
		if !c.Converged {
			out.Rejected[c.Rejection]++
			continue
		}
		if s.duplicate(out.Branches, c) {
			out.Duplicates++
			continue
		}
		out.Branches = append(out.Branches, c)
	}

	fmt.Fprintf(w, "branch search: %d attempts, %d accepted, %d duplicates", out.Attempts, len(out.Branches), out.Duplicates)
	for _, r := range sortedRejections(out.Rejected) {
		fmt.Fprintf(w, ", %d %s", out.Rejected[r], r)
	}
	fmt.Fprintln(w)
	return out, nil
}

// duplicate reports whether c's outbound direction is parallel or
// antiparallel to that of an accepted branch.
func (s *Solver) duplicate(accepted []Candidate, c Candidate) bool {
	for _, a := range accepted {
		if math.Abs(r3.Dot(a.DirectionOut, c.DirectionOut)) > s.cfg.DuplicateDot {
			return true
		}
	}
	return false
}

func sortedRejections(m map[Rejection]int) []Rejection {
	keys := make([]Rejection, 0, len(m))
	for r := range m {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
