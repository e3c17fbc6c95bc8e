// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

// parseTime reads a duration or instant in seconds. A trailing "y" or "yr"
// selects Julian years of the given length; a trailing "s" is accepted.
func parseTime(s string, year float64) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty time value")
	}

	scale := 1.0
	switch {
	case strings.HasSuffix(v, "yr"):
		v, scale = strings.TrimSuffix(v, "yr"), year
	case strings.HasSuffix(v, "y"):
		v, scale = strings.TrimSuffix(v, "y"), year
	case strings.HasSuffix(v, "s"):
		v = strings.TrimSuffix(v, "s")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return f * scale, nil
}

// timeFlag parses the named string flag with parseTime.
func timeFlag(cmd *cobra.Command, name string, year float64) (float64, error) {
	raw, _ := cmd.Flags().GetString(name)
	t, err := parseTime(raw, year)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

// outputFormat resolves --json and --format into "table", "json", or "yaml".
func outputFormat(cmd *cobra.Command) (string, error) {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return "json", nil
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return format, nil
	}
	return "", fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().String("format", "table", "output format: table, json, or yaml")
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

// printCandidate writes one candidate as an aligned key/value block.
func printCandidate(w io.Writer, k physics.Constants, c types.CandidateSummary) {
	status := "accepted"
	if !c.Converged {
		status = "rejected (" + c.Rejection + ")"
	}
	fmt.Fprintf(w, "  %-20s %s\n", "status", status)
	fmt.Fprintf(w, "  %-20s %.6f\n", "peak beta", c.PeakBeta)
	fmt.Fprintf(w, "  %-20s %.4f\n", "peak gamma", c.PeakGamma)
	fmt.Fprintf(w, "  %-20s %.4f y\n", "proper time", k.Years(c.TotalProperTime))
	fmt.Fprintf(w, "  %-20s %.4f y\n", "turnaround", k.Years(c.TurnaroundTime))
	fmt.Fprintf(w, "  %-20s %+.4f y\n", "arrival slip", k.Years(c.ArrivalSlip))
	fmt.Fprintf(w, "  %-20s %.3e m\n", "rendezvous miss", c.RendezvousMiss)
	fmt.Fprintf(w, "  %-20s %.3e\n", "residual norm", c.ResidualNorm)
	fmt.Fprintf(w, "  %-20s %.2f deg\n", "heading", c.HeadingDeg)
	fmt.Fprintf(w, "  %-20s %.3e J\n", "peak kinetic energy", c.Energy)
	fmt.Fprintf(w, "  %-20s %d\n", "waypoints", c.Waypoints)
	if len(c.PhaseBoundaries) > 0 {
		years := make([]string, len(c.PhaseBoundaries))
		for i, t := range c.PhaseBoundaries {
			years[i] = strconv.FormatFloat(k.Years(t), 'f', 3, 64)
		}
		fmt.Fprintf(w, "  %-20s %s y\n", "phase boundaries", strings.Join(years, ", "))
	}
}

// printRunTable writes a one-line-per-run listing.
func printRunTable(w io.Writer, k physics.Constants, runs []types.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-8s  %-22s  %8s  %8s  %s\n",
		"ID", "Created", "Kind", "Model", "tf (y)", "tau (y)", "Accepted")
	fmt.Fprintln(w, strings.Repeat("-", 124))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %-8s  %-22s  %8.3f  %8.3f  %d/%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Request.Model,
			k.Years(r.Request.Arrival-r.Request.Departure), k.Years(r.Request.ProperTime),
			r.Accepted(), len(r.Candidates))
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}
