// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pdiddy/marte/internal/kinematics"
	"github.com/pdiddy/marte/internal/physics"
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Integrate one acceleration phase from rest",
	Long: `Phase integrates a single straight-line burn of --duration proper time
starting at rest, and prints the sampled worldline.

With --profile step the burn holds --accel-g and is evaluated in closed
form. The linear_ramp and s_curve profiles ramp up over --ramp and down
again before the end of the phase, and are integrated numerically.`,
	RunE: runPhase,
}

// phaseSample is one row of phase output, in years, light years, and c.
type phaseSample struct {
	CoordTime  float64 `json:"coord_time_y" yaml:"coord_time_y"`
	ProperTime float64 `json:"proper_time_y" yaml:"proper_time_y"`
	Distance   float64 `json:"distance_ly" yaml:"distance_ly"`
	Beta       float64 `json:"beta" yaml:"beta"`
}

type phaseOutput struct {
	Profile  kinematics.Profile `json:"profile" yaml:"profile"`
	Peak     float64            `json:"peak" yaml:"peak"`
	Ramp     float64            `json:"ramp" yaml:"ramp"`
	MaxJerk  *float64           `json:"max_jerk,omitempty" yaml:"max_jerk,omitempty"` // nil when unbounded
	Rapidity float64            `json:"rapidity" yaml:"rapidity"`
	Samples  []phaseSample      `json:"samples" yaml:"samples"`
}

func runPhase(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	k := physics.FromConfig(cfg.Physics)

	profileName, _ := cmd.Flags().GetString("profile")
	profile, err := kinematics.ParseProfile(profileName)
	if err != nil {
		return err
	}
	duration, err := timeFlag(cmd, "duration", k.Year)
	if err != nil {
		return err
	}
	ramp, err := timeFlag(cmd, "ramp", k.Year)
	if err != nil {
		return err
	}
	accelG, _ := cmd.Flags().GetFloat64("accel-g")
	samples, _ := cmd.Flags().GetInt("samples")

	peak := accelG * k.StandardGravity
	phase := kinematics.Phase{Accel: peak, Duration: duration, Direction: r3.Vec{X: 1}}
	if profile != kinematics.ProfileStep {
		phase.Schedule = &kinematics.Schedule{Profile: profile, Peak: peak, Ramp: ramp}
	}

	points, end, err := kinematics.NewIntegrator(k).Integrate(phase, kinematics.State{}, samples)
	if err != nil {
		return err
	}

	out := phaseOutput{
		Profile:  profile,
		Peak:     peak,
		Ramp:     ramp,
		Rapidity: end.Rapidity,
		Samples:  make([]phaseSample, len(points)),
	}
	if jerk := kinematics.MaxJerk(profile, peak, ramp); !math.IsInf(jerk, 0) {
		out.MaxJerk = &jerk
	}
	for i, wp := range points {
		out.Samples[i] = phaseSample{
			CoordTime:  k.Years(wp.CoordTime),
			ProperTime: k.Years(wp.ProperTime),
			Distance:   r3.Norm(wp.Position) / k.LightYear(),
			Beta:       wp.Beta,
		}
	}

	w := cmd.OutOrStdout()
	if format != "table" {
		return encode(w, format, out)
	}

	jerk := "unbounded"
	if out.MaxJerk != nil {
		jerk = fmt.Sprintf("%.4g m/s³", *out.MaxJerk)
	}
	fmt.Fprintf(w, "%s phase, peak %.4g m/s², max jerk %s, final rapidity %.6f\n\n",
		out.Profile, out.Peak, jerk, out.Rapidity)
	fmt.Fprintf(w, "%12s  %12s  %14s  %10s\n", "t (y)", "tau (y)", "distance (ly)", "beta")
	for _, s := range out.Samples {
		fmt.Fprintf(w, "%12.6f  %12.6f  %14.6f  %10.6f\n", s.CoordTime, s.ProperTime, s.Distance, s.Beta)
	}
	return nil
}

func init() {
	addOutputFlags(phaseCmd)
	phaseCmd.Flags().String("profile", string(kinematics.ProfileStep), "acceleration profile: step, linear_ramp, or s_curve")
	phaseCmd.Flags().Float64("accel-g", 1, "peak proper acceleration in standard gravities")
	phaseCmd.Flags().String("duration", "1y", "proper-time length of the phase")
	phaseCmd.Flags().String("ramp", "0", "ramp length for linear_ramp and s_curve")
	phaseCmd.Flags().Int("samples", 11, "number of samples, including both ends")

	rootCmd.AddCommand(phaseCmd)
}
