// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunKind distinguishes a single solve from a branch search.
type RunKind string

const (
	RunSolve    RunKind = "solve"
	RunBranches RunKind = "branches"
)

// TrajectoryRequest is the caller input of a solve, in SI units.
type TrajectoryRequest struct {
	// Departure is the departure coordinate time (s).
	Departure float64 `json:"departure" yaml:"departure"`

	// Arrival is the requested arrival coordinate time (s).
	Arrival float64 `json:"arrival" yaml:"arrival"`

	// ProperTime is the desired traveler proper time (s).
	ProperTime float64 `json:"proper_time" yaml:"proper_time"`

	// Acceleration is the proper acceleration magnitude (m/s²).
	Acceleration float64 `json:"acceleration" yaml:"acceleration"`

	// Mass is the reference rest mass used for energy bookkeeping (kg).
	Mass float64 `json:"mass" yaml:"mass"`

	// Model is the trajectory model name.
	Model string `json:"model" yaml:"model"`

	// Ephemeris is the rendezvous-target orbit model name.
	Ephemeris string `json:"ephemeris" yaml:"ephemeris"`
}

// CandidateSummary is the persisted, serializable view of a solved
// trajectory. The sampled worldline itself is not stored.
type CandidateSummary struct {
	Converged       bool       `json:"converged" yaml:"converged"`
	Rejection       string     `json:"rejection,omitempty" yaml:"rejection,omitempty"`
	PeakBeta        float64    `json:"peak_beta" yaml:"peak_beta"`
	PeakGamma       float64    `json:"peak_gamma" yaml:"peak_gamma"`
	TotalProperTime float64    `json:"total_proper_time" yaml:"total_proper_time"`
	TurnaroundTime  float64    `json:"turnaround_time" yaml:"turnaround_time"`
	ArrivalSlip     float64    `json:"arrival_slip" yaml:"arrival_slip"`
	RendezvousMiss  float64    `json:"rendezvous_miss" yaml:"rendezvous_miss"`
	ResidualNorm    float64    `json:"residual_norm" yaml:"residual_norm"`
	HeadingDeg      float64    `json:"heading_deg" yaml:"heading_deg"`
	DirectionOut    [3]float64 `json:"direction_out" yaml:"direction_out"`
	PhaseBoundaries []float64  `json:"phase_boundaries" yaml:"phase_boundaries"`
	Energy          float64    `json:"energy" yaml:"energy"`
	Waypoints       int        `json:"waypoints" yaml:"waypoints"`
}

// RunRecord is one catalog entry: a request and the candidates it produced.
type RunRecord struct {
	ID         string             `json:"id" yaml:"id"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
	Kind       RunKind            `json:"kind" yaml:"kind"`
	Request    TrajectoryRequest  `json:"request" yaml:"request"`
	Candidates []CandidateSummary `json:"candidates" yaml:"candidates"`
}

// Accepted returns the number of converged candidates in the run.
func (r RunRecord) Accepted() int {
	n := 0
	for _, c := range r.Candidates {
		if c.Converged {
			n++
		}
	}
	return n
}
