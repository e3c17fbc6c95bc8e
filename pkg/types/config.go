package types

// PhysicsConfig holds the physical constants used by every stage. Values
// are SI by default; tests and alternate unit systems override them.
type PhysicsConfig struct {
	// SpeedOfLight is c in m/s.
	SpeedOfLight float64 `json:"speed_of_light" yaml:"speed_of_light" mapstructure:"speed_of_light"`

	// StandardGravity is 1 g in m/s².
	StandardGravity float64 `json:"standard_gravity" yaml:"standard_gravity" mapstructure:"standard_gravity"`

	// Year is the Julian year in seconds.
	Year float64 `json:"year" yaml:"year" mapstructure:"year"`

	// AU is the astronomical unit in metres.
	AU float64 `json:"au" yaml:"au" mapstructure:"au"`
}

// SolverConfig holds the boundary-value solver and branch search settings.
type SolverConfig struct {
	// MaxIterations caps Levenberg–Marquardt iterations per attempt (default 200).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// Tolerance is the residual norm at which an attempt counts as a root (default 1e-12).
	Tolerance float64 `json:"tolerance" yaml:"tolerance" mapstructure:"tolerance"`

	// StepTolerance is the scaled step size at which an attempt is stationary (default 1e-12).
	StepTolerance float64 `json:"step_tolerance" yaml:"step_tolerance" mapstructure:"step_tolerance"`

	// CoarseSamples is the per-phase sample count used while root-finding (default 3).
	CoarseSamples int `json:"coarse_samples" yaml:"coarse_samples" mapstructure:"coarse_samples"`

	// FineSamples is the per-phase sample count of the accepted worldline (default 500).
	FineSamples int `json:"fine_samples" yaml:"fine_samples" mapstructure:"fine_samples"`

	// ProperTimeRTol is the relative proper-time tolerance of a single solve (default 1e-4).
	ProperTimeRTol float64 `json:"proper_time_rtol" yaml:"proper_time_rtol" mapstructure:"proper_time_rtol"`

	// SearchProperTimeRTol is the relative proper-time tolerance during branch search (default 1e-3).
	SearchProperTimeRTol float64 `json:"search_proper_time_rtol" yaml:"search_proper_time_rtol" mapstructure:"search_proper_time_rtol"`

	// RendezvousTolerance is the absolute rendezvous tolerance in metres (default 1).
	RendezvousTolerance float64 `json:"rendezvous_tolerance" yaml:"rendezvous_tolerance" mapstructure:"rendezvous_tolerance"`

	// RendezvousRelTolerance scales the rendezvous tolerance with the
	// largest excursion from the departure point. The default, 64 ulp of
	// relative precision (2⁻⁴⁶ ≈ 1.4e-14), is about 500 m at 4 ly.
	RendezvousRelTolerance float64 `json:"rendezvous_rel_tolerance" yaml:"rendezvous_rel_tolerance" mapstructure:"rendezvous_rel_tolerance"`

	// CoordinateTimeWeight weights the arrival-time residual in the fit (default 1e-3).
	CoordinateTimeWeight float64 `json:"coordinate_time_weight" yaml:"coordinate_time_weight" mapstructure:"coordinate_time_weight"`

	// ReferenceDuration normalizes time residuals in seconds. Zero uses one year.
	ReferenceDuration float64 `json:"reference_duration" yaml:"reference_duration" mapstructure:"reference_duration"`

	// MinHalfDuration rejects branch candidates with a shorter burn, in seconds (default 1).
	MinHalfDuration float64 `json:"min_half_duration" yaml:"min_half_duration" mapstructure:"min_half_duration"`

	// DuplicateDot is the |û₁·û₂| above which two branches are the same (default 0.995).
	DuplicateDot float64 `json:"duplicate_dot" yaml:"duplicate_dot" mapstructure:"duplicate_dot"`

	// Workers bounds concurrent solver calls in branch search. Zero uses GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Ephemeris model names accepted by EphemerisConfig.Model.
const (
	EphemerisCircular   = "circular"
	EphemerisElliptical = "elliptical"
)

// EphemerisConfig selects and parameterizes the rendezvous-target orbit.
type EphemerisConfig struct {
	// Model is "circular" or "elliptical".
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Radius is the circular radius or elliptical semi-major axis in metres.
	// Zero uses one AU.
	Radius float64 `json:"radius" yaml:"radius" mapstructure:"radius"`

	// Eccentricity applies to the elliptical model (default 0.0167).
	Eccentricity float64 `json:"eccentricity" yaml:"eccentricity" mapstructure:"eccentricity"`

	// Period is the orbital period in seconds. Zero uses one year.
	Period float64 `json:"period" yaml:"period" mapstructure:"period"`

	// Phase is the orbital angle at t = 0 in radians.
	Phase float64 `json:"phase" yaml:"phase" mapstructure:"phase"`
}

// CatalogConfig holds settings for the solved-run catalog.
type CatalogConfig struct {
	// Dir is the directory holding the catalog database (default "runs").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// EngineConfig groups all configuration sections.
type EngineConfig struct {
	Physics   PhysicsConfig   `json:"physics" yaml:"physics" mapstructure:"physics"`
	Solver    SolverConfig    `json:"solver" yaml:"solver" mapstructure:"solver"`
	Ephemeris EphemerisConfig `json:"ephemeris" yaml:"ephemeris" mapstructure:"ephemeris"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// DefaultEngineConfig returns the SI defaults for every section.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Physics: PhysicsConfig{
			SpeedOfLight:    299_792_458,
			StandardGravity: 9.80665,
			Year:            365.25 * 24 * 3600,
			AU:              1.496e11,
		},
		Solver: SolverConfig{
			MaxIterations:          200,
			Tolerance:              1e-12,
			StepTolerance:          1e-12,
			CoarseSamples:          3,
			FineSamples:            500,
			ProperTimeRTol:         1e-4,
			SearchProperTimeRTol:   1e-3,
			RendezvousTolerance:    1,
			RendezvousRelTolerance: 0x1p-46,
			CoordinateTimeWeight:   1e-3,
			MinHalfDuration:        1,
			DuplicateDot:           0.995,
		},
		Ephemeris: EphemerisConfig{
			Model:        EphemerisCircular,
			Eccentricity: 0.0167,
		},
		Catalog: CatalogConfig{
			Dir:        "runs",
			MaxResults: 20,
		},
	}
}
