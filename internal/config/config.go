// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Rating parameters flow into the stages as explicit option values,
//   never as package-level globals.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration for one pipeline run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DatabaseURL points at the Postgres store holding game records and
	// receiving the rating output. Required unless DryRun is set.
	DatabaseURL string `koanf:"database_url"`

	// Season restricts the run to one season label, e.g. "2025-26".
	// Empty recomputes every season present in the store.
	Season string `koanf:"season"`

	// CoefficientsPath locates the trained impact-model artifact (JSON).
	CoefficientsPath string `koanf:"coefficients_path"`

	// MetricsAddr optionally exposes /metrics while a run is in flight,
	// e.g. ":9090". Empty disables the listener.
	MetricsAddr string `koanf:"metrics_addr"`

	// DryRun computes everything against an in-memory sink and skips the
	// database entirely.
	DryRun bool `koanf:"dry_run"`

	// SeasonWorkers bounds how many season partitions compute in parallel.
	SeasonWorkers int `koanf:"season_workers"`

	// Opponent adjustment solver parameters.
	HalfLifeDays       float64 `koanf:"half_life_days"`
	WeightFloor        float64 `koanf:"weight_floor"`
	Iterations         int     `koanf:"iterations"`
	MinGames           int     `koanf:"min_games"`
	MinGamesRegression float64 `koanf:"min_games_regression"`
	LeagueAvgEff       float64 `koanf:"league_avg_efficiency"`

	// Season aggregation parameters.
	ReplacementLevel float64 `koanf:"replacement_level"`
	FullSeasonGames  float64 `koanf:"full_season_games"`

	// Possession normalization parameters.
	PossessionFloor float64 `koanf:"possession_floor"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		SeasonWorkers: 4,

		HalfLifeDays:       30,
		WeightFloor:        0.10,
		Iterations:         5,
		MinGames:           5,
		MinGamesRegression: 0.5,
		LeagueAvgEff:       110.0,

		ReplacementLevel: -2.0,
		FullSeasonGames:  82,

		PossessionFloor: 1,
	}
}
