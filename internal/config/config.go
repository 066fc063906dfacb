// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// RiskThresholds are the acute:chronic ratio band boundaries. Values at
// the outer bounds classify as high risk, at the inner bounds as low.
type RiskThresholds struct {
	OuterLow  float64 `koanf:"outer_low"`
	InnerLow  float64 `koanf:"inner_low"`
	InnerHigh float64 `koanf:"inner_high"`
	OuterHigh float64 `koanf:"outer_high"`
}

// Demo controls the synthetic snapshot used by the memory backend.
type Demo struct {
	// Seed makes the generated snapshot reproducible.
	Seed int64 `koanf:"seed"`

	// Weeks is the number of schedule weeks to generate per team.
	Weeks int `koanf:"weeks"`

	// PlayersPerTeam sizes each generated roster.
	PlayersPerTeam int `koanf:"players_per_team"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// Teams lists the squad codes report requests may name.
	Teams []string `koanf:"teams"`

	// GraceWindowHours is the submission grace window after a session's
	// date for the timestamp anomaly rule. A policy value, not derived
	// from data.
	GraceWindowHours int `koanf:"grace_window_hours"`

	// Risk holds the acute:chronic band boundaries.
	Risk RiskThresholds `koanf:"risk"`

	// Exempt maps team code to the default exemption list: players
	// excluded from compliance denominators (e.g. long-term injured).
	Exempt map[string][]string `koanf:"exempt"`

	// Store selects the snapshot backend: "mongo" or "memory".
	Store string `koanf:"store"`

	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// MongoTimeoutMS bounds each collection read.
	MongoTimeoutMS int `koanf:"mongo_timeout_ms"`

	// Demo configures the memory backend's synthetic snapshot.
	Demo Demo `koanf:"demo"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8090",
		Teams:            []string{"U18", "U21"},
		GraceWindowHours: 48,
		Risk: RiskThresholds{
			OuterLow:  0.75,
			InnerLow:  0.85,
			InnerHigh: 1.25,
			OuterHigh: 1.35,
		},
		Exempt:         map[string][]string{},
		Store:          StoreMemory,
		MongoDatabase:  "player_wellness",
		MongoTimeoutMS: 10_000,
		Demo: Demo{
			Seed:           42,
			Weeks:          12,
			PlayersPerTeam: 18,
		},
	}
}
