package config

import "time"

// Config holds runtime settings for the artwall CLI.
//
// Fields:
//   - ServerBaseURL: root of the gallery API, e.g. http://127.0.0.1:8000.
//   - StateDSN: local state location; a SQLite path or a redis:// URL.
//   - LeaderboardInterval: period of the leaderboard recompute tick.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - RequestTimeout: per-request HTTP timeout.
//   - LeaderboardSize: number of ranked rows.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerBaseURL       string
	StateDSN            string
	LeaderboardInterval time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LeaderboardSize     int
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.StateDSN = "artwall.db"
	c.LeaderboardInterval = 5 * time.Minute
	c.OnlineCheckInterval = 30 * time.Second
	c.RequestTimeout = 15 * time.Second
	c.LeaderboardSize = 10
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
