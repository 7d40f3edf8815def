package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/artwall/internal/flagx"
	"github.com/dmitrijs2005/artwall/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "5m" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	StateDSN            string         `json:"state_dsn"`
	LeaderboardInterval timex.Duration `json:"leaderboard_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LeaderboardSize     int            `json:"leaderboard_size"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the fields present in the JSON file named
// by -c or -config. Absent or zero fields keep their current value. Read or
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.StateDSN != "" {
		cfg.StateDSN = jc.StateDSN
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LeaderboardSize > 0 {
		cfg.LeaderboardSize = jc.LeaderboardSize
	}
	setDuration(&cfg.LeaderboardInterval, jc.LeaderboardInterval)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
}

func setDuration(dst *time.Duration, d timex.Duration) {
	if d.Duration > 0 {
		*dst = d.Duration
	}
}
