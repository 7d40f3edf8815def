package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "ARTWALL_"

// parseEnv overlays Config with ARTWALL_* environment variables.
//
// A dotenv file named with -env is loaded first and must exist; without the
// flag a ./.env file is loaded when present. Variables already set in the
// process environment win over the file. Values that do not parse are
// ignored.
func parseEnv(cfg *Config) {
	if file := flagx.EnvFileFlag(); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v, ok := lookup("SERVER"); ok {
		cfg.ServerBaseURL = v
	}
	if v, ok := lookup("STATE_DSN"); ok {
		cfg.StateDSN = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if d, ok := lookupDuration("LEADERBOARD_INTERVAL"); ok {
		cfg.LeaderboardInterval = d
	}
	if d, ok := lookupDuration("ONLINE_CHECK_INTERVAL"); ok {
		cfg.OnlineCheckInterval = d
	}
	if d, ok := lookupDuration("REQUEST_TIMEOUT"); ok {
		cfg.RequestTimeout = d
	}
	if v, ok := lookup("LEADERBOARD_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LeaderboardSize = n
		}
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// lookupDuration accepts "90s" style values or a bare number of seconds.
func lookupDuration(name string) (time.Duration, bool) {
	v, ok := lookup(name)
	if !ok {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
