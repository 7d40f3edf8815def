package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/artwall/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the gallery API
//	-d string   local state DSN (SQLite path or redis:// URL)
//	-l int      leaderboard recompute interval in seconds
//	-i int      online check interval in seconds
//	-t int      request timeout in seconds
//	-v string   log level
//
// Only the flags above are taken from os.Args (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-l", "-i", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the gallery API")
	fs.StringVar(&cfg.StateDSN, "d", cfg.StateDSN, "local state DSN (SQLite file or redis:// URL)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level (debug, info, warn, error)")
	leaderboardInterval := fs.Int("l", int(cfg.LeaderboardInterval.Seconds()), "leaderboard recompute interval (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LeaderboardInterval = time.Duration(*leaderboardInterval) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
