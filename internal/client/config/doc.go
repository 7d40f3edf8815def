// Package config loads runtime configuration for the artwall CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. ARTWALL_* environment variables, optionally from a dotenv file
//     (see parseEnv): ARTWALL_SERVER, ARTWALL_STATE_DSN,
//     ARTWALL_LEADERBOARD_INTERVAL, ARTWALL_ONLINE_CHECK_INTERVAL,
//     ARTWALL_REQUEST_TIMEOUT, ARTWALL_LEADERBOARD_SIZE, ARTWALL_LOG_LEVEL.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the gallery API
//	-d string   local state DSN
//	-l int      leaderboard interval (seconds)
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-v string   log level
//	-env path   dotenv file
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "state_dsn": "redis://localhost:6379/0?namespace=kiosk",
//	  "leaderboard_interval": "5m",
//	  "online_check_interval": "30s",
//	  "request_timeout": "15s",
//	  "leaderboard_size": 10,
//	  "log_level": "debug"
//	}
package config
