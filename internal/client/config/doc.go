// Package config loads runtime configuration for the prodauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c/-config or $PRODAUTH_CONFIG.
//     Files ending in .yaml/.yml are YAML, anything else is JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API root url of the backend
//	-t int      request timeout (seconds)
//	-i int      session check interval (seconds)
//	-d string   sqlite database path
//	-l string   log level
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://auth.example.com/api",
//	  "request_timeout": "10s",
//	  "session_check_interval": "1m",
//	  "token_store": "file",
//	  "token_file": "/home/me/.prodauth/token.json",
//	  "label_dir": "labels",
//	  "log_level": "debug",
//	  "log_json": true
//	}
//
// Invalid files and flag values panic while loading; (*Config).Validate
// rejects values that parse but cannot be used.
package config
