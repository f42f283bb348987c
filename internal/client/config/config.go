package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/logging"
)

// Token store backends.
const (
	TokenStoreSQLite = "sqlite"
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
)

// Config holds runtime settings for the prodauth CLI.
//
// Fields:
//   - ServerURL: API root of the backend, e.g. http://127.0.0.1:8000/api.
//   - RequestTimeout: upper bound for a single HTTP request.
//   - SessionCheckInterval: how often the background watcher refreshes an
//     expiring token and the scan statistics.
//   - TokenStore: where the access token is persisted (sqlite, file, memory).
//   - DatabasePath / TokenFile: locations for the sqlite and file stores.
//   - LabelDir: where downloaded certificate PDFs are written.
//   - LogLevel / LogJSON: diagnostics output.
type Config struct {
	ServerURL            string
	RequestTimeout       time.Duration
	SessionCheckInterval time.Duration
	TokenStore           string
	DatabasePath         string
	TokenFile            string
	LabelDir             string
	LogLevel             string
	LogJSON              bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 15 * time.Second
	c.SessionCheckInterval = 30 * time.Second
	c.TokenStore = TokenStoreSQLite
	c.DatabasePath = "prodauth.db"
	c.TokenFile = ".prodauth-token.json"
	c.LabelDir = "labels"
	c.LogLevel = "warn"
	c.LogJSON = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports every unusable value at once.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.ServerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server url %q must be an absolute http(s) url", c.ServerURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.SessionCheckInterval <= 0 {
		errs = append(errs, errors.New("session check interval must be positive"))
	}

	switch c.TokenStore {
	case TokenStoreSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			errs = append(errs, errors.New("database path is required for the sqlite token store"))
		}
	case TokenStoreFile:
		if strings.TrimSpace(c.TokenFile) == "" {
			errs = append(errs, errors.New("token file is required for the file token store"))
		}
	case TokenStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown token store %q", c.TokenStore))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
