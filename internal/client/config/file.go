package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/prodauth/internal/flagx"
	"github.com/dmitrijs2005/prodauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files. It relies
// on timex.Duration so intervals can be written as "15s" or as integer
// nanoseconds. Empty fields keep the value from the earlier stage.
type FileConfig struct {
	ServerURL            string         `json:"server_url" yaml:"server_url"`
	RequestTimeout       timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SessionCheckInterval timex.Duration `json:"session_check_interval" yaml:"session_check_interval"`
	TokenStore           string         `json:"token_store" yaml:"token_store"`
	DatabasePath         string         `json:"database_path" yaml:"database_path"`
	TokenFile            string         `json:"token_file" yaml:"token_file"`
	LabelDir             string         `json:"label_dir" yaml:"label_dir"`
	LogLevel             string         `json:"log_level" yaml:"log_level"`
	LogJSON              *bool          `json:"log_json" yaml:"log_json"`
}

// parseFile overlays Config with values loaded from the file named by -c,
// -config or $PRODAUTH_CONFIG. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON. Panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.TokenStore, fc.TokenStore)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.TokenFile, fc.TokenFile)
	setString(&cfg.LabelDir, fc.LabelDir)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SessionCheckInterval.Duration != 0 {
		cfg.SessionCheckInterval = fc.SessionCheckInterval.Duration
	}
	if fc.LogJSON != nil {
		cfg.LogJSON = *fc.LogJSON
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
