// Package config loads diffanalysis settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// #region types

// Config holds everything a comparison run needs besides the commit list.
type Config struct {
	Library  string        `yaml:"library"`
	DataDir  string        `yaml:"data_dir"`
	Reps     int           `yaml:"reps"`
	Diagnose bool          `yaml:"diagnose"`
	DiffBin  string        `yaml:"diff_bin"`
	Timeout  time.Duration `yaml:"timeout"`
	// DB is the sqlite result store. Empty disables persistence.
	DB     string    `yaml:"db"`
	Output string    `yaml:"output"`
	Format string    `yaml:"format"`
	Log    LogConfig `yaml:"log"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// #endregion types

// #region load

// Default returns the built-in settings with environment overrides applied.
func Default() Config {
	cfg := Config{
		DataDir:  ".",
		DiffBin:  "diff",
		Timeout:  time.Minute,
		Format:   FormatJSON,
		Log:      LogConfig{Level: "info", Format: "auto"},
	}
	cfg.ApplyEnv()
	return cfg
}

// Load reads path over the defaults, then re-applies the environment so it
// wins over the file. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides fields from DIFFANALYSIS_* variables. Malformed values
// are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DIFFANALYSIS_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DIFFANALYSIS_REPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reps = n
		}
	}
	if v := os.Getenv("DIFFANALYSIS_TIMEOUT"); v != "" {
		if d, ok := parseTimeout(v); ok {
			c.Timeout = d
		}
	}
	if v := os.Getenv("DIFFANALYSIS_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("DIFFANALYSIS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// parseTimeout accepts a Go duration or a plain number of seconds.
func parseTimeout(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d, true
	}
	if sec, err := strconv.Atoi(v); err == nil && sec >= 0 {
		return time.Duration(sec) * time.Second, true
	}
	return 0, false
}

// #endregion load

// #region validate

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Library) == "" {
		errs = append(errs, errors.New("library is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout %s is negative", c.Timeout))
	}
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("format %q: want json or yaml", c.Format))
	}
	return errors.Join(errs...)
}

// #endregion validate
