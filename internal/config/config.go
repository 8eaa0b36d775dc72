// Package config centralizes every configurable value for the collection
// pipeline. Values come from an optional YAML file with environment
// overrides for secrets; Validate runs before any network call so a bad
// configuration fails fast.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the collectors, store and API server
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	NPS struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		TimeoutSeconds float64 `yaml:"timeout_seconds"`
		DelaySeconds   float64 `yaml:"delay_seconds"`
	} `yaml:"nps"`

	Overpass struct {
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds float64 `yaml:"timeout_seconds"`
		DelaySeconds   float64 `yaml:"delay_seconds"`
	} `yaml:"overpass"`

	USGS struct {
		BaseURL         string  `yaml:"base_url"`
		TimeoutSeconds  float64 `yaml:"timeout_seconds"`
		DelaySeconds    float64 `yaml:"delay_seconds"`
		SampleIntervalM float64 `yaml:"sample_interval_m"`
	} `yaml:"usgs"`

	Collection struct {
		ForceRefresh  bool     `yaml:"force_refresh"`
		Parks         []string `yaml:"parks"` // subset filter; empty means all
		VisitLogPath  string   `yaml:"visit_log_path"`
		ProgressEvery int      `yaml:"progress_every"`
	} `yaml:"collection"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.Database.Path = "data/nps-hikes.db"
	cfg.NPS.TimeoutSeconds = 30
	cfg.NPS.DelaySeconds = 1
	cfg.Overpass.TimeoutSeconds = 120
	cfg.Overpass.DelaySeconds = 1
	cfg.USGS.TimeoutSeconds = 10
	cfg.USGS.DelaySeconds = 1
	cfg.USGS.SampleIntervalM = 50
	cfg.Collection.VisitLogPath = "raw_data/park_visit_log.csv"
	cfg.Collection.ProgressEvery = 10
	cfg.Server.Addr = ":8080"
	return cfg
}

// Load reads configuration from an optional YAML file on top of the
// defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Secrets come from the environment, never the file on disk
	if key := os.Getenv("NPS_API_KEY"); key != "" {
		cfg.NPS.APIKey = key
	}

	return cfg, nil
}

// Validate checks the configuration before any work begins
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.USGS.SampleIntervalM <= 0 {
		return fmt.Errorf("sample interval must be positive, got %f", c.USGS.SampleIntervalM)
	}
	if c.NPS.DelaySeconds < 0 || c.Overpass.DelaySeconds < 0 || c.USGS.DelaySeconds < 0 {
		return fmt.Errorf("inter-call delays must not be negative")
	}
	if c.NPS.TimeoutSeconds <= 0 || c.Overpass.TimeoutSeconds <= 0 || c.USGS.TimeoutSeconds <= 0 {
		return fmt.Errorf("request timeouts must be positive")
	}
	for _, code := range c.Collection.Parks {
		if len(code) != 4 || code != strings.ToLower(code) {
			return fmt.Errorf("park code %q must be a 4-character lowercase code", code)
		}
	}
	if c.Collection.ProgressEvery <= 0 {
		return fmt.Errorf("progress interval must be positive")
	}
	return nil
}

// ValidateForNPS additionally requires the API key, needed only by the
// park collection stage.
func (c *Config) ValidateForNPS() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.NPS.APIKey == "" {
		return fmt.Errorf("NPS API key is required: set NPS_API_KEY or nps.api_key")
	}
	return nil
}

// NPSTimeout returns the NPS request timeout as a duration
func (c *Config) NPSTimeout() time.Duration { return secs(c.NPS.TimeoutSeconds) }

// NPSDelay returns the delay between NPS requests
func (c *Config) NPSDelay() time.Duration { return secs(c.NPS.DelaySeconds) }

// OverpassTimeout returns the Overpass request timeout
func (c *Config) OverpassTimeout() time.Duration { return secs(c.Overpass.TimeoutSeconds) }

// OverpassDelay returns the delay between Overpass requests
func (c *Config) OverpassDelay() time.Duration { return secs(c.Overpass.DelaySeconds) }

// USGSTimeout returns the EPQS request timeout
func (c *Config) USGSTimeout() time.Duration { return secs(c.USGS.TimeoutSeconds) }

// USGSDelay returns the delay between EPQS requests
func (c *Config) USGSDelay() time.Duration { return secs(c.USGS.DelaySeconds) }

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
