package config

import (
	"runtime"
	"time"

	"gitlab.com/tozd/go/errors"
)

// DefaultFile is the config file looked for when none is given.
const DefaultFile = ".batchstat.yaml"

// Config holds the tool's settings. Zero values are filled in by
// ApplyDefaults; flags may override individual fields after loading.
type Config struct {
	// Workers is the fixed worker pool size.
	Workers int `json:"workers" yaml:"workers"`

	// PersistPath is where {completed, total} progress is written.
	PersistPath string `json:"persist_path" yaml:"persist_path"`

	// Recursive expands directories into nested subdirectories.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Ignore holds glob patterns for files to skip during discovery.
	Ignore []string `json:"ignore" yaml:"ignore"`

	// PaceDelayMS is the delay between job submissions, in milliseconds.
	// nil means the default; 0 disables pacing.
	PaceDelayMS *int `json:"pace_delay_ms" yaml:"pace_delay_ms"`

	// Paths are the default inputs when the command line gives none.
	Paths []string `json:"paths" yaml:"paths"`
}

const defaultPaceDelayMS = 10

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.PersistPath == "" {
		c.PersistPath = "progress.json"
	}
	if c.PaceDelayMS == nil {
		d := defaultPaceDelayMS
		c.PaceDelayMS = &d
	}
}

// PaceDelay returns the configured pacing delay as a duration.
func (c *Config) PaceDelay() time.Duration {
	if c.PaceDelayMS == nil {
		return defaultPaceDelayMS * time.Millisecond
	}
	return time.Duration(*c.PaceDelayMS) * time.Millisecond
}

// Validate checks the config for values the processor cannot run with.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PaceDelayMS != nil && *c.PaceDelayMS < 0 {
		return errors.Errorf("pace_delay_ms must not be negative, got %d", *c.PaceDelayMS)
	}
	if c.PersistPath == "" {
		return errors.New("persist_path must not be empty")
	}
	return nil
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
