// Package config loads the YAML document describing a receiver instance:
// sample rate, NAC allow-list, metrics bind address, and raw-stream
// recording options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const minSampleRate = 2 * 4800

// Config is the top-level receiver configuration document.
type Config struct {
	// SampleRate is the input sample rate in Hz. Must exceed 2*4800 (the
	// Nyquist rate for 4800-baud C4FM symbols).
	SampleRate float64 `yaml:"sample_rate"`

	// NACAllowList restricts processing to these NACs when non-empty.
	// Messages with an unlisted NAC are still decoded but can be filtered
	// downstream by a Sink; an empty list accepts every NAC.
	NACAllowList []int `yaml:"nac_allow_list"`

	Metrics   MetricsConfig   `yaml:"metrics"`
	RawStream RawStreamConfig `yaml:"raw_stream"`
}

// MetricsConfig controls the Prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BindAddr   string `yaml:"bind_addr"`
	MetricPath string `yaml:"metric_path"`
}

// RawStreamConfig controls the optional raw dibit-stream fan-out.
type RawStreamConfig struct {
	// WebsocketAddr, if non-empty, serves a live websocket broadcast of the
	// byte-aligned raw dibit stream at this address.
	WebsocketAddr string `yaml:"websocket_addr"`

	// RecordPath, if non-empty, writes the same stream to a zstd-compressed
	// file at this path.
	RecordPath string `yaml:"record_path"`
}

// Default returns a Config with the receiver's baseline settings: a
// 48 kHz sample rate and metrics disabled.
func Default() Config {
	return Config{
		SampleRate: 48000,
		Metrics: MetricsConfig{
			Enabled:    false,
			BindAddr:   ":9025",
			MetricPath: "/metrics",
		},
	}
}

// Load reads and parses a YAML config document from path, validating it
// before returning. An invalid sample rate is a load-time error: it is
// never silently clamped to a workable value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants Load and any manually constructed Config
// must satisfy before being handed to a Processor.
func (c Config) Validate() error {
	if c.SampleRate <= minSampleRate {
		return fmt.Errorf("config: sample_rate %.2f must exceed %d", c.SampleRate, minSampleRate)
	}
	return nil
}

// Allows reports whether nac passes the NAC allow-list filter (always true
// when the list is empty).
func (c Config) Allows(nac int) bool {
	if len(c.NACAllowList) == 0 {
		return true
	}
	for _, n := range c.NACAllowList {
		if n == nac {
			return true
		}
	}
	return false
}
