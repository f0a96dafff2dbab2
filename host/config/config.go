// Package config loads the TOML configuration shared by the host tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"

	"msclock/host/serial"
)

// Config is the host tool configuration. Zero values are replaced by
// defaults in Load.
type Config struct {
	Device        string `toml:"device,omitempty"`
	Baud          int    `toml:"baud,omitempty"`
	ReadTimeoutMs int    `toml:"read_timeout_ms,omitempty"`
	MetricsAddr   string `toml:"metrics_address,omitempty"`
	Verbose       bool   `toml:"verbose,omitempty"`

	// ExpectedIntervalMs is the firmware's sampling interval. Samples
	// arriving earlier than this are reported.
	ExpectedIntervalMs uint64 `toml:"expected_interval_ms,omitempty"`

	Sim SimConfig `toml:"sim,omitempty"`
}

// SimConfig configures ticksim.
type SimConfig struct {
	ClockHz    uint32 `toml:"clock_hz,omitempty"`
	IntervalMs uint64 `toml:"interval_ms,omitempty"`
	Channel    uint8  `toml:"channel,omitempty"`
	Samples    int    `toml:"samples,omitempty"`
	Policy     string `toml:"policy,omitempty"`
	Retries    int    `toml:"retries,omitempty"`

	// FailEvery makes every n-th simulated conversion fail (0 = never).
	FailEvery int `toml:"fail_every,omitempty"`
}

const (
	DefaultMetricsAddr = "127.0.0.1:9464"
	DefaultIntervalMs  = 1000
	DefaultSimClockHz  = 8_000_000
)

var ErrPolicy = errors.New("unknown failure policy")

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads and decodes a configuration file. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// Decode parses TOML from r. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	var c Config
	err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c)
	if err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return Config{}, fmt.Errorf("failed to decode configuration: %w\n%s", err, sme.String())
		}
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	c.applyDefaults()
	if _, err := ParsePolicy(c.Sim.Policy); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Baud == 0 {
		c.Baud = serial.DefaultBaud
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = 100
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
	if c.ExpectedIntervalMs == 0 {
		c.ExpectedIntervalMs = DefaultIntervalMs
	}
	if c.Sim.ClockHz == 0 {
		c.Sim.ClockHz = DefaultSimClockHz
	}
	if c.Sim.IntervalMs == 0 {
		c.Sim.IntervalMs = c.ExpectedIntervalMs
	}
	if c.Sim.Policy == "" {
		c.Sim.Policy = "abort"
	}
}

// Serial returns the port configuration for Device.
func (c *Config) Serial() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeoutMs,
	}
}
