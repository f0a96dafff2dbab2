// Command ticksim runs the clock core and sampling loop on the host. An OS
// timer plays the tick interrupt, a synthetic waveform plays the ADC and the
// diagnostic lines go to stdout, so the output can be piped into
// "tickmon -device -".
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"msclock/core"
	"msclock/host/config"
	"msclock/host/sim"
	"msclock/protocol"
)

var (
	configFile = flag.String("config", "", "TOML configuration file")
	clockHz    = flag.Uint("clock", 0, "Simulated core clock in Hz (default 8 MHz)")
	intervalMs = flag.Uint64("interval", 0, "Sampling interval in ms (default from config)")
	channel    = flag.Uint("channel", 0, "Analog channel")
	samples    = flag.Int("samples", 0, "Stop after this many loop iterations (0 = run until a read aborts)")
	policy     = flag.String("policy", "", "Read failure policy: abort, skip or retry")
	retries    = flag.Int("retries", 0, "Extra attempts under the retry policy")
	failEvery  = flag.Int("fail-every", 0, "Fail every n-th conversion (0 = never)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	// Logs go to stderr; stdout carries the diagnostic stream.
	log := newLogger(cfg.Verbose)
	defer log.Sync()

	sc, err := cfg.Sim.SamplerConfig()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	core.SetDebugWriter(func(line []byte) {
		os.Stdout.Write(line)
	})
	core.EmitBoot("msclock " + protocol.Version + " (sim)")

	timer := sim.NewTimer(cfg.Sim.ClockHz, core.OnTimerInterrupt)
	if err := core.Start(timer, cfg.Sim.ClockHz); err != nil {
		log.Fatal("failed to start tick timer", zap.Uint32("clock_hz", cfg.Sim.ClockHz), zap.Error(err))
	}
	defer timer.Stop()
	log.Info("tick timer running", zap.Duration("period", timer.Period()))

	adc := &sim.Waveform{Millis: core.Millis, FailEvery: cfg.Sim.FailEvery}
	sampler := core.NewSampler(nil, adc, sc)
	sampler.OnSample = func(ms uint64, v core.ADCValue) {
		log.Debug("sample", zap.Uint64("millis", ms), zap.Uint16("raw", uint16(v)))
	}

	err = run(sampler, cfg.Sim.Samples)
	var serr *core.SampleError
	if errors.As(err, &serr) {
		log.Error("sampling aborted",
			zap.Uint8("channel", uint8(serr.Channel)),
			zap.Uint64("millis", serr.At),
			zap.Int("attempts", serr.Attempts),
			zap.Error(serr.Err))
	} else if err != nil {
		log.Error("sampling failed", zap.Error(err))
	}

	log.Info("done",
		zap.Uint32("samples", sampler.Samples),
		zap.Uint32("failures", sampler.Failures),
		zap.Uint64("ticks", timer.Fired()),
		zap.Uint64("millis", core.Millis()))
	if err != nil {
		log.Sync()
		os.Exit(1)
	}
}

// run steps the sampler n times, or until it fails when n is 0.
func run(s *core.Sampler, n int) error {
	if n <= 0 {
		return s.Run()
	}
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "clock":
			cfg.Sim.ClockHz = uint32(*clockHz)
		case "interval":
			cfg.Sim.IntervalMs = *intervalMs
		case "channel":
			cfg.Sim.Channel = uint8(*channel)
		case "samples":
			cfg.Sim.Samples = *samples
		case "policy":
			cfg.Sim.Policy = *policy
		case "retries":
			cfg.Sim.Retries = *retries
		case "fail-every":
			cfg.Sim.FailEvery = *failEvery
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
}

func newLogger(verbose bool) *zap.Logger {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.OutputPaths = []string{"stderr"}
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := c.Build()
	if err != nil {
		panic(err)
	}
	return log
}
