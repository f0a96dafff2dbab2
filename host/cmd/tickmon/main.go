// Command tickmon watches the diagnostic stream of a device running the
// msclock firmware, checks every line and serves what it sees as
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"msclock/host/config"
	"msclock/host/mcu"
	"msclock/host/monitor"
)

var (
	configFile  = flag.String("config", "", "TOML configuration file")
	device      = flag.String("device", "/dev/ttyACM0", "Serial device path, or - for stdin")
	baud        = flag.Int("baud", 0, "Baud rate (default from config, 115200)")
	metricsAddr = flag.String("metrics", "", "Metrics listen address (default from config)")
	interval    = flag.Uint64("interval", 0, "Expected sampling interval in ms (default from config)")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	log := newLogger(cfg.Verbose)
	defer log.Sync()

	reg := prometheus.NewRegistry()
	mon := monitor.New(log, reg, cfg.ExpectedIntervalMs)
	go serveMetrics(log, reg, cfg.MetricsAddr)

	mcuConn := mcu.NewMCU()
	log.Info("connecting", zap.String("device", cfg.Device), zap.Int("baud", cfg.Baud))
	if cfg.Device == "-" {
		err = mcuConn.Connect(cfg.Device)
	} else {
		err = mcuConn.ConnectWithConfig(cfg.Serial())
	}
	if err != nil {
		log.Fatal("failed to connect", zap.Error(err))
	}
	defer mcuConn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = mon.Run(ctx, mcuConn)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("stream failed", zap.Error(err))
	}

	printSummary(mon.Snapshot())
}

// applyFlags lets flags given on the command line override the file.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "baud":
			cfg.Baud = *baud
		case "metrics":
			cfg.MetricsAddr = *metricsAddr
		case "interval":
			cfg.ExpectedIntervalMs = *interval
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
	if cfg.Device == "" {
		cfg.Device = *device
	}
}

func newLogger(verbose bool) *zap.Logger {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	log, err := c.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func serveMetrics(log *zap.Logger, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info("serving metrics", zap.String("address", addr))
	err := http.ListenAndServe(addr, mux)
	log.Error("failed to serve metrics", zap.Error(err))
}

func printSummary(s monitor.Stats) {
	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("=======")
	if s.Banner != "" {
		fmt.Printf("  firmware:     %s\n", s.Banner)
	}
	fmt.Printf("  boots:        %d\n", s.Boots)
	fmt.Printf("  samples:      %d (last raw %d at %d ms)\n", s.Samples, s.LastRaw, s.LastMillis)
	fmt.Printf("  read errors:  %d\n", s.ReadErrors)
	fmt.Printf("  notes:        %d\n", s.Notes)
	fmt.Printf("  bad lines:    %d\n", s.BadLines)
	fmt.Printf("  early:        %d\n", s.Early)
	if s.Intervals > 0 {
		fmt.Printf("  interval ms:  min %d  p50 %d  p99 %d  max %d  mean %.1f\n",
			s.IntervalMin, s.IntervalP50, s.IntervalP99, s.IntervalMax, s.IntervalMean)
	}
}
