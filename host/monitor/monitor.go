// Package monitor consumes the firmware's diagnostic stream: it verifies
// each line, tracks the device clock and exports what it sees as metrics.
package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"msclock/protocol"
)

// Reasons a line is counted as bad.
const (
	ReasonChecksum  = "checksum"
	ReasonKind      = "kind"
	ReasonMalformed = "malformed"
	ReasonBackwards = "backwards"
)

// maxIntervalMs bounds the interval histogram (one hour).
const maxIntervalMs = 3_600_000

// LineSource delivers diagnostic lines; *mcu.MCU implements it.
type LineSource interface {
	Stream(ctx context.Context, handle func(line string)) error
}

// Stats is a snapshot of what the monitor has seen.
type Stats struct {
	Banner     string
	Boots      uint64
	Samples    uint64
	ReadErrors uint64
	Notes      uint64
	BadLines   uint64
	Early      uint64

	LastMillis uint64
	LastRaw    uint16

	// Inter-sample intervals in device milliseconds.
	Intervals    int64
	IntervalMin  int64
	IntervalMax  int64
	IntervalMean float64
	IntervalP50  int64
	IntervalP99  int64
}

type metrics struct {
	samples      prometheus.Counter
	readErrors   prometheus.Counter
	boots        prometheus.Counter
	early        prometheus.Counter
	notes        prometheus.Counter
	badLines     *prometheus.CounterVec
	lastRaw      prometheus.Gauge
	deviceMillis prometheus.Gauge
	interval     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "msclock_samples_total",
			Help: "The total number of sample lines received",
		}),
		readErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "msclock_read_errors_total",
			Help: "The total number of analog read failures reported by the device",
		}),
		boots: f.NewCounter(prometheus.CounterOpts{
			Name: "msclock_boots_total",
			Help: "The total number of boot banners received",
		}),
		early: f.NewCounter(prometheus.CounterOpts{
			Name: "msclock_early_samples_total",
			Help: "The total number of samples that arrived before the expected interval elapsed",
		}),
		notes: f.NewCounter(prometheus.CounterOpts{
			Name: "msclock_notes_total",
			Help: "The total number of notice lines received",
		}),
		badLines: f.NewCounterVec(prometheus.CounterOpts{
			Name: "msclock_bad_lines_total",
			Help: "The total number of rejected lines by reason",
		}, []string{"reason"}),
		lastRaw: f.NewGauge(prometheus.GaugeOpts{
			Name: "msclock_last_raw",
			Help: "The most recent raw analog reading",
		}),
		deviceMillis: f.NewGauge(prometheus.GaugeOpts{
			Name: "msclock_device_millis",
			Help: "The device clock at the most recent line",
		}),
		interval: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "msclock_sample_interval_seconds",
			Help:    "Device clock time between consecutive samples",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
	}
}

// Monitor tracks one device's diagnostic stream. It is safe for concurrent
// use.
type Monitor struct {
	log      *zap.Logger
	expected uint64
	m        *metrics

	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	stats      Stats
	lastSeen   uint64
	haveSeen   bool
	lastSample uint64
	haveSample bool
}

// New creates a monitor that registers its metrics with reg. expectedMs is
// the firmware's sampling interval; 0 disables the early sample check.
func New(log *zap.Logger, reg prometheus.Registerer, expectedMs uint64) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		log:      log,
		expected: expectedMs,
		m:        newMetrics(reg),
		hist:     hdrhistogram.New(1, maxIntervalMs, 3),
	}
}

// Run feeds every line from src into the monitor until src ends.
func (mon *Monitor) Run(ctx context.Context, src LineSource) error {
	return src.Stream(ctx, mon.HandleLine)
}

// HandleLine processes one line without its terminator. Empty lines are
// ignored.
func (mon *Monitor) HandleLine(s string) {
	if s == "" {
		return
	}
	l, err := protocol.Parse(s)

	mon.mu.Lock()
	defer mon.mu.Unlock()

	if err != nil {
		mon.reject(reason(err), s, err)
		return
	}

	switch l.Kind {
	case protocol.KindBoot:
		mon.boot(l)
	case protocol.KindSample:
		if !mon.advance(l, s) {
			return
		}
		mon.sample(l)
	case protocol.KindNote:
		mon.stats.Notes++
		mon.m.notes.Inc()
		mon.log.Warn("device notice", zap.String("text", l.Text))
	case protocol.KindError:
		if !mon.advance(l, s) {
			return
		}
		mon.stats.ReadErrors++
		mon.m.readErrors.Inc()
		mon.log.Warn("device reported read failure",
			zap.Uint64("millis", l.Millis),
			zap.Uint8("channel", l.Channel),
			zap.Uint8("attempts", l.Attempts),
			zap.String("error", l.Text))
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrChecksum):
		return ReasonChecksum
	case errors.Is(err, protocol.ErrKind):
		return ReasonKind
	default:
		return ReasonMalformed
	}
}

func (mon *Monitor) reject(why, line string, err error) {
	mon.stats.BadLines++
	mon.m.badLines.WithLabelValues(why).Inc()
	mon.log.Warn("rejected diagnostic line",
		zap.String("reason", why), zap.String("line", line), zap.Error(err))
}

// boot starts a new run of the device clock.
func (mon *Monitor) boot(l protocol.Line) {
	mon.stats.Boots++
	mon.stats.Banner = l.Text
	mon.haveSeen = false
	mon.haveSample = false
	mon.m.boots.Inc()
	mon.log.Info("device booted", zap.String("banner", l.Text))
}

// advance checks that the device clock did not go backwards since the last
// line of this boot and records the new reading.
func (mon *Monitor) advance(l protocol.Line, s string) bool {
	if mon.haveSeen && l.Millis < mon.lastSeen {
		mon.reject(ReasonBackwards, s, nil)
		return false
	}
	mon.lastSeen = l.Millis
	mon.haveSeen = true
	mon.stats.LastMillis = l.Millis
	mon.m.deviceMillis.Set(float64(l.Millis))
	return true
}

func (mon *Monitor) sample(l protocol.Line) {
	mon.stats.Samples++
	mon.stats.LastRaw = l.Raw
	mon.m.samples.Inc()
	mon.m.lastRaw.Set(float64(l.Raw))

	if mon.haveSample {
		d := l.Millis - mon.lastSample
		mon.m.interval.Observe(float64(d) / 1000)
		if err := mon.hist.RecordValue(int64(d)); err != nil {
			mon.log.Debug("interval out of histogram range", zap.Uint64("ms", d))
		}
		if mon.expected != 0 && d < mon.expected {
			mon.stats.Early++
			mon.m.early.Inc()
			mon.log.Warn("sample arrived early",
				zap.Uint64("interval_ms", d), zap.Uint64("expected_ms", mon.expected))
		}
	}
	mon.lastSample = l.Millis
	mon.haveSample = true
	mon.log.Debug("sample",
		zap.Uint64("millis", l.Millis), zap.Uint8("channel", l.Channel), zap.Uint16("raw", l.Raw))
}

// Snapshot returns the current counters and interval statistics.
func (mon *Monitor) Snapshot() Stats {
	mon.mu.Lock()
	defer mon.mu.Unlock()

	s := mon.stats
	s.Intervals = mon.hist.TotalCount()
	if s.Intervals > 0 {
		s.IntervalMin = mon.hist.Min()
		s.IntervalMax = mon.hist.Max()
		s.IntervalMean = mon.hist.Mean()
		s.IntervalP50 = mon.hist.ValueAtQuantile(50)
		s.IntervalP99 = mon.hist.ValueAtQuantile(99)
	}
	return s
}
