package sim

import (
	"errors"
	"sync"

	"msclock/core"
)

// ErrConversion is the fault Waveform injects.
var ErrConversion = errors.New("simulated conversion failure")

// DefaultWavePeriodMs is the period of the synthetic signal.
const DefaultWavePeriodMs = 10_000

// Waveform is a synthetic analog input: a triangle wave over the clock's
// millisecond count, 12 bits left-aligned like the on-chip ADC. Each
// channel is phase shifted by a quarter period.
type Waveform struct {
	// Millis reads the clock, normally core.Millis.
	Millis func() uint64

	// PeriodMs is the wave period (0 = DefaultWavePeriodMs).
	PeriodMs uint64

	// FailEvery makes every n-th read fail with ErrConversion (0 = never).
	FailEvery int

	mu    sync.Mutex
	reads int
}

// Read implements core.AnalogInput.
func (w *Waveform) Read(ch core.ADCChannel) (core.ADCValue, error) {
	w.mu.Lock()
	w.reads++
	n := w.reads
	w.mu.Unlock()

	if w.FailEvery > 0 && n%w.FailEvery == 0 {
		return 0, ErrConversion
	}

	period := w.PeriodMs
	if period == 0 {
		period = DefaultWavePeriodMs
	}
	var now uint64
	if w.Millis != nil {
		now = w.Millis()
	}
	return triangle(now+uint64(ch)*period/4, period), nil
}

// Reads returns the number of conversions attempted.
func (w *Waveform) Reads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reads
}

func triangle(t, period uint64) core.ADCValue {
	half := period / 2
	if half == 0 {
		return 0
	}
	phase := t % period
	var x uint64
	if phase < half {
		x = phase * 0xFFFF / half
	} else {
		x = (period - phase) * 0xFFFF / half
	}
	if x > 0xFFFF {
		x = 0xFFFF
	}
	return core.ADCValue(x &^ 0xF)
}
