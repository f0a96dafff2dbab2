package sim

import (
	"errors"
	"testing"

	"msclock/core"
)

func TestTriangle(t *testing.T) {
	testCases := []struct {
		t, period uint64
		want      core.ADCValue
	}{
		{0, 1000, 0},
		{250, 1000, 0x7FF0},
		{500, 1000, 0xFFF0},
		{750, 1000, 0x7FF0},
		{1000, 1000, 0},
		{1, 1, 0},
	}

	for _, tc := range testCases {
		if got := triangle(tc.t, tc.period); got != tc.want {
			t.Errorf("triangle(%d, %d) = %#x, want %#x", tc.t, tc.period, got, tc.want)
		}
	}
}

func TestWaveformRead(t *testing.T) {
	now := uint64(0)
	w := &Waveform{Millis: func() uint64 { return now }, PeriodMs: 1000}

	v0, err := w.Read(0)
	if err != nil || v0 != 0 {
		t.Errorf("Read(0) at 0 ms = %#x, %v; want 0", v0, err)
	}
	// Channel 2 is half a period ahead.
	v2, _ := w.Read(2)
	if v2 != 0xFFF0 {
		t.Errorf("Read(2) at 0 ms = %#x, want 0xfff0", v2)
	}
	now = 500
	if v, _ := w.Read(0); v != 0xFFF0 {
		t.Errorf("Read(0) at 500 ms = %#x, want 0xfff0", v)
	}
	if v, _ := w.Read(0); v&0xF != 0 {
		t.Errorf("reading %#x is not left-aligned 12-bit", v)
	}
}

func TestWaveformFaults(t *testing.T) {
	w := &Waveform{FailEvery: 3}
	var failed []int
	for i := 1; i <= 9; i++ {
		if _, err := w.Read(0); err != nil {
			if !errors.Is(err, ErrConversion) {
				t.Fatalf("read %d: unexpected error %v", i, err)
			}
			failed = append(failed, i)
		}
	}
	if len(failed) != 3 || failed[0] != 3 || failed[1] != 6 || failed[2] != 9 {
		t.Errorf("failed reads = %v, want [3 6 9]", failed)
	}
	if w.Reads() != 9 {
		t.Errorf("Reads() = %d, want 9", w.Reads())
	}
}

func TestWaveformDrivesSampler(t *testing.T) {
	// Interval 0 never sleeps, so the clock need not run.
	var clock core.ClockState
	w := &Waveform{Millis: clock.Millis, PeriodMs: 100, FailEvery: 2}
	s := core.NewSampler(&clock, w, core.SamplerConfig{Policy: core.PolicySkip})
	for i := 0; i < 4; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}
	if s.Samples != 2 || s.Failures != 2 {
		t.Errorf("Samples=%d Failures=%d, want 2 and 2", s.Samples, s.Failures)
	}
}
