package core

import "strconv"

// fakeTimer records the setup calls made on it.
type fakeTimer struct {
	maxReload uint32
	calls     []string
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{maxReload: 0xFFFFFF} // 24-bit, like SysTick
}

func (f *fakeTimer) Configure(src ClockSource, reload uint32) {
	f.calls = append(f.calls, "configure "+strconv.Itoa(int(src))+" "+strconv.FormatUint(uint64(reload), 10))
}
func (f *fakeTimer) Reset()            { f.calls = append(f.calls, "reset") }
func (f *fakeTimer) EnableCounting()   { f.calls = append(f.calls, "counting") }
func (f *fakeTimer) EnableInterrupt()  { f.calls = append(f.calls, "interrupt") }
func (f *fakeTimer) MaxReload() uint32 { return f.maxReload }

// startedClock returns a clock whose counter reads start.
func startedClock(start uint64) *ClockState {
	s := &ClockState{}
	s.Install(&TickCounter{timer: newFakeTimer(), elapsed: start})
	return s
}
