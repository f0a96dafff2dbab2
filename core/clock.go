package core

// Millis returns the milliseconds counted since the clock was started, or 0
// before that.
func (s *ClockState) Millis() uint64 {
	var ms uint64
	s.WithRef(func(c *TickCounter) {
		ms = c.Elapsed()
	})
	return ms
}

// maxSleepMs is the longest wait Reached can tell apart from a deadline
// already passed.
const maxSleepMs = 1<<63 - 1

// SleepMs spins until at least d milliseconds have passed. It returns within
// one tick of the deadline. It cannot be cancelled, and it never returns if
// the clock is not running and d > 0. Durations above 2^63-1 ms are
// clamped to that.
func (s *ClockState) SleepMs(d uint64) {
	deadline := deadlineAfter(s.Millis(), d)
	for !Reached(s.Millis(), deadline) {
		cpuRelax()
	}
}

// deadlineAfter returns now+d with d clamped to maxSleepMs.
func deadlineAfter(now, d uint64) uint64 {
	if d > maxSleepMs {
		d = maxSleepMs
	}
	return now + d
}

// Since returns the milliseconds elapsed from start to now, wrapping.
func (s *ClockState) Since(start uint64) uint64 {
	return s.Millis() - start
}

// Reached reports whether now is at or past deadline. The comparison is on
// the wrapped difference, so it stays correct when the deadline lies on the
// far side of a counter wrap, as long as now and deadline are less than
// 2^63 ticks apart.
func Reached(now, deadline uint64) bool {
	return int64(now-deadline) >= 0
}

// NaiveReached is the plain now >= deadline comparison. It is wrong when
// now+d wrapped and now has not yet: it returns true immediately. Kept for
// comparison; do not use it for deadlines.
func NaiveReached(now, deadline uint64) bool {
	return now >= deadline
}

// Millis returns the default clock's elapsed milliseconds.
func Millis() uint64 {
	return defaultClock.Millis()
}

// SleepMs blocks on the default clock. See ClockState.SleepMs.
func SleepMs(d uint64) {
	defaultClock.SleepMs(d)
}

// Since returns the milliseconds elapsed on the default clock since start.
func Since(start uint64) uint64 {
	return defaultClock.Since(start)
}
