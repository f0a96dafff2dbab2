package core

// ClockState is the single slot shared between the timer interrupt and the
// foreground code. It starts empty and is filled once at startup by Install;
// there is no way back to empty.
//
// Every access to the slot, and to the counter inside it, happens inside a
// critical section: interrupts masked on hardware, a mutex on regular Go.
// The window is a handful of instructions per call.
type ClockState struct {
	counter *TickCounter
}

// defaultClock is the process-wide clock the package-level functions use.
var defaultClock ClockState

// DefaultClock returns the process-wide clock state.
func DefaultClock() *ClockState {
	return &defaultClock
}

// Install stores c, discarding any previous counter. A nil c is ignored:
// an installed clock stays installed.
func (s *ClockState) Install(c *TickCounter) {
	if c == nil {
		return
	}
	state := enterCritical()
	s.counter = c
	exitCritical(state)
}

// WithMut runs fn with exclusive access to the counter. It is meant for the
// timer interrupt handler; fn must be short and must not call back into s.
// Nothing runs if no counter is installed yet.
func (s *ClockState) WithMut(fn func(c *TickCounter)) {
	state := enterCritical()
	if s.counter != nil {
		fn(s.counter)
	}
	exitCritical(state)
}

// WithRef runs fn with the interrupt excluded and reports whether a counter
// was installed. fn must not call back into s.
func (s *ClockState) WithRef(fn func(c *TickCounter)) bool {
	state := enterCritical()
	c := s.counter
	if c != nil {
		fn(c)
	}
	exitCritical(state)
	return c != nil
}

// Ready reports whether a counter has been installed.
func (s *ClockState) Ready() bool {
	return s.WithRef(func(*TickCounter) {})
}

// Start builds a TickCounter on timer and installs it, all inside one
// critical section so that the first firing already finds the counter.
func (s *ClockState) Start(timer TimerSource, clockHz uint32) error {
	state := enterCritical()
	c, err := NewTickCounter(timer, clockHz)
	if err == nil {
		s.counter = c
	}
	exitCritical(state)
	return err
}

// Fire is the body of the timer interrupt handler for this clock.
func (s *ClockState) Fire() {
	s.WithMut(fire)
}

func fire(c *TickCounter) {
	c.OnFire()
}

// Start starts the default clock. See ClockState.Start.
func Start(timer TimerSource, clockHz uint32) error {
	return defaultClock.Start(timer, clockHz)
}

// OnTimerInterrupt is the handler to bind to the tick timer's interrupt.
func OnTimerInterrupt() {
	defaultClock.Fire()
}
