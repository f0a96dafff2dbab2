package core

import "strconv"

// FailurePolicy decides what the sampler does when an analog read fails.
type FailurePolicy uint8

const (
	// PolicyAbort stops the loop and returns the *SampleError.
	PolicyAbort FailurePolicy = iota
	// PolicySkip reports the failure on the diagnostic stream and carries on.
	PolicySkip
	// PolicyRetry re-reads up to SamplerConfig.Retries more times, then aborts.
	PolicyRetry
)

// SampleError is a failed analog read.
type SampleError struct {
	Channel  ADCChannel
	At       uint64 // millis when the last attempt failed
	Attempts int
	Err      error
}

func (e *SampleError) Error() string {
	return "analog read on channel " + strconv.Itoa(int(e.Channel)) +
		" failed after " + strconv.Itoa(e.Attempts) + " attempt(s): " + e.Err.Error()
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	Interval uint64 // ms slept before each reading
	Channel  ADCChannel
	Policy   FailurePolicy
	Retries  int // extra attempts under PolicyRetry
}

// Sampler is the foreground loop: sleep, read one analog value, report it.
type Sampler struct {
	clock *ClockState
	input AnalogInput
	cfg   SamplerConfig

	// Samples and Failures count emitted samples and failed reads.
	Samples  uint32
	Failures uint32

	// OnSample, if set, runs after each emitted sample (e.g. a scope strobe).
	OnSample func(ms uint64, v ADCValue)
}

// NewSampler builds a sampler on clock (nil means the default clock).
func NewSampler(clock *ClockState, input AnalogInput, cfg SamplerConfig) *Sampler {
	if clock == nil {
		clock = &defaultClock
	}
	if cfg.Policy != PolicyRetry {
		cfg.Retries = 0
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Sampler{clock: clock, input: input, cfg: cfg}
}

// Step sleeps for the interval, takes one reading and emits it. It returns
// a non-nil error only when the policy gives up on a failed read.
func (s *Sampler) Step() error {
	if s.input == nil {
		return ErrNoADC
	}
	s.clock.SleepMs(s.cfg.Interval)

	var (
		v   ADCValue
		err error
	)
	attempts := 0
	for attempts <= s.cfg.Retries {
		attempts++
		v, err = s.input.Read(s.cfg.Channel)
		if err == nil {
			break
		}
	}

	now := s.clock.Millis()
	if err != nil {
		s.Failures++
		if s.cfg.Policy == PolicySkip {
			EmitReadError(now, s.cfg.Channel, attempts, err.Error())
			return nil
		}
		return &SampleError{Channel: s.cfg.Channel, At: now, Attempts: attempts, Err: err}
	}

	s.Samples++
	EmitSample(now, s.cfg.Channel, v)
	if s.OnSample != nil {
		s.OnSample(now, v)
	}
	return nil
}

// Run calls Step until it fails and returns that error.
func (s *Sampler) Run() error {
	for {
		if err := s.Step(); err != nil {
			return err
		}
	}
}
