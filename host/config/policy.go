package config

import (
	"fmt"
	"strings"

	"msclock/core"
)

var policies = map[string]core.FailurePolicy{
	"abort": core.PolicyAbort,
	"skip":  core.PolicySkip,
	"retry": core.PolicyRetry,
}

// ParsePolicy maps a policy name from the configuration or command line to
// the sampler's failure policy. Names are case-insensitive.
func ParsePolicy(name string) (core.FailurePolicy, error) {
	p, ok := policies[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrPolicy, name)
	}
	return p, nil
}

// SamplerConfig converts the simulator section to the sampler's settings.
func (s *SimConfig) SamplerConfig() (core.SamplerConfig, error) {
	p, err := ParsePolicy(s.Policy)
	if err != nil {
		return core.SamplerConfig{}, err
	}
	return core.SamplerConfig{
		Interval: s.IntervalMs,
		Channel:  core.ADCChannel(s.Channel),
		Policy:   p,
		Retries:  s.Retries,
	}, nil
}
