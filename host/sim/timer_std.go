//go:build !linux

package sim

import "time"

func (t *Timer) run(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t.runTicker(period, stop)
}
