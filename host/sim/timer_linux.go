package sim

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

// pollTimeoutMs bounds how long a stop request can go unnoticed.
const pollTimeoutMs = 50

// run delivers expiries from a timerfd. The kernel counts expiries that
// happen while a handler is still running, and every one of them is
// delivered, so no tick is lost. If the timerfd cannot be set up, it falls
// back to a ticker.
func (t *Timer) run(period time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		t.runTicker(period, stop)
		return
	}
	defer unix.Close(fd)

	ts := unix.NsecToTimespec(period.Nanoseconds())
	spec := unix.ItimerSpec{Interval: ts, Value: ts}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		t.runTicker(period, stop)
		return
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	var buf [8]byte
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err == unix.EINTR || n == 0 {
			continue
		}
		if err != nil {
			panic("sim timer: poll failed: " + err.Error())
		}
		if _, err := unix.Read(fd, buf[:]); err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			panic("sim timer: read failed: " + err.Error())
		}
		for i := binary.NativeEndian.Uint64(buf[:]); i > 0; i-- {
			t.expire()
		}
	}
}
