//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tarm/serial"
)

var (
	errNoDevice   = errors.New("no serial device given")
	errBadTimeout = errors.New("negative read timeout")
)

// NativePort is a device's diagnostic UART opened through tarm/serial.
type NativePort struct {
	port *serial.Port
	cfg  Config

	closeOnce sync.Once
	closeErr  error
}

// Open opens a native serial port. A zero Baud selects DefaultBaud.
//
// tarm/serial maps ReadTimeout onto the termios VTIME field, which counts
// tenths of a second, so timeouts below 100 ms behave as 100 ms.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	c := *cfg
	if c.Device == "" {
		return nil, errNoDevice
	}
	if c.ReadTimeout < 0 {
		return nil, fmt.Errorf("%w: %d ms", errBadTimeout, c.ReadTimeout)
	}
	if c.Baud == 0 {
		c.Baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", c.Device, err)
	}

	return &NativePort{port: port, cfg: c}, nil
}

// Read reads data from the serial port. With a read timeout set, a read
// that times out returns io.EOF.
func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write writes to the device. The firmware ignores its UART input.
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port. Only the first call has an effect.
func (p *NativePort) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.port.Close()
	})
	return p.closeErr
}

// Flush is a no-op. tarm/serial's Flush goes through File.Fd, which would
// switch the descriptor back to blocking mode under the runtime poller.
func (p *NativePort) Flush() error {
	return nil
}

func (p *NativePort) String() string {
	return fmt.Sprintf("%s@%d", p.cfg.Device, p.cfg.Baud)
}
