// Package mcu is the host's connection to a device running the msclock
// firmware: it opens the diagnostic port and splits it into lines.
package mcu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"msclock/host/serial"
	"msclock/protocol"
)

// MCU represents a connection to the firmware's diagnostic stream
type MCU struct {
	port serial.Port

	// idleEOF is set for serial ports, where io.EOF only means the read
	// timed out with no data.
	idleEOF bool

	// Connection state
	mu          sync.Mutex
	connected   bool
	connectedAt time.Time
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{}
}

// Connect connects to an MCU via serial port. Device "-" reads the stream
// from standard input instead, e.g. piped from ticksim.
func (m *MCU) Connect(device string) error {
	if device == "-" {
		m.Attach(serial.NewStreamPort(os.Stdin))
		return nil
	}
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	m.Attach(port)
	m.mu.Lock()
	m.idleEOF = true
	m.mu.Unlock()
	return nil
}

// Attach uses an already open port.
func (m *MCU) Attach(port serial.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
	m.idleEOF = false
	m.connected = true
	m.connectedAt = time.Now()
}

// IsConnected returns whether the MCU is connected
func (m *MCU) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// ConnectedAt returns when the current connection was made.
func (m *MCU) ConnectedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectedAt
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.port.Close()
}

// Stream calls handle for every line received until the stream ends, ctx
// is cancelled or the port fails. Lines are passed without terminator.
// A clean end of stream returns nil.
func (m *MCU) Stream(ctx context.Context, handle func(line string)) error {
	m.mu.Lock()
	port, idleEOF, connected := m.port, m.idleEOF, m.connected
	m.mu.Unlock()
	if !connected {
		return errors.New("not connected")
	}

	// Closing the port is the only way to interrupt a blocking read.
	stop := context.AfterFunc(ctx, func() { m.Close() })
	defer stop()

	r := bufio.NewReaderSize(port, maxPartial)
	partial := make([]byte, 0, maxPartial)
	// discarding is set while skipping the rest of an overlong line.
	discarding := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !discarding {
			partial = append(partial, chunk...)
			if len(partial) > maxPartial {
				partial = partial[:0]
				discarding = true
			}
		}
		if err == nil {
			if !discarding {
				handle(trimEOL(partial))
			}
			partial = partial[:0]
			discarding = false
			continue
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			if idleEOF {
				continue
			}
			if len(partial) > 0 && !discarding {
				handle(trimEOL(partial))
			}
			return nil
		}
		return fmt.Errorf("failed to read diagnostic stream: %w", err)
	}
}

// maxPartial bounds how much of one line Stream buffers. Longer lines are
// dropped up to their terminator.
const maxPartial = 4 * protocol.MaxLine

func trimEOL(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
