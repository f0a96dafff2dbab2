package serial

import (
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - A pipe from a local process (see StreamPort)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate of the firmware's diagnostic UART
	Baud int

	// Read timeout in milliseconds (0 = blocking). A read that times out
	// returns io.EOF.
	ReadTimeout int
}

// DefaultBaud matches the firmware's debug UART.
const DefaultBaud = 115200

// DefaultConfig returns the configuration for the firmware's diagnostic UART
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}

// StreamPort adapts a plain stream (stdin, a pipe) to Port.
type StreamPort struct {
	io.Reader
	io.Writer
	io.Closer
}

// NewStreamPort wraps r. Writes are discarded and Close closes r if it is
// an io.Closer.
func NewStreamPort(r io.Reader) *StreamPort {
	p := &StreamPort{Reader: r, Writer: io.Discard, Closer: io.NopCloser(nil)}
	if c, ok := r.(io.Closer); ok {
		p.Closer = c
	}
	return p
}

// Flush is a no-op for streams
func (p *StreamPort) Flush() error {
	return nil
}
