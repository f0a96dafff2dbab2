package mcu

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"msclock/host/serial"
	"msclock/protocol"
)

func TestStreamSplitsLines(t *testing.T) {
	m := NewMCU()
	m.Attach(serial.NewStreamPort(strings.NewReader("B,msclock 0.1.0*AA06\r\nS,1000,0,2048*E39F\r\nS,20")))

	var got []string
	if err := m.Stream(context.Background(), func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	want := []string{"B,msclock 0.1.0*AA06", "S,1000,0,2048*E39F", "S,20"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStreamNotConnected(t *testing.T) {
	m := NewMCU()
	if err := m.Stream(context.Background(), func(string) {}); err == nil {
		t.Error("Stream on an unconnected MCU succeeded")
	}
}

// timeoutReader returns io.EOF between chunks, like a serial port whose
// read timeout expired.
type timeoutReader struct {
	chunks []string
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, errors.New("port gone")
	}
	c := r.chunks[0]
	r.chunks = r.chunks[1:]
	if c == "" {
		return 0, io.EOF
	}
	return copy(p, c), nil
}

func TestStreamIdleTimeouts(t *testing.T) {
	m := NewMCU()
	m.Attach(serial.NewStreamPort(&timeoutReader{chunks: []string{"S,1,", "", "0,5*0000\r\n", "", ""}}))
	m.idleEOF = true

	var got []string
	err := m.Stream(context.Background(), func(line string) { got = append(got, line) })
	if err == nil || !strings.Contains(err.Error(), "port gone") {
		t.Errorf("Stream error = %v, want the port failure", err)
	}
	if len(got) != 1 || got[0] != "S,1,0,5*0000" {
		t.Errorf("got %q, want one line reassembled across the timeout", got)
	}
}

func TestStreamDropsOverlongLine(t *testing.T) {
	junk := strings.Repeat("x", 10*protocol.MaxLine)
	m := NewMCU()
	m.Attach(serial.NewStreamPort(strings.NewReader(junk + "\r\nS,1,0,5*0000\r\n" + junk)))

	var got []string
	if err := m.Stream(context.Background(), func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(got) != 1 || got[0] != "S,1,0,5*0000" {
		t.Errorf("got %d lines, want only the line after the overlong one: %.40q", len(got), got)
	}
}

func TestStreamKeepsLongValidLine(t *testing.T) {
	line := strings.Repeat("y", maxPartial-2)
	m := NewMCU()
	m.Attach(serial.NewStreamPort(strings.NewReader(line + "\r\n")))

	var got []string
	if err := m.Stream(context.Background(), func(l string) { got = append(got, l) }); err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	if len(got) != 1 || got[0] != line {
		t.Errorf("got %d lines, want the %d byte line intact", len(got), len(line))
	}
}

func TestStreamCancel(t *testing.T) {
	r, w := io.Pipe()
	m := NewMCU()
	m.Attach(serial.NewStreamPort(r))

	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.Stream(ctx, func(line string) { lines <- line })
	}()

	if _, err := w.Write([]byte("B,hi*0000\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	select {
	case l := <-lines:
		if l != "B,hi*0000" {
			t.Errorf("line = %q", l)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no line received")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Stream error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
	if m.IsConnected() {
		t.Error("MCU still connected after cancel")
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := NewMCU()
	if err := m.Close(); err != nil {
		t.Errorf("Close on unconnected MCU: %v", err)
	}
	m.Attach(serial.NewStreamPort(strings.NewReader("")))
	if err := m.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
