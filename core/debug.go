package core

import "msclock/protocol"

// DebugWriter writes one diagnostic line. The line already carries its
// terminator. Writers must not block indefinitely; failures are dropped.
type DebugWriter func(line []byte)

var (
	// debugWrite is the diagnostic sink, set by platform code.
	debugWrite DebugWriter = func([]byte) {} // No-op by default

	// lineBuf is reused for every line emitted from the foreground context.
	lineBuf [protocol.MaxLine]byte
)

// SetDebugWriter sets the platform-specific diagnostic output.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func([]byte) {}
	}
	debugWrite = writer
}

// EmitBoot writes the boot banner.
func EmitBoot(text string) {
	debugWrite(protocol.AppendBoot(lineBuf[:0], text))
}

// EmitNote writes a free text notice, cut so the line fits lineBuf.
func EmitNote(text string) {
	const maxText = protocol.MaxLine - 9
	if len(text) > maxText {
		text = text[:maxText]
	}
	debugWrite(protocol.AppendNote(lineBuf[:0], text))
}

// EmitSample writes one sample line.
func EmitSample(ms uint64, ch ADCChannel, v ADCValue) {
	debugWrite(protocol.AppendSample(lineBuf[:0], ms, uint8(ch), uint16(v)))
}

// EmitReadError writes a read failure line. The message is cut so the line
// fits lineBuf.
func EmitReadError(ms uint64, ch ADCChannel, attempts int, msg string) {
	const maxMsg = 48
	if len(msg) > maxMsg {
		msg = msg[:maxMsg]
	}
	if attempts > 255 {
		attempts = 255
	}
	debugWrite(protocol.AppendError(lineBuf[:0], ms, uint8(ch), uint8(attempts), msg))
}
