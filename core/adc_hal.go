package core

import "errors"

// ADCChannel identifies a logical analog input channel. Targets map it to a
// pin or an external converter input.
type ADCChannel uint8

// ADCValue is a raw reading as seen by the rest of the firmware.
// Convention: left-aligned 16-bit value, whatever the converter's width.
type ADCValue uint16

// AnalogInput is the one-shot analog read capability the sampler uses.
type AnalogInput interface {
	// Read performs a single conversion on ch.
	Read(ch ADCChannel) (ADCValue, error)
}

// ErrNoADC is returned by the sampler when no analog input is configured.
var ErrNoADC = errors.New("analog input not configured")

// AnalogInputFunc adapts a plain function to AnalogInput.
type AnalogInputFunc func(ch ADCChannel) (ADCValue, error)

// Read calls f(ch).
func (f AnalogInputFunc) Read(ch ADCChannel) (ADCValue, error) {
	return f(ch)
}
