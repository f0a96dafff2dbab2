//go:build rp2040 || rp2350

package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"msclock/core"
)

// Sample strobe: one 8-cycle pulse per emitted sample on a GPIO, generated
// by a PIO state machine so the foreground loop only pushes a FIFO word.
// Put a logic analyser on the strobe pin and the UART TX pin to line
// samples up with the diagnostic stream.
//
// Program:
//
//	.wrap_target
//	pull block
//	set pins, 1 [7]
//	set pins, 0
//	.wrap
func buildStrobeProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 1: set pins, 1 [7]
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 2: set pins, 0
	}
}

const strobeOrigin = -1 // Relocatable

// SampleStrobe drives the strobe pin from PIO0.
type SampleStrobe struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	pin machine.Pin
}

// NewSampleStrobe loads the strobe program on PIO0 state machine smNum and
// starts it with pin low.
func NewSampleStrobe(pin machine.Pin, smNum uint8) (*SampleStrobe, error) {
	s := &SampleStrobe{
		pio: rp2pio.PIO0,
		sm:  rp2pio.PIO0.StateMachine(smNum),
		pin: pin,
	}
	s.sm.TryClaim()

	program := buildStrobeProgram()
	offset, err := s.pio.AddProgram(program, strobeOrigin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: s.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	s.sm.Init(offset, cfg)
	s.sm.SetPindirsConsecutive(pin, 1, true)
	s.sm.SetPinsConsecutive(pin, 1, false)
	s.sm.SetEnabled(true)
	return s, nil
}

// Pulse queues one pulse. If the FIFO is full (four pulses pending) the
// pulse is dropped rather than stalling the sampling loop.
func (s *SampleStrobe) Pulse(ms uint64, v core.ADCValue) {
	if s.sm.IsTxFIFOFull() {
		return
	}
	s.sm.TxPut(uint32(ms))
}
