//go:build rp2040 || rp2350

package main

import (
	"machine"

	"msclock/core"
	"msclock/protocol"
)

// Firmware configuration.
const (
	sampleIntervalMs = 1000
	sampleChannel    = core.ADCChannel(0)

	// Set to true to sample an MCP3008 on SPI0 instead of the on-chip ADC.
	useMCP3008 = false

	// Scope strobe on GP15 from PIO0 state machine 0.
	strobePin = machine.GPIO15
	strobeSM  = 0
)

func main() {
	if InitDebugUART() {
		core.SetDebugWriter(debugWrite)
	}
	core.EmitBoot("msclock " + protocol.Version)

	// The clock tree is final by the time main runs (the runtime set it up
	// before init), so the reload value can be computed from it.
	if err := core.Start(systick, machine.CPUFrequency()); err != nil {
		panic("tick timer: " + err.Error())
	}

	input, err := analogInput()
	if err != nil {
		panic("analog input: " + err.Error())
	}

	sampler := core.NewSampler(nil, input, core.SamplerConfig{
		Interval: sampleIntervalMs,
		Channel:  sampleChannel,
		Policy:   core.PolicyAbort,
	})
	if strobe, err := NewSampleStrobe(strobePin, strobeSM); err == nil {
		sampler.OnSample = strobe.Pulse
	} else {
		core.EmitNote("no sample strobe: " + err.Error())
	}

	// A failed read has nobody to report to; stop here.
	if err := sampler.Run(); err != nil {
		panic(err.Error())
	}
}

func analogInput() (core.AnalogInput, error) {
	if useMCP3008 {
		mcp, err := NewMCP3008Input()
		if err != nil {
			return nil, err
		}
		return mcp, nil
	}
	adc := NewRPAdcDriver()
	if err := adc.ConfigureChannel(sampleChannel); err != nil {
		return nil, err
	}
	return adc, nil
}
