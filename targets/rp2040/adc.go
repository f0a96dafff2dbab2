//go:build rp2040 || rp2350

package main

import (
	"device/rp"
	"errors"
	"machine"

	"msclock/core"
)

// Logical channels of the on-chip converter: 0-3 are GP26-GP29, 4 is the
// internal temperature sensor.
const tempChannel core.ADCChannel = 4

// conversionTimeoutMs bounds a single register-level conversion. A
// conversion takes 2 µs, so hitting this means the ADC is wedged.
const conversionTimeoutMs = 2

var (
	errUnsupportedChannel = errors.New("unsupported ADC channel")
	errConversionTimeout  = errors.New("ADC conversion timeout")
)

// RpAdcDriver implements core.AnalogInput with the RP2040 on-chip ADC.
// Only the foreground loop reads it, so it has no lock.
type RpAdcDriver struct {
	channels [4]*machine.ADC
}

// NewRPAdcDriver powers up the ADC.
func NewRPAdcDriver() *RpAdcDriver {
	machine.InitADC()
	return &RpAdcDriver{}
}

// ConfigureChannel sets the channel's pin to analog mode. Read does this
// on first use; calling it up front keeps the first sample on time.
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannel) error {
	if ch == tempChannel {
		rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
		return nil
	}
	if int(ch) >= len(d.channels) {
		return errUnsupportedChannel
	}
	if d.channels[ch] != nil {
		return nil
	}

	pins := [...]machine.Pin{machine.ADC0, machine.ADC1, machine.ADC2, machine.ADC3}
	adc := machine.ADC{Pin: pins[ch]}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}
	d.channels[ch] = &adc
	return nil
}

// Read performs one conversion.
func (d *RpAdcDriver) Read(ch core.ADCChannel) (core.ADCValue, error) {
	if ch == tempChannel {
		return rawInternalTemp()
	}
	if int(ch) >= len(d.channels) {
		return 0, errUnsupportedChannel
	}
	if d.channels[ch] == nil {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
	}
	return core.ADCValue(d.channels[ch].Get()), nil
}

// rawInternalTemp converts the temperature sensor channel directly on the
// registers and returns the 12-bit result left-aligned to 16 bits.
func rawInternalTemp() (core.ADCValue, error) {
	rp.ADC.CS.SetBits(rp.ADC_CS_TS_EN)
	rp.ADC.CS.ReplaceBits(
		uint32(tempChannel)<<rp.ADC_CS_AINSEL_Pos,
		rp.ADC_CS_AINSEL_Msk,
		0,
	)
	rp.ADC.CS.SetBits(rp.ADC_CS_START_ONCE)

	deadline := core.Millis() + conversionTimeoutMs
	for !rp.ADC.CS.HasBits(rp.ADC_CS_READY) {
		if core.Reached(core.Millis(), deadline) {
			return 0, errConversionTimeout
		}
	}
	return core.ADCValue(rp.ADC.RESULT.Get() << 4), nil
}
