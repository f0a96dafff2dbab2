//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/mcp3008"

	"msclock/core"
)

// MCP3008 wiring: SPI0 on GP18 (SCK), GP19 (SDO/MOSI), GP16 (SDI/MISO),
// chip select on GP17.
const (
	mcpSCK  = machine.GPIO18
	mcpSDO  = machine.GPIO19
	mcpSDI  = machine.GPIO16
	mcpCS   = machine.GPIO17
	mcpRate = 1_000_000 // 1 MHz, inside the 3.3 V limit of 1.35 MHz
)

// MCP3008Input implements core.AnalogInput with an external MCP3008,
// channels 0-7. Readings are 10-bit, left-aligned to 16 bits by the driver.
type MCP3008Input struct {
	dev *mcp3008.Device
}

// NewMCP3008Input configures SPI0 and the converter's chip select.
func NewMCP3008Input() (*MCP3008Input, error) {
	spi := machine.SPI0
	err := spi.Configure(machine.SPIConfig{
		Frequency: mcpRate,
		SCK:       mcpSCK,
		SDO:       mcpSDO,
		SDI:       mcpSDI,
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	dev := mcp3008.New(spi, mcpCS)
	dev.Configure()
	mcpCS.High()
	return &MCP3008Input{dev: dev}, nil
}

func (m *MCP3008Input) Read(ch core.ADCChannel) (core.ADCValue, error) {
	v, err := m.dev.Read(int(ch))
	if err != nil {
		return 0, err
	}
	return core.ADCValue(v), nil
}
