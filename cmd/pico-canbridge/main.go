//go:build rp2040

// Command pico-canbridge turns a Raspberry Pi Pico into an SLCAN adapter:
// an MCP2515 on SPI0 carries the CAN side, UART0 speaks SLCAN to the host.
// An MCP3008 shares the same SPI bus and broadcasts its channel-0 reading
// once a second, so the bridge doubles as a demo of two peripherals taking
// turns on one bus.
package main

import (
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"halbus-go/can"
	"halbus-go/drivers/mcp2515"
	"halbus-go/drivers/mcp3008"
	"halbus-go/slcan"
	"halbus-go/spi"
)

// ---------- Wiring (stock Pico pinout) ----------

const (
	spiFreq   = 8_000_000 // the MCP2515 tops out at 10 MHz
	pinSCK    = machine.GPIO18
	pinSDO    = machine.GPIO19
	pinSDI    = machine.GPIO16
	pinCSCAN  = machine.GPIO17
	pinCSADC  = machine.GPIO20
	uartBaud  = 115200
	pinUartTX = machine.GPIO0
	pinUartRX = machine.GPIO1
)

// ---------- Behaviour ----------

const (
	canBitrate = mcp2515.Bitrate500k

	// The ADC beacon: channel 0 against the 3.3 V rail, sent as a two-byte
	// big-endian millivolt reading on a deliberately low-priority identifier.
	adcPeriod  = time.Second
	adcChannel = 0
	vrefMillis = 3300
)

var beaconID = can.StandardID(0x640)

func main() {
	// Let USB CDC enumerate before the first print.
	time.Sleep(2 * time.Second)
	println("[canbridge] boot")

	// SPI bus shared by the CAN controller and the ADC. The beacon goroutine
	// and the bridge loop transact concurrently, so the mutex flavour does
	// the serialising.
	err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: spiFreq,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
		Mode:      0,
	})
	if err != nil {
		println("[canbridge] FAIL: spi configure:", err.Error())
		return
	}
	for _, cs := range []machine.Pin{pinCSCAN, pinCSADC} {
		cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
		cs.High() // idle deselected
	}
	shared := spi.NewMutexBus(machine.SPI0)

	controller := mcp2515.New(spi.NewMutexDevice(
		shared, spi.ActiveLow(pinCSCAN), spi.DelayerFunc(time.Sleep)))
	adc := mcp3008.New(spi.NewMutexDevice(shared, spi.ActiveLow(pinCSADC), nil))

	if err := controller.Configure(mcp2515.Config{Bitrate: canBitrate}); err != nil {
		println("[canbridge] FAIL: mcp2515 configure:", err.Error())
		return
	}
	println("[canbridge] mcp2515 up")

	// SLCAN side over UART0.
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: uartBaud,
		TX:       pinUartTX,
		RX:       pinUartRX,
	})
	port := slcan.NewUARTPort(uartx.UART0)
	println("[canbridge] slcan on uart0 at", uartBaud)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// The bridge loop is the controller's only caller; everything that wants
	// a frame on the wire queues it here.
	tx := make(chan can.Frame, 8)

	// Host -> CAN.
	go func() {
		for {
			f, err := port.Receive()
			if err != nil {
				println("[canbridge] slcan receive:", err.Error())
				continue
			}
			tx <- f
		}
	}()

	// ADC beacon.
	go func() {
		tick := time.NewTicker(adcPeriod)
		defer tick.Stop()
		for range tick.C {
			mv, err := adc.ReadMillivolts(adcChannel, vrefMillis)
			if err != nil {
				println("[canbridge] adc read:", err.Error())
				continue
			}
			f := can.MustFrame(beaconID, []byte{byte(mv >> 8), byte(mv)})
			select {
			case tx <- f:
			default: // bridge backed up; skip this tick
			}
		}
	}()

	// Bridge loop.
	for {
		worked := false

		select {
		case f := <-tx:
			if err := sendFrame(controller, f); err != nil {
				println("[canbridge] can send:", err.Error())
			} else {
				led.Set(!led.Get())
			}
			worked = true
		default:
		}

		f, err := controller.Receive()
		switch {
		case err == mcp2515.ErrNoMessage:
		case err != nil:
			println("[canbridge] can receive:", err.Error())
		default:
			if err := port.Send(f); err != nil {
				println("[canbridge] slcan send:", err.Error())
			} else {
				led.Set(!led.Get())
			}
			worked = true
		}

		if !worked {
			time.Sleep(time.Millisecond)
		}
	}
}

// sendFrame retries while the transmit buffer is still arbitrating the
// previous frame; every other failure is the caller's problem.
func sendFrame(c *mcp2515.Device, f can.Frame) error {
	for {
		err := c.Send(f)
		if err != mcp2515.ErrTXBusy {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}
