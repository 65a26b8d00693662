//go:build tinygo

package nrf52833

import (
	"runtime/interrupt"

	"github.com/moddedTechnic/nrf-time/clock"
)

// RTC0 IRQ number on the nRF52833.
const irqRTC0 = 11

// rtcHandler is read by the ISR; set once by Route before the interrupt is
// enabled.
var rtcHandler func()

func rtcISR(interrupt.Interrupt) {
	if rtcHandler != nil {
		rtcHandler()
	}
}

// Controller routes RTC0's event lines through the NVIC. It implements
// clock.InterruptController.
type Controller struct{}

// Route implements clock.InterruptController.
func (Controller) Route(handler func()) {
	rtcHandler = handler
	intr := interrupt.New(irqRTC0, rtcISR)
	intr.Enable()
}

// NewDriver wires RTC0 and the NVIC into a running clock driver.
func NewDriver() (*clock.Driver, error) {
	return clock.New(RTC0(), Controller{})
}
