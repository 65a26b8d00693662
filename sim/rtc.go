// Package sim provides a deterministic software model of the RTC peripheral
// and its interrupt routing, for driving the clock driver in tests without
// hardware.
//
// The model is single-goroutine: tests advance it explicitly and observe the
// driver in between. It mimics the one ordering property the resolver relies
// on, that the hardware counter moves before the interrupt handler runs.
package sim

import (
	"fmt"

	"github.com/moddedTechnic/nrf-time/clock"
)

const numCompareSlots = 4

// RTC is a simulated 24-bit RTC. It implements both clock.RTCPeripheral and
// clock.InterruptController.
type RTC struct {
	counter uint32
	running bool

	compare    [numCompareSlots]uint32
	compareSet [numCompareSlots]bool

	events     [2]bool
	intEnabled [2]bool
	handler    func()

	// clearLatency models the peripheral clock-domain crossing: how many
	// Counter reads after ClearCounter still observe the stale value.
	clearLatency int
	stale        uint32
	staleReads   int

	// holdIRQ postpones handler invocation, modelling interrupt latency.
	holdIRQ    bool
	irqPending bool

	compareErr error
}

// New returns a stopped, cleared RTC.
func New() *RTC {
	return &RTC{}
}

// SetClearLatency makes the next ClearCounter take effect only after n
// Counter reads have returned the stale pre-clear value.
func (r *RTC) SetClearLatency(n int) {
	r.clearLatency = n
}

// FailCompare makes SetCompare refuse configuration with err, for testing
// fatal initialization paths.
func (r *RTC) FailCompare(err error) {
	r.compareErr = err
}

// Counter implements clock.RTCPeripheral.
func (r *RTC) Counter() uint32 {
	if r.staleReads > 0 {
		r.staleReads--
		return r.stale
	}
	return r.counter
}

// SetCompare implements clock.RTCPeripheral.
func (r *RTC) SetCompare(slot clock.CompareSlot, value uint32) error {
	if r.compareErr != nil {
		return r.compareErr
	}
	if int(slot) >= numCompareSlots {
		return fmt.Errorf("compare slot %d out of range", slot)
	}
	if value > clock.CounterMask {
		return fmt.Errorf("compare value %#x exceeds counter width", value)
	}
	r.compare[slot] = value
	r.compareSet[slot] = true
	return nil
}

// ClearCounter implements clock.RTCPeripheral.
func (r *RTC) ClearCounter() {
	if r.clearLatency > 0 {
		r.stale = r.counter
		r.staleReads = r.clearLatency
	}
	r.counter = 0
}

// EnableCounter implements clock.RTCPeripheral.
func (r *RTC) EnableCounter() {
	r.running = true
}

// EnableInterrupt implements clock.RTCPeripheral.
func (r *RTC) EnableInterrupt(kind clock.EventKind) {
	r.intEnabled[kind] = true
}

// EventTriggered implements clock.RTCPeripheral.
func (r *RTC) EventTriggered(kind clock.EventKind) bool {
	return r.events[kind]
}

// ResetEvent implements clock.RTCPeripheral.
func (r *RTC) ResetEvent(kind clock.EventKind) {
	r.events[kind] = false
}

// Route implements clock.InterruptController.
func (r *RTC) Route(handler func()) {
	r.handler = handler
}

// InterruptEnabled reports whether the interrupt line for kind is unmasked.
func (r *RTC) InterruptEnabled(kind clock.EventKind) bool {
	return r.intEnabled[kind]
}

// CompareValue returns the armed compare value for slot.
func (r *RTC) CompareValue(slot clock.CompareSlot) (value uint32, armed bool) {
	return r.compare[slot], r.compareSet[slot]
}

// Running reports whether the counter has been started.
func (r *RTC) Running() bool {
	return r.running
}

// HoldInterrupts stops events from reaching the routed handler until Fire is
// called. Events still latch; the counter still advances.
func (r *RTC) HoldInterrupts() {
	r.holdIRQ = true
}

// Fire delivers any postponed interrupt and resumes normal delivery.
func (r *RTC) Fire() {
	r.holdIRQ = false
	if r.irqPending {
		r.irqPending = false
		r.dispatch()
	}
}

// Advance moves the counter forward by the given number of ticks, latching
// overflow and compare-match events at the exact boundary crossings and
// invoking the routed handler after each one, hardware first.
func (r *RTC) Advance(ticks uint64) {
	if !r.running {
		return
	}
	for ticks > 0 {
		n := r.ticksToBoundary()
		atBoundary := n <= ticks
		if !atBoundary {
			n = ticks
		}
		r.counter = uint32((uint64(r.counter) + n) & clock.CounterMask)
		ticks -= n
		if atBoundary {
			r.latch()
		}
	}
}

// ticksToBoundary returns the distance to the nearest event boundary ahead
// of the counter: the wrap to zero or any armed compare value.
func (r *RTC) ticksToBoundary() uint64 {
	next := uint64(clock.CounterMask) + 1 - uint64(r.counter)
	for slot, armed := range r.compareSet {
		if !armed {
			continue
		}
		cc := r.compare[slot]
		var d uint64
		if cc > r.counter {
			d = uint64(cc - r.counter)
		} else {
			d = uint64(cc) + uint64(clock.CounterMask) + 1 - uint64(r.counter)
		}
		if d < next {
			next = d
		}
	}
	return next
}

// latch records the event for the counter's current position and raises the
// interrupt.
func (r *RTC) latch() {
	if r.counter == 0 {
		r.events[clock.EventOverflow] = true
	}
	for slot, armed := range r.compareSet {
		if armed && r.compare[slot] == r.counter {
			r.events[clock.EventCompare] = true
		}
	}
	if r.holdIRQ {
		r.irqPending = true
		return
	}
	r.dispatch()
}

func (r *RTC) dispatch() {
	if r.handler == nil {
		return
	}
	if (r.events[clock.EventOverflow] && r.intEnabled[clock.EventOverflow]) ||
		(r.events[clock.EventCompare] && r.intEnabled[clock.EventCompare]) {
		r.handler()
	}
}
