//go:build tinygo

// Package nrf52833 binds the clock HAL to the nRF52833's RTC0 peripheral.
package nrf52833

import (
	"errors"
	"runtime/volatile"
	"unsafe"

	"github.com/moddedTechnic/nrf-time/clock"
)

var (
	errBadSlot    = errors.New("nrf52833: compare slot out of range")
	errBadCompare = errors.New("nrf52833: compare value exceeds counter width")
)

// nRF52833 RTC register block (product spec §6.22.10).
const rtc0Base = 0x4000B000

type rtcRegs struct {
	TASKS_START      volatile.Register32 // 0x000
	TASKS_STOP       volatile.Register32 // 0x004
	TASKS_CLEAR      volatile.Register32 // 0x008
	TASKS_TRIGOVRFLW volatile.Register32 // 0x00C
	_                [60]uint32
	EVENTS_TICK      volatile.Register32 // 0x100
	EVENTS_OVRFLW    volatile.Register32 // 0x104
	_                [14]uint32
	EVENTS_COMPARE   [4]volatile.Register32 // 0x140
	_                [109]uint32
	INTENSET         volatile.Register32 // 0x304
	INTENCLR         volatile.Register32 // 0x308
	_                [13]uint32
	EVTEN            volatile.Register32 // 0x340
	EVTENSET         volatile.Register32 // 0x344
	EVTENCLR         volatile.Register32 // 0x348
	_                [110]uint32
	COUNTER          volatile.Register32 // 0x504
	PRESCALER        volatile.Register32 // 0x508
	_                [13]uint32
	CC               [4]volatile.Register32 // 0x540
}

// INTENSET/INTENCLR bit positions.
const (
	intOvrflw   = 1 << 1
	intCompare0 = 1 << 16
)

// RTC drives the RTC0 peripheral. Construct with RTC0; the clock driver
// assumes exclusive ownership once started.
type RTC struct {
	regs *rtcRegs
}

// RTC0 returns the binding for the RTC0 instance.
func RTC0() *RTC {
	return &RTC{regs: (*rtcRegs)(unsafe.Pointer(uintptr(rtc0Base)))}
}

// Counter implements clock.RTCPeripheral.
func (r *RTC) Counter() uint32 {
	return r.regs.COUNTER.Get() & clock.CounterMask
}

// SetCompare implements clock.RTCPeripheral.
func (r *RTC) SetCompare(slot clock.CompareSlot, value uint32) error {
	if int(slot) >= len(r.regs.CC) {
		return errBadSlot
	}
	if value > clock.CounterMask {
		return errBadCompare
	}
	r.regs.CC[slot].Set(value)
	return nil
}

// ClearCounter implements clock.RTCPeripheral. The clear crosses into the
// LFCLK domain and can take up to two 32768Hz cycles to land; callers
// confirm via Counter read-back.
func (r *RTC) ClearCounter() {
	r.regs.TASKS_CLEAR.Set(1)
}

// EnableCounter implements clock.RTCPeripheral. Prescaler 0 keeps the
// counter at the full 32768Hz tick rate.
func (r *RTC) EnableCounter() {
	r.regs.PRESCALER.Set(0)
	r.regs.TASKS_START.Set(1)
}

// EnableInterrupt implements clock.RTCPeripheral.
func (r *RTC) EnableInterrupt(kind clock.EventKind) {
	r.regs.INTENSET.Set(intenBit(kind))
}

// EventTriggered implements clock.RTCPeripheral.
func (r *RTC) EventTriggered(kind clock.EventKind) bool {
	return r.event(kind).Get() != 0
}

// ResetEvent implements clock.RTCPeripheral. The read-back flushes the
// write so the event cannot re-pend the interrupt on handler exit.
func (r *RTC) ResetEvent(kind clock.EventKind) {
	reg := r.event(kind)
	reg.Set(0)
	_ = reg.Get()
}

func (r *RTC) event(kind clock.EventKind) *volatile.Register32 {
	if kind == clock.EventOverflow {
		return &r.regs.EVENTS_OVRFLW
	}
	return &r.regs.EVENTS_COMPARE[clock.CompareHalf]
}

func intenBit(kind clock.EventKind) uint32 {
	if kind == clock.EventOverflow {
		return intOvrflw
	}
	return intCompare0 << clock.CompareHalf
}
