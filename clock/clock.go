// Package clock provides an overflow-safe 64-bit monotonic tick count on top
// of a narrow free-running RTC counter.
//
// The hardware counter is CounterWidth bits wide and wraps every few minutes
// at TickRate. The driver extends it to 64 bits by counting elapsed
// half-periods in software, bumped from interrupt context twice per full
// counter cycle. See Driver for the resolution algorithm and why two bumps
// per cycle make concurrent reads race-free.
package clock

// Geometry and rate of the nRF52-class RTC this driver targets.
const (
	CounterWidth = 24    // hardware counter bits
	TickRate     = 32768 // ticks per second

	// HalfPeriod is one software period: half a full counter cycle.
	HalfPeriod = 1 << (CounterWidth - 1)
	// CounterMask strips anything above the counter's width.
	CounterMask = 1<<CounterWidth - 1
)

const (
	nanosPerSecond  = 1_000_000_000
	microsPerSecond = 1_000_000
	millisPerSecond = 1_000
)

// Clock is a monotonic tick source. The hardware Driver and deterministic
// software clocks used in tests are interchangeable implementations.
type Clock interface {
	// Now returns the tick count elapsed since the clock started.
	// Non-blocking and safe to call from any task context.
	Now() uint64
}

// TicksFromNanoseconds converts a duration in nanoseconds to ticks,
// rounding up so that waiting the result never undershoots the request.
func TicksFromNanoseconds(ns uint64) uint64 {
	return ns/nanosPerSecond*TickRate + ceilDiv(ns%nanosPerSecond*TickRate, nanosPerSecond)
}

// TicksFromMicroseconds converts microseconds to ticks, rounding up.
func TicksFromMicroseconds(us uint64) uint64 {
	return us/microsPerSecond*TickRate + ceilDiv(us%microsPerSecond*TickRate, microsPerSecond)
}

// TicksFromMilliseconds converts milliseconds to ticks, rounding up.
func TicksFromMilliseconds(ms uint64) uint64 {
	return ms/millisPerSecond*TickRate + ceilDiv(ms%millisPerSecond*TickRate, millisPerSecond)
}

func ceilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}
