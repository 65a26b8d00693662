package clock

import (
	"fmt"
	"sync/atomic"
)

// Driver owns the RTC peripheral and resolves 64-bit timestamps from it.
//
// The counter alone wraps every 2^CounterWidth ticks (~8.5 minutes at
// 32768Hz), so the driver counts elapsed periods in software. A naive scheme
// with one period per full cycle is racy: a reader that loads the period
// count just before an overflow and the counter just after it stitches an old
// period onto a new counter and computes a timestamp a full cycle off.
//
// Instead a period is HalfPeriod ticks, and the period count is bumped twice
// per cycle: once at the half-cycle compare match, once at the overflow.
// That gives the invariant that an even period count puts the counter in
// [0, HalfPeriod) and an odd one puts it in [HalfPeriod, 2*HalfPeriod), so
// the resolver can tell from the period's parity alone which half the
// counter value belongs to. If a bump lands between the two reads the
// counter already sits in the new half (hardware moves before the interrupt
// runs) and the parity correction still maps it next to the stale period's
// base, yielding the first timestamps of the new period rather than garbage.
//
// The 32-bit period count wraps after 2^32 half-periods, roughly 34,865
// years of uptime at 32768Hz.
type Driver struct {
	rtc RTCPeripheral

	// period counts elapsed half-periods. Written only by OnInterrupt,
	// read by any task context.
	period uint32
}

// New configures the peripheral and returns a running driver, taking
// exclusive ownership of rtc. A configuration refusal is fatal to startup;
// callers are expected to abort rather than continue without a clock.
func New(rtc RTCPeripheral, ic InterruptController) (*Driver, error) {
	d := &Driver{rtc: rtc}

	if err := rtc.SetCompare(CompareHalf, HalfPeriod); err != nil {
		return nil, fmt.Errorf("arming half-period compare: %w", err)
	}

	rtc.ClearCounter()
	rtc.EnableCounter()

	// A residual count from before the clear would be credited as elapsed
	// time. Interrupts stay off until a read-back confirms the counter
	// really restarted from zero.
	for rtc.Counter() != 0 {
	}

	ic.Route(d.OnInterrupt)
	rtc.EnableInterrupt(EventOverflow)
	rtc.EnableInterrupt(EventCompare)

	return d, nil
}

// Now returns the current 64-bit tick count. Non-blocking, infallible, and
// safe to call concurrently with OnInterrupt.
func (d *Driver) Now() uint64 {
	// The period must be read strictly before the counter; the atomic
	// load keeps the compiler from reordering the counter read above it.
	p := atomic.LoadUint32(&d.period)
	c := d.rtc.Counter()
	return calcNow(p, c)
}

// OnInterrupt services the RTC's overflow and compare-match events. It must
// only be invoked from the routed interrupt context. It never blocks, never
// allocates, and touches no shared state besides the atomic period count, so
// it needs no critical section around it.
func (d *Driver) OnInterrupt() {
	if d.rtc.EventTriggered(EventOverflow) {
		d.rtc.ResetEvent(EventOverflow)
		d.nextPeriod()
	}
	if d.rtc.EventTriggered(EventCompare) {
		d.rtc.ResetEvent(EventCompare)
		d.nextPeriod()
	}
}

func (d *Driver) nextPeriod() {
	atomic.AddUint32(&d.period, 1)
}

// calcNow maps a (period, counter) pair onto the 64-bit tick line. The XOR
// strips or injects the half-cycle bit according to the period's parity,
// placing the counter in the half-period that is contiguous with the
// period's base.
func calcNow(period, counter uint32) uint64 {
	counter &= CounterMask
	return uint64(period)<<(CounterWidth-1) + uint64(counter^(period&1)<<(CounterWidth-1))
}
