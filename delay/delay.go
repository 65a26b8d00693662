// Package delay suspends callers for a requested real-time duration,
// measured against the monotonic tick clock.
//
// Accuracy is best-effort: the adapter guarantees a hard lower bound (the
// caller never resumes before the requested time has elapsed) but no upper
// bound on wake latency, which depends on interrupt latency and on the
// scheduling layer that performs the actual suspension.
package delay

import (
	"context"
	"time"

	"github.com/moddedTechnic/nrf-time/clock"
)

// WakeScheduler is the external cooperative scheduler that performs the
// actual suspension. The adapter only computes the target tick and hands off
// "resume no earlier than tick T".
type WakeScheduler interface {
	// NotifyAt arranges for wake to be called at most once, no earlier
	// than when the clock reads tick. The returned cancel releases the
	// registration; it must be safe to call more than once and after the
	// wake has fired.
	NotifyAt(tick uint64, wake func()) (cancel func())
}

// Delay converts duration requests into tick deadlines on a Clock and parks
// callers on a WakeScheduler until the deadline passes.
type Delay struct {
	clk   clock.Clock
	sched WakeScheduler
}

// New returns a delay adapter over the given clock and scheduler.
func New(clk clock.Clock, sched WakeScheduler) *Delay {
	return &Delay{clk: clk, sched: sched}
}

// Sleep suspends the caller for at least d. Non-positive durations return
// immediately. The only error is ctx's, on cancellation.
func (d *Delay) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	return d.Nanoseconds(ctx, uint64(dur))
}

// Nanoseconds suspends the caller for at least ns nanoseconds.
func (d *Delay) Nanoseconds(ctx context.Context, ns uint64) error {
	return d.after(ctx, clock.TicksFromNanoseconds(ns))
}

// Microseconds suspends the caller for at least us microseconds.
func (d *Delay) Microseconds(ctx context.Context, us uint64) error {
	return d.after(ctx, clock.TicksFromMicroseconds(us))
}

// Milliseconds suspends the caller for at least ms milliseconds.
func (d *Delay) Milliseconds(ctx context.Context, ms uint64) error {
	return d.after(ctx, clock.TicksFromMilliseconds(ms))
}

func (d *Delay) after(ctx context.Context, ticks uint64) error {
	return d.UntilTick(ctx, d.clk.Now()+ticks)
}

// UntilTick suspends the caller until the clock reads at least tick. The
// wake registration is released on every exit path, and a cancelled wait
// cannot be woken a second time.
func (d *Delay) UntilTick(ctx context.Context, tick uint64) error {
	if d.clk.Now() >= tick {
		return ctx.Err()
	}

	woken := make(chan struct{})
	cancel := d.sched.NotifyAt(tick, func() { close(woken) })
	defer cancel()

	select {
	case <-woken:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
