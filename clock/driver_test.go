package clock

import (
	"testing"
)

func TestCalcNow(t *testing.T) {
	testCases := []struct {
		period  uint32
		counter uint32
		want    uint64
	}{
		{0, 0x000000, 0x0_000000},
		{0, 0x000001, 0x0_000001},
		{0, 0x7FFFFF, 0x0_7FFFFF},
		{0, 0x800000, 0x0_800000},
		{1, 0x800000, 0x0_800000},
		{1, 0x800001, 0x0_800001},
		{1, 0x7FFFFF, 0x1_7FFFFF},
		{1, 0xFFFFFF, 0x0_FFFFFF},
		{2, 0xFFFFFF, 0x1_FFFFFF},
		{1, 0x000000, 0x1_000000},
		{2, 0x000000, 0x1_000000},
		{2, 0x7FFFFF, 0x1_7FFFFF},
		{3, 0x800000, 0x1_800000},
		{0xFFFFFFFF, 0xFFFFFF, 0x7FFFFFFF_FFFFFF},
	}

	for _, tc := range testCases {
		got := calcNow(tc.period, tc.counter)
		if got != tc.want {
			t.Errorf("calcNow(%d, %#x) = %#x, want %#x", tc.period, tc.counter, got, tc.want)
		}
	}
}

// TestCalcNowClosedForm checks the resolver against an independently derived
// elapsed-tick count for invariant-respecting (period, counter) pairs: every
// two periods is one full counter cycle, and an odd period's counter already
// carries the half-cycle bit.
func TestCalcNowClosedForm(t *testing.T) {
	counters := []uint32{
		0, 1, 0x7FFFFE, 0x7FFFFF, 0x800000, 0x800001, 0xFFFFFE, 0xFFFFFF,
	}
	for period := uint32(0); period < 8; period++ {
		for _, c := range counters {
			// Skip pairs that violate the parity invariant; they
			// cannot be observed outside a racing read.
			if (period%2 == 0) != (c < HalfPeriod) {
				continue
			}
			want := uint64(period/2)<<CounterWidth + uint64(c)
			if got := calcNow(period, c); got != want {
				t.Errorf("calcNow(%d, %#x) = %#x, want %#x", period, c, got, want)
			}
		}
	}
}

// TestCalcNowRace models a period bump landing between the two reads of
// Now: the period is stale, the counter already sits in the new half. The
// result must be the first value of the new period, never a value a full
// period off and never a regression.
func TestCalcNowRace(t *testing.T) {
	testCases := []struct {
		name       string
		stale      uint32 // period read before the bump
		counter    uint32 // counter read after the hardware moved on
		lastBefore uint64 // final timestamp of the old period
	}{
		{"compare boundary", 0, 0x800000, 0x7FFFFF},
		{"overflow boundary", 1, 0x000000, 0xFFFFFF},
		{"compare boundary, later cycle", 2, 0x800000, 0x1_7FFFFF},
		{"overflow boundary, later cycle", 3, 0x000000, 0x1_FFFFFF},
	}

	for _, tc := range testCases {
		got := calcNow(tc.stale, tc.counter)
		fresh := calcNow(tc.stale+1, tc.counter)
		if got != fresh {
			t.Errorf("%s: stale read %#x differs from settled read %#x", tc.name, got, fresh)
		}
		if got != tc.lastBefore+1 {
			t.Errorf("%s: stale read %#x, want %#x", tc.name, got, tc.lastBefore+1)
		}
	}
}

func TestTicksFromDurations(t *testing.T) {
	// One tick is 1e9/32768 ns, a hair over 30517ns. Conversions round up
	// so a wait never ends before the requested real time.
	testCases := []struct {
		name string
		fn   func(uint64) uint64
		in   uint64
		want uint64
	}{
		{"ns zero", TicksFromNanoseconds, 0, 0},
		{"ns one", TicksFromNanoseconds, 1, 1},
		{"ns just under a tick", TicksFromNanoseconds, 30517, 1},
		{"ns just over a tick", TicksFromNanoseconds, 30518, 2},
		{"ns one second", TicksFromNanoseconds, 1_000_000_000, TickRate},
		{"ns one hour", TicksFromNanoseconds, 3_600_000_000_000, 3600 * TickRate},
		{"us one", TicksFromMicroseconds, 1, 1},
		{"us one second", TicksFromMicroseconds, 1_000_000, TickRate},
		{"ms one", TicksFromMilliseconds, 1, 33},
		{"ms one second", TicksFromMilliseconds, 1000, TickRate},
		{"ms one day", TicksFromMilliseconds, 86_400_000, 86400 * TickRate},
	}

	for _, tc := range testCases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%s: got %d ticks, want %d", tc.name, got, tc.want)
		}
	}
}

func TestDefaultPanicsBeforeInit(t *testing.T) {
	defer SetDefault(nil)
	SetDefault(nil)

	defer func() {
		if recover() == nil {
			t.Fatal("Default() should panic before initialization")
		}
	}()
	Default()
}
