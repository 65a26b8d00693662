package monitor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moddedTechnic/nrf-time/clock"
	"github.com/moddedTechnic/nrf-time/wire"
)

// fakeWall hands out wall-clock timestamps advancing by a fixed step per
// sample.
type fakeWall struct {
	now  time.Time
	step time.Duration
}

func (w *fakeWall) tick() time.Time {
	t := w.now
	w.now = w.now.Add(w.step)
	return t
}

func runMonitor(t *testing.T, stream []byte, step time.Duration) *Monitor {
	t.Helper()
	m := New(bytes.NewReader(stream), nil)
	wall := &fakeWall{now: time.Unix(1000, 0), step: step}
	m.nowFn = wall.tick

	require.NoError(t, m.Run(context.Background()))
	return m
}

func appendSamples(dst []byte, samples ...wire.Sample) []byte {
	for _, s := range samples {
		dst = wire.AppendSample(dst, s)
	}
	return dst
}

func TestCleanStream(t *testing.T) {
	// One sample per second, device ticking at exactly the nominal rate.
	stream := appendSamples(nil,
		wire.Sample{Seq: 0, Tick: 0},
		wire.Sample{Seq: 1, Tick: 1 * clock.TickRate},
		wire.Sample{Seq: 2, Tick: 2 * clock.TickRate},
		wire.Sample{Seq: 3, Tick: 3 * clock.TickRate},
	)

	m := runMonitor(t, stream, time.Second)
	st := m.Stats()

	assert.EqualValues(t, 4, st.Samples)
	assert.EqualValues(t, 0, st.SeqGaps)
	assert.EqualValues(t, 0, st.Regressions)
	assert.EqualValues(t, 0, st.Dropped)
	assert.EqualValues(t, 0, st.FirstTick)
	assert.EqualValues(t, 3*clock.TickRate, st.LastTick)
	assert.InDelta(t, 0, st.DriftPPM, 0.001)
}

func TestDetectsRegression(t *testing.T) {
	stream := appendSamples(nil,
		wire.Sample{Seq: 0, Tick: 5000},
		wire.Sample{Seq: 1, Tick: 6000},
		wire.Sample{Seq: 2, Tick: 5500},
	)

	m := runMonitor(t, stream, time.Millisecond)
	assert.EqualValues(t, 1, m.Stats().Regressions)
}

func TestDetectsSequenceGaps(t *testing.T) {
	stream := appendSamples(nil,
		wire.Sample{Seq: 250, Tick: 100},
		wire.Sample{Seq: 251, Tick: 200},
		wire.Sample{Seq: 2, Tick: 300}, // 252..1 lost, wrap across 255
	)

	m := runMonitor(t, stream, time.Millisecond)
	assert.EqualValues(t, 6, m.Stats().SeqGaps)
}

func TestCountsDecoderDrops(t *testing.T) {
	stream := []byte{0xAA, 0xBB}
	stream = appendSamples(stream,
		wire.Sample{Seq: 0, Tick: 100},
		wire.Sample{Seq: 1, Tick: 200},
	)

	m := runMonitor(t, stream, time.Millisecond)
	assert.EqualValues(t, 2, m.Stats().Dropped)
}

func TestDriftEstimate(t *testing.T) {
	// Device reports 1% more ticks than a second's worth each second.
	rate := float64(clock.TickRate)
	fast := uint64(rate * 1.01)
	stream := appendSamples(nil,
		wire.Sample{Seq: 0, Tick: 0},
		wire.Sample{Seq: 1, Tick: fast},
		wire.Sample{Seq: 2, Tick: 2 * fast},
	)

	m := runMonitor(t, stream, time.Second)
	assert.InDelta(t, 10_000, m.Stats().DriftPPM, 50)
}

func TestReset(t *testing.T) {
	stream := appendSamples(nil,
		wire.Sample{Seq: 0, Tick: 100},
		wire.Sample{Seq: 5, Tick: 50}, // gap and regression
	)

	m := runMonitor(t, stream, time.Millisecond)
	require.NotZero(t, m.Stats().SeqGaps)
	require.NotZero(t, m.Stats().Regressions)

	m.Reset()
	st := m.Stats()
	assert.Zero(t, st.Samples)
	assert.Zero(t, st.SeqGaps)
	assert.Zero(t, st.Regressions)
}
