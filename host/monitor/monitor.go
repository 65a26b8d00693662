// Package monitor consumes the device's clock sample stream and checks it
// for monotonicity, lost frames and drift against the nominal tick rate.
package monitor

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/moddedTechnic/nrf-time/clock"
	"github.com/moddedTechnic/nrf-time/wire"
)

// Stats summarizes the sample stream so far.
type Stats struct {
	Samples     uint64
	Dropped     uint64 // bytes/frames discarded by the decoder
	SeqGaps     uint64 // skipped sequence numbers (lost frames)
	Regressions uint64 // samples whose tick went backwards

	FirstTick uint64
	LastTick  uint64

	// DriftPPM compares ticks elapsed on the device against wall time
	// elapsed on the host, in parts per million. Positive means the
	// device clock runs fast.
	DriftPPM float64
}

// Monitor reads samples from a stream and accumulates Stats.
type Monitor struct {
	dec *wire.Decoder
	log hclog.Logger

	// nowFn is swapped out in tests for a deterministic wall clock.
	nowFn func() time.Time

	mu      sync.Mutex
	stats   Stats
	lastSeq uint8
	firstAt time.Time
}

// New returns a monitor reading frames from r.
func New(r io.Reader, log hclog.Logger) *Monitor {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Monitor{
		dec:   wire.NewDecoder(r),
		log:   log,
		nowFn: time.Now,
	}
}

// Run consumes samples until the stream ends or ctx is cancelled. Callers
// unblock a pending read by closing the underlying port. A clean EOF
// returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		s, err := m.dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		m.observe(s, m.nowFn())

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (m *Monitor) observe(s wire.Sample, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := &m.stats
	if st.Samples == 0 {
		st.FirstTick = s.Tick
		st.LastTick = s.Tick
		m.firstAt = at
		m.lastSeq = s.Seq
		st.Samples = 1
		m.log.Debug("first sample", "seq", s.Seq, "tick", s.Tick)
		return
	}

	if want := m.lastSeq + 1; s.Seq != want {
		gap := uint64(s.Seq - want) // wraps correctly in uint8 space
		st.SeqGaps += gap
		m.log.Warn("sequence gap", "want", want, "got", s.Seq, "lost", gap)
	}
	m.lastSeq = s.Seq

	if s.Tick < st.LastTick {
		st.Regressions++
		m.log.Error("clock regression", "from", st.LastTick, "to", s.Tick)
	}
	st.LastTick = s.Tick
	st.Samples++
	st.Dropped = m.dec.Dropped

	if wall := at.Sub(m.firstAt); wall > 0 {
		expected := wall.Seconds() * clock.TickRate
		actual := float64(s.Tick - st.FirstTick)
		st.DriftPPM = (actual - expected) / expected * 1e6
	}
}

// Stats returns a snapshot of the accumulated statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Reset discards accumulated statistics. The next sample starts a fresh
// baseline for drift estimation.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = Stats{}
	m.dec.Dropped = 0
}
