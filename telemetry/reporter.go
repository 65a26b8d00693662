// Package telemetry streams clock samples from the device side onto any byte
// sink, typically a UART, so a host can watch the clock run.
package telemetry

import (
	"io"

	"github.com/moddedTechnic/nrf-time/clock"
	"github.com/moddedTechnic/nrf-time/wire"
)

// Reporter samples a clock and writes one frame per Report call. Call it
// from task context on whatever cadence suits the link; it is not
// interrupt-safe.
type Reporter struct {
	clk clock.Clock
	w   io.Writer
	seq uint8
	buf [wire.FrameLen]byte
}

// NewReporter returns a reporter sampling clk and writing frames to w.
func NewReporter(clk clock.Clock, w io.Writer) *Reporter {
	return &Reporter{clk: clk, w: w}
}

// Report samples the clock and writes one frame. The frame buffer is reused,
// so steady-state reporting does not allocate.
func (r *Reporter) Report() error {
	frame := wire.AppendSample(r.buf[:0], wire.Sample{Seq: r.seq, Tick: r.clk.Now()})
	r.seq++
	_, err := r.w.Write(frame)
	return err
}
