// Command tickmon watches the clock sample stream a device emits over
// serial and reports monotonicity violations, lost frames and drift.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/shlex"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/moddedTechnic/nrf-time/clock"
	"github.com/moddedTechnic/nrf-time/host/monitor"
	"github.com/moddedTechnic/nrf-time/host/serialport"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	level := hclog.Info
	if *verbose {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "tickmon",
		Level: level,
	})

	port, err := serialport.Open(serialport.Config{Device: *device, Baud: *baud})
	if err != nil {
		log.Error("connect failed", "error", err)
		os.Exit(1)
	}

	log.Info("connected", "device", *device, "tick_rate_hz", clock.TickRate)
	mon := monitor.New(port, log)

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return mon.Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		// Closing the port unblocks the monitor's pending read.
		defer port.Close()
		return commandLoop(ctx, mon)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error("monitor stopped", "error", err)
		os.Exit(1)
	}
}

func commandLoop(ctx context.Context, mon *monitor.Monitor) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Printf("parse error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			return nil

		case "help", "?":
			printHelp()

		case "stats":
			printStats(mon.Stats())

		case "reset":
			mon.Reset()
			fmt.Println("statistics cleared")

		default:
			fmt.Printf("unknown command %q (try 'help')\n", args[0])
		}
	}
}

func printStats(st monitor.Stats) {
	fmt.Printf("samples:      %d\n", st.Samples)
	fmt.Printf("dropped:      %d\n", st.Dropped)
	fmt.Printf("seq gaps:     %d\n", st.SeqGaps)
	fmt.Printf("regressions:  %d\n", st.Regressions)
	fmt.Printf("last tick:    %d\n", st.LastTick)
	if st.Samples > 1 {
		elapsed := time.Duration(float64(st.LastTick-st.FirstTick) / clock.TickRate * float64(time.Second))
		fmt.Printf("device time:  %s\n", elapsed)
		fmt.Printf("drift:        %+.1f ppm\n", st.DriftPPM)
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  stats   Show stream statistics")
	fmt.Println("  reset   Clear statistics and drift baseline")
	fmt.Println("  help    Show this help")
	fmt.Println("  quit    Exit")
}
