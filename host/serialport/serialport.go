// Package serialport opens the serial link to the device for host-side
// tools.
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Config describes the serial link.
type Config struct {
	Device      string // e.g. /dev/ttyACM0
	Baud        int    // ignored by USB CDC links
	ReadTimeout time.Duration
}

// Open opens the configured port. The read timeout keeps host read loops
// cancelable: reads return with no data instead of blocking forever.
func Open(cfg Config) (io.ReadWriteCloser, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("no serial device given")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return port, nil
}
