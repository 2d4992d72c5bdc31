// Package debug provides debug logging utilities.
package debug

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexander-akhmetov/devcyclesim/internal/event"
)

var (
	enabled           = os.Getenv("DEVCYCLESIM_DEBUG") == "1"
	out     io.Writer = os.Stderr
)

// Logf writes a debug message to stderr if DEVCYCLESIM_DEBUG=1
func Logf(format string, args ...any) {
	if !enabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(out, "[DEBUG %s] %s\n", timestamp, msg)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled
}

// EventHandler traces every engine event. It returns nil when debug logging
// is off so callers can pass it straight to event.Multi.
func EventHandler() event.Handler {
	if !enabled {
		return nil
	}
	return func(e event.Event) {
		Logf("day %d %s: %s", e.Day, e.Kind, e.Text)
	}
}
