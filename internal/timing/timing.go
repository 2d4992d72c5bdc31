// Package timing logs checkpoints of a run when DEVCYCLESIM_DEBUG_TIMING=1.
package timing

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu        sync.Mutex
	enabled   bool
	out       io.Writer = os.Stderr
	startTime time.Time
	lastTime  time.Time
)

func init() {
	if os.Getenv("DEVCYCLESIM_DEBUG_TIMING") == "1" {
		Enable(os.Stderr)
	}
}

// Enable turns checkpoint logging on and restarts the clock.
func Enable(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
	out = w
	startTime = time.Now()
	lastTime = startTime
}

// Disable turns checkpoint logging off.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// Log writes a checkpoint with the time since the previous one and since
// the start.
func Log(label string) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	now := time.Now()
	sinceLast := now.Sub(lastTime)
	sinceStart := now.Sub(startTime)
	fmt.Fprintf(out, "[TIMING] %s: +%dms (total: %dms)\n", label, sinceLast.Milliseconds(), sinceStart.Milliseconds())
	lastTime = now
}
