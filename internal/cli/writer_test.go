package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

func newTestWriter(buf *bytes.Buffer) *Writer {
	return &Writer{
		out:   buf,
		isTTY: false,
		width: 80,
		mu:    sync.Mutex{},
	}
}

func newTestWriterTTY(buf *bytes.Buffer) *Writer {
	return &Writer{
		out:   buf,
		isTTY: true,
		width: 80,
		mu:    sync.Mutex{},
	}
}

func footerStatistic() stats.ProcessStatistic {
	var steps [domain.PhaseCount]stats.StepStatistic
	steps[domain.PhaseSpec] = stats.StepStatistic{Input: 1, WIP: 2, Done: 0, Capacity: 2}
	steps[domain.PhaseDev] = stats.StepStatistic{WIP: 3, Capacity: 3}
	return stats.New(3, 5, steps, 2, nil)
}

func TestWriteEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    event.Event
		contains []string
	}{
		{"day started", event.DayStarted(4), []string{"Day 4"}},
		{"capacity changed", event.CapacityChanged(2, domain.PhaseDev, 3, 1), []string{"DEV capacity 3 -> 1"}},
		{"pulled", event.Pulled(1, "S-1"), []string{"S-1 pulled from backlog"}},
		{"admitted", event.Admitted(1, "S-1", domain.PhaseSpec), []string{"S-1 started in SPEC"}},
		{"evicted", event.Evicted(2, "S-2", domain.PhaseDev), []string{"S-2 paused in DEV"}},
		{"phase completed", event.PhaseCompleted(2, "S-1", domain.PhaseSpec), []string{"S-1 completed SPEC work"}},
		{"routed", event.Routed(3, "S-1", domain.PhaseSpec, domain.PhaseDev), []string{"S-1 moved SPEC -> DEV"}},
		{"reworked", event.Reworked(5, "S-1", domain.PhaseTest, domain.PhaseDev), []string{"S-1 sent back TEST -> DEV"}},
		{"finished", event.Finished(9, "S-1", domain.PhaseRollout), []string{"S-1 finished"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := newTestWriter(&buf)

			w.WriteEvent(tt.event)

			output := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
			assert.True(t, strings.HasSuffix(output, "\n"))
		})
	}
}

func TestWriteEvent_TTYMode(t *testing.T) {
	tests := []struct {
		name    string
		isTTY   bool
		hasANSI bool
	}{
		{"non-TTY has no ANSI", false, false},
		{"TTY has ANSI", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var w *Writer
			if tt.isTTY {
				w = newTestWriterTTY(&buf)
			} else {
				w = newTestWriter(&buf)
			}

			w.WriteEvent(event.Reworked(1, "S-1", domain.PhaseTest, domain.PhaseDev))

			output := buf.String()
			if tt.hasANSI {
				assert.Contains(t, output, "\033[")
			} else {
				assert.NotContains(t, output, "\033[")
			}
			assert.Contains(t, output, "S-1 sent back TEST -> DEV")
		})
	}
}

func TestWriteDiff(t *testing.T) {
	diff := "--- baseline\n+++ candidate\n@@ -1,2 +1,2 @@\n context\n-old\n+new\n"

	var plain bytes.Buffer
	newTestWriter(&plain).WriteDiff(diff)
	assert.Equal(t, diff, plain.String())

	var colored bytes.Buffer
	newTestWriterTTY(&colored).WriteDiff(diff)
	out := colored.String()
	assert.Contains(t, out, bold("--- baseline"))
	assert.Contains(t, out, fg(colorGreen, "+new"))
	assert.Contains(t, out, fg(colorRed, "-old"))
	assert.Contains(t, out, fg(colorCyan, "@@ -1,2 +1,2 @@"))
	assert.Contains(t, out, dim(" context"))
}

func TestUpdateFooter(t *testing.T) {
	tests := []struct {
		name       string
		isTTY      bool
		wantOutput bool
		contains   []string
	}{
		{
			name:       "TTY renders footer",
			isTTY:      true,
			wantOutput: true,
			contains:   []string{"day 3/14", "backlog", "5", "SPEC", "1/2/0 cap 2", "0/3/0 cap 3"},
		},
		{
			name:       "non-TTY produces no footer",
			isTTY:      false,
			wantOutput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var w *Writer
			if tt.isTTY {
				w = newTestWriterTTY(&buf)
			} else {
				w = newTestWriter(&buf)
			}

			w.UpdateFooter(footerStatistic(), 14)

			output := buf.String()
			if tt.wantOutput {
				for _, s := range tt.contains {
					assert.Contains(t, output, s)
				}
				assert.Equal(t, 3, w.footerLines)
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

func TestClearFooter(t *testing.T) {
	tests := []struct {
		name       string
		isTTY      bool
		wantOutput bool
	}{
		{"TTY clears footer", true, true},
		{"non-TTY is noop", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var w *Writer
			if tt.isTTY {
				w = newTestWriterTTY(&buf)
				w.UpdateFooter(footerStatistic(), 14)
				buf.Reset()
			} else {
				w = newTestWriter(&buf)
			}

			w.ClearFooter()

			output := buf.String()
			if tt.wantOutput {
				assert.Equal(t, strings.Repeat("\033[A\033[2K", 3), output)
			} else {
				assert.Empty(t, output)
			}
			assert.Zero(t, w.footerLines)
		})
	}
}

func TestWriteEvent_RedrawsFooter(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriterTTY(&buf)
	w.UpdateFooter(footerStatistic(), 14)
	buf.Reset()

	w.WriteEvent(event.Pulled(4, "S-9"))

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, strings.Repeat("\033[A\033[2K", 3)))
	assert.Contains(t, output, "S-9 pulled from backlog")
	assert.Contains(t, output, "day 3/14")
}

func TestWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriter(&buf)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Handler()(event.Finished(1, "S", domain.PhaseRollout))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, strings.Count(buf.String(), "S finished"))
}

func TestWriter_ConcurrentWriteAndFooter(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWriterTTY(&buf)
	st := footerStatistic()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.WriteEvent(event.DayStarted(1))
		}()
		go func() {
			defer wg.Done()
			w.UpdateFooter(st, 14)
		}()
	}
	wg.Wait()

	assert.NotEmpty(t, buf.String())
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		name      string
		isTTY     bool
		width     int
		wantTTY   bool
		wantWidth int
	}{
		{"non-TTY with zero width defaults to 80", false, 0, false, 80},
		{"TTY with custom width", true, 120, true, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.isTTY, tt.width)

			assert.Equal(t, tt.wantTTY, w.isTTY)
			assert.Equal(t, tt.wantWidth, w.width)
		})
	}
}
