package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// ANSI 256-color codes.
const (
	colorOrange  = 208 // evictions
	colorGreen   = 42  // finished stories, diff add
	colorRed     = 196 // rework, diff del
	colorCyan    = 117 // capacity changes, diff hunk
	colorDim     = 241 // labels, admissions, diff context
	colorWhite   = 255 // values
	colorMagenta = 205 // day header
	colorPink    = 212 // forward routing
)

// Writer prints engine events and redraws a sticky progress footer in TTY
// mode. In non-TTY mode, it prints plain text without ANSI escapes or footer.
type Writer struct {
	out         io.Writer
	isTTY       bool
	width       int
	mu          sync.Mutex
	footerLines int
	lastFooter  []string // last rendered footer lines for redraw
}

// NewWriter creates a Writer. If width is <= 0, defaults to 80.
func NewWriter(out io.Writer, isTTY bool, width int) *Writer {
	if width <= 0 {
		width = 80
	}
	return &Writer{
		out:   out,
		isTTY: isTTY,
		width: width,
	}
}

// WriteEvent prints a single event to the output stream.
func (w *Writer) WriteEvent(ev event.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseFooter()

	var line string
	switch ev.Kind {
	case event.KindDayStarted:
		line = w.styleBold(colorMagenta, fmt.Sprintf("Day %d", ev.Day))
	case event.KindCapacityChanged:
		line = "  " + w.style(colorCyan, ev.Text)
	case event.KindPulled, event.KindAdmitted, event.KindPhaseCompleted:
		line = "  " + w.style(colorDim, ev.Text)
	case event.KindEvicted:
		line = "  " + w.style(colorOrange, ev.Text)
	case event.KindRouted:
		line = "  " + w.style(colorPink, ev.Text)
	case event.KindReworked:
		line = "  " + w.styleBold(colorRed, ev.Text)
	case event.KindFinished:
		line = "  " + w.styleBold(colorGreen, ev.Text)
	default:
		line = "  " + ev.Text
	}

	fmt.Fprintln(w.out, line)
	w.redrawFooter()
}

// Handler returns WriteEvent as an event handler.
func (w *Writer) Handler() event.Handler {
	return w.WriteEvent
}

// WriteDiff prints a unified diff, colored line by line in TTY mode.
func (w *Writer) WriteDiff(diff string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseFooter()
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		fmt.Fprintln(w.out, w.formatDiffLine(line))
	}
	w.redrawFooter()
}

func (w *Writer) formatDiffLine(line string) string {
	if !w.isTTY {
		return line
	}
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return bold(line)
	case strings.HasPrefix(line, "+"):
		return fg(colorGreen, line)
	case strings.HasPrefix(line, "-"):
		return fg(colorRed, line)
	case strings.HasPrefix(line, "@@"):
		return fg(colorCyan, line)
	default:
		return dim(line)
	}
}

// UpdateFooter redraws the sticky footer with the state of the last day.
func (w *Writer) UpdateFooter(st stats.ProcessStatistic, days int) {
	if !w.isTTY {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseFooter()

	lines := w.buildFooter(st, days)
	w.lastFooter = lines
	w.footerLines = len(lines)

	for _, line := range lines {
		fmt.Fprintln(w.out, line)
	}
}

// ClearFooter erases the sticky footer from the terminal.
func (w *Writer) ClearFooter() {
	if !w.isTTY {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.eraseFooter()
	w.footerLines = 0
	w.lastFooter = nil
}

// eraseFooter moves cursor up and clears the footer lines. Must be called with mu held.
func (w *Writer) eraseFooter() {
	if w.footerLines == 0 || !w.isTTY {
		return
	}
	for range w.footerLines {
		fmt.Fprint(w.out, "\033[A\033[2K")
	}
}

// redrawFooter redraws the last-known footer after an event line was printed.
// Must be called with mu held.
func (w *Writer) redrawFooter() {
	if len(w.lastFooter) == 0 || !w.isTTY {
		return
	}
	for _, line := range w.lastFooter {
		fmt.Fprintln(w.out, line)
	}
	w.footerLines = len(w.lastFooter)
}

// buildFooter composes the footer lines.
func (w *Writer) buildFooter(st stats.ProcessStatistic, days int) []string {
	var lines []string

	sep := strings.Repeat("─", min(w.width, 80))
	lines = append(lines, w.style(colorDim, sep))

	parts := []string{
		w.styleBold(colorMagenta, fmt.Sprintf("day %d/%d", st.Day, days)),
		fmt.Sprintf("backlog %s", w.style(colorWhite, fmt.Sprint(st.BacklogCount))),
		fmt.Sprintf("finished %s", w.style(colorWhite, fmt.Sprint(st.FinishedWorkCount))),
	}
	lines = append(lines, strings.Join(parts, w.style(colorDim, " | ")))

	var steps []string
	for _, phase := range domain.Phases {
		s := st.Step(phase)
		steps = append(steps, fmt.Sprintf("%s %s", w.style(colorPink, phase.String()),
			w.style(colorWhite, fmt.Sprintf("%d/%d/%d cap %d", s.Input, s.WIP, s.Done, s.Capacity))))
	}
	lines = append(lines, strings.Join(steps, w.style(colorDim, " | ")))

	return lines
}

// style wraps text with 256-color foreground in TTY mode, plain in non-TTY.
func (w *Writer) style(color int, text string) string {
	if w.isTTY {
		return fg(color, text)
	}
	return text
}

// styleBold wraps text with 256-color foreground and bold in TTY mode.
func (w *Writer) styleBold(color int, text string) string {
	if w.isTTY {
		return fgBold(color, text)
	}
	return text
}
