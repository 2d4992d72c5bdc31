package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// Options configures the day stepper.
type Options struct {
	Title           string // scenario description shown under the header
	Days            int    // configured simulation length; 0 means len(history)
	SummaryTemplate string // markdown summary template, toggled with s
}

// Model is the bubbletea model for stepping through a finished simulation.
type Model struct {
	history     []stats.ProcessStatistic
	events      map[int][]event.Event // keyed by day
	opts        Options
	index       int // position in history
	showSummary bool
	logViewport viewport.Model
	renderer    *glamour.TermRenderer
	width       int
	height      int
	ready       bool
}

// NewModel creates a Model positioned on the first day.
func NewModel(history []stats.ProcessStatistic, events []event.Event, opts Options) Model {
	byDay := make(map[int][]event.Event)
	for _, e := range events {
		byDay[e.Day] = append(byDay[e.Day], e)
	}
	if opts.Days <= 0 {
		opts.Days = len(history)
	}
	return Model{
		history: history,
		events:  byDay,
		opts:    opts,
	}
}

// Day returns the simulated day currently shown, or 0 without history.
func (m Model) Day() int {
	if len(m.history) == 0 {
		return 0
	}
	return m.history[m.index].Day
}

func (m Model) current() (stats.ProcessStatistic, bool) {
	if len(m.history) == 0 {
		return stats.ProcessStatistic{}, false
	}
	return m.history[m.index], true
}

// Recorder collects engine events for the viewer.
type Recorder struct {
	events []event.Event
}

// Handler returns an event handler appending to the recorder.
func (r *Recorder) Handler() event.Handler {
	return func(e event.Event) {
		r.events = append(r.events, e)
	}
}

// Events returns everything recorded so far.
func (r *Recorder) Events() []event.Event {
	return r.events
}

type rendererReadyMsg struct {
	renderer *glamour.TermRenderer
}
