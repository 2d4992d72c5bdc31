// Package report renders the day-by-day statistics of a finished simulation
// as text, JSON, CSV or a markdown summary, and diffs two reports.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// Format is an output format name.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

var (
	// ErrUnknownFormat reports an unsupported format name.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrEmptyHistory reports a render call without any recorded day.
	ErrEmptyHistory = errors.New("no statistics to report")
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (expected text, json, csv or markdown)", ErrUnknownFormat, s)
}

// Options controls rendering.
type Options struct {
	Format Format
	// Styled enables terminal styling: lipgloss for text, glamour for markdown.
	Styled bool
	Width  int
	// SummaryTemplate is the text/template used by the markdown format.
	SummaryTemplate string
	// Days is the configured simulation length; 0 means len(history).
	Days int
}

// Render writes history in the requested format.
func Render(w io.Writer, history []stats.ProcessStatistic, opts Options) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	switch opts.Format {
	case FormatText, "":
		return Text(w, history, opts.Styled)
	case FormatJSON:
		return JSON(w, history)
	case FormatCSV:
		return CSV(w, history)
	case FormatMarkdown:
		return Markdown(w, history, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

// metric is one named value of a daily row.
type metric struct {
	name  string
	value int
}

// dailyMetrics returns the queue metrics of a day in report column order.
func dailyMetrics(st stats.ProcessStatistic) []metric {
	out := make([]metric, 0, 2+3*domain.PhaseCount)
	out = append(out, metric{"Backlog", st.BacklogCount})
	for _, phase := range domain.Phases {
		s := st.Step(phase)
		out = append(out,
			metric{phase.String() + " Input", s.Input},
			metric{phase.String() + " WIP", s.WIP},
			metric{phase.String() + " Done", s.Done},
		)
	}
	return append(out, metric{"Finished Stories", st.FinishedWorkCount})
}

func dayLabel(day int) string {
	return fmt.Sprintf("Day %d", day)
}

func last(history []stats.ProcessStatistic) stats.ProcessStatistic {
	return history[len(history)-1]
}
