package report

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// SummaryData is the value the markdown summary template executes against.
type SummaryData struct {
	Day            int
	Days           int
	Backlog        int
	Finished       int
	Stories        int
	TasksCompleted int
	TasksTotal     int
	Steps          []StepRow
	Features       []FeatureRow
	Throughput     float64 // finished stories per simulated day
}

// StepRow is one pipeline step in the summary.
type StepRow struct {
	Name     string
	Input    int
	WIP      int
	Done     int
	Capacity int
}

// FeatureRow is one feature in the summary.
type FeatureRow struct {
	Name     string
	Finished int
	Total    int
}

// Summarize builds the summary of the last recorded day.
func Summarize(history []stats.ProcessStatistic, days int) (SummaryData, error) {
	if len(history) == 0 {
		return SummaryData{}, ErrEmptyHistory
	}
	final := last(history)
	if days <= 0 {
		days = len(history)
	}

	data := SummaryData{
		Day:            final.Day,
		Days:           days,
		Backlog:        final.BacklogCount,
		Finished:       final.FinishedWorkCount,
		Stories:        len(final.Stories()),
		TasksCompleted: final.DailyCompletion().TasksCompleted,
		TasksTotal:     final.TotalTasks(),
	}
	for _, phase := range domain.Phases {
		s := final.Step(phase)
		data.Steps = append(data.Steps, StepRow{
			Name:     phase.String(),
			Input:    s.Input,
			WIP:      s.WIP,
			Done:     s.Done,
			Capacity: s.Capacity,
		})
	}
	for _, f := range final.Features() {
		counts := final.FeatureCounts(f)
		data.Features = append(data.Features, FeatureRow{Name: f, Finished: counts.Finished, Total: counts.Total()})
	}
	if final.Day > 0 {
		data.Throughput = float64(final.FinishedWorkCount) / float64(final.Day)
	}
	return data, nil
}

// Markdown executes opts.SummaryTemplate over the final day. With
// opts.Styled the result is rendered for the terminal through glamour.
func Markdown(w io.Writer, history []stats.ProcessStatistic, opts Options) error {
	data, err := Summarize(history, opts.Days)
	if err != nil {
		return err
	}

	tpl, err := template.New("summary").Parse(opts.SummaryTemplate)
	if err != nil {
		return fmt.Errorf("parse summary template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute summary template: %w", err)
	}

	out := buf.String()
	if opts.Styled {
		width := opts.Width
		if width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(max(width-6, 40)),
		)
		if err == nil {
			if rendered, err := r.Render(out); err == nil {
				out = rendered
			}
		}
	}

	_, err = io.WriteString(w, out)
	return err
}
