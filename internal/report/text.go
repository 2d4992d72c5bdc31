package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

type textStyler struct {
	styled bool
}

func (s textStyler) render(style lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}
	return style.Render(text)
}

// Text writes the per-day queue metrics followed by the task completion
// summary of the last day.
func Text(w io.Writer, history []stats.ProcessStatistic, styled bool) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	st := textStyler{styled: styled}

	var b strings.Builder
	b.WriteString(st.render(titleStyle, "Simulation Results:") + "\n\n")
	for _, day := range history {
		b.WriteString(st.render(dayStyle, dayLabel(day.Day)+":") + "\n")
		for _, m := range dailyMetrics(day) {
			fmt.Fprintf(&b, "  %s %s\n", st.render(labelStyle, m.name+":"), st.render(valueStyle, fmt.Sprint(m.value)))
		}
		b.WriteString("\n")
	}

	writeCompletionSummary(&b, last(history), st)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCompletionSummary(b *strings.Builder, final stats.ProcessStatistic, st textStyler) {
	stories := final.Stories()
	if len(stories) == 0 {
		return
	}

	b.WriteString(st.render(titleStyle, "Task Completion Summary:") + "\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, s := range stories {
		fmt.Fprintf(b, "\nStory %s:\n", s.ID)
		if len(s.Timeline.Completed) > 0 {
			b.WriteString("  Completed Tasks:\n")
			for _, pd := range s.Timeline.Completed {
				fmt.Fprintf(b, "    %s: %s\n", pd.Phase, st.render(doneStyle, fmt.Sprintf("Day %d", pd.Day)))
			}
		}
		if len(s.Timeline.Pending) > 0 {
			b.WriteString("  Pending Tasks:\n")
			for _, pd := range s.Timeline.Pending {
				fmt.Fprintf(b, "    %s: %s\n", pd.Phase, st.render(pendingStyle, "Not completed"))
			}
		}
	}
}
