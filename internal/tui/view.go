package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

func sidebarWidthFor(width int) int {
	return max(36, min(50, width*35/100))
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	sidebarWidth := sidebarWidthFor(m.width)
	mainWidth := m.width - sidebarWidth - 4
	contentHeight := m.height - 3

	sidebar := m.renderSidebar(sidebarWidth - 4)
	sidebarBox := statusBoxStyle.Width(sidebarWidth).Height(contentHeight).Render(sidebar)

	logHeader := fmt.Sprintf("Day %d events", m.Day())
	if m.showSummary {
		logHeader = fmt.Sprintf("Summary after day %d", m.Day())
	}
	if m.logViewport.TotalLineCount() > m.logViewport.Height {
		logHeader += fmt.Sprintf(" (%d lines, %d%%)", m.logViewport.TotalLineCount(), int(m.logViewport.ScrollPercent()*100))
	}

	logsContent := labelStyle.Render(logHeader) + "\n" + m.logViewport.View()
	logsBox := logBoxStyle.Width(mainWidth).Height(contentHeight).Render(logsContent)

	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebarBox, logsBox)
	return main + "\n" + m.renderHelp()
}

// renderSidebar composes all sidebar sections.
func (m Model) renderSidebar(width int) string {
	var b strings.Builder

	b.WriteString(m.renderSidebarHeader(width))

	st, ok := m.current()
	if !ok {
		b.WriteString(labelStyle.Render("No simulated days"))
		return b.String()
	}
	b.WriteString(m.renderSidebarQueues(st, width))
	b.WriteString(m.renderSidebarSteps(st, width))
	b.WriteString(m.renderSidebarFeatures(st, width))
	return b.String()
}

func (m Model) renderSidebarHeader(width int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("⚡ DEVCYCLESIM"))
	b.WriteString("\n")
	if m.opts.Title != "" {
		b.WriteString(labelStyle.Render(truncate(m.opts.Title, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dayStyle.Render(fmt.Sprintf("Day %d/%d", m.Day(), m.opts.Days)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderSidebarQueues(st stats.ProcessStatistic, width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sectionHeader("Work", width))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Backlog:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", st.BacklogCount)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Finished: "))
	b.WriteString(finishedStyle.Render(fmt.Sprintf("%d/%d", st.FinishedWorkCount, st.StoryCount())))
	b.WriteString("\n")
	done := st.DailyCompletion()
	b.WriteString(labelStyle.Render("Tasks:    "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d/%d (+%d today)", done.TasksCompleted, st.TotalTasks(), done.Today())))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderSidebarSteps(st stats.ProcessStatistic, width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sectionHeader("Steps", width))
	b.WriteString("\n")

	for _, phase := range domain.Phases {
		step := st.Step(phase)
		b.WriteString(phaseStyle.Render(fmt.Sprintf("%-8s", phase.String())))
		b.WriteString(labelStyle.Render(" in "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", step.Input)))
		b.WriteString(labelStyle.Render(" wip "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", step.WIP)))
		b.WriteString(labelStyle.Render(" done "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", step.Done)))
		b.WriteString("\n")
		b.WriteString(capacityBar(step.WIP, step.Capacity, max(width-10, 10)))
		b.WriteString(labelStyle.Render(fmt.Sprintf(" %d/%d", step.WIP, step.Capacity)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSidebarFeatures(st stats.ProcessStatistic, width int) string {
	features := st.Features()
	if len(features) < 2 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sectionHeader("Features", width))
	b.WriteString("\n")
	for _, f := range features {
		counts := st.FeatureCounts(f)
		b.WriteString(labelStyle.Render(truncate(f, width-8) + " "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d/%d", counts.Finished, counts.Total())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	parts := []string{"←/→: day", "home/end: first/last", "↑/↓: scroll"}
	if m.showSummary {
		parts = append(parts, "s: events")
	} else {
		parts = append(parts, "s: summary")
	}
	parts = append(parts, "q: quit")
	return helpStyle.Render(strings.Join(parts, " • "))
}

func sectionHeader(title string, width int) string {
	padding := max(1, (width-len(title)-2)/2)
	line := strings.Repeat("─", padding)
	return labelStyle.Render(line+" ") + valueStyle.Render(title) + labelStyle.Render(" "+line)
}

// capacityBar draws used out of capacity as a width-cell bar.
func capacityBar(used, capacity, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if capacity > 0 {
		filled = min(width, used*width/capacity)
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
