package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/alexander-akhmetov/devcyclesim/internal/debug"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/report"
)

func createRendererCmd(width int) tea.Cmd {
	return func() tea.Msg {
		viewportWidth := max(width-6, 40)
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(viewportWidth),
		)
		if err != nil {
			debug.Logf("tui: failed to create glamour renderer: %v", err)
		}
		return rendererReadyMsg{renderer: renderer}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.WindowSize()
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "left", "h":
		m = m.setIndex(m.index - 1)

	case "right", "l":
		m = m.setIndex(m.index + 1)

	case "home", "g":
		m = m.setIndex(0)

	case "end", "G":
		m = m.setIndex(len(m.history) - 1)

	case "s":
		m.showSummary = !m.showSummary
		m.refresh()
		m.logViewport.GotoTop()

	case "up", "k", "down", "j", "pgup", "ctrl+u", "pgdown", "ctrl+d":
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// setIndex moves to history[i], clamped to the recorded days.
func (m Model) setIndex(i int) Model {
	i = max(0, min(i, len(m.history)-1))
	if i == m.index {
		return m
	}
	m.index = i
	m.refresh()
	m.logViewport.GotoTop()
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		sidebarWidth := sidebarWidthFor(m.width)
		mainWidth := m.width - sidebarWidth - 4
		contentHeight := m.height - 3

		viewportWidth := mainWidth - 4
		logHeight := contentHeight - 4

		if !m.ready {
			m.logViewport = viewport.New(viewportWidth, logHeight)
			m.ready = true
			cmds = append(cmds, createRendererCmd(mainWidth))
		} else {
			m.logViewport.Width = viewportWidth
			m.logViewport.Height = logHeight
		}
		m.refresh()

	case rendererReadyMsg:
		m.renderer = msg.renderer
		m.refresh()
	}

	return m, tea.Batch(cmds...)
}

// refresh rebuilds the viewport content for the current day.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	if m.showSummary {
		m.logViewport.SetContent(m.renderSummary())
		return
	}
	m.logViewport.SetContent(m.renderEvents())
}

func (m Model) renderEvents() string {
	day := m.Day()
	events := m.events[day]
	if len(events) == 0 {
		return labelStyle.Render(fmt.Sprintf("No events on day %d", day))
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, formatEvent(e))
	}
	return strings.Join(lines, "\n")
}

// renderSummary renders the markdown summary of the days up to the current one.
func (m Model) renderSummary() string {
	var buf bytes.Buffer
	err := report.Markdown(&buf, m.history[:m.index+1], report.Options{
		Format:          report.FormatMarkdown,
		SummaryTemplate: m.opts.SummaryTemplate,
		Days:            m.opts.Days,
	})
	if err != nil {
		return reworkStyle.Render(fmt.Sprintf("Error: %v", err))
	}
	if m.renderer == nil {
		return buf.String()
	}
	rendered, err := m.renderer.Render(buf.String())
	if err != nil {
		debug.Logf("tui: failed to render summary: %v", err)
		return buf.String()
	}
	return strings.TrimSpace(rendered)
}

func formatEvent(e event.Event) string {
	switch e.Kind {
	case event.KindDayStarted:
		return dayStyle.Render(fmt.Sprintf("Day %d", e.Day))
	case event.KindCapacityChanged:
		return "  " + capacityStyle.Render(e.Text)
	case event.KindEvicted:
		return "  " + evictedStyle.Render(e.Text)
	case event.KindRouted:
		return "  " + phaseStyle.Render(e.Text)
	case event.KindReworked:
		return "  " + reworkStyle.Render(e.Text)
	case event.KindFinished:
		return "  " + finishedStyle.Render(e.Text)
	default:
		return "  " + labelStyle.Render(e.Text)
	}
}
