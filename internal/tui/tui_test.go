package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
)

func newTestModel(t *testing.T, days int) Model {
	t.Helper()
	rec := &Recorder{}
	p, err := engine.NewProcess(days, engine.WithEventHandler(rec.Handler()))
	require.NoError(t, err)
	for _, id := range []string{"S1", "S2"} {
		s, err := domain.FromPhaseDurations(id, domain.PhaseDurations{
			domain.PhaseSpec: 1, domain.PhaseDev: 1, domain.PhaseTest: 1, domain.PhaseRollout: 1,
		})
		require.NoError(t, err)
		require.NoError(t, p.Add(s))
	}
	require.NoError(t, p.Start())

	tpl, err := config.LoadTemplates("", "")
	require.NoError(t, err)
	return NewModel(p.Statistics(), rec.Events(), Options{Title: "2 stories", SummaryTemplate: tpl.Summary})
}

func resize(t *testing.T, m Model) Model {
	t.Helper()
	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.NotNil(t, cmd, "first resize should create the renderer")
	return updated.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, 5)

	assert.Equal(t, 1, m.Day())
	assert.Equal(t, 5, m.opts.Days)
	assert.False(t, m.ready)
	require.NotEmpty(t, m.events[1])
	assert.Equal(t, event.KindDayStarted, m.events[1][0].Kind)
	for day, events := range m.events {
		for _, e := range events {
			assert.Equal(t, day, e.Day)
		}
	}
}

func TestNewModel_Empty(t *testing.T) {
	m := NewModel(nil, nil, Options{})

	assert.Equal(t, 0, m.Day())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 0, m.Day())
}

func TestModelInit(t *testing.T) {
	m := newTestModel(t, 2)
	assert.NotNil(t, m.Init())
}

func TestModelUpdateKeyMsgs(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		keys    []tea.KeyMsg
		wantDay int
	}{
		{"right advances", 0, []tea.KeyMsg{{Type: tea.KeyRight}}, 2},
		{"l advances", 0, []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("l")}}, 2},
		{"left at first day stays", 0, []tea.KeyMsg{{Type: tea.KeyLeft}}, 1},
		{"left goes back", 2, []tea.KeyMsg{{Type: tea.KeyLeft}}, 2},
		{"end jumps to last", 0, []tea.KeyMsg{{Type: tea.KeyEnd}}, 5},
		{"right at last day stays", 4, []tea.KeyMsg{{Type: tea.KeyRight}}, 5},
		{"home jumps to first", 3, []tea.KeyMsg{{Type: tea.KeyHome}}, 1},
		{"several steps", 0, []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyRight}, {Type: tea.KeyLeft}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := resize(t, newTestModel(t, 5))
			m.index = tt.start
			for _, k := range tt.keys {
				m, _ = press(m, k)
			}
			assert.Equal(t, tt.wantDay, m.Day())
		})
	}
}

func TestModelQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m := newTestModel(t, 2)
			_, cmd := press(m, key)
			require.NotNil(t, cmd)
			_, ok := cmd().(tea.QuitMsg)
			assert.True(t, ok)
		})
	}
}

func TestModelEventsFollowDay(t *testing.T) {
	m := resize(t, newTestModel(t, 5))

	assert.Contains(t, m.logViewport.View(), "S1 pulled from backlog")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	content := m.renderEvents()
	assert.Contains(t, content, "Day 2")
	assert.NotContains(t, content, "pulled from backlog")
}

func TestModelSummaryToggle(t *testing.T) {
	m := resize(t, newTestModel(t, 5))
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd})

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.True(t, m.showSummary)
	assert.Contains(t, m.renderSummary(), "Simulation summary: day 5 of 5")
	assert.Contains(t, m.View(), "Summary after day 5")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	assert.False(t, m.showSummary)
	assert.Contains(t, m.View(), "Day 5 events")
}

func TestModelSummary_TemplateError(t *testing.T) {
	m := resize(t, newTestModel(t, 2))
	m.opts.SummaryTemplate = "{{.Missing"

	assert.Contains(t, m.renderSummary(), "Error:")
}

func TestView(t *testing.T) {
	m := newTestModel(t, 5)
	assert.Equal(t, "Initializing...", m.View())

	m = resize(t, m)
	view := m.View()
	for _, want := range []string{"DEVCYCLESIM", "2 stories", "Day 1/5", "Backlog", "SPEC", "ROLLOUT", "q: quit"} {
		assert.Contains(t, view, want)
	}
	assert.NotContains(t, view, "Features", "single feature runs hide the feature section")
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	h := rec.Handler()
	h(event.DayStarted(1))
	h(event.Pulled(1, "A"))

	require.Len(t, rec.Events(), 2)
	assert.Equal(t, event.KindPulled, rec.Events()[1].Kind)
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		e    event.Event
		want string
	}{
		{event.DayStarted(3), "Day 3"},
		{event.Reworked(3, "A", domain.PhaseTest, domain.PhaseDev), "A sent back TEST -> DEV"},
		{event.Finished(3, "A", domain.PhaseRollout), "A finished"},
		{event.CapacityChanged(3, domain.PhaseDev, 3, 1), "DEV capacity 3 -> 1"},
	}
	for _, tt := range tests {
		t.Run(tt.e.Kind.String(), func(t *testing.T) {
			assert.Contains(t, formatEvent(tt.e), tt.want)
		})
	}
}

func TestCapacityBar(t *testing.T) {
	tests := []struct {
		name      string
		used      int
		capacity  int
		width     int
		wantFull  int
		wantEmpty int
	}{
		{"empty", 0, 3, 6, 0, 6},
		{"partial", 1, 3, 6, 2, 4},
		{"full", 3, 3, 6, 6, 0},
		{"zero capacity", 0, 0, 4, 0, 4},
		{"over capacity clamps", 5, 2, 4, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := capacityBar(tt.used, tt.capacity, tt.width)
			assert.Equal(t, tt.wantFull, strings.Count(bar, "█"))
			assert.Equal(t, tt.wantEmpty, strings.Count(bar, "░"))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "abc", truncate("abc", 2))
}
