package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/alexander-akhmetov/devcyclesim/internal/config"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/engine"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// twoDayHistory: A (SPEC, DEV) finishes on day 2, B (SPEC, DEV) leaves the
// backlog on day 2 and completes its spec work the same day.
func twoDayHistory() []stats.ProcessStatistic {
	var day1Steps, day2Steps [domain.PhaseCount]stats.StepStatistic
	day1Steps[domain.PhaseSpec] = stats.StepStatistic{WIP: 1, Capacity: 2}
	day2Steps[domain.PhaseSpec] = stats.StepStatistic{Done: 1, Capacity: 2}

	day1 := stats.New(1, 1, day1Steps, 0, []stats.StorySnapshot{
		{
			ID: "A", FeatureID: domain.DefaultFeatureID, Location: stats.LocationWIP, Step: domain.PhaseSpec, TotalTasks: 2,
			Timeline: domain.CompletionDates{
				Completed: []domain.PhaseDay{{Phase: domain.PhaseSpec, Day: 1}},
				Pending:   []domain.PhaseDay{{Phase: domain.PhaseDev}},
			},
		},
		{
			ID: "B", FeatureID: domain.DefaultFeatureID, Location: stats.LocationBacklog, TotalTasks: 2,
			Timeline: domain.CompletionDates{
				Pending: []domain.PhaseDay{{Phase: domain.PhaseSpec}, {Phase: domain.PhaseDev}},
			},
		},
	})
	day2 := stats.New(2, 0, day2Steps, 1, []stats.StorySnapshot{
		{
			ID: "A", FeatureID: domain.DefaultFeatureID, Location: stats.LocationFinished, TotalTasks: 2,
			Timeline: domain.CompletionDates{
				Completed: []domain.PhaseDay{{Phase: domain.PhaseSpec, Day: 1}, {Phase: domain.PhaseDev, Day: 2}},
			},
		},
		{
			ID: "B", FeatureID: domain.DefaultFeatureID, Location: stats.LocationDone, Step: domain.PhaseSpec, TotalTasks: 2,
			Timeline: domain.CompletionDates{
				Completed: []domain.PhaseDay{{Phase: domain.PhaseSpec, Day: 2}},
				Pending:   []domain.PhaseDay{{Phase: domain.PhaseDev}},
			},
		},
	})
	return []stats.ProcessStatistic{day1, day2}
}

func simulate(t *testing.T, days int, caps engine.Capacities) []stats.ProcessStatistic {
	t.Helper()
	p, err := engine.NewProcess(days, engine.WithDefaultCapacities(caps))
	require.NoError(t, err)
	for _, id := range []string{"S1", "S2", "S3"} {
		s, err := domain.FromPhaseDurations(id, domain.PhaseDurations{
			domain.PhaseSpec: 1, domain.PhaseDev: 2, domain.PhaseTest: 1, domain.PhaseRollout: 1,
		})
		require.NoError(t, err)
		require.NoError(t, p.Add(s))
	}
	require.NoError(t, p.Start())
	return p.Statistics()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRender_EmptyHistory(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			assert.ErrorIs(t, Render(&buf, nil, Options{Format: f}), ErrEmptyHistory)
			assert.Empty(t, buf.String())
		})
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, twoDayHistory(), Options{Format: "yaml"}), ErrUnknownFormat)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, twoDayHistory(), Options{Format: FormatText}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Simulation Results:\n\nDay 1:\n  Backlog: 1\n  SPEC Input: 0\n  SPEC WIP: 1\n  SPEC Done: 0\n"))
	assert.Contains(t, out, "  ROLLOUT Done: 0\n  Finished Stories: 0\n\nDay 2:\n")
	assert.Contains(t, out, "Day 2:\n  Backlog: 0\n  SPEC Input: 0\n  SPEC WIP: 0\n  SPEC Done: 1\n")

	summary := "Task Completion Summary:\n" + strings.Repeat("-", 50) + "\n" +
		"\nStory A:\n  Completed Tasks:\n    SPEC: Day 1\n    DEV: Day 2\n" +
		"\nStory B:\n  Completed Tasks:\n    SPEC: Day 2\n  Pending Tasks:\n    DEV: Not completed\n"
	assert.True(t, strings.HasSuffix(out, summary), out)
	assert.NotContains(t, out, "\033[")
}

func TestText_NoStoriesSkipsSummary(t *testing.T) {
	var steps [domain.PhaseCount]stats.StepStatistic
	history := []stats.ProcessStatistic{stats.New(1, 0, steps, 0, nil)}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, history, false))
	assert.NotContains(t, buf.String(), "Task Completion Summary")
	assert.True(t, strings.HasSuffix(buf.String(), "  Finished Stories: 0\n\n"))
}

func TestText_StyledKeepsContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, twoDayHistory(), true))
	out := buf.String()
	assert.Contains(t, out, "Simulation Results:")
	assert.Contains(t, out, "Not completed")
	assert.Contains(t, out, "Story B:")
}

func TestJSON(t *testing.T) {
	data, err := EncodeJSON(twoDayHistory())
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))
	doc := gjson.ParseBytes(data)

	var days []string
	doc.Get("daily_statistics").ForEach(func(key, _ gjson.Result) bool {
		days = append(days, key.String())
		return true
	})
	assert.Equal(t, []string{"Day 1", "Day 2"}, days)

	var metrics []string
	doc.Get("daily_statistics.Day 1").ForEach(func(key, _ gjson.Result) bool {
		metrics = append(metrics, key.String())
		return true
	})
	require.Len(t, metrics, 14)
	assert.Equal(t, "Backlog", metrics[0])
	assert.Equal(t, "SPEC Input", metrics[1])
	assert.Equal(t, "Finished Stories", metrics[13])

	assert.Equal(t, int64(1), doc.Get("daily_statistics.Day 1.Backlog").Int())
	assert.Equal(t, int64(1), doc.Get("daily_statistics.Day 2.SPEC Done").Int())
	assert.Equal(t, int64(1), doc.Get("daily_statistics.Day 2.Finished Stories").Int())

	assert.Equal(t, "SPEC", doc.Get("task_completion_dates.A.completed.0.0").String())
	assert.Equal(t, int64(1), doc.Get("task_completion_dates.A.completed.0.1").Int())
	assert.Equal(t, int64(2), doc.Get("task_completion_dates.A.completed.1.1").Int())
	assert.Empty(t, doc.Get("task_completion_dates.A.pending").Array())

	pending := doc.Get("task_completion_dates.B.pending.0")
	assert.Equal(t, "DEV", pending.Get("0").String())
	assert.Equal(t, gjson.Null, pending.Get("1").Type)
}

func TestJSON_SpecialStoryIDs(t *testing.T) {
	var steps [domain.PhaseCount]stats.StepStatistic
	history := []stats.ProcessStatistic{stats.New(1, 2, steps, 0, []stats.StorySnapshot{
		{ID: "v1.2", Location: stats.LocationBacklog, TotalTasks: 1,
			Timeline: domain.CompletionDates{Pending: []domain.PhaseDay{{Phase: domain.PhaseSpec}}}},
		{ID: "42", Location: stats.LocationBacklog, TotalTasks: 1,
			Timeline: domain.CompletionDates{Pending: []domain.PhaseDay{{Phase: domain.PhaseSpec}}}},
	})}

	data, err := EncodeJSON(history)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))

	var ids []string
	gjson.GetBytes(data, "task_completion_dates").ForEach(func(key, _ gjson.Result) bool {
		ids = append(ids, key.String())
		return true
	})
	assert.Equal(t, []string{"v1.2", "42"}, ids)
	assert.True(t, gjson.GetBytes(data, "task_completion_dates").IsObject())
}

func TestPathKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Day 1", "Day 1"},
		{"STORY-1", "STORY-1"},
		{"a.b", `a\.b`},
		{"x*?", `x\*\?`},
		{"123", ":123"},
		{":id", `\:id`},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, pathKey(tc.input))
		})
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, twoDayHistory(), Options{Format: FormatCSV}))

	want := strings.Join([]string{
		"Queue Statistics",
		"Day,Backlog,SPEC Input,SPEC WIP,SPEC Done,DEV Input,DEV WIP,DEV Done,TEST Input,TEST WIP,TEST Done,ROLLOUT Input,ROLLOUT WIP,ROLLOUT Done,Finished Stories",
		"1,1,0,1,0,0,0,0,0,0,0,0,0,0,0",
		"2,0,0,0,1,0,0,0,0,0,0,0,0,0,1",
		"",
		"Task Completion Summary",
		"Day,Stories,Tasks Total,Tasks Completed,Tasks Pending,SPEC Completed,DEV Completed,TEST Completed,ROLLOUT Completed",
		"1,2,4,1,3,1,0,0,0",
		"2,2,4,3,1,2,1,0,0",
		"",
		"Task Completion History",
		"S: Specification, D: Development, T: Testing, R: Rollout",
		"Day,S,D,T,R,Tasks Completed Cumulated,Tasks Finished Cumulated",
		"1,1,0,0,0,1,0",
		"2,1,1,0,0,3,2",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func summaryTemplate(t *testing.T) string {
	t.Helper()
	templates, err := config.LoadTemplates("", "")
	require.NoError(t, err)
	return templates.Summary
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, twoDayHistory(), Options{
		Format:          FormatMarkdown,
		SummaryTemplate: summaryTemplate(t),
		Days:            14,
	}))
	out := buf.String()

	assert.Contains(t, out, "## Simulation summary: day 2 of 14")
	assert.Contains(t, out, "| 0 | 1 | 2 | 3/4 |")
	assert.Contains(t, out, "| SPEC | 0 | 0 | 1 | 2 |")
	assert.Contains(t, out, "| ROLLOUT | 0 | 0 | 0 | 0 |")
	assert.Contains(t, out, "| default_feature | 1 | 2 |")
	assert.Contains(t, out, "Throughput: **0.50** stories/day")
}

func TestMarkdown_Styled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, twoDayHistory(), Options{
		SummaryTemplate: summaryTemplate(t),
		Styled:          true,
		Width:           100,
	}))
	assert.Contains(t, buf.String(), "SPEC")
	assert.NotContains(t, buf.String(), "**0.50**")
}

func TestMarkdown_TemplateErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  string
	}{
		{"parse", "{{.Day", "parse summary template"},
		{"execute", "{{.Missing}}", "execute summary template"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Markdown(&buf, twoDayHistory(), Options{SummaryTemplate: tc.template})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSummarize_DaysDefaultsToHistory(t *testing.T) {
	data, err := Summarize(twoDayHistory(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, data.Days)
	assert.Equal(t, 2, data.Stories)
	assert.Equal(t, 3, data.TasksCompleted)
	assert.Equal(t, 4, data.TasksTotal)
	assert.InDelta(t, 0.5, data.Throughput, 1e-9)
}

func TestRender_Deterministic(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON, FormatCSV} {
		t.Run(string(f), func(t *testing.T) {
			var a, b bytes.Buffer
			require.NoError(t, Render(&a, simulate(t, 10, engine.DefaultCapacities), Options{Format: f}))
			require.NoError(t, Render(&b, simulate(t, 10, engine.DefaultCapacities), Options{Format: f}))
			assert.Equal(t, a.String(), b.String())
		})
	}
}
