package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

func phasesOf(s *domain.UserStory) []domain.Phase {
	var out []domain.Phase
	for _, t := range s.Tasks() {
		out = append(out, t.Phase())
	}
	return out
}

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(42, DefaultRanges)
	require.NoError(t, err)
	return g
}

func TestParseStoriesJSON_Classic(t *testing.T) {
	data := `[
		{"id": "STORY-1", "spec": 2, "dev": 5, "test": 3, "rollout": 1},
		{"id": "STORY-OLD", "spec": 2, "dev": 3, "test": 2, "rollout": 1, "arrival_day": 2, "priority": 5}
	]`
	stories, err := ParseStoriesJSON([]byte(data), testGenerator(t))
	require.NoError(t, err)
	require.Len(t, stories, 2)

	assert.Equal(t, "STORY-1", stories[0].ID())
	assert.Equal(t, 11, stories[0].TotalTasks())
	assert.Equal(t, 2, stories[1].ArrivalDay())
	assert.Equal(t, 5, stories[1].Priority())
	assert.Equal(t, 8, stories[1].TotalTasks())
}

func TestParseStoriesJSON_MissingCountsAreDrawn(t *testing.T) {
	stories, err := ParseStoriesJSON([]byte(`[{"id": "S", "dev": 2}]`), testGenerator(t))
	require.NoError(t, err)

	counts := map[domain.Phase]int{}
	for _, p := range phasesOf(stories[0]) {
		counts[p]++
	}
	assert.Equal(t, 2, counts[domain.PhaseDev])
	assert.Equal(t, 1, counts[domain.PhaseRollout])
	assert.GreaterOrEqual(t, counts[domain.PhaseSpec], 1)
	assert.LessOrEqual(t, counts[domain.PhaseSpec], 3)
	assert.GreaterOrEqual(t, counts[domain.PhaseTest], 1)
	assert.LessOrEqual(t, counts[domain.PhaseTest], 3)
}

func TestParseStoriesJSON_MissingCountWithoutGenerator(t *testing.T) {
	_, err := ParseStoriesJSON([]byte(`[{"id": "S", "dev": 2}]`), nil)
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "'spec'")
}

func TestParseStoriesJSON_ExplicitTasks(t *testing.T) {
	data := `[{
		"id": "STORY-FLEX",
		"tasks": [
			{"phase": "spec", "count": 2},
			{"phase": "dev", "count": 3},
			{"phase": "test", "count": 2},
			{"phase": "dev"},
			{"phase": "TEST", "count": 1},
			{"phase": "rollout", "count": 1}
		],
		"arrival_day": 1,
		"priority": 1,
		"feature_id": "FEATURE-1"
	}]`
	stories, err := ParseStoriesJSON([]byte(data), nil)
	require.NoError(t, err)
	require.Len(t, stories, 1)

	s := stories[0]
	assert.Equal(t, []domain.Phase{
		domain.PhaseSpec, domain.PhaseSpec,
		domain.PhaseDev, domain.PhaseDev, domain.PhaseDev,
		domain.PhaseTest, domain.PhaseTest,
		domain.PhaseDev,
		domain.PhaseTest,
		domain.PhaseRollout,
	}, phasesOf(s))
	assert.Equal(t, "FEATURE-1", s.FeatureID())
}

func TestParseStoriesJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{name: "invalid json", data: `[{"id":`, wantErr: ErrInvalidFormat},
		{name: "not a list", data: `{"id": "S"}`, wantErr: ErrInvalidFormat},
		{name: "missing id", data: `[{"spec": 1}]`, wantErr: ErrMissingField, wantMsg: "missing required field in story: 'id'"},
		{name: "unknown phase", data: `[{"id": "S", "tasks": [{"phase": "deploy"}]}]`, wantErr: domain.ErrUnknownPhase},
		{name: "missing phase", data: `[{"id": "S", "tasks": [{"count": 2}]}]`, wantErr: ErrMissingField},
		{name: "empty tasks", data: `[{"id": "S", "tasks": []}]`, wantErr: domain.ErrEmptyTasks},
		{name: "zero count", data: `[{"id": "S", "tasks": [{"phase": "spec", "count": 0}]}]`, wantErr: domain.ErrInvalidDuration},
		{name: "negative duration", data: `[{"id": "S", "spec": 1, "dev": -1, "test": 1}]`, wantErr: domain.ErrInvalidDuration},
		{name: "zero priority", data: `[{"id": "S", "spec": 1, "dev": 1, "test": 1, "priority": 0}]`, wantErr: domain.ErrInvalidPriority},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStoriesJSON([]byte(tc.data), testGenerator(t))
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestParseStoriesYAML(t *testing.T) {
	data := `
- id: A
  spec: 1
  dev: 2
  test: 1
- id: B
  arrival_day: 3
  feature_id: checkout
  tasks:
    - phase: spec
    - phase: dev
      count: 2
    - phase: spec
    - phase: rollout
`
	stories, err := ParseStoriesYAML([]byte(data), nil)
	require.NoError(t, err)
	require.Len(t, stories, 2)

	assert.Equal(t, 5, stories[0].TotalTasks(), "rollout defaults to one day")
	assert.Equal(t, 3, stories[1].ArrivalDay())
	assert.Equal(t, "checkout", stories[1].FeatureID())
	assert.Equal(t, []domain.Phase{
		domain.PhaseSpec, domain.PhaseDev, domain.PhaseDev, domain.PhaseSpec, domain.PhaseRollout,
	}, phasesOf(stories[1]))
}

func TestParseStoriesYAML_MissingID(t *testing.T) {
	_, err := ParseStoriesYAML([]byte("- spec: 1\n"), nil)
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "'id'")
}

func TestLoadStories(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "stories.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"id": "J", "spec": 1, "dev": 1, "test": 1}]`), 0o600))
	yamlPath := filepath.Join(dir, "stories.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("- id: Y\n  spec: 1\n  dev: 1\n  test: 1\n"), 0o600))

	stories, err := LoadStories(jsonPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "J", stories[0].ID())

	stories, err = LoadStories(yamlPath, nil)
	require.NoError(t, err)
	assert.Equal(t, "Y", stories[0].ID())

	_, err = LoadStories(filepath.Join(dir, "missing.json"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stories file not found")
}
