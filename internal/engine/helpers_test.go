package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
)

func newStory(t testing.TB, id string, phases ...domain.Phase) *domain.UserStory {
	t.Helper()
	s, err := domain.NewUserStory(id, phases)
	require.NoError(t, err)
	return s
}

func newDurationStory(t testing.TB, id string, spec, dev, test, rollout int) *domain.UserStory {
	t.Helper()
	d := domain.PhaseDurations{}
	for phase, n := range map[domain.Phase]int{
		domain.PhaseSpec: spec, domain.PhaseDev: dev, domain.PhaseTest: test, domain.PhaseRollout: rollout,
	} {
		if n > 0 {
			d[phase] = n
		}
	}
	s, err := domain.FromPhaseDurations(id, d)
	require.NoError(t, err)
	return s
}

func repeat(phase domain.Phase, n int) []domain.Phase {
	out := make([]domain.Phase, n)
	for i := range out {
		out[i] = phase
	}
	return out
}

func newProcess(t testing.TB, days int, opts ...Option) *Process {
	t.Helper()
	p, err := NewProcess(days, opts...)
	require.NoError(t, err)
	return p
}

func mustPlan(t testing.TB, start, end int, caps Capacities) ResourcePlan {
	t.Helper()
	plan, err := NewResourcePlan(start, end, caps)
	require.NoError(t, err)
	return plan
}

func ids(stories []*domain.UserStory) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID()
	}
	return out
}

func completionDays(s *domain.UserStory) []int {
	var days []int
	for _, pd := range s.TaskCompletionDates().Completed {
		days = append(days, pd.Day)
	}
	return days
}

func lastCompletionDay(s *domain.UserStory) int {
	days := completionDays(s)
	if len(days) == 0 {
		return 0
	}
	return days[len(days)-1]
}
