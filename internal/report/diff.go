package report

import (
	"bytes"
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// Diff returns a unified diff between two rendered reports. It is empty when
// they are identical.
func Diff(oldLabel, newLabel, oldText, newText string) string {
	return udiff.Unified(oldLabel, newLabel, oldText, newText)
}

// Compare renders both histories as plain text and diffs them.
func Compare(baselineLabel string, baseline []stats.ProcessStatistic, candidateLabel string, candidate []stats.ProcessStatistic) (string, error) {
	var a, b bytes.Buffer
	if err := Text(&a, baseline, false); err != nil {
		return "", fmt.Errorf("render %s: %w", baselineLabel, err)
	}
	if err := Text(&b, candidate, false); err != nil {
		return "", fmt.Errorf("render %s: %w", candidateLabel, err)
	}
	return Diff(baselineLabel, candidateLabel, a.String(), b.String()), nil
}

// Delta summarizes how the candidate's final day differs from the baseline's.
type Delta struct {
	Finished int // candidate minus baseline finished stories
	Backlog  int
	Tasks    int // completed tasks
}

// CompareFinal computes the Delta of the last recorded days.
func CompareFinal(baseline, candidate []stats.ProcessStatistic) (Delta, error) {
	if len(baseline) == 0 || len(candidate) == 0 {
		return Delta{}, ErrEmptyHistory
	}
	a, b := last(baseline), last(candidate)
	return Delta{
		Finished: b.FinishedWorkCount - a.FinishedWorkCount,
		Backlog:  b.BacklogCount - a.BacklogCount,
		Tasks:    b.DailyCompletion().TasksCompleted - a.DailyCompletion().TasksCompleted,
	}, nil
}

func (d Delta) String() string {
	return fmt.Sprintf("finished %+d, backlog %+d, tasks completed %+d", d.Finished, d.Backlog, d.Tasks)
}
