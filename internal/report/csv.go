package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// HistoryLegend explains the single-letter phase columns of the history section.
const HistoryLegend = "S: Specification, D: Development, T: Testing, R: Rollout"

// CSV writes three sections: queue statistics, the cumulative task
// completion summary and the per-day completion history.
func CSV(w io.Writer, history []stats.ProcessStatistic) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}

	cw := csv.NewWriter(w)
	raw := func(line string) error {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}

	if err := raw("Queue Statistics"); err != nil {
		return err
	}
	if err := cw.WriteAll(queueRows(history)); err != nil {
		return err
	}

	if err := raw("\nTask Completion Summary"); err != nil {
		return err
	}
	if err := cw.WriteAll(summaryRows(history)); err != nil {
		return err
	}

	if err := raw("\nTask Completion History"); err != nil {
		return err
	}
	if err := raw(HistoryLegend); err != nil {
		return err
	}
	if err := cw.WriteAll(historyRows(history)); err != nil {
		return err
	}
	return cw.Error()
}

func queueRows(history []stats.ProcessStatistic) [][]string {
	header := []string{"Day"}
	for _, m := range dailyMetrics(history[0]) {
		header = append(header, m.name)
	}
	rows := [][]string{header}
	for _, day := range history {
		row := []string{strconv.Itoa(day.Day)}
		for _, m := range dailyMetrics(day) {
			row = append(row, strconv.Itoa(m.value))
		}
		rows = append(rows, row)
	}
	return rows
}

func summaryRows(history []stats.ProcessStatistic) [][]string {
	header := []string{"Day", "Stories", "Tasks Total", "Tasks Completed", "Tasks Pending"}
	for _, phase := range domain.Phases {
		header = append(header, phase.String()+" Completed")
	}
	rows := [][]string{header}
	for _, day := range history {
		total := day.TotalTasks()
		completion := day.DailyCompletion()
		row := []string{
			strconv.Itoa(day.Day),
			strconv.Itoa(len(day.Stories())),
			strconv.Itoa(total),
			strconv.Itoa(completion.TasksCompleted),
			strconv.Itoa(total - completion.TasksCompleted),
		}
		perPhase := completedByPhase(day)
		for _, phase := range domain.Phases {
			row = append(row, strconv.Itoa(perPhase[phase]))
		}
		rows = append(rows, row)
	}
	return rows
}

func historyRows(history []stats.ProcessStatistic) [][]string {
	header := []string{"Day"}
	for _, phase := range domain.Phases {
		header = append(header, phase.Letter())
	}
	header = append(header, "Tasks Completed Cumulated", "Tasks Finished Cumulated")

	rows := [][]string{header}
	for _, day := range history {
		completion := day.DailyCompletion()
		row := []string{strconv.Itoa(day.Day)}
		for _, phase := range domain.Phases {
			row = append(row, strconv.Itoa(completion.PerPhase[phase]))
		}
		row = append(row,
			strconv.Itoa(completion.TasksCompleted),
			strconv.Itoa(completion.TasksFinished),
		)
		rows = append(rows, row)
	}
	return rows
}

// completedByPhase counts every task completed up to the snapshot's day.
func completedByPhase(st stats.ProcessStatistic) [domain.PhaseCount]int {
	var out [domain.PhaseCount]int
	for _, s := range st.Stories() {
		for _, pd := range s.Timeline.Completed {
			out[pd.Phase]++
		}
	}
	return out
}
