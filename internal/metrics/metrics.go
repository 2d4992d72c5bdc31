// Package metrics exposes simulation results as Prometheus metrics and
// writes them in the textfile exposition format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/event"
	"github.com/alexander-akhmetov/devcyclesim/internal/stats"
)

// Route kinds used as the "kind" label of StoryRoutes.
const (
	RoutePulled   = "pulled"
	RouteForward  = "forward"
	RouteRework   = "rework"
	RouteEvicted  = "evicted"
	RouteFinished = "finished"
)

// Metrics holds all Prometheus metrics for a simulation run
type Metrics struct {
	// Queue state at the end of the last observed day
	QueueStories    *prometheus.GaugeVec
	StepCapacity    *prometheus.GaugeVec
	BacklogStories  prometheus.Gauge
	FinishedStories prometheus.Gauge
	SimulationDay   prometheus.Gauge

	// Throughput
	TasksCompleted *prometheus.CounterVec
	StoryRoutes    *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		QueueStories: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "devcyclesim_queue_stories",
				Help: "Stories held by a step queue at the end of the day",
			},
			[]string{"step", "queue"},
		),
		StepCapacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "devcyclesim_step_capacity",
				Help: "Work in progress limit of a step",
			},
			[]string{"step"},
		),
		BacklogStories: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "devcyclesim_backlog_stories",
				Help: "Stories not yet pulled into the pipeline",
			},
		),
		FinishedStories: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "devcyclesim_finished_stories",
				Help: "Stories with every task completed",
			},
		),
		SimulationDay: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "devcyclesim_simulation_day",
				Help: "Last simulated day",
			},
		),
		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devcyclesim_tasks_completed_total",
				Help: "Total number of tasks completed per phase",
			},
			[]string{"phase"},
		),
		StoryRoutes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devcyclesim_story_routes_total",
				Help: "Total number of story moves between queues",
			},
			[]string{"kind"},
		),
	}
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// Observe records one day: queue gauges are overwritten and the tasks
// completed that day are added to the counters.
func (m *Metrics) Observe(st stats.ProcessStatistic) {
	m.SimulationDay.Set(float64(st.Day))
	m.BacklogStories.Set(float64(st.BacklogCount))
	m.FinishedStories.Set(float64(st.FinishedWorkCount))

	completion := st.DailyCompletion()
	for _, phase := range domain.Phases {
		step := st.Step(phase)
		name := phase.Key()
		m.QueueStories.WithLabelValues(name, "input").Set(float64(step.Input))
		m.QueueStories.WithLabelValues(name, "wip").Set(float64(step.WIP))
		m.QueueStories.WithLabelValues(name, "done").Set(float64(step.Done))
		m.StepCapacity.WithLabelValues(name).Set(float64(step.Capacity))
		m.TasksCompleted.WithLabelValues(name).Add(float64(completion.PerPhase[phase]))
	}
}

// ObserveHistory records every day in order.
func (m *Metrics) ObserveHistory(history []stats.ProcessStatistic) {
	for _, st := range history {
		m.Observe(st)
	}
}

// Handler counts story moves reported by the engine.
func (m *Metrics) Handler() event.Handler {
	return func(e event.Event) {
		var kind string
		switch e.Kind {
		case event.KindPulled:
			kind = RoutePulled
		case event.KindRouted:
			kind = RouteForward
		case event.KindReworked:
			kind = RouteRework
		case event.KindEvicted:
			kind = RouteEvicted
		case event.KindFinished:
			kind = RouteFinished
		default:
			return
		}
		m.StoryRoutes.WithLabelValues(kind).Inc()
	}
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
