// Package metrics holds the Prometheus collectors of the workflow engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine counts workflow runs and node executions.
type Engine struct {
	RunsInFlight         prometheus.Gauge
	RunsTotal            *prometheus.CounterVec
	RunDuration          *prometheus.HistogramVec
	NodeExecutionsTotal  *prometheus.CounterVec
	NodeDuration         *prometheus.HistogramVec
	BroadcastFailures    prometheus.Counter
	WebhookEventsTotal   *prometheus.CounterVec
	ScheduledTriggersRun prometheus.Counter
}

// NewEngine registers the collectors on reg. A nil reg leaves them unregistered,
// which is what tests that build many engines want.
func NewEngine(reg prometheus.Registerer) *Engine {
	factory := promauto.With(reg)

	return &Engine{
		RunsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nodeflow_runs_in_flight",
			Help: "Number of workflow runs currently executing",
		}),
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeflow_runs_total",
				Help: "Total number of finished workflow runs",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nodeflow_run_duration_seconds",
				Help:    "Workflow run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),
		NodeExecutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeflow_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"node_type", "status"},
		),
		NodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nodeflow_node_duration_seconds",
				Help:    "Node execution duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"node_type"},
		),
		BroadcastFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "nodeflow_broadcast_failures_total",
			Help: "Status broadcasts that could not be published",
		}),
		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodeflow_webhook_events_total",
				Help: "Webhook deliveries accepted per source",
			},
			[]string{"source"},
		),
		ScheduledTriggersRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "nodeflow_scheduled_triggers_total",
			Help: "Cron schedules that fired",
		}),
	}
}

// RunStarted marks a run in flight and returns the function that records its end.
func (e *Engine) RunStarted() func(status string) {
	started := time.Now()

	e.RunsInFlight.Inc()

	return func(status string) {
		e.RunsInFlight.Dec()
		e.RunsTotal.WithLabelValues(status).Inc()
		e.RunDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}
}

// NodeFinished records one node execution.
func (e *Engine) NodeFinished(nodeType, status string, elapsed time.Duration) {
	e.NodeExecutionsTotal.WithLabelValues(nodeType, status).Inc()
	e.NodeDuration.WithLabelValues(nodeType).Observe(elapsed.Seconds())
}
