package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_reminder_sweeps_total",
		Help: "Reminder sweeps by trigger.",
	}, []string{"trigger"})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rentdesk_reminder_sweep_duration_seconds",
		Help:    "Wall time of a reminder sweep.",
		Buckets: prometheus.DefBuckets,
	})

	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_classifications_total",
		Help: "Contracts classified, by urgency.",
	}, []string{"urgency"})

	ItemFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_sweep_item_failures_total",
		Help: "Contracts that could not be processed during a sweep, by reason.",
	}, []string{"reason"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_notifications_total",
		Help: "Reminder dispatch outcomes.",
	}, []string{"kind", "result"})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_lifecycle_transitions_total",
		Help: "Committed contract lifecycle transitions.",
	}, []string{"event"})

	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_background_job_runs_total",
		Help: "Background job runs by job name and outcome.",
	}, []string{"job", "result"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentdesk_background_job_duration_seconds",
		Help:    "Wall time of background jobs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// Dispatch outcomes
const (
	ResultSent      = "sent"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"
	ResultSkipped   = "skipped"
	ResultSucceeded = "succeeded"
)
