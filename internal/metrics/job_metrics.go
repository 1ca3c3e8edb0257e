package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/syshair/backend/pkg/logger"
)

// JobMetrics tracks background jobs and the notifications they move.
type JobMetrics interface {
	ObserveJobRun(job string, duration time.Duration, err error)
	// IncJobSkipped counts ticks skipped because another replica held the lock.
	IncJobSkipped(job string)
	AddNotifications(channel, status string, n int)
	IncBroadcastResult(channel, status string)
	IncGoalUpdate(goalType, status string)
}

type jobMetrics struct {
	log           *logger.Logger
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobSkipped    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	broadcasts    *prometheus.CounterVec
	goalUpdates   *prometheus.CounterVec
}

// NewJobMetrics registers the job collectors on registry.
func NewJobMetrics(registry *prometheus.Registry, log *logger.Logger) JobMetrics {
	factory := promauto.With(registry)
	return &jobMetrics{
		log: log,
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_runs_total",
				Help: "Background job runs by result",
			},
			[]string{"job", "result"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_duration_seconds",
				Help:    "Background job run duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		jobSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_skipped_total",
				Help: "Job ticks skipped because the lock was held elsewhere",
			},
			[]string{"job"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_dispatched_total",
				Help: "Notifications processed by the dispatch job",
			},
			[]string{"channel", "status"},
		),
		broadcasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketing_recipients_total",
				Help: "Marketing broadcast recipients by result",
			},
			[]string{"channel", "status"},
		),
		goalUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goal_updates_total",
				Help: "Goals persisted by the recalculation job",
			},
			[]string{"type", "status"},
		),
	}
}

func (m *jobMetrics) ObserveJobRun(job string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *jobMetrics) IncJobSkipped(job string) {
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *jobMetrics) AddNotifications(channel, status string, n int) {
	if n <= 0 {
		return
	}
	m.notifications.WithLabelValues(channel, status).Add(float64(n))
}

func (m *jobMetrics) IncBroadcastResult(channel, status string) {
	m.broadcasts.WithLabelValues(channel, status).Inc()
}

func (m *jobMetrics) IncGoalUpdate(goalType, status string) {
	m.goalUpdates.WithLabelValues(goalType, status).Inc()
}
