package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TaskMetrics records outcomes of background task executions.
type TaskMetrics struct {
	duration   *prometheus.HistogramVec
	success    *prometheus.CounterVec
	failure    *prometheus.CounterVec
	deadLetter *prometheus.CounterVec
}

// NewTaskMetrics registers the task metrics on the provided registerer.
func NewTaskMetrics(reg prometheus.Registerer) *TaskMetrics {
	if reg == nil {
		return &TaskMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "task_duration_seconds",
		Help:    "Duration of background tasks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_success_total",
		Help: "Successful task executions.",
	}, []string{"task"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_failure_total",
		Help: "Failed task executions, including attempts that will be retried.",
	}, []string{"task"})
	deadLetter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "task_dead_letter_total",
		Help: "Tasks parked on the dead-letter list after exhausting their attempts.",
	}, []string{"task"})
	reg.MustRegister(duration, success, failure, deadLetter)
	return &TaskMetrics{
		duration:   duration,
		success:    success,
		failure:    failure,
		deadLetter: deadLetter,
	}
}

// ObserveDuration records the duration for the named task.
func (m *TaskMetrics) ObserveDuration(task string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(task)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named task.
func (m *TaskMetrics) IncSuccess(task string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(task)).Inc()
}

// IncFailure increments the failure counter for the named task.
func (m *TaskMetrics) IncFailure(task string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(task)).Inc()
}

// IncDeadLetter increments the dead-letter counter for the named task.
func (m *TaskMetrics) IncDeadLetter(task string) {
	if m == nil || m.deadLetter == nil {
		return
	}
	m.deadLetter.WithLabelValues(normalizeLabel(task)).Inc()
}

func normalizeLabel(task string) string {
	if task == "" {
		return "unknown"
	}
	return task
}
