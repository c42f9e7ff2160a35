// Package metrics exposes task and storage counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasktracker/internal/models"
)

// Metrics holds the tracker's collectors.
//
// Metrics:
//   - tasktracker_tasks{status} - Current number of tasks per status
//   - tasktracker_tasks_high_priority - Current number of unfinished high priority tasks
//   - tasktracker_collection_changes_total - Count of change notifications
//   - tasktracker_storage_writes_total{result} - Count of persistence writes
type Metrics struct {
	Tasks         *prometheus.GaugeVec
	HighPriority  prometheus.Gauge
	Changes       prometheus.Counter
	StorageWrites *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Tasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tasktracker_tasks",
				Help: "Current number of tasks by status",
			},
			[]string{"status"}, // "not-started", "in-progress", "done"
		),
		HighPriority: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tasktracker_tasks_high_priority",
			Help: "Current number of high priority tasks that are not done",
		}),
		Changes: factory.NewCounter(prometheus.CounterOpts{
			Name: "tasktracker_collection_changes_total",
			Help: "Total number of task collection change notifications",
		}),
		StorageWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tasktracker_storage_writes_total",
				Help: "Total number of task collection writes to storage",
			},
			[]string{"result"}, // "ok" or "failed"
		),
		gatherer: g,
	}
}

// ObserveTasks records a collection snapshot. It has the shape of a task store listener.
func (m *Metrics) ObserveTasks(tasks []models.Task) {
	stats := models.ComputeStats(tasks)
	m.Tasks.WithLabelValues(string(models.StatusNotStarted)).Set(float64(stats.NotStarted))
	m.Tasks.WithLabelValues(string(models.StatusInProgress)).Set(float64(stats.InProgress))
	m.Tasks.WithLabelValues(string(models.StatusDone)).Set(float64(stats.Completed))
	m.HighPriority.Set(float64(stats.HighPriority))
	m.Changes.Inc()
}

// ObserveSave records the outcome of a storage write.
func (m *Metrics) ObserveSave(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.StorageWrites.WithLabelValues(result).Inc()
}

// Handler serves the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
