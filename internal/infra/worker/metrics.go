package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks refresh job runs.
type Metrics struct {
	JobRunsTotal       *prometheus.CounterVec
	JobDuration        prometheus.Histogram
	TaskRunsTotal      *prometheus.CounterVec
	ArticlesRefreshed  prometheus.Counter
	LastSuccessSeconds prometheus.Gauge
}

// NewMetrics registers the worker job metrics on the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the worker job metrics on reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_job_runs_total",
			Help: "Total number of refresh job runs by status (success/partial/failure)",
		}, []string{"status"}),
		JobDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_refresh_job_duration_seconds",
			Help:    "Duration of refresh job runs in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 300},
		}),
		TaskRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_task_runs_total",
			Help: "Refresh tasks by task (headlines/sources) and result (success/skipped/failure)",
		}, []string{"task", "result"}),
		ArticlesRefreshed: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_articles_refreshed_total",
			Help: "Total number of headlines stored by scheduled refreshes",
		}),
		LastSuccessSeconds: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last refresh job without failures",
		}),
	}
}

// RecordJob records one finished run.
func (m *Metrics) RecordJob(status string, d time.Duration) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
	m.JobDuration.Observe(d.Seconds())
	if status == StatusSuccess {
		m.LastSuccessSeconds.SetToCurrentTime()
	}
}

func (m *Metrics) RecordTask(task, result string) {
	m.TaskRunsTotal.WithLabelValues(task, result).Inc()
}
