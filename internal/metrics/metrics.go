// Package metrics регистрирует счётчики прогонов чекера в реестре
// Prometheus по умолчанию. Отдаются через /metrics (promhttp).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal количество завершённых прогонов проверок.
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymclub_checker_runs_total",
		Help: "Total number of completed check runs.",
	})

	// ChecksTotal количество выполненных проверок по сьютам и статусам.
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymclub_checker_checks_total",
		Help: "Total number of executed checks by suite and status.",
	}, []string{"suite", "status"})

	// LastRunFailed количество провалов в последнем прогоне.
	LastRunFailed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymclub_checker_last_run_failed",
		Help: "Number of failed checks in the most recent run.",
	})

	// LastRunTimestamp время завершения последнего прогона, unix seconds.
	LastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymclub_checker_last_run_timestamp_seconds",
		Help: "Unix timestamp of the most recent completed run.",
	})

	// RunDuration длительность прогона проверок.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gymclub_checker_run_duration_seconds",
		Help:    "Duration of a full check run.",
		Buckets: prometheus.DefBuckets,
	})
)
