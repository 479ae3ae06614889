package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpo_imports_total",
			Help: "CSV imports processed, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpo_import_rows_total",
			Help: "Import rows by kind and result",
		},
		[]string{"kind", "result"},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tpo_import_duration_seconds",
			Help:    "Time spent reconciling and persisting one import",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "dry_run"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// ObserveImport records the outcome of one finished import.
func ObserveImport(kind string, dryRun bool, imported, failed int, elapsed time.Duration) {
	outcome := "ok"
	switch {
	case imported == 0 && failed > 0:
		outcome = "failed"
	case failed > 0:
		outcome = "partial"
	}
	if dryRun {
		outcome = "dry_run"
	}
	ImportsTotal.WithLabelValues(kind, outcome).Inc()
	ImportDuration.WithLabelValues(kind, strconv.FormatBool(dryRun)).Observe(elapsed.Seconds())
	if dryRun {
		return
	}
	ImportRowsTotal.WithLabelValues(kind, "imported").Add(float64(imported))
	ImportRowsTotal.WithLabelValues(kind, "failed").Add(float64(failed))
}

// Middleware times every request by its route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		APIRequestDuration.WithLabelValues(c.Route().Path, c.Method(), strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}
