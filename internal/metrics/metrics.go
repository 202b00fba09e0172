// Package metrics exposes stock movement and HTTP counters for Prometheus.
package metrics

import (
	"strconv"
	"time"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns its registry so tests and multiple servers do not collide on
// the global default.
type Recorder struct {
	registry  *prometheus.Registry
	movements *prometheus.CounterVec
	quantity  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "stock_movements_total",
			Help:      "Ledger entries written, by movement type.",
		}, []string{"type"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "stock_moved_units_total",
			Help:      "Units moved, by movement type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "stock_movements_rejected_total",
			Help:      "Movement requests rejected before commit.",
		}, []string{"operation", "reason"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "erp",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	r.registry.MustRegister(
		r.movements, r.quantity, r.rejected, r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) MovementRecorded(t models.LedgerType, quantity int) {
	r.movements.WithLabelValues(string(t)).Inc()
	r.quantity.WithLabelValues(string(t)).Add(float64(quantity))
}

func (r *Recorder) MovementRejected(operation, reason string) {
	r.rejected.WithLabelValues(operation, reason).Inc()
}

// Middleware observes request latency labelled by route pattern, not raw path.
func (r *Recorder) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		r.requests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves GET /metrics.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
