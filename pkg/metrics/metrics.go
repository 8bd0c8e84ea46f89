package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var (
	// Registry holds the application collectors, exposed on /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Read-through cache lookups by result.",
		},
		[]string{"resource", "result"},
	)

	dispatchJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "jobs_total",
			Help:      "Order side-effect jobs by outcome.",
		},
		[]string{"notifier", "outcome"},
	)

	dispatchAttempt = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of a single notifier attempt.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"notifier"},
	)

	systemCPU = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "cpu_percent",
			Help:      "Host CPU usage sampled by the monitor job.",
		},
	)

	systemMemory = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "system",
			Name:      "memory_used_bytes",
			Help:      "Host memory in use sampled by the monitor job.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cacheLookups,
		dispatchJobs,
		dispatchAttempt,
		systemCPU,
		systemMemory,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by the matched route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is final
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// RecordCacheLookup result is one of hit, miss, error.
func RecordCacheLookup(resource, result string) {
	cacheLookups.WithLabelValues(resource, result).Inc()
}

// RecordDispatch outcome is one of success, retry, failed, rejected.
func RecordDispatch(notifier, outcome string) {
	dispatchJobs.WithLabelValues(notifier, outcome).Inc()
}

func ObserveDispatchAttempt(notifier string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	dispatchAttempt.WithLabelValues(notifier).Observe(duration.Seconds())
}

// SetSystemUsage host cpu percentage and used memory
func SetSystemUsage(cpuPercent float64, memUsed uint64) {
	systemCPU.Set(cpuPercent)
	systemMemory.Set(float64(memUsed))
}
