package adapthttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the collectors exposed on /metrics.
type Metrics struct {
	registry         *prometheus.Registry
	requestDuration  *prometheus.HistogramVec
	habitsRegistered prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "path", "status"},
		),
		habitsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "habits_registered_total",
			Help: "Total number of habits registered",
		}),
	}
	m.registry.MustRegister(
		m.requestDuration,
		m.habitsRegistered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requestDuration.
			WithLabelValues(r.Method, routeLabel(r.URL.Path), strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

var knownRoutes = map[string]bool{
	"/api/habits": true,
	"/api/day":    true,
	"/api/health": true,
	"/metrics":    true,
}

// routeLabel keeps the path label bounded: anything that is not a served
// route is reported as "other".
func routeLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}
