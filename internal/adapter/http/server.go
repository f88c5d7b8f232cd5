// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habits/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	registrar *app.HabitRegistrar
	resolver  *app.DayResolver
	log       *zap.Logger
	metrics   *Metrics
}

// New creates a Server wired to the given application services. A nil
// logger disables logging and a nil metrics set gets a private registry.
func New(reg *app.HabitRegistrar, res *app.DayResolver, log *zap.Logger, m *Metrics) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = NewMetrics()
	}
	return &Server{registrar: reg, resolver: res, log: log, metrics: m}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/habits", s.handleHabits)
	api.HandleFunc("/day", s.handleDay)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return s.loggingMiddleware(s.metrics.middleware(withNoCache(root)))
}
