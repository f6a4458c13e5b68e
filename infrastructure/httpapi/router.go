// Package httpapi routes the plain HTTP surfaces: the WebSocket push gateway and the ops endpoints.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewPublicRouter exposes the gateway at /ws.
// No middleware wraps the response writer here, the upgrade needs the raw connection.
func NewPublicRouter(gateway http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Handle("/ws", gateway)
	return r
}

// NewOpsRouter serves /metrics, /healthz and, when inspect is not nil, /debug/inspect.
func NewOpsRouter(log *slog.Logger, gatherer prometheus.Gatherer, inspect http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logger(log))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if inspect != nil {
		r.Handle("/debug/inspect", inspect)
	}
	return r
}

// Logger logs every request once it completes.
func Logger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Debug("Request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"latency", time.Since(start),
					"request_id", chimw.GetReqID(r.Context()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
