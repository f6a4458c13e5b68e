package httpapi_test

import (
	"chat-feed/infrastructure/httpapi"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestOpsRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "chatfeed", Name: "checks_total", Help: "Checks"})
	reg.MustRegister(counter)
	counter.Inc()
	inspect := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("rows")) })
	router := httpapi.NewOpsRouter(logs.GetLoggerFromLevel(slog.LevelError), reg, inspect)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "health", path: "/healthz", wantCode: http.StatusOK, wantBody: "ok"},
		{name: "metrics", path: "/metrics", wantCode: http.StatusOK, wantBody: "chatfeed_checks_total 1"},
		{name: "inspect", path: "/debug/inspect", wantCode: http.StatusOK, wantBody: "rows"},
		{name: "unknown", path: "/nope", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			req.Equal(tt.wantCode, rec.Code)
			body, err := io.ReadAll(rec.Body)
			req.NoError(err)
			req.Contains(string(body), tt.wantBody)
		})
	}
}

func TestOpsRouter_Without_Inspector(t *testing.T) {
	router := httpapi.NewOpsRouter(logs.GetLoggerFromLevel(slog.LevelError), prometheus.NewRegistry(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/inspect", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRouter_Recovers_From_Panics(t *testing.T) {
	router := httpapi.NewPublicRouter(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
