// Package server provides HTTP server setup for the copilot service.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/telhawk-copilot/common/httputil"
	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/common/middleware"
	"github.com/telhawk-systems/telhawk-copilot/internal/handlers"
	"github.com/telhawk-systems/telhawk-copilot/internal/metrics"
)

// RouterConfig holds optional router features.
type RouterConfig struct {
	StaticDir      string
	MetricsEnabled bool
	MetricsPath    string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Logger         *logging.Logger
}

// NewRouter constructs a ServeMux with copilot routes registered.
func NewRouter(h *handlers.Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, logger, fn))
	}

	// Health check endpoints
	mux.HandleFunc("GET /healthz", h.HealthCheck)
	mux.HandleFunc("GET /readyz", h.ReadyCheck)

	// Pages
	handle("GET /{$}", h.Dashboard)
	handle("GET /investigation", h.Investigation)
	if cfg.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}

	// JSON API
	handle("GET /api/alerts", h.Alerts)
	handle("POST /api/investigate", h.Investigate)
	handle("POST /api/chat", h.Chat)

	if cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.Handler())
	}

	var root http.Handler = mux
	root = middleware.CORS(cfg.CORS)(root)
	root = middleware.SecurityHeaders(cfg.Security)(root)
	return middleware.RequestID(root)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request metrics and an access log line under route.
func instrument(route string, logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		logger.InfoContext(r.Context(), "request completed",
			logging.Method(r.Method),
			logging.Path(r.URL.Path),
			logging.ClientIP(httputil.ClientIP(r)),
			logging.Status(rec.status),
			logging.Duration(elapsed),
		)
	})
}
