package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/kudos/internal/auth"
	"github.com/mmynk/kudos/internal/engine"
	"github.com/mmynk/kudos/internal/metrics"
	"github.com/mmynk/kudos/internal/middleware"
	"github.com/mmynk/kudos/internal/service"
	"github.com/mmynk/kudos/internal/storage"
	"github.com/mmynk/kudos/pkg/api/apiconnect"
)

type routerDeps struct {
	engine      *engine.Engine
	store       storage.Store
	jwt         *auth.JWTManager
	metrics     *metrics.ServerMetrics
	gatherer    prometheus.Gatherer
	corsOrigins []string
}

// newRouter mounts the Connect services and the plain HTTP endpoints.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", service.ReasonHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(deps.store))
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(deps.metrics),
		middleware.RequireAuth(deps.jwt),
		middleware.LoggingInterceptor(),
	)

	votePath, voteHandler := apiconnect.NewVoteServiceHandler(service.NewVoteService(deps.engine, deps.metrics), interceptors)
	r.Mount(votePath, voteHandler)

	dashboardPath, dashboardHandler := apiconnect.NewDashboardServiceHandler(service.NewDashboardService(deps.engine), interceptors)
	r.Mount(dashboardPath, dashboardHandler)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	return h2c.NewHandler(r, &http2.Server{})
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// healthHandler reports whether the store answers a ping.
func healthHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Database: "connected"}
		status := http.StatusOK
		if err := store.Ping(ctx); err != nil {
			slog.Warn("Health check failed", "error", err)
			resp = healthResponse{Status: "degraded", Database: "disconnected"}
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
