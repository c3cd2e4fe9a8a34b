package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/kudos/internal/auth"
	"github.com/mmynk/kudos/internal/calculator"
	"github.com/mmynk/kudos/internal/config"
	"github.com/mmynk/kudos/internal/engine"
	"github.com/mmynk/kudos/internal/metrics"
	"github.com/mmynk/kudos/internal/storage/backend"
	"github.com/mmynk/kudos/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "type", cfg.DatabaseType)

	periods := calculator.NewPeriodCalculator(nil, cfg.Timezone)
	eng, err := engine.New(store, store, periods, cfg.Engine())
	if err != nil {
		return err
	}
	slog.Info("Vote engine ready",
		"monthly_quota", cfg.MonthlyQuota,
		"per_vote_rate", cfg.PerVoteRate,
		"timezone", cfg.Timezone.String(),
		"period", eng.CurrentPeriod().String(),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := newRouter(routerDeps{
		engine:      eng,
		store:       store,
		jwt:         auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour),
		metrics:     metrics.NewServerMetrics(reg, "kudos"),
		gatherer:    reg,
		corsOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
