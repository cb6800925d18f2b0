package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurumlife/aurum/internal/app"
	"github.com/aurumlife/aurum/internal/shared/infrastructure/jobqueue"
	"github.com/aurumlife/aurum/pkg/config"
	"github.com/aurumlife/aurum/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting aurum scoring worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if container.LocalBus != nil {
		logger.Error("the worker requires RabbitMQ; in-process mode only serves the CLI")
		os.Exit(1)
	}

	metrics := observability.NewInMemoryMetrics()
	registry := jobqueue.NewHandlerRegistry(logger)
	consumer, err := jobqueue.NewRabbitMQConsumer(jobqueue.RabbitMQConsumerConfig{
		URL:          cfg.RabbitMQURL,
		QueueName:    cfg.ScoringQueueName,
		MaxRetries:   cfg.ScoringMaxRetries,
		RetryBackoff: cfg.ScoringRetryBackoff,
		Logger:       logger,
		Metrics:      metrics,
	}, registry)
	if err != nil {
		logger.Error("failed to connect consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	consumer.RegisterHandler(container.ScoringHandler)

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container, registry, metrics, logger)
	}

	logger.Info("worker ready",
		"queue", cfg.ScoringQueueName,
		"max_retries", cfg.ScoringMaxRetries,
		"retry_backoff", cfg.ScoringRetryBackoff,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

func startHealthServer(ctx context.Context, addr string, container *app.Container, registry *jobqueue.HandlerRegistry, metrics *observability.InMemoryMetrics, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		jobs := map[string]int64{}
		for _, key := range registry.RoutingKeys() {
			tag := observability.T("routing_key", key)
			jobs[key] = metrics.CounterValue("jobs.processed", tag)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"handlers": registry.HandlerCount(),
			"jobs":     jobs,
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := container.DB.Ping(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
