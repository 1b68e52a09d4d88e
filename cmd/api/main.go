package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/neuroflow/backend/internal/config"
	"github.com/neuroflow/backend/internal/execution"
	"github.com/neuroflow/backend/internal/handlers"
	"github.com/neuroflow/backend/internal/metrics"
	"github.com/neuroflow/backend/internal/middleware"
	"github.com/neuroflow/backend/internal/repository"
	"github.com/neuroflow/backend/internal/router"
	"github.com/neuroflow/backend/internal/services"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	predictor := services.NewPredictor(services.PredictorConfig{
		BaseURL:          cfg.MLServiceURL,
		PredictTimeout:   cfg.PredictTimeout,
		HealthTimeout:    cfg.HealthTimeout,
		ModelInfoTimeout: cfg.ModelInfoTimeout,
		StatusTTL:        cfg.StatusTTL,
	}, m, logger)

	validator, err := services.NewValidator()
	if err != nil {
		slog.Error("Schema validator init failed", "error", err)
		os.Exit(1)
	}

	ph := &handlers.PredictionHandler{Service: predictor, Logger: logger}

	if cfg.DatabaseURL != "" {
		pool, riverClient, err := setupHistory(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			slog.Error("Prediction history setup failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		ph.Recorder = execution.NewRecorder(func(ctx context.Context, args execution.RecordPredictionArgs) error {
			_, err := riverClient.Insert(ctx, args, nil)
			return err
		})
		ph.History = repository.NewPredictionRepo(pool)

		go func() {
			if err := riverClient.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("River client stopped", "error", err)
			}
		}()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := riverClient.Stop(stopCtx); err != nil {
				slog.Warn("River client stop", "error", err)
			}
		}()
	} else {
		slog.Info("DATABASE_URL not set, prediction history disabled")
	}

	api := router.New(router.Deps{
		Predictions: ph,
		Validator:   validator,
		Metrics:     m.Handler(),
		APIKeys:     cfg.APIKeys,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(api)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.RequestLogger(logger)(corsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		slog.Error("HTTP listen failed", "addr", srv.Addr, "error", err)
		os.Exit(1)
	}

	slog.Info("Starting HTTP server", "addr", srv.Addr, "ml_service_url", predictor.BaseURL())
	if err := serve(ctx, srv, ln, shutdownGrace); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("HTTP server stopped")
}

// serve runs srv on ln until ctx is cancelled, then shuts it down and returns
// only once in-flight requests have drained or grace has elapsed.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupHistory connects to Postgres, applies River and history migrations and
// builds a River client with the record worker registered.
func setupHistory(ctx context.Context, dbURL string, logger *slog.Logger) (*pgxpool.Pool, *river.Client[pgx.Tx], error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("river migrate up: %w", err)
	}
	slog.Info("River migrations applied")

	repo := repository.NewPredictionRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, execution.NewRecordPredictionWorker(repo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create river client: %w", err)
	}
	return pool, riverClient, nil
}
