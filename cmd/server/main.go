package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/salescast/salescast/internal/api"
	"github.com/salescast/salescast/internal/config"
	"github.com/salescast/salescast/internal/forecast"
	"github.com/salescast/salescast/internal/ingest"
	"github.com/salescast/salescast/internal/insight"
	"github.com/salescast/salescast/internal/logging"
	"github.com/salescast/salescast/internal/metrics"
	"github.com/salescast/salescast/internal/server"
	"github.com/salescast/salescast/internal/store"
	_ "github.com/lib/pq"
	"log/slog"
)

func main() {
	// Load .env so local dev matches the deployed environment; absence is fine
	if err := godotenv.Load(); err != nil {
		slog.Default().Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting salescast")

	// Pick a sales source: Supabase REST when configured, direct Postgres as
	// the self-hosted alternative, otherwise none (store-backed endpoints 503)
	var source store.SalesSource
	switch {
	case cfg.Store.SupabaseURL != "" && cfg.Store.SupabaseKey != "":
		source = store.NewSupabase(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey, cfg.Store.Table, logger)
		logger.Info("using supabase sales store", "table", cfg.Store.Table)
	case cfg.Store.DatabaseURL != "":
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		source, err = store.NewPostgres(db, cfg.Store.Table, logger)
		if err != nil {
			logger.Error("failed to init postgres sales store", "error", err)
			os.Exit(1)
		}
		logger.Info("using postgres sales store", "table", cfg.Store.Table)
	default:
		logger.Warn("no sales store configured, GET /forecast and POST /chat will return 503")
	}

	annotator := insight.New(cfg.Insight, logger)
	logger.Info("insight annotator configured", "enabled", annotator.Configured(), "model", cfg.Insight.Model)

	engine := forecast.NewEngine(logger)
	normalizer := ingest.NewNormalizer(cfg.Forecast.UnitPrice)

	collector, err := metrics.NewHTTPCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", collector.Handler())

	handler := api.NewHandler(source, engine, annotator, normalizer, cfg.Forecast.Periods, collector, logger)
	api.SetupRoutes(mux, handler)

	srv := server.New(cfg.Server, logger, api.RequestID(collector.InstrumentHandler(mux)))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("salescast started", "port", cfg.Server.Port)

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
