package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eventscope/eventscope/internal/config"
	"github.com/eventscope/eventscope/internal/logger"
	"github.com/eventscope/eventscope/internal/store"
	"github.com/eventscope/eventscope/internal/worker"
)

// main boots one ingestion worker process. Any number of these may run
// against the same database; the job store's claim operation keeps them
// from stepping on each other.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Either binary may come up first; both bootstrap the schema.
	if err := db.EnsureSchema(); err != nil {
		zl.Fatal("failed to apply schema", zap.Error(err))
	}

	// Ingestion counters for scraping; the worker has no other HTTP surface.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			zl.Warn("metrics listener exited", zap.Error(err))
		}
	}()

	// The loop checks this context at every suspension point, so SIGTERM
	// stops the worker at the next poll or I/O boundary.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.New(db, db, cfg.PollInterval, zl).Run(ctx)
}
