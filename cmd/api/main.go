package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/eventscope/eventscope/internal/config"
	"github.com/eventscope/eventscope/internal/httpserver"
	"github.com/eventscope/eventscope/internal/logger"
	"github.com/eventscope/eventscope/internal/store"
)

// main boots the API: config → logging → DB → schema → HTTP server.
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

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		zl.Fatal("failed to apply schema", zap.Error(err))
	}

	// The trigger endpoint stages uploads here until a worker consumes them.
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		zl.Fatal("failed to create upload dir", zap.Error(err))
	}

	router := httpserver.NewRouter(cfg, db)

	zl.Info("server started", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}
