package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"aggstat/adapters/api"
	"aggstat/adapters/postgres"
	"aggstat/internal"
	"aggstat/internal/config"
	"aggstat/ports"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	logger := internal.DefaultLogger
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading configuration: %v", err)
		os.Exit(1)
	}

	var archive ports.RunArchive
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("connecting to database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		archive = postgres.NewRunRepository(db)
		if err := archive.EnsureSchema(context.Background()); err != nil {
			logger.Error("preparing archive schema: %v", err)
			os.Exit(1)
		}
		logger.Info("run archive enabled")
	}

	server := api.NewServer(logger, archive)
	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
