package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"

	"github.com/golang-cz/devslog"
	_ "github.com/lib/pq"
	"github.com/siahsang/socialite/internal/auth"
	"github.com/siahsang/socialite/internal/config"
	"github.com/siahsang/socialite/internal/core"
	"github.com/siahsang/socialite/internal/storage"
	"github.com/siahsang/socialite/internal/utils/databaseutils"
)

type application struct {
	config  *config.Config
	core    *core.Core
	auth    *auth.Auth
	storage storage.Storage
	session databaseutils.Session
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func main() {
	logger := configLogger()
	logger.Info("Starting application...")

	cfg := config.LoadConfig()

	db, err := openDBConnection(cfg.DB)
	if err != nil {
		logger.Error("Error opening database connection", "error", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Database connection established successfully")

	imageStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		logger.Error("Error creating image storage client", "error", err)
		os.Exit(1)
	}

	if err := imageStorage.EnsureBucket(context.Background()); err != nil {
		logger.Error("Error preparing image bucket", "error", err)
		os.Exit(1)
	}

	sqlTemplate := databaseutils.NewSQLTemplate(db, cfg.DB.QueryTimeout)

	app := application{
		config:  cfg,
		core:    core.NewCore(db, logger, sqlTemplate),
		auth:    auth.New(),
		storage: imageStorage,
		session: databaseutils.NewSession(db, logger),
		logger:  logger,
	}

	if err := app.serve(); err != nil {
		logger.Error("Error starting server", "error", err)
		os.Exit(1)
	}
}

func configLogger() *slog.Logger {
	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
			},
			NewLineAfterLog: false,
		})

	logger := slog.New(handler)
	return logger
}

func openDBConnection(cfg config.DB) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
