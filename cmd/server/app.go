package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/recallkit/recall-api/internal/config"
	"github.com/recallkit/recall-api/internal/domain/fsrs"
	"github.com/recallkit/recall-api/internal/platform/postgres"
	"github.com/recallkit/recall-api/internal/service/auth"
	"github.com/recallkit/recall-api/internal/service/scheduler"
)

// application holds the wired dependencies shared by the router and the
// HTTP server lifecycle.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *sql.DB
	tokenVerifier auth.TokenVerifier
	scheduler     scheduler.Service
}

// newApplication wires the stores, the memory model, and the scheduling
// service onto the database connection.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	tokenVerifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	itemStore := postgres.NewPostgresItemStore(db, logger)
	statsStore := postgres.NewPostgresStatsStore(db, logger)

	params := fsrs.NewDefaultParams()
	params.DesiredRetention = cfg.Scheduler.DesiredRetention
	model := fsrs.NewServiceWithParams(params)

	schedulerService := scheduler.NewService(db, itemStore, statsStore, model, logger)

	return &application{
		config:        cfg,
		logger:        logger,
		db:            db,
		tokenVerifier: tokenVerifier,
		scheduler:     schedulerService,
	}, nil
}
