package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// migrationsDir is the on-disk location of the goose SQL migrations,
// relative to the working directory the server is launched from.
const migrationsDir = "migrations"

// runMigrations executes the requested goose command against the
// connected database and returns once it completes.
func runMigrations(db *sql.DB, command string, logger *slog.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	logger.Info("running migrations", "command", command, "dir", migrationsDir)

	var err error
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command: %q", command)
	}

	if err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}

	logger.Info("migrations complete", "command", command)
	return nil
}
