package main

import (
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/afyalink/care-booking/backend/internal/config"
	"github.com/afyalink/care-booking/backend/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var direction string
	var steps int
	var force int

	flag.StringVar(&direction, "direction", "up", "up or down")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply, 0 for all")
	flag.IntVar(&force, "force", -1, "mark the given version as applied and clear the dirty flag")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Error("failed to create database driver", "error", err)
		os.Exit(1)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Error("failed to create source driver", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		logger.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	if force >= 0 {
		if err := m.Force(force); err != nil {
			logger.Error("failed to force version", "version", force, "error", err)
			os.Exit(1)
		}
		logger.Info("version forced", "version", force)
		return
	}

	switch {
	case steps != 0 && direction == "down":
		err = m.Steps(-steps)
	case steps != 0:
		err = m.Steps(steps)
	case direction == "down":
		err = m.Down()
	case direction == "up":
		err = m.Up()
	default:
		logger.Error("unknown direction", "direction", direction)
		os.Exit(1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "direction", direction, "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Error("failed to read version", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations complete", "version", version, "dirty", dirty)
}
