package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/afyalink/care-booking/backend/internal/config"
	"github.com/afyalink/care-booking/backend/internal/domain"
	"github.com/afyalink/care-booking/backend/internal/repository"
	"github.com/afyalink/care-booking/backend/internal/seed"
	"github.com/afyalink/care-booking/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "operation (1: random patients, 2: random doctors and nurses, 3: import providers from CSV)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.StringVar(&file, "file", "./providers.csv", "provider roster used by op 3")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("n must be positive")
			return
		}
		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, domain.RolePatient)
			if err != nil {
				slog.Error("failed to generate patient", slog.String("error", err.Error()))
				continue
			}
			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert patient", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("patients inserted", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("n must be positive")
			return
		}
		cnt := 0
		for i := 0; i < n; i++ {
			role := domain.RoleDoctor
			if i%2 == 1 {
				role = domain.RoleNurse
			}
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain, role)
			if err != nil {
				slog.Error("failed to generate provider user", slog.String("error", err.Error()))
				continue
			}
			if err := repo.CreateUser(user); err != nil {
				slog.Error("failed to insert provider user", slog.String("error", err.Error()))
				continue
			}

			p, err := utils.GenerateRandomProvider(user)
			if err != nil {
				slog.Error("failed to generate provider", slog.String("error", err.Error()))
				continue
			}
			if err := repo.CreateProvider(p); err != nil {
				slog.Error("failed to insert provider", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}
		slog.Info("providers inserted", slog.Int("count", cnt))
	case 3:
		f, err := os.Open(file)
		if err != nil {
			slog.Error("failed to open roster", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		records, err := seed.ParseProviders(f)
		if err != nil {
			slog.Error("failed to parse roster", slog.String("error", err.Error()))
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.User.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("failed to hash seed password", slog.String("error", err.Error()))
			return
		}

		created, err := seed.Import(repo, records, string(passwordHash))
		if err != nil {
			slog.Error("import stopped", slog.Int("created", created), slog.String("error", err.Error()))
			return
		}
		slog.Info("roster imported", slog.Int("created", created), slog.Int("rows", len(records)))
	default:
		slog.Error("unknown operation", slog.Int("op", op))
	}
}
