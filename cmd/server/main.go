package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/myrjola/whodunit/internal/ai"
	"github.com/myrjola/whodunit/internal/envstruct"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/hub"
	"github.com/myrjola/whodunit/internal/identity"
	"github.com/myrjola/whodunit/internal/logging"
	"github.com/myrjola/whodunit/internal/pprofserver"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/myrjola/whodunit/internal/sqlite"
)

// defaultCaseID is seeded by the schema initialisation, so a fresh database
// always has a playable case.
const defaultCaseID = "hollowbrook-manor"

type config struct {
	Addr          string `env:"WHODUNIT_ADDR" envDefault:"localhost:4000"`
	SqliteURL     string `env:"WHODUNIT_SQLITE_URL" envDefault:"./whodunit.sqlite"`
	AnswerTimeout string `env:"WHODUNIT_ANSWER_TIMEOUT" envDefault:"60s"`
	// TokenSecret verifies bearer tokens from the external identity service.
	// When empty, connections fall back to anonymous session identities.
	TokenSecret string `env:"WHODUNIT_TOKEN_SECRET" envDefault:""`
}

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	cases          *repositories.CaseRepository
	service        *game.Service
	hub            *hub.Hub
	verifier       *identity.Verifier
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{ //nolint:exhaustruct // defaults are fine
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(ctx, slog.LevelError, "load .env", errors.SlogError(err))
		os.Exit(1)
	}

	// pprof listens on localhost so that it is not open to the world.
	pprofserver.Launch(":6060", logger)

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server failed", errors.SlogError(err))
		os.Exit(1)
	}
}

// run wires the application and serves until ctx is cancelled or the process
// receives an interrupt. Dependencies come in as parameters so that tests can
// boot the real server with their own environment and logger.
func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	answerTimeout, err := time.ParseDuration(cfg.AnswerTimeout)
	if err != nil {
		return errors.Wrap(err, "parse answer timeout", slog.String("value", cfg.AnswerTimeout))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dbs, err := sqlite.NewDatabase(ctx, cfg.SqliteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	cases := repositories.NewCaseRepository(dbs, logger)
	registry := game.NewRegistry(logger, defaultCaseID)
	service := game.NewService(logger, registry, ai.NewAnswerer(cases, logger), game.Options{
		AnswerTimeout:   answerTimeout,
		RequireIdentity: false,
	})
	go service.Run(ctx)
	registry.StartReaper(ctx, time.Minute, 30*time.Minute)

	var verifier *identity.Verifier
	if cfg.TokenSecret != "" {
		verifier = identity.NewVerifier(cfg.TokenSecret)
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		cases:          cases,
		service:        service,
		hub:            hub.NewHub(logger, service),
		verifier:       verifier,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
