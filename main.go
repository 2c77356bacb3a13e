package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"

	"league-app/internal/config"
	"league-app/internal/league"
	"league-app/internal/seed"
	"league-app/internal/store"
	"league-app/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		_ = godotenv.Load(".env", ".env.local")
	}
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("config")
	}
	logger := newLogger(cfg)

	appStore, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer appStore.Close()

	engine := league.NewEngine(appStore, league.Options{
		DefaultFormula: cfg.PointsFormula(),
		Logger:         logger,
	})
	if _, ok := appStore.(*store.MemoryStore); ok && !cfg.IsProd() {
		sum, err := seed.Run(context.Background(), engine)
		if err != nil {
			logger.Fatal().Err(err).Msg("seed")
		}
		logger.Info().Int("teams", sum.Teams).Int("fights", sum.Fights).Int("goals", sum.Goals).Msg("demo league seeded")
	}

	server := web.NewServer(engine, web.Options{Logger: logger, CORSOrigins: cfg.CORSOrigins})
	r := chi.NewRouter()
	r.Mount("/", server.Routes())

	if cfg.InLambda() {
		logger.Info().Msg("starting in lambda mode")
		adapter := httpadapter.New(r)
		lambda.Start(adapter.ProxyWithContext)
		return
	}
	logger.Info().Str("addr", cfg.Addr).Msg("starting http server")
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logger.Fatal().Err(err).Msg("http server")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Str("app", cfg.App).Logger()
}

// openStore prefers Postgres, then SQLite, then the in-memory store.
func openStore(cfg config.Config) (store.Store, error) {
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		return store.NewPostgresStore(dsn, store.PostgresOptions{MigrationsDir: cfg.PostgresMigrationsDir})
	}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		return store.NewSQLiteStore(path, store.SQLiteOptions{MigrationsDir: cfg.DBMigrationsDir})
	}
	return store.NewMemoryStore(), nil
}
