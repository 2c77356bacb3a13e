package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	sqlStore
}

type PostgresOptions struct {
	MigrationsDir string
}

var postgresDialect = dialect{
	name:              "postgres",
	rebind:            dollarPlaceholders,
	forUpdate:         "FOR UPDATE",
	isUniqueViolation: isPostgresUniqueViolation,
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	migrations, err := migrationsFS(opts.MigrationsDir, "postgres")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, postgresDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{sqlStore{db: db, d: postgresDialect}}, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
