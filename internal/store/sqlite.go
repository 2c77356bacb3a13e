package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteStore struct {
	sqlStore
}

type SQLiteOptions struct {
	MigrationsDir string
}

var sqliteDialect = dialect{
	name:              "sqlite",
	rebind:            questionMarks,
	isUniqueViolation: isSQLiteUniqueViolation,
}

// NewSQLiteStore opens path with immediate transactions so concurrent
// writers serialize on BEGIN instead of failing on lock upgrade.
func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	migrations, err := migrationsFS(opts.MigrationsDir, "sqlite")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, sqliteDialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{sqlStore{db: db, d: sqliteDialect}}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_txlock=immediate"
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
