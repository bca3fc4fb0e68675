package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	_ "github.com/dukerupert/notepad/internal/database/migrations"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens the SQLite database at the given path, creating it if absent,
// and migrates it to the current schema version. Pragmas are applied per
// connection so foreign-key cascades survive pool churn.
func Open(dbPath string) (*sql.DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// An in-memory database exists once per connection, so the pool must
	// be pinned to a single connection to share schema and data.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// Migrate brings the database up to the latest schema version.
func Migrate(db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// MigrateTo migrates the database up to a specific schema version. Upgrade
// tests use it to stage a database at an older version.
func MigrateTo(db *sql.DB, version int64) error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.UpTo(db, "migrations", version); err != nil {
		return fmt.Errorf("goose up to %d: %w", version, err)
	}

	return nil
}

func setupGoose() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	return nil
}
