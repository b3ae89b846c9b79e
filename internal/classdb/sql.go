package classdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/seurimas/topper-public-sub002/engine/agent"
)

// sqlStore holds the queries shared by the SQL backends; only the
// placeholder syntax differs.
type sqlStore struct {
	db     *sql.DB
	get    string
	upsert string
}

const createClasses = `CREATE TABLE IF NOT EXISTS classes (
	name       TEXT PRIMARY KEY,
	class      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

func openSQL(ctx context.Context, driver, dsn string, placeholders func(int) string) (*sqlStore, error) {
	db, err := sql.Open(driver, strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// An in-memory database lives only as long as its one connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, createClasses); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s schema: %w", driver, err)
	}
	return &sqlStore{
		db:  db,
		get: "SELECT class FROM classes WHERE name = " + placeholders(1),
		upsert: "INSERT INTO classes (name, class, updated_at) VALUES (" + placeholders(1) + ", " + placeholders(2) + ", CURRENT_TIMESTAMP) " +
			"ON CONFLICT (name) DO UPDATE SET class = excluded.class, updated_at = excluded.updated_at",
	}, nil
}

func (s *sqlStore) load(ctx context.Context, who string) (agent.Class, error) {
	var name string
	err := s.db.QueryRowContext(ctx, s.get, who).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return agent.ClassUnknown, ErrNotFound
	}
	if err != nil {
		return agent.ClassUnknown, fmt.Errorf("load class of %s: %w", who, err)
	}
	return parseClass(who, name)
}

func (s *sqlStore) GetClass(ctx context.Context, who string) (agent.Class, bool, error) {
	return found(s.load(ctx, who))
}

func (s *sqlStore) SetClass(ctx context.Context, who string, class agent.Class) error {
	if _, err := s.db.ExecContext(ctx, s.upsert, who, class.String()); err != nil {
		return fmt.Errorf("store class of %s: %w", who, err)
	}
	return nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

// SQLiteStore keeps classes in a SQLite database.
type SQLiteStore struct{ *sqlStore }

// OpenSQLite opens dsn, for example "file:classes.db" or ":memory:".
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	s, err := openSQL(ctx, "sqlite", dsn, func(int) string { return "?" })
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{s}, nil
}

// PostgresStore keeps classes in Postgres through the pgx driver.
type PostgresStore struct{ *sqlStore }

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	s, err := openSQL(ctx, "pgx", dsn, func(i int) string { return fmt.Sprintf("$%d", i) })
	if err != nil {
		return nil, err
	}
	return &PostgresStore{s}, nil
}
