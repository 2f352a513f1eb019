package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ConnectionConfig carries the settings the persistence client reads when it
// wraps a database handle.
type ConnectionConfig interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// NewPostgresClient opens a postgres-backed persistence client. The caller
// owns the returned client and is responsible for closing it.
func NewPostgresClient(cfg ConnectionConfig, dsn string) (*persistence.Client, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres connection: %w", err)
	}
	client, err := persistence.New(cfg, sqlDB, pgdialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// NewSQLiteClient opens a sqlite-backed persistence client. A single
// connection keeps shared-cache in-memory databases alive across statements.
func NewSQLiteClient(cfg ConnectionConfig, dsn string) (*persistence.Client, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: sqlite dsn is required")
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}
