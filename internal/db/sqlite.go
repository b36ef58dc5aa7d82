package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const sqliteDriver = "sqlite"

// SQLiteConnect opens the SQLite database at dbPath and checks the connection.
// A single connection is kept open so writes are serialized by the pool.
func SQLiteConnect(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(sqliteDriver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", dbPath, err)
	}

	slog.InfoContext(ctx, "Connected to sqlite database", "db.path", dbPath)
	return pool, nil
}

// InitializeDB creates the users and games tables if they do not exist.
func InitializeDB(ctx context.Context, DB *sqlx.DB) error {
	if _, err := DB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	userSchema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);`

	if _, err := DB.ExecContext(ctx, userSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	// date is stored in a fixed-width UTC layout so it sorts as text.
	gameSchema := `
	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		player_name TEXT NOT NULL,
		human_symbol TEXT NOT NULL CHECK (human_symbol IN ('X', 'O')),
		winner TEXT CHECK (winner IS NULL OR winner IN ('X', 'O')),
		size INTEGER NOT NULL,
		moves TEXT NOT NULL
	);`

	if _, err := DB.ExecContext(ctx, gameSchema); err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	if _, err := DB.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_games_date ON games (date)`); err != nil {
		return fmt.Errorf("failed to create games date index: %w", err)
	}

	slog.InfoContext(ctx, "DB connection initialized and schema verified.")

	return nil
}
