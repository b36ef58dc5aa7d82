package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestSQLite_InitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	DB, err := SQLiteConnect(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer DB.Close()

	require.NoError(t, InitializeDB(ctx, DB))
	require.NoError(t, InitializeDB(ctx, DB))

	var tables []string
	require.NoError(t, DB.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'games') ORDER BY name`))
	assert.Equal(t, []string{"games", "users"}, tables)

	_, err = DB.ExecContext(ctx,
		`INSERT INTO games (date, player_name, human_symbol, winner, size, moves) VALUES (?, ?, ?, ?, ?, ?)`,
		"2026-10-16T08:00:00.000Z", "alice", "Z", nil, 3, "[]")
	assert.Error(t, err, "human_symbol is constrained to X or O")
}

func TestSQLiteConnect_BadPath(t *testing.T) {
	_, err := SQLiteConnect(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	if testing.Short() {
		t.Skip("redis container test skipped in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(ctx, "k", "v", 0).Err())
}

func TestNewRedisClient_Errors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "redis://:bad url")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
