package database

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gdugdh24/sparkchat-backend/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestConfigurePool(t *testing.T) {
	db, _ := newMock(t)

	configurePool(db, &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: time.Minute})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestPing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectPing()
	require.NoError(t, ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err := ping(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database sqlmock")
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, Migrate(context.Background(), db))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	assert.ErrorContains(t, Migrate(context.Background(), db), "failed to apply schema")
}

func redisConfig(t *testing.T, mr *miniredis.Miniredis, poolSize int) *config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return &config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: poolSize}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(t, mr, 8)

	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, mr.Addr(), opts.Addr)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisConfig(t, mr, 0)
	mr.Close()

	_, err := NewRedisClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), cfg.GetAddr())
}
