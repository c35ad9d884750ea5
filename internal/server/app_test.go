package server

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/config"
	"github.com/dmitrijs2005/resourcehub/internal/server/lockout"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.APIKey = "api-key"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.RedisAddr = ""
	return c
}

func TestNewLockoutStore_MemoryWithoutRedis(t *testing.T) {
	store, rdb, err := newLockoutStore(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Nil(t, rdb)
	assert.IsType(t, &lockout.MemoryStore{}, store)
}

func TestNewLockoutStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig()
	c.RedisAddr = mr.Addr()

	store, rdb, err := newLockoutStore(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.IsType(t, &lockout.RedisStore{}, store)
}

func TestNewLockoutStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig()
	c.RedisAddr = mr.Addr()
	mr.Close()

	_, _, err := newLockoutStore(context.Background(), c)
	require.Error(t, err)
}

func newTestApp(t *testing.T, c *config.Config) (*App, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	app := newApp(c, logging.NopLogger{}, db, repomanager.NewPostgresRepositoryManager(), lockout.NewMemoryStore(c.LockoutPolicy()), nil)
	return app, mock
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app, mock := newTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"
	app, mock := newTestApp(t, c)

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
