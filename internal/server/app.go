// Package server wires the identity service together: storage, lockout
// store, services, the gRPC API and the ops HTTP endpoints.
package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/config"
	"github.com/dmitrijs2005/resourcehub/internal/server/httpserver"
	"github.com/dmitrijs2005/resourcehub/internal/server/lockout"
	"github.com/dmitrijs2005/resourcehub/internal/server/metrics"
	"github.com/dmitrijs2005/resourcehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/resourcehub/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/resourcehub/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	metrics *metrics.Metrics
	grpc    *gs.GRPCServer
	http    *httpserver.Server
}

// NewApp opens the database, applies migrations and connects the lockout
// store. Redis is used when configured, otherwise lockouts live in memory.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := sql.Open(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	store, rdb, err := newLockoutStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, logger, db, rm, store, rdb), nil
}

func newLockoutStore(ctx context.Context, c *config.Config) (lockout.Store, *redis.Client, error) {
	if c.RedisAddr == "" {
		return lockout.NewMemoryStore(c.LockoutPolicy()), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis init error: %w", err)
	}
	return lockout.NewRedisStore(rdb, c.LockoutPolicy()), rdb, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, store lockout.Store, rdb *redis.Client) *App {
	m := metrics.New()

	svc := gs.Services{
		Identity: services.NewIdentityService(db, rm, c, logger),
		Profiles: services.NewProfileService(db, rm, logger),
		Recovery: services.NewRecoveryService(db, rm, store, logger, services.WithLockoutObserver(m.IncrementRecoveryLockouts)),
		Avatars:  services.NewAvatarService(db, rm, c, logger),
	}

	checks := map[string]httpserver.HealthCheck{"postgres": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		redis:   rdb,
		metrics: m,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, m, c.APIKey, c.SecretKey),
		http:    httpserver.New(c.EndpointAddrHTTP, m.Registry, checks, logger),
	}
}

// Run serves gRPC and HTTP until ctx is done or either server fails, then
// releases the connections.
func (app *App) Run(ctx context.Context) error {

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(gctx) })
	g.Go(func() error { return app.http.Run(gctx) })

	err := g.Wait()
	app.close(ctx)

	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) close(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "failed to close database", "error", err)
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "failed to close redis", "error", err)
		}
	}
}
