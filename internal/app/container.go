package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/masterdata"
	"github.com/usman-global/usman-books/internal/observability"
	"github.com/usman-global/usman-books/internal/planner"
	"github.com/usman-global/usman-books/internal/platform/cache"
	"github.com/usman-global/usman-books/internal/platform/db"
	"github.com/usman-global/usman-books/internal/reporting"
	reportinghttp "github.com/usman-global/usman-books/internal/reporting/http"
	"github.com/usman-global/usman-books/internal/shared"
	"github.com/usman-global/usman-books/internal/store"
	"github.com/usman-global/usman-books/internal/store/postgres"
	"github.com/usman-global/usman-books/internal/store/sqlite"
)

// Container holds the wired services shared by the server, the worker and
// the CLI.
type Container struct {
	Config  *Config
	Logger  *slog.Logger
	Pool    *pgxpool.Pool
	SQLite  *sqlite.Persister
	Redis   *redis.Client
	Store   *store.Store
	Metrics *observability.Metrics

	Audit       *shared.AuditLogger
	ReportCache *reporting.Cache
	Idempotency shared.IdempotencyKeys

	Accounting *accounting.Service
	Assets     *assets.Service
	Inventory  *inventory.Service
	Planner    *planner.Service
	MasterData masterdata.Service
	Reports    *reporting.Service
}

// NewContainer connects the configured backends, opens the state and builds
// every service. PostgreSQL and Redis are optional; without them state lives
// in memory and reports are not cached.
func NewContainer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if cfg.SeedFile != "" {
		seed, err := store.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		storeOpts = append(storeOpts, store.WithState(seed))
	}

	if cfg.PGDSN != "" {
		pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{
			MaxConns:        cfg.PGMaxConns,
			MinConns:        cfg.PGMinConns,
			MaxConnLifetime: cfg.PGMaxConnAge,
		})
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		persister := postgres.NewPersister(pool)
		if err := persister.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("app: state schema: %w", err)
		}
		storeOpts = append(storeOpts, store.WithPersister(persister))
	} else if cfg.SQLitePath != "" {
		persister, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.SQLite = persister
		storeOpts = append(storeOpts, store.WithPersister(persister))
	}

	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Redis = client
	}

	c.Store = store.New(storeOpts...)
	if err := c.Store.Open(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.Metrics.SetStateVersion(c.Store.Version())

	c.Audit = shared.NewAuditLogger(c.Pool, logger)
	if err := c.Audit.EnsureSchema(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("app: audit schema: %w", err)
	}

	switch {
	case c.Redis != nil:
		c.Idempotency = shared.NewRedisIdempotencyStore(c.Redis, cfg.IdempotencyTTL)
	case c.Pool != nil:
		keys := shared.NewIdempotencyStore(c.Pool)
		if err := keys.EnsureSchema(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("app: idempotency schema: %w", err)
		}
		if err := keys.Cleanup(ctx, cfg.IdempotencyTTL); err != nil {
			logger.Warn("expire idempotency keys", slog.Any("error", err))
		}
		c.Idempotency = keys
	}

	if c.Redis != nil {
		c.ReportCache = reporting.NewCache(c.Redis, cfg.ReportCacheTTL)
		// Memory state restarts at its seed version, so keys from an earlier run
		// would collide with it.
		if c.Pool == nil && c.SQLite == nil {
			if err := c.ReportCache.Invalidate(ctx); err != nil {
				logger.Warn("report cache invalidate", slog.Any("error", err))
			}
		}
	}
	c.Store.OnCommit(func(ctx context.Context, version int64) {
		c.Metrics.SetStateVersion(version)
		if err := c.ReportCache.Bump(ctx, version); err != nil {
			logger.Warn("report cache bump", slog.Any("error", err))
		}
	})

	c.Accounting = accounting.NewService(c.Store.Ledger(), c.Audit)
	c.Accounting.WithMetrics(c.Metrics)
	c.Assets = assets.NewService(c.Store.Assets(), c.Audit)
	c.Inventory = inventory.NewService(c.Store.Inventory(), c.Audit)
	c.Planner = planner.NewService(c.Store.Planner(), c.Audit)
	c.MasterData = masterdata.NewService(c.Store.MasterData())
	c.Reports = reporting.NewService(c.Store, c.ReportCache, logger)
	c.Reports.WithMetrics(c.Metrics)
	return c, nil
}

// FollowCommits reloads the state whenever another process announces a newer
// version. It returns once the subscription is established.
func (c *Container) FollowCommits(ctx context.Context) error {
	if c.Redis == nil {
		return nil
	}
	return c.ReportCache.ListenForInvalidation(ctx, func(ctx context.Context, version int64) {
		if version <= c.Store.Version() {
			return
		}
		changed, err := c.Store.Reload(ctx)
		if err != nil {
			c.Logger.Warn("reload state", slog.Any("error", err))
			return
		}
		if changed {
			c.Metrics.SetStateVersion(c.Store.Version())
			c.Logger.Debug("state reloaded", slog.Int64("version", c.Store.Version()))
		}
	})
}

// Router builds the HTTP API over the container's services.
func (c *Container) Router(extra ...Mounter) http.Handler {
	return NewRouter(RouterParams{
		Logger:            c.Logger,
		Config:            c.Config,
		State:             c.Store,
		AccountingHandler: accounting.NewHandler(c.Logger, c.Accounting, c.Idempotency),
		AssetsHandler:     assets.NewHandler(c.Logger, c.Assets),
		InventoryHandler:  inventory.NewHandler(c.Logger, c.Inventory),
		PlannerHandler:    planner.NewHandler(c.Logger, c.Planner),
		MasterDataHandler: masterdata.NewHandler(c.Logger, c.MasterData),
		ReportsHandler:    reportinghttp.NewHandler(c.Logger, c.Reports),
		Extra:             extra,
		Metrics:           c.Metrics,
	})
}

// Close releases backend connections.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("redis close", slog.Any("error", err))
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			c.Logger.Warn("sqlite close", slog.Any("error", err))
		}
	}
}
