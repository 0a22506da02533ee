package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xixhienxix/task-list/internal/cache"
	"github.com/xixhienxix/task-list/internal/config"
	"github.com/xixhienxix/task-list/internal/logging"
	"github.com/xixhienxix/task-list/internal/metrics"
	"github.com/xixhienxix/task-list/internal/repo"
	"github.com/xixhienxix/task-list/internal/service"
	"github.com/xixhienxix/task-list/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type App struct {
	cfg    config.Config
	log    *logrus.Logger
	closer []func(ctx context.Context) error
	router *gin.Engine
}

// stores is the storage handle shared by both services.
type stores struct {
	accounts repo.AccountRepo
	tasks    repo.TaskRepo
}

func New(cfg config.Config, log *logrus.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	st, err := a.openStores()
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	var listCache service.ListCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
		a.closer = append(a.closer, func(context.Context) error { return rdb.Close() })
		listCache = cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
		log.WithField("addr", cfg.Redis.Addr).Info("task list cache enabled")
	}

	a.router = newRouter(cfg, log, st, listCache)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close releases storage and cache connections in reverse open order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}

func (a *App) openStores() (stores, error) {
	cfg := a.cfg
	a.log.WithField("driver", cfg.Store.Driver).Info("opening store")

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return stores{accounts: repo.NewMemoryAccountRepo(), tasks: repo.NewMemoryTaskRepo()}, nil

	case config.DriverSQLite:
		db, err := repo.OpenSQLite(cfg.SQLite.Path, a.log.IsLevelEnabled(logrus.DebugLevel))
		if err != nil {
			return stores{}, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return stores{}, fmt.Errorf("sqlite handle: %w", err)
		}
		a.closer = append(a.closer, func(context.Context) error { return sqlDB.Close() })
		return stores{accounts: repo.NewGormAccountRepo(db), tasks: repo.NewGormTaskRepo(db)}, nil

	case config.DriverPostgres:
		if err := migrations.Up(cfg.PG.DSN); err != nil {
			return stores{}, err
		}
		pool, err := newPostgres(cfg.PG.DSN)
		if err != nil {
			return stores{}, err
		}
		a.closer = append(a.closer, func(context.Context) error { pool.Close(); return nil })
		return stores{accounts: repo.NewPGAccountRepo(pool), tasks: repo.NewPGTaskRepo(pool)}, nil

	case config.DriverMongo:
		client, err := newMongo(cfg.Mongo)
		if err != nil {
			return stores{}, err
		}
		a.closer = append(a.closer, client.Disconnect)
		db := client.Database(cfg.Mongo.Database)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout.Duration())
		defer cancel()
		if err := repo.EnsureMongoIndexes(ctx, db); err != nil {
			return stores{}, err
		}
		return stores{accounts: repo.NewMongoAccountRepo(db), tasks: repo.NewMongoTaskRepo(db)}, nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newMongo(cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout.Duration())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout.Duration()))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func newRouter(cfg config.Config, log *logrus.Logger, st stores, listCache service.ListCache) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(log), gin.Recovery(), metrics.Middleware())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.HTTP.AllowOrigins(); len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	Setup(r, cfg, log, st, listCache)
	return r
}
