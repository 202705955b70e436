package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adanyl0v/go-todo-tracker/internal/config"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/memory"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/mongodb"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/postgres"
	redisstore "github.com/adanyl0v/go-todo-tracker/internal/storage/redis"
)

const (
	redisPingTimeout    = 5 * time.Second
	storageCloseTimeout = 5 * time.Second
)

func (a *App) MustConnectStorage() {
	store, err := connectStorage(context.Background(), a.logger, a.cfg)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("driver", a.cfg.StorageDriver).
			Msg("failed to connect to storage")
		panic(err)
	}
	a.store = store
}

func (a *App) DisconnectStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), storageCloseTimeout)
	defer cancel()

	err := a.store.Close(ctx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("driver", a.cfg.StorageDriver).
			Msg("failed to disconnect from storage")
		return
	}
	a.logger.Info().
		Str("driver", a.cfg.StorageDriver).
		Msg("disconnected from storage")
}

func connectStorage(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		return connectPostgres(ctx, logger, cfg.Postgres)
	case config.StorageDriverMongoDB:
		return connectMongoDB(ctx, logger, cfg.MongoDB)
	case config.StorageDriverRedis:
		return connectRedis(ctx, logger, cfg.Redis)
	case config.StorageDriverMemory:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

func connectPostgres(ctx context.Context, logger zerolog.Logger, cfg config.PostgresConfig) (storage.Store, error) {
	connURL := cfg.URL()

	if cfg.Migrate {
		err := postgres.Migrate(connURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("applied postgres migrations")
	}

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	err = pgPool.Ping(pingCtx)
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	return postgres.New(logger, pgPool), nil
}

func connectMongoDB(ctx context.Context, logger zerolog.Logger, cfg config.MongoDBConfig) (storage.Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	err = client.Ping(connectCtx, nil)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store, err := mongodb.New(connectCtx, client, cfg.Database)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Info().
		Str("database", cfg.Database).
		Msg("connected to mongodb")
	return store, nil
}

func connectRedis(ctx context.Context, logger zerolog.Logger, cfg config.RedisConfig) (storage.Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to redis")

	return redisstore.New(client), nil
}
