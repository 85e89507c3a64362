package main

import (
	"context"
	"fmt"
	"time"

	"coach-generation/internal/common/config"
	"coach-generation/internal/common/database"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/store"

	"go.uber.org/zap"
)

// stores is the storage wiring chosen by storage.driver.
type stores struct {
	replay   store.ReplayStore
	callLog  store.CallLogStore
	checkers map[string]store.HealthChecker
	closers  []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, zapLog *zap.Logger, log logger.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		zapLog.Warn("Using in-memory storage; replay records and call logs are lost on restart")
		mem := store.NewMemoryStore()
		return &stores{replay: mem, callLog: mem, checkers: map[string]store.HealthChecker{}}, nil
	}

	s := &stores{checkers: map[string]store.HealthChecker{}}

	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, pg.Close)
	zapLog.Info("PostgreSQL connected successfully")

	if err := store.Migrate(ctx, pg.GetDB()); err != nil {
		s.Close()
		return nil, fmt.Errorf("postgres migration failed: %w", err)
	}

	pgStore := store.NewPostgresStore(pg.GetDB())
	s.replay = pgStore
	s.checkers["postgres"] = pgStore
	tee := store.NewTeeCallLogStore(pgStore, log)
	s.callLog = tee

	if cfg.Database.Redis.Enabled() {
		var rdb *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, rdb.Close)
		cache := store.NewRedisReplayCache(pgStore, rdb.GetClient(), cfg.Database.Redis.KeyPrefix,
			time.Duration(cfg.Database.Redis.TTL)*time.Second, log)
		s.replay = cache
		s.checkers["redis"] = cache
		zapLog.Info("Redis replay cache enabled", zap.String("prefix", cfg.Database.Redis.KeyPrefix))
	}

	if cfg.Database.Elasticsearch.Enabled() {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			s.Close()
			return nil, err
		}
		index := cfg.Database.Elasticsearch.CallLogIndex
		if err := es.EnsureIndex(ctx, index, store.CallLogIndexMapping); err != nil {
			s.Close()
			return nil, err
		}
		esStore := store.NewElasticsearchCallLogStore(es.Client, index)
		tee.AddMirror("elasticsearch", esStore)
		s.checkers["elasticsearch"] = esStore
		zapLog.Info("Call log mirrored to Elasticsearch", zap.String("index", index))
	}

	return s, nil
}
