// cmd/tools/replay-admin seeds and inspects demo replay records.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"coach-generation/internal/common/config"
	"coach-generation/internal/common/database"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "replay-admin",
	Short: "Seed and inspect demo replay records",
	Long:  "replay-admin writes replay records ahead of a demo so forced replay\nhas something to serve, and shows what a lookup would return.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

var configPath string

// openStore is replaced in tests.
var openStore = func(ctx context.Context) (store.ReplayStore, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return nil, nil, fmt.Errorf("replay-admin needs storage.driver=postgres, got %q", cfg.Storage.Driver)
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	if err := store.Migrate(ctx, pg.GetDB()); err != nil {
		pg.Close()
		return nil, nil, err
	}

	var replayStore store.ReplayStore = store.NewPostgresStore(pg.GetDB())
	if !cfg.Database.Redis.Enabled() {
		return replayStore, pg.Close, nil
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		pg.Close()
		return nil, nil, err
	}
	if err := rdb.Ping(ctx); err != nil {
		rdb.Close()
		pg.Close()
		return nil, nil, fmt.Errorf("redis is configured but unreachable: %w", err)
	}
	closeAll := func() error {
		rdbErr := rdb.Close()
		if err := pg.Close(); err != nil {
			return err
		}
		return rdbErr
	}
	return withLatestPointer(replayStore, rdb.GetClient(), cfg.Database.Redis), closeAll, nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadStorageFromFile(configPath)
	}
	return config.LoadStorage()
}

// withLatestPointer routes writes through the same Redis pointer the
// workers read, so a seeded record is served immediately.
func withLatestPointer(next store.ReplayStore, client redis.Cmdable, cfg config.RedisConfig) store.ReplayStore {
	return store.NewRedisReplayCache(next, client, cfg.KeyPrefix,
		time.Duration(cfg.TTL)*time.Second, logger.NewStructured("warn", "console"))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default configs/config.yaml)")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(latestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
