package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coach-generation/internal/common/config"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"
	"coach-generation/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore()
	previous := openStore
	openStore = func(context.Context) (store.ReplayStore, func() error, error) {
		return mem, func() error { return nil }, nil
	}
	t.Cleanup(func() { openStore = previous })
	return mem
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedThenLatest(t *testing.T) {
	mem := useMemoryStore(t)
	response := writeFile(t, "response.json", `{"primary_path":"咨询","backup_path":"社群","weeks":[]}`)

	out, err := execute(t, "seed", "--user", "user-1", "--operation", "generate_monetization_map", "--response", response)
	require.NoError(t, err)
	assert.Contains(t, out, "user-1/generate_monetization_map")
	require.Len(t, mem.ReplayRecords(), 1)

	out, err = execute(t, "latest", "--user", "user-1", "--operation", "generate_monetization_map")
	require.NoError(t, err)
	assert.Contains(t, out, `"primary_path": "咨询"`)
}

func TestLatest_NothingStored(t *testing.T) {
	useMemoryStore(t)
	out, err := execute(t, "latest", "--user", "nobody", "--operation", "generate_launch_kit")
	require.NoError(t, err)
	assert.Contains(t, out, "No replay record")
}

func TestSeed_RejectsUnknownOperation(t *testing.T) {
	useMemoryStore(t)
	response := writeFile(t, "response.json", `{}`)
	_, err := execute(t, "seed", "--user", "u", "--operation", "generate_everything", "--response", response)
	assert.Error(t, err)
}

func TestSeed_RejectsNonObjectResponse(t *testing.T) {
	mem := useMemoryStore(t)
	response := writeFile(t, "response.json", `[1,2,3]`)
	_, err := execute(t, "seed", "--user", "u", "--operation", "generate_launch_kit", "--response", response)
	assert.Error(t, err)
	assert.Empty(t, mem.ReplayRecords())
}

func TestSeed_UpdatesLatestPointer(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	durable := store.NewMemoryStore()
	redisCfg := config.RedisConfig{Address: mr.Addr(), KeyPrefix: "replay:latest", TTL: 3600}
	previous := openStore
	openStore = func(context.Context) (store.ReplayStore, func() error, error) {
		return withLatestPointer(durable, client, redisCfg), func() error { return nil }, nil
	}
	t.Cleanup(func() { openStore = previous })

	// A worker already cached an older record for this user.
	workerView := store.NewRedisReplayCache(durable, client, redisCfg.KeyPrefix, time.Hour, logger.NewTestLogger(t))
	req, err := llm.NewRequest(llm.OpGenerateLaunchKit, "", map[string]interface{}{})
	require.NoError(t, err)
	older, err := store.NewReplayRecord("user-1", req, map[string]interface{}{"version": "old"})
	require.NoError(t, err)
	require.NoError(t, workerView.InsertReplayRecord(context.Background(), older))

	response := writeFile(t, "response.json", `{"version":"seeded"}`)
	_, err = execute(t, "seed", "--user", "user-1", "--operation", "generate_launch_kit", "--response", response)
	require.NoError(t, err)

	latest, err := workerView.FindLatestReplayRecord(context.Background(), "user-1", llm.OpGenerateLaunchKit)
	require.NoError(t, err)
	body, err := latest.Response()
	require.NoError(t, err)
	assert.Equal(t, "seeded", body["version"])
}
