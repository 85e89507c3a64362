package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts durable lookups so tests can tell cache hits apart.
type countingStore struct {
	*MemoryStore
	finds int
}

func (c *countingStore) FindLatestReplayRecord(ctx context.Context, userID string, op llm.Operation) (*ReplayRecord, error) {
	c.finds++
	return c.MemoryStore.FindLatestReplayRecord(ctx, userID, op)
}

func newMiniredisCache(t *testing.T) (*RedisReplayCache, *countingStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	durable := &countingStore{MemoryStore: NewMemoryStore()}
	return NewRedisReplayCache(durable, client, "test:latest", 0, logger.NewTestLogger(t)), durable, mr
}

func TestRedisReplayCache_InsertThenServeFromPointer(t *testing.T) {
	ctx := context.Background()
	cache, durable, mr := newMiniredisCache(t)

	rec := newRecord(t, "user-1", llm.OpGenerateContentMatrix, map[string]interface{}{"v": 1})
	require.NoError(t, cache.InsertReplayRecord(ctx, rec))
	assert.True(t, mr.Exists("test:latest:generate_content_matrix:user-1"))

	got, err := cache.FindLatestReplayRecord(ctx, "user-1", llm.OpGenerateContentMatrix)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.JSONEq(t, string(rec.StoredResponse), string(got.StoredResponse))
	assert.Equal(t, 0, durable.finds)
}

func TestRedisReplayCache_OlderRecordDoesNotReplacePointer(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newMiniredisCache(t)

	newer := newRecord(t, "user-1", llm.OpGenerateLaunchKit, map[string]interface{}{"v": "newer"})
	newer.ID = 10
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	older := newRecord(t, "user-1", llm.OpGenerateLaunchKit, map[string]interface{}{"v": "older"})
	older.ID = 11
	older.CreatedAt = newer.CreatedAt.Add(-time.Minute)

	cache.remember(ctx, newer)
	cache.remember(ctx, older)

	got, err := cache.FindLatestReplayRecord(ctx, "user-1", llm.OpGenerateLaunchKit)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)

	// Same timestamp, higher id replaces.
	tie := newRecord(t, "user-1", llm.OpGenerateLaunchKit, map[string]interface{}{"v": "tie"})
	tie.ID = 12
	tie.CreatedAt = newer.CreatedAt
	cache.remember(ctx, tie)

	got, err = cache.FindLatestReplayRecord(ctx, "user-1", llm.OpGenerateLaunchKit)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
}

func TestRedisReplayCache_MissReadsDurableAndPopulates(t *testing.T) {
	ctx := context.Background()
	cache, durable, mr := newMiniredisCache(t)

	rec := newRecord(t, "user-1", llm.OpGenerateConstitution, map[string]interface{}{"v": 1})
	require.NoError(t, durable.InsertReplayRecord(ctx, rec))

	got, err := cache.FindLatestReplayRecord(ctx, "user-1", llm.OpGenerateConstitution)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, 1, durable.finds)
	assert.True(t, mr.Exists("test:latest:generate_constitution:user-1"))

	_, err = cache.FindLatestReplayRecord(ctx, "user-1", llm.OpGenerateConstitution)
	require.NoError(t, err)
	assert.Equal(t, 1, durable.finds)
}

func TestRedisReplayCache_NotFound(t *testing.T) {
	cache, _, _ := newMiniredisCache(t)

	_, err := cache.FindLatestReplayRecord(context.Background(), "nobody", llm.OpGenerateConstitution)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisReplayCache_TTLApplied(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewRedisReplayCache(NewMemoryStore(), client, "", time.Minute, logger.NewTestLogger(t))

	rec := newRecord(t, "user-1", llm.OpGenerateLaunchKit, map[string]interface{}{"v": 1})
	require.NoError(t, cache.InsertReplayRecord(context.Background(), rec))

	assert.Equal(t, time.Minute, mr.TTL("replay:latest:generate_launch_kit:user-1"))
}

func TestRedisReplayCache_RedisFailureFallsBackToDurable(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	durable := NewMemoryStore()
	cache := NewRedisReplayCache(durable, client, "test:latest", 0, logger.NewTestLogger(t))

	rec := newRecord(t, "user-1", llm.OpCheckConsistency, map[string]interface{}{"v": 1})
	require.NoError(t, durable.InsertReplayRecord(ctx, rec))

	mock.ExpectHGet("test:latest:check_consistency:user-1", "record").SetErr(errors.New("connection refused"))

	got, err := cache.FindLatestReplayRecord(ctx, "user-1", llm.OpCheckConsistency)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisReplayCache_DurableInsertFailureIsReturned(t *testing.T) {
	client, mock := redismock.NewClientMock()
	failing := &failingReplayStore{err: errors.New("db down")}
	cache := NewRedisReplayCache(failing, client, "", 0, logger.NewTestLogger(t))

	err := cache.InsertReplayRecord(context.Background(), &ReplayRecord{UserID: "u", Operation: llm.OpCheckConsistency})
	assert.EqualError(t, err, "db down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingReplayStore struct{ err error }

func (f *failingReplayStore) InsertReplayRecord(context.Context, *ReplayRecord) error { return f.err }

func (f *failingReplayStore) FindLatestReplayRecord(context.Context, string, llm.Operation) (*ReplayRecord, error) {
	return nil, f.err
}
