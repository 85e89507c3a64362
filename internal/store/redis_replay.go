package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
	"coach-generation/internal/llm"

	"github.com/redis/go-redis/v9"
)

// setIfNewer stores the pointer only when its rank sorts after the current
// one, so concurrent writers converge on the newest record.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'rank')
if current and current >= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'rank', ARGV[1], 'record', ARGV[2])
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('PEXPIRE', KEYS[1], ttl)
end
return 1
`)

// RedisReplayCache fronts a durable ReplayStore with a per-(user, operation)
// pointer to the latest record. Redis failures are logged and the durable
// store answers instead.
type RedisReplayCache struct {
	next   ReplayStore
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisReplayCache(next ReplayStore, client redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *RedisReplayCache {
	if prefix == "" {
		prefix = "replay:latest"
	}
	return &RedisReplayCache{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "replay-redis"}),
	}
}

func (c *RedisReplayCache) InsertReplayRecord(ctx context.Context, rec *ReplayRecord) error {
	if err := c.next.InsertReplayRecord(ctx, rec); err != nil {
		return err
	}
	c.remember(ctx, rec)
	return nil
}

func (c *RedisReplayCache) FindLatestReplayRecord(ctx context.Context, userID string, op llm.Operation) (*ReplayRecord, error) {
	data, err := c.client.HGet(ctx, c.key(userID, op), "record").Bytes()
	switch {
	case err == nil:
		var rec ReplayRecord
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
			return &rec, nil
		}
		c.logger.Warn("discarding unreadable replay pointer", map[string]interface{}{
			"userId":    userID,
			"operation": op.String(),
		})
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("replay pointer lookup failed, reading durable store", map[string]interface{}{
			"userId":    userID,
			"operation": op.String(),
			"error":     err,
		})
	}

	rec, err := c.next.FindLatestReplayRecord(ctx, userID, op)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, rec)
	return rec, nil
}

// HealthCheck pings Redis. The durable store is checked separately.
func (c *RedisReplayCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReplayCache) remember(ctx context.Context, rec *ReplayRecord) {
	data, err := json.Marshal(rec)
	if err == nil {
		err = setIfNewer.Run(ctx, c.client, []string{c.key(rec.UserID, rec.Operation)},
			rank(rec), data, c.ttl.Milliseconds()).Err()
	}
	if err != nil {
		metrics.StoreWriteFailures.WithLabelValues("replay_redis").Inc()
		c.logger.Warn("failed to update replay pointer", map[string]interface{}{
			"recordId":  rec.ID,
			"operation": rec.Operation.String(),
			"error":     err,
		})
	}
}

func (c *RedisReplayCache) key(userID string, op llm.Operation) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, op, userID)
}

// rank is a fixed-width string whose byte order matches (created_at, id).
func rank(rec *ReplayRecord) string {
	return fmt.Sprintf("%020d:%020d", rec.CreatedAt.UnixNano(), rec.ID)
}
