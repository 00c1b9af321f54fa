// Package cache provides the Redis backed cache for computed analytics views.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"socialtrack/internal/observability"
)

const keyPrefix = "report"

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient connects to Redis at addr, which is either a redis:// URL or host:port
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	return client, nil
}

// ReportCache stores computed analytics views per owner.
// A nil *ReportCache is valid and behaves as an always-empty cache.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{
		client: client,
		ttl:    ttl,
	}
}

// Key builds the cache key of an owner's view. parts identify the view, e.g. kind, project and day.
// The owner is stored as a name-based UUID so SCAN patterns built from it hold no glob characters.
func Key(ownerID string, parts ...string) string {
	return keyPrefix + ":" + ownerSegment(ownerID) + ":" + strings.Join(parts, ":")
}

func ownerSegment(ownerID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(ownerID)).String()
}

// Get decodes the cached value at key into dst and reports whether it was found
func (c *ReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ReportCacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		observability.ReportCacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("error reading cache: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		observability.ReportCacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("error decoding cached value: %w", err)
	}

	observability.ReportCacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// Set stores value at key for the configured TTL
func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached view of the owner
func (c *ReportCache) Invalidate(ctx context.Context, ownerID string) error {
	if c == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, Key(ownerID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error deleting cache keys: %w", err)
	}
	return nil
}
