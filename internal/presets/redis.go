package presets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces preset keys in Redis.
const DefaultKeyPrefix = "rate-impact:preset:"

const pingTimeout = 2 * time.Second

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore reads presets maintained outside the binary from Redis and
// falls back to another store for regions Redis does not hold or when Redis
// is unavailable.
type RedisStore struct {
	client   kv
	prefix   string
	fallback Store
	logger   *zap.Logger
}

// NewStore connects to Redis at url and returns a RedisStore backed by the
// default table. If url is empty, malformed or unreachable, the default
// table is returned on its own.
func NewStore(ctx context.Context, url, prefix string, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := DefaultTable()
	if url == "" {
		return table
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid presets redis url, using built-in presets",
			zap.String("op", "presets.NewStore"),
			zap.Error(err),
		)
		return table
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("presets redis unreachable, using built-in presets",
			zap.String("op", "presets.NewStore"),
			zap.String("addr", opt.Addr),
			zap.Error(err),
		)
		_ = client.Close()
		return table
	}

	logger.Info("using redis preset store",
		zap.String("op", "presets.NewStore"),
		zap.String("addr", opt.Addr),
	)
	return NewRedisStore(client, prefix, table, logger)
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client kv, prefix string, fallback Store, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if fallback == nil {
		fallback = DefaultTable()
	}
	return &RedisStore{client: client, prefix: prefix, fallback: fallback, logger: logger}
}

// Get returns the Redis copy of a region's preset, or the fallback's.
func (s *RedisStore) Get(ctx context.Context, region string) (Preset, error) {
	key := s.prefix + NormalizeRegion(region)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to read preset from redis",
				zap.String("op", "presets.RedisStore.Get"),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return s.fallback.Get(ctx, region)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("ignoring malformed preset in redis",
			zap.String("op", "presets.RedisStore.Get"),
			zap.String("key", key),
			zap.Error(err),
		)
		return s.fallback.Get(ctx, region)
	}
	p.Region = NormalizeRegion(region)
	return p, nil
}

// List returns the fallback's regions with any Redis overrides applied.
// Regions that exist only in Redis are not discoverable without a scan and
// are not listed.
func (s *RedisStore) List(ctx context.Context) ([]Preset, error) {
	base, err := s.fallback.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]Preset, 0, len(base))
	for _, p := range base {
		resolved, err := s.Get(ctx, p.Region)
		if err != nil {
			return nil, err
		}
		list = append(list, resolved)
	}
	sortPresets(list)
	return list, nil
}

// Put writes a preset to Redis without expiry.
func (s *RedisStore) Put(ctx context.Context, p Preset) error {
	p.Region = NormalizeRegion(p.Region)
	if p.Region == "" {
		return fmt.Errorf("preset %q has no region code", p.Name)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preset %s: %w", p.Region, err)
	}
	if err := s.client.Set(ctx, s.prefix+p.Region, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store preset %s: %w", p.Region, err)
	}
	return nil
}
