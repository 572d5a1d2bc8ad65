package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL время жизни картинки в кэше
const DefaultCacheTTL = 15 * time.Minute

const cachePrefix = "lesson_booking:week"

// Cache хранит готовые картинки недели.
// Invalidate делает недействительными все недели учителя.
type Cache interface {
	Get(ctx context.Context, teacherID uuid.UUID, weekStart time.Time) ([]byte, bool, error)
	Set(ctx context.Context, teacherID uuid.UUID, weekStart time.Time, png []byte) error
	Invalidate(ctx context.Context, teacherID uuid.UUID) error
}

// NopCache ничего не хранит
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID, time.Time) ([]byte, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, uuid.UUID, time.Time, []byte) error { return nil }

func (NopCache) Invalidate(context.Context, uuid.UUID) error { return nil }

// RedisCache кэш в Redis. Ключ картинки содержит версию учителя,
// Invalidate увеличивает версию и старые ключи доживают до TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, teacherID uuid.UUID, weekStart time.Time) ([]byte, bool, error) {
	version, err := c.version(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}

	data, err := c.client.Get(ctx, imageKey(teacherID, version, weekStart)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get week image: %w", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, teacherID uuid.UUID, weekStart time.Time, png []byte) error {
	version, err := c.version(ctx, teacherID)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, imageKey(teacherID, version, weekStart), png, c.ttl).Err(); err != nil {
		return fmt.Errorf("set week image: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, teacherID uuid.UUID) error {
	if err := c.client.Incr(ctx, versionKey(teacherID)).Err(); err != nil {
		return fmt.Errorf("bump week version: %w", err)
	}
	return nil
}

func (c *RedisCache) version(ctx context.Context, teacherID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(teacherID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get week version: %w", err)
	}
	return v, nil
}

func versionKey(teacherID uuid.UUID) string {
	return fmt.Sprintf("%s:version:%s", cachePrefix, teacherID)
}

func imageKey(teacherID uuid.UUID, version int64, weekStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", cachePrefix, teacherID, version, model.FormatDate(weekStart))
}
