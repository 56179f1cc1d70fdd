package appointments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// UrgentCountCache keeps the cross-page urgent badge count warm between
// renders. A successful action invalidates it so both the live and history
// views pick up the change on their next fetch.
type UrgentCountCache struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

func NewUrgentCountCache(rdb *redis.Client, ttl time.Duration) *UrgentCountCache {
	if rdb == nil {
		panic("appointments: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &UrgentCountCache{
		redis:  rdb,
		ttl:    ttl,
		tracer: otel.Tracer("mapleime.appointments.urgentcache"),
	}
}

// Get returns the cached count; ok is false on miss.
func (c *UrgentCountCache) Get(ctx context.Context, doctorID string) (count int, ok bool, err error) {
	ctx, span := c.tracer.Start(ctx, "urgentcache.get")
	defer span.End()

	raw, err := c.redis.Get(ctx, urgentKey(doctorID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		span.RecordError(err)
		return 0, false, fmt.Errorf("appointments: load urgent count: %w", err)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// Set stores the count for the cache TTL.
func (c *UrgentCountCache) Set(ctx context.Context, doctorID string, count int) error {
	ctx, span := c.tracer.Start(ctx, "urgentcache.set")
	defer span.End()

	if err := c.redis.Set(ctx, urgentKey(doctorID), strconv.Itoa(count), c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: persist urgent count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count after a mutation.
func (c *UrgentCountCache) Invalidate(ctx context.Context, doctorID string) error {
	ctx, span := c.tracer.Start(ctx, "urgentcache.invalidate")
	defer span.End()

	if err := c.redis.Del(ctx, urgentKey(doctorID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: invalidate urgent count: %w", err)
	}
	return nil
}

func urgentKey(doctorID string) string {
	return "urgent-count:" + doctorID
}
