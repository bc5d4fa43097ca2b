package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookingpro/internal/availability"

	"github.com/redis/go-redis/v9"
)

// CachedGateway keeps busy intervals in Redis. Every write bumps a
// generation counter so earlier entries are never read again.
type CachedGateway struct {
	next   Gateway
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCachedGateway wraps next. A nil client or non-positive ttl disables caching.
func NewCachedGateway(next Gateway, client *redis.Client, calendarID string, ttl time.Duration) *CachedGateway {
	return &CachedGateway{
		next:   next,
		redis:  client,
		ttl:    ttl,
		prefix: "busy:" + calendarID,
	}
}

func (c *CachedGateway) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

func (c *CachedGateway) generation(ctx context.Context) (int64, error) {
	n, err := c.redis.Get(ctx, c.prefix+":gen").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *CachedGateway) key(gen int64, timeMin, timeMax time.Time) string {
	return fmt.Sprintf("%s:%d:%d:%d", c.prefix, gen, timeMin.Unix(), timeMax.Unix())
}

func (c *CachedGateway) ListBusyIntervals(ctx context.Context, timeMin, timeMax time.Time) ([]availability.Interval, error) {
	if !c.enabled() {
		return c.next.ListBusyIntervals(ctx, timeMin, timeMax)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return c.next.ListBusyIntervals(ctx, timeMin, timeMax)
	}
	key := c.key(gen, timeMin, timeMax)

	var cached []availability.Interval
	if c.readCache(ctx, key, &cached) {
		return cached, nil
	}

	busy, err := c.next.ListBusyIntervals(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, busy)
	return busy, nil
}

func (c *CachedGateway) CreateEvent(ctx context.Context, req EventRequest) (string, error) {
	id, err := c.next.CreateEvent(ctx, req)
	if err != nil {
		return "", err
	}
	c.Invalidate(ctx)
	return id, nil
}

func (c *CachedGateway) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.next.DeleteEvent(ctx, eventID)
	c.Invalidate(ctx)
	return err
}

// Invalidate drops every cached range of the calendar.
func (c *CachedGateway) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	_ = c.redis.Incr(ctx, c.prefix+":gen").Err()
}

func (c *CachedGateway) readCache(ctx context.Context, key string, out any) bool {
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *CachedGateway) writeCache(ctx context.Context, key string, val any) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}
