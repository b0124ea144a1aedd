// Package cache is the query-key cache in front of the backend catalog. Keys
// mirror the storefront's query shapes so a flow can invalidate exactly the
// reads a state change made stale. Invalidation, never optimistic update:
// viewers see new inventory on their next re-fetch.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache: miss")

// Query keys, shaped like the UI's query identifiers.
func EventListKey(page, limit int) string    { return fmt.Sprintf("event:list:%d:%d", page, limit) }
func EventDetailKey(eventID string) string   { return "event:detail:" + eventID }
func TicketListKey(owner string) string      { return "ticket:list:" + owner }
func TicketDetailKey(ticketID string) string { return "ticket:detail:" + ticketID }

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func New(redisClient *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redisClient, ttl: ttl}
}

// GetJSON loads a cached value into out. ErrMiss means fetch from origin.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) error {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cache: decode %s: %v", key, err)
	}
	return nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %v", key, err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops the given keys. Missing keys are not an error.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

// InvalidateEvent drops an event's detail entry and every cached list page.
// List pages are keyed by pagination, so they go by pattern.
func (c *Cache) InvalidateEvent(ctx context.Context, eventID string) error {
	keys := []string{EventDetailKey(eventID)}

	iter := c.redis.Scan(ctx, 0, "event:list:*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: scan event lists: %w", err)
	}

	return c.Invalidate(ctx, keys...)
}

// InvalidateTicket drops a ticket's detail entry and its owner's list.
func (c *Cache) InvalidateTicket(ctx context.Context, ticketID, ownerAddress string) error {
	return c.Invalidate(ctx, TicketDetailKey(ticketID), TicketListKey(ownerAddress))
}
