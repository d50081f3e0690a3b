package notification

import (
	"context"
	"crypto/sha1"
	"fmt"
	"log"
)

// SentCache remembers which (type, message) pairs have already been
// delivered. Implementations must be safe for concurrent use. Unlike
// the unbounded process-wide map this replaces, every implementation
// here is explicitly scoped and bounded: the in-memory cache caps
// entry count and ages entries out, the Redis cache sets a TTL on
// every key.
type SentCache interface {
	// Seen reports whether key was already marked as sent.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark records key as sent.
	Mark(ctx context.Context, key string) error
}

// cachingDecorator skips re-sending a notification whose exact
// (type, message) pair was already delivered, treating the hit as
// success. Placed outside a retry decorator, a cache hit bypasses the
// retries entirely. Cache errors are logged and treated as misses so
// a degraded cache never blocks delivery.
type cachingDecorator struct {
	next  Notification
	cache SentCache
}

// WithCaching wraps n with send de-duplication backed by cache.
func WithCaching(n Notification, cache SentCache) Notification {
	return &cachingDecorator{next: n, cache: cache}
}

func (c *cachingDecorator) Send(ctx context.Context) error {
	key := cacheKey(c.next.Type(), c.next.Message())
	seen, err := c.cache.Seen(ctx, key)
	if err != nil {
		log.Printf("notification: sent-cache lookup failed, sending anyway: %v", err)
	} else if seen {
		log.Printf("notification: duplicate %s suppressed", c.next.Type())
		return nil
	}
	if err := c.next.Send(ctx); err != nil {
		return err
	}
	if err := c.cache.Mark(ctx, key); err != nil {
		log.Printf("notification: sent-cache mark failed: %v", err)
	}
	return nil
}

func (c *cachingDecorator) Type() string { return c.next.Type() }

func (c *cachingDecorator) Message() string { return c.next.Message() }

// cacheKey builds a stable `type:sha1hex` key from the channel type
// and the rendered message.
func cacheKey(typ, message string) string {
	sum := sha1.Sum([]byte(message))
	return fmt.Sprintf("%s:%x", typ, sum[:])
}
