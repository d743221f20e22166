// Package cursor decides which fetched messages are new. It keeps a
// high-water mark over message timestamps plus a bounded set of recently
// seen ids so a redelivered batch is never published twice.
package cursor

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/pkg/metrics"
)

// SeenRepository is an optional shared dedup backend. FirstSeen reports
// whether this process is the first to claim the id.
type SeenRepository interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
}

type Cursor struct {
	repo   SeenRepository
	logger logger.Logger

	mu        sync.Mutex
	highWater float64
	seen      map[string]*list.Element
	order     *list.List // front = oldest, evicted first
	capacity  int
}

// New builds a cursor whose high-water mark starts at now minus lookback,
// so a fresh process does not replay the channel's whole history. capacity
// bounds the in-process seen set; zero means the default.
func New(lookback time.Duration, capacity int, repo SeenRepository, log logger.Logger) *Cursor {
	if lookback <= 0 {
		lookback = constants.DefaultLookback
	}
	if capacity <= 0 {
		capacity = constants.DefaultSeenCapacity
	}

	hwm := float64(time.Now().Add(-lookback).UnixNano()) / float64(time.Second)
	metrics.SetCursorHighWaterMark(hwm)

	return &Cursor{
		repo:      repo,
		logger:    log,
		highWater: hwm,
		seen:      make(map[string]*list.Element),
		order:     list.New(),
		capacity:  capacity,
	}
}

// HighWater returns the current mark as a unix timestamp with fractional
// seconds, suitable as the "oldest" bound of the next fetch.
func (c *Cursor) HighWater() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highWater
}

// ShouldProcess reports whether the message is new, and marks it seen when it
// is. Marking happens before the caller processes the message, so a crash
// mid-processing drops the message rather than duplicating it.
func (c *Cursor) ShouldProcess(ctx context.Context, id string, ts float64) bool {
	c.mu.Lock()
	if ts <= c.highWater {
		c.mu.Unlock()
		return false
	}
	if _, ok := c.seen[id]; ok {
		c.mu.Unlock()
		return false
	}
	c.markLocked(id)
	c.mu.Unlock()

	if c.repo != nil {
		first, err := c.repo.FirstSeen(ctx, id)
		if err != nil {
			// Shared backend down: fall back to the local set and let the
			// message through rather than stalling the relay.
			c.logger.WarnwCtx(ctx, "Shared dedup backend unavailable, using local set only",
				"message_id", id,
				"error", err,
			)
			metrics.FallbackUsageTotal.WithLabelValues("cursor", "local_dedup").Inc()
			return true
		}
		return first
	}

	return true
}

// Advance raises the high-water mark to ts. It never lowers the mark, so a
// batch processed out of arrival order cannot reopen already-consumed ground.
func (c *Cursor) Advance(ts float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ts <= c.highWater {
		return
	}
	c.highWater = ts
	metrics.SetCursorHighWaterMark(ts)
}

func (c *Cursor) markLocked(id string) {
	c.seen[id] = c.order.PushBack(id)
	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.seen, oldest.Value.(string))
	}
}
