package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/neuroflow/backend/internal/models"
)

// DefaultStatusTTL bounds how often the health endpoint is probed.
const DefaultStatusTTL = 30 * time.Second

// statusCache is a single-slot cache of the last connectivity check. Callers
// inside the TTL window get the stored value; callers racing on an expired
// slot share one probe.
type statusCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	checkedAt time.Time
	status    *models.ConnectionStatus

	group singleflight.Group
}

func newStatusCache(ttl time.Duration, now func() time.Time) *statusCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	if now == nil {
		now = time.Now
	}
	return &statusCache{ttl: ttl, now: now}
}

func (c *statusCache) fresh() (models.ConnectionStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil || c.now().Sub(c.checkedAt) >= c.ttl {
		return models.ConnectionStatus{}, false
	}
	return *c.status, true
}

func (c *statusCache) store(at time.Time, s models.ConnectionStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkedAt = at
	c.status = &s
}

// get returns the cached status, running probe only when the slot is empty or expired.
func (c *statusCache) get(ctx context.Context, probe func(context.Context) models.ConnectionStatus) models.ConnectionStatus {
	if s, ok := c.fresh(); ok {
		return s
	}
	v, _, _ := c.group.Do("status", func() (any, error) {
		if s, ok := c.fresh(); ok {
			return s, nil
		}
		started := c.now()
		s := probe(ctx)
		s.CheckedAt = started
		c.store(started, s)
		return s, nil
	})
	return v.(models.ConnectionStatus)
}

// invalidate empties the slot so the next get probes again.
func (c *statusCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = nil
}
