package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"golang.org/x/sync/singleflight"
)

const (
	cacheType = "plan"
	listKey   = "*"
)

// ErrInvalidPlanID is returned for an empty plan ID
var ErrInvalidPlanID = errors.New("plan id is required")

// Source fetches plans from the platform
type Source interface {
	ListPlans(ctx context.Context) ([]pricing.Plan, error)
	GetPlan(ctx context.Context, id string) (*pricing.Plan, error)
}

// Config bounds the cache. FetchTimeout caps a shared upstream fetch, which
// outlives the request that started it.
type Config struct {
	TTL          time.Duration
	Size         int
	FetchTimeout time.Duration
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{TTL: 5 * time.Minute, Size: 256, FetchTimeout: 15 * time.Second}
}

// Catalog is a read-through cache of subscription plans. Plans are the same
// for every user, so entries are shared across callers.
type Catalog struct {
	source  Source
	plans   *lru.LRU[string, *pricing.Plan]
	lists   *lru.LRU[string, []pricing.Plan]
	group   singleflight.Group
	metrics *observability.Metrics
	timeout time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a catalog over source. metrics may be nil.
func New(source Source, cfg Config, metrics *observability.Metrics) *Catalog {
	defaults := DefaultConfig()
	if cfg.Size < 1 {
		cfg.Size = defaults.Size
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}
	return &Catalog{
		source:  source,
		plans:   lru.NewLRU[string, *pricing.Plan](cfg.Size, nil, cfg.TTL),
		lists:   lru.NewLRU[string, []pricing.Plan](1, nil, cfg.TTL),
		metrics: metrics,
		timeout: cfg.FetchTimeout,
	}
}

// Get returns plan id, fetching it on a miss
func (c *Catalog) Get(ctx context.Context, id string) (*pricing.Plan, error) {
	if id == "" {
		return nil, ErrInvalidPlanID
	}

	if plan, ok := c.plans.Get(id); ok {
		c.recordHit()
		return plan, nil
	}
	c.recordMiss()

	v, err := c.fetch(ctx, "plan:"+id, func(ctx context.Context) (interface{}, error) {
		plan, err := c.source.GetPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		c.plans.Add(id, plan)
		return plan, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching plan %s: %w", id, err)
	}
	return v.(*pricing.Plan), nil
}

// List returns every plan, fetching the listing on a miss. Listed plans also
// warm the per-plan cache.
func (c *Catalog) List(ctx context.Context) ([]pricing.Plan, error) {
	if plans, ok := c.lists.Get(listKey); ok {
		c.recordHit()
		return plans, nil
	}
	c.recordMiss()

	v, err := c.fetch(ctx, "list", func(ctx context.Context) (interface{}, error) {
		plans, err := c.source.ListPlans(ctx)
		if err != nil {
			return nil, err
		}
		c.lists.Add(listKey, plans)
		for i := range plans {
			plan := plans[i]
			c.plans.Add(plan.ID, &plan)
		}
		return plans, nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return v.([]pricing.Plan), nil
}

// fetch collapses concurrent misses for key into one call of load. The shared
// call is detached from the starting caller's cancellation and bounded by the
// fetch timeout; each caller stops waiting when its own ctx is done. A waiter
// that joined a failed fetch retries once with its own ctx and credentials.
func (c *Catalog) fetch(ctx context.Context, key string, load func(context.Context) (interface{}, error)) (interface{}, error) {
	led := false
	ch := c.group.DoChan(key, func() (interface{}, error) {
		led = true
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return load(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil && !led {
			return load(ctx)
		}
		return res.Val, res.Err
	}
}

// Active returns the plans currently offered to customers
func (c *Catalog) Active(ctx context.Context) ([]pricing.Plan, error) {
	plans, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]pricing.Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

// Invalidate drops every cached entry
func (c *Catalog) Invalidate() {
	c.plans.Purge()
	c.lists.Purge()
}

// Stats reports cache effectiveness
type Stats struct {
	Hits      int64
	Misses    int64
	ItemCount int
	HitRate   float64
}

// Stats returns cache statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: c.plans.Len(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (c *Catalog) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	}
}

func (c *Catalog) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}
