package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	plans     []pricing.Plan
	listCalls atomic.Int32
	getCalls  atomic.Int32
	err       error
	delay     time.Duration
}

// wait honours ctx the way an HTTP fetch would
func (f *fakeSource) wait(ctx context.Context) error {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if token, _ := ctx.Value(tokenKey{}).(string); token == "bad" {
		return errors.New("401 unauthorized")
	}
	return f.err
}

type tokenKey struct{}

func (f *fakeSource) ListPlans(ctx context.Context) ([]pricing.Plan, error) {
	f.listCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return append([]pricing.Plan(nil), f.plans...), nil
}

func (f *fakeSource) GetPlan(ctx context.Context, id string) (*pricing.Plan, error) {
	f.getCalls.Add(1)
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.plans {
		if p.ID == id {
			plan := p
			return &plan, nil
		}
	}
	return nil, errors.New("not found")
}

func testPlans() []pricing.Plan {
	return []pricing.Plan{
		{ID: "p1", Name: "Family", Type: pricing.PlanTypePreset, PricePerKg: 500, IsActive: true},
		{ID: "p2", Name: "Legacy", Type: pricing.PlanTypePreset, PricePerKg: 450, IsActive: false},
	}
}

func TestCatalog_GetCachesPlan(t *testing.T) {
	src := &fakeSource{plans: testPlans()}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	cat := New(src, Config{TTL: time.Minute, Size: 8}, metrics)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		plan, err := cat.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "Family", plan.Name)
	}

	assert.Equal(t, int32(1), src.getCalls.Load())
	stats := cat.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("plan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("plan")))
}

func TestCatalog_ListWarmsPlans(t *testing.T) {
	src := &fakeSource{plans: testPlans()}
	cat := New(src, DefaultConfig(), nil)
	ctx := context.Background()

	plans, err := cat.List(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	_, err = cat.Get(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, int32(0), src.getCalls.Load())

	active, err := cat.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "p1", active[0].ID)
	assert.Equal(t, int32(1), src.listCalls.Load())
}

func TestCatalog_TTLExpiry(t *testing.T) {
	src := &fakeSource{plans: testPlans()}
	cat := New(src, Config{TTL: 20 * time.Millisecond, Size: 8}, nil)
	ctx := context.Background()

	_, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = cat.Get(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.getCalls.Load())
}

func TestCatalog_ErrorsAreNotCached(t *testing.T) {
	src := &fakeSource{plans: testPlans(), err: errors.New("upstream down")}
	cat := New(src, DefaultConfig(), nil)
	ctx := context.Background()

	_, err := cat.Get(ctx, "p1")
	assert.ErrorContains(t, err, "upstream down")

	src.err = nil
	plan, err := cat.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", plan.ID)
	assert.Equal(t, int32(2), src.getCalls.Load())

	_, err = cat.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPlanID)
}

func TestCatalog_ConcurrentMissesCollapse(t *testing.T) {
	src := &fakeSource{plans: testPlans(), delay: 50 * time.Millisecond}
	cat := New(src, DefaultConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cat.List(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.listCalls.Load())
}

func TestCatalog_Invalidate(t *testing.T) {
	src := &fakeSource{plans: testPlans()}
	cat := New(src, DefaultConfig(), nil)
	ctx := context.Background()

	_, err := cat.List(ctx)
	require.NoError(t, err)
	cat.Invalidate()
	assert.Equal(t, 0, cat.Stats().ItemCount)

	_, err = cat.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.listCalls.Load())
}

func TestCatalog_WaiterSurvivesLeaderCancel(t *testing.T) {
	src := &fakeSource{plans: testPlans(), delay: 100 * time.Millisecond}
	cat := New(src, DefaultConfig(), nil)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := cat.Get(leaderCtx, "p1")
		leaderErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	waiterDone := make(chan struct{})
	var (
		plan *pricing.Plan
		err  error
	)
	go func() {
		defer close(waiterDone)
		plan, err = cat.Get(context.Background(), "p1")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)
	<-waiterDone
	require.NoError(t, err)
	assert.Equal(t, "p1", plan.ID)
	assert.Equal(t, int32(1), src.getCalls.Load())

	// the detached fetch still filled the cache
	_, err = cat.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.getCalls.Load())
}

func TestCatalog_WaiterRetriesLeaderFailure(t *testing.T) {
	src := &fakeSource{plans: testPlans(), delay: 50 * time.Millisecond}
	cat := New(src, DefaultConfig(), nil)

	badCtx := context.WithValue(context.Background(), tokenKey{}, "bad")
	goodCtx := context.WithValue(context.Background(), tokenKey{}, "good")

	leaderErr := make(chan error, 1)
	go func() {
		_, err := cat.List(badCtx)
		leaderErr <- err
	}()
	time.Sleep(10 * time.Millisecond)

	plans, err := cat.List(goodCtx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	assert.ErrorContains(t, <-leaderErr, "401")
	assert.Equal(t, int32(2), src.listCalls.Load())
}

func TestCatalog_FetchTimeout(t *testing.T) {
	src := &fakeSource{plans: testPlans(), delay: time.Second}
	cat := New(src, Config{TTL: time.Minute, Size: 8, FetchTimeout: 20 * time.Millisecond}, nil)

	_, err := cat.Get(context.Background(), "p1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
