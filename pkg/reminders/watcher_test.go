package reminders

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var now = time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

type fakeSource struct {
	mu      sync.Mutex
	records []delivery.Record
	err     error
}

func (f *fakeSource) Deliveries(ctx context.Context) ([]delivery.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]delivery.Record(nil), f.records...), nil
}

func (f *fakeSource) set(records ...delivery.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = records
}

type recorder struct {
	mu   sync.Mutex
	sent []Reminder
	err  error
}

func (r *recorder) Notify(ctx context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, rem)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestWatcher(src Source, n Notifier, opts ...Option) *Watcher {
	opts = append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return now })}, opts...)
	return NewWatcher(src, n, opts...)
}

func TestWatcher_RunOnce(t *testing.T) {
	src := &fakeSource{records: []delivery.Record{
		{ID: "today", DeliveryDate: day(0), Status: delivery.StatusPending},
		{ID: "tomorrow", DeliveryDate: day(1), Status: delivery.StatusAssigned},
		{ID: "late", DeliveryDate: day(-2), Status: delivery.StatusAccepted},
		{ID: "next-week", DeliveryDate: day(7), Status: delivery.StatusPending},
		{ID: "done", DeliveryDate: day(-1), Status: delivery.StatusDelivered},
	}}
	rec := &recorder{}
	w := newTestWatcher(src, rec)

	r, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, rec.count())
	require.Len(t, r.Today, 1)
	assert.Equal(t, "today", r.Today[0].ID)
	require.Len(t, r.Tomorrow, 1)
	assert.Equal(t, "tomorrow", r.Tomorrow[0].ID)
	require.Len(t, r.Overdue, 1)
	assert.Equal(t, "late", r.Overdue[0].ID)
	assert.Equal(t, now, r.CheckedAt)
}

func TestWatcher_RunOnceSkipsUnchanged(t *testing.T) {
	src := &fakeSource{records: []delivery.Record{
		{ID: "today", DeliveryDate: day(0), Status: delivery.StatusPending},
	}}
	rec := &recorder{}
	w := newTestWatcher(src, rec)
	ctx := context.Background()

	_, err := w.RunOnce(ctx)
	require.NoError(t, err)
	_, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count())

	src.set(delivery.Record{ID: "today", DeliveryDate: day(0), Status: delivery.StatusOutForDelivery})
	_, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.count())
}

func TestWatcher_RunOnceNothingDue(t *testing.T) {
	src := &fakeSource{records: []delivery.Record{
		{ID: "next-week", DeliveryDate: day(7), Status: delivery.StatusPending},
		{ID: "cancelled-today", DeliveryDate: day(0), Status: delivery.StatusCancelled},
	}}
	rec := &recorder{}
	w := newTestWatcher(src, rec)

	r, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Equal(t, 0, rec.count())
}

func TestWatcher_Errors(t *testing.T) {
	src := &fakeSource{err: errors.New("platform down")}
	w := newTestWatcher(src, &recorder{})
	_, err := w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "platform down")

	src = &fakeSource{records: []delivery.Record{{ID: "d", DeliveryDate: day(0), Status: delivery.StatusPending}}}
	rec := &recorder{err: errors.New("smtp refused")}
	w = newTestWatcher(src, rec)
	_, err = w.RunOnce(context.Background())
	assert.ErrorContains(t, err, "smtp refused")

	// A failed notification is retried on the next check.
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()
	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count())
}

func TestWatcher_InvalidSchedule(t *testing.T) {
	w := newTestWatcher(&fakeSource{}, &recorder{}, WithSchedule("every now and then"))
	err := w.Start(context.Background())
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestWatcher_ScheduledChecks(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{records: []delivery.Record{
		{ID: "today", DeliveryDate: day(0), Status: delivery.StatusPending},
	}}
	rec := &recorder{}
	w := newTestWatcher(src, rec, WithSchedule("@every 1s"))

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second Start should fail")

	assert.Eventually(t, func() bool { return rec.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	w.Stop()
	w.Stop()
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	src := &fakeSource{records: []delivery.Record{
		{ID: "tomorrow", DeliveryDate: day(1), Status: delivery.StatusPending},
	}}
	w := newTestWatcher(src, rec, WithSchedule("@every 1h"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLines(t *testing.T) {
	r := Reminder{
		Today:   []delivery.Record{{ID: "a", DeliveryDate: day(0), Status: delivery.StatusPending, Address: "Lekki"}},
		Overdue: []delivery.Record{{ID: "b", DeliveryDate: day(-1), Status: delivery.StatusAssigned}},
	}
	lines := Lines(r)
	require.Len(t, lines, 4)
	assert.Equal(t, "Overdue (1):", lines[0])
	assert.Equal(t, "Today (1):", lines[2])
	assert.Contains(t, lines[3], "Lekki")
	assert.Empty(t, Lines(Reminder{}))
}
