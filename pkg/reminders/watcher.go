package reminders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/platinummonkey/gaslink/pkg/dashboard"
	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule checks deliveries every quarter hour
const DefaultSchedule = "@every 15m"

// Reminder lists the deliveries that need the user's attention
type Reminder struct {
	CheckedAt time.Time         `json:"checkedAt"`
	Today     []delivery.Record `json:"today"`
	Tomorrow  []delivery.Record `json:"tomorrow"`
	Overdue   []delivery.Record `json:"overdue"`
}

// Empty reports whether there is nothing to remind about
func (r Reminder) Empty() bool {
	return len(r.Today) == 0 && len(r.Tomorrow) == 0 && len(r.Overdue) == 0
}

// fingerprint identifies the reminder content so unchanged checks are not
// reported twice
func (r Reminder) fingerprint() string {
	var parts []string
	for _, group := range [][]delivery.Record{r.Today, r.Tomorrow, r.Overdue} {
		for _, rec := range group {
			parts = append(parts, rec.ID+":"+string(rec.Status))
		}
		parts = append(parts, "|")
	}
	return strings.Join(parts, ",")
}

// Notifier delivers a reminder to the user
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, r Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// Source lists the current user's deliveries. *dashboard.Service implements it.
type Source interface {
	Deliveries(ctx context.Context) ([]delivery.Record, error)
}

// Watcher periodically checks deliveries and notifies about the ones that
// are due soon or overdue
type Watcher struct {
	source   Source
	notifier Notifier
	logger   *logrus.Logger
	schedule string
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	cron     *cron.Cron
	lastSent string
}

// Option configures a Watcher
type Option func(*Watcher)

// WithSchedule sets the cron schedule (standard five-field or descriptor)
func WithSchedule(schedule string) Option {
	return func(w *Watcher) { w.schedule = schedule }
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// WithTimeout bounds each check
func WithTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.timeout = d }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// NewWatcher creates a watcher. It does nothing until Start or RunOnce.
func NewWatcher(source Source, notifier Notifier, opts ...Option) *Watcher {
	w := &Watcher{
		source:   source,
		notifier: notifier,
		logger:   logrus.StandardLogger(),
		schedule: DefaultSchedule,
		timeout:  time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Check fetches deliveries and builds the reminder without notifying
func (w *Watcher) Check(ctx context.Context) (Reminder, error) {
	records, err := w.source.Deliveries(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("checking deliveries: %w", err)
	}

	now := w.now()
	board := dashboard.BuildBoard(records, delivery.OrderAsc, now)
	return Reminder{
		CheckedAt: now,
		Today:     board.Today,
		Tomorrow:  board.Tomorrow,
		Overdue:   delivery.SortByPriority(board.Buckets.Overdue, delivery.OrderAsc, now),
	}, nil
}

// RunOnce checks deliveries and notifies when there is something new to
// report. It returns the reminder that was built, notified or not.
func (w *Watcher) RunOnce(ctx context.Context) (Reminder, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	r, err := w.Check(ctx)
	if err != nil {
		return Reminder{}, err
	}

	fp := r.fingerprint()
	w.mu.Lock()
	unchanged := fp == w.lastSent
	w.mu.Unlock()
	if r.Empty() || unchanged {
		w.logger.WithFields(logrus.Fields{
			"today":    len(r.Today),
			"tomorrow": len(r.Tomorrow),
			"overdue":  len(r.Overdue),
		}).Debug("Nothing new to remind")
		return r, nil
	}

	if err := w.notifier.Notify(ctx, r); err != nil {
		return r, fmt.Errorf("notifying: %w", err)
	}

	w.mu.Lock()
	w.lastSent = fp
	w.mu.Unlock()

	w.logger.WithFields(logrus.Fields{
		"today":    len(r.Today),
		"tomorrow": len(r.Tomorrow),
		"overdue":  len(r.Overdue),
	}).Info("Delivery reminder sent")
	return r, nil
}

// Start schedules periodic checks. ctx is the parent of every check.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return fmt.Errorf("watcher already started")
	}

	cronLog := cron.PrintfLogger(w.logger)
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	_, err := c.AddFunc(w.schedule, func() {
		if _, err := w.RunOnce(ctx); err != nil {
			w.logger.WithError(err).Warn("Delivery check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", w.schedule, err)
	}

	c.Start()
	w.cron = c
	w.logger.WithField("schedule", w.schedule).Info("Delivery watcher started")
	return nil
}

// Stop stops scheduling and waits for a running check to finish
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	w.logger.Info("Delivery watcher stopped")
}

// Run checks once immediately, then on schedule until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.RunOnce(ctx); err != nil {
		w.logger.WithError(err).Warn("Delivery check failed")
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

// Lines renders a reminder as short human-readable lines, overdue first
func Lines(r Reminder) []string {
	var lines []string
	add := func(label string, records []delivery.Record) {
		if len(records) == 0 {
			return
		}
		lines = append(lines, fmt.Sprintf("%s (%d):", label, len(records)))
		for _, rec := range records {
			lines = append(lines, fmt.Sprintf("  %s  %s  %s  %s",
				rec.DeliveryDate.Format("Mon 02 Jan"), rec.ID, rec.Status, rec.Address))
		}
	}
	add("Overdue", r.Overdue)
	add("Today", r.Today)
	add("Tomorrow", r.Tomorrow)
	return lines
}
