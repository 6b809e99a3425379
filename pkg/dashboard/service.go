package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	deliveryPageSize = 100
	maxDeliveryPages = 20
)

// API is the subset of the platform client the dashboard reads from
type API interface {
	DashboardOverview(ctx context.Context) (*client.OverviewStats, error)
	ListSubscriptions(ctx context.Context, opts client.ListOptions) (*client.Page[client.Subscription], error)
	MyDeliveries(ctx context.Context, opts client.ListOptions) (*client.Page[delivery.Record], error)
}

// Overview is everything the dashboard home screen renders
type Overview struct {
	Stats         *client.OverviewStats `json:"stats"`
	Subscriptions []client.Subscription `json:"subscriptions"`
	Board         Board                 `json:"board"`
}

// Service assembles dashboard views from several platform calls
type Service struct {
	api     API
	logger  *logrus.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewService creates a dashboard service. metrics may be nil.
func NewService(api API, logger *logrus.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		api:     api,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/platinummonkey/gaslink/pkg/dashboard"),
	}
}

// Overview fetches the platform summary, active subscriptions and deliveries
// concurrently. The first failure cancels the other fetches.
func (s *Service) Overview(ctx context.Context, order delivery.Order, now time.Time) (*Overview, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Overview")
	defer span.End()

	var (
		stats      *client.OverviewStats
		subs       *client.Page[client.Subscription]
		deliveries []delivery.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.api.DashboardOverview(gctx)
		if err != nil {
			return fmt.Errorf("overview: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subs, err = s.api.ListSubscriptions(gctx, client.ListOptions{Status: string(client.SubscriptionActive)})
		if err != nil {
			return fmt.Errorf("subscriptions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		deliveries, err = s.Deliveries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	board := s.board(deliveries, order, now)
	span.SetAttributes(
		attribute.Int("dashboard.subscriptions", len(subs.Items)),
		attribute.Int("dashboard.deliveries", len(deliveries)),
	)

	return &Overview{
		Stats:         stats,
		Subscriptions: subs.Items,
		Board:         board,
	}, nil
}

// DeliveryBoard fetches deliveries, applies filter and builds the board
func (s *Service) DeliveryBoard(ctx context.Context, filter delivery.Filter, order delivery.Order, now time.Time) (Board, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.DeliveryBoard")
	defer span.End()

	records, err := s.Deliveries(ctx)
	if err != nil {
		span.RecordError(err)
		return Board{}, err
	}
	return s.board(filter.Apply(records), order, now), nil
}

// Deliveries fetches every page of the current user's deliveries
func (s *Service) Deliveries(ctx context.Context) ([]delivery.Record, error) {
	var all []delivery.Record
	for page := 1; page <= maxDeliveryPages; page++ {
		p, err := s.api.MyDeliveries(ctx, client.ListOptions{Page: page, Limit: deliveryPageSize})
		if err != nil {
			return nil, fmt.Errorf("deliveries page %d: %w", page, err)
		}
		all = append(all, p.Items...)
		if !p.Pagination.HasNext() {
			return all, nil
		}
	}
	s.logger.WithField("max_pages", maxDeliveryPages).Warn("Delivery listing truncated")
	return all, nil
}

func (s *Service) board(records []delivery.Record, order delivery.Order, now time.Time) Board {
	board := BuildBoard(records, order, now)
	if s.metrics != nil {
		for bucket, n := range board.Counts {
			s.metrics.DeliveriesByBucket.WithLabelValues(string(bucket)).Set(float64(n))
		}
	}
	return board
}
