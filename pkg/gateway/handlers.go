package gateway

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/platinummonkey/gaslink/pkg/httputil"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/pricing"
)

// QuoteRequest asks for the price of a selection on a plan
type QuoteRequest struct {
	PlanID string `json:"planId"`
	pricing.Selection
}

// Quote is a priced selection
type Quote struct {
	PlanID             string            `json:"planId"`
	PlanName           string            `json:"planName"`
	Size               string            `json:"size"`
	Frequency          pricing.Frequency `json:"frequency"`
	SubscriptionPeriod int               `json:"subscriptionPeriod"`
	DeliveriesPerMonth int64             `json:"deliveriesPerMonth"`
	Price              int64             `json:"price"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": observability.StatusHealthy})
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.catalog.Active(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, plans)
}

func (s *Server) planOptions(w http.ResponseWriter, r *http.Request) {
	plan, err := s.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, pricing.Options(plan))
}

func (s *Server) quoteFromQuery(w http.ResponseWriter, r *http.Request) {
	req := QuoteRequest{
		PlanID: httputil.ParseQueryString(r, "planId", ""),
		Selection: pricing.Selection{
			Size:      httputil.ParseQueryString(r, "size", ""),
			Frequency: pricing.Frequency(httputil.ParseQueryString(r, "frequency", "")),
		},
	}
	period, err := httputil.ParseQueryInt(r, "period", 0)
	if err != nil {
		httputil.WriteValidationError(w, "subscriptionPeriod", "period must be a whole number of months")
		return
	}
	req.SubscriptionPeriod = period
	s.quote(w, r, req)
}

func (s *Server) quoteFromBody(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	s.quote(w, r, req)
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request, req QuoteRequest) {
	if !httputil.RequireNonEmpty(w, req.PlanID, "planId") {
		return
	}

	plan, err := s.catalog.Get(r.Context(), req.PlanID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := pricing.ValidateSelection(plan, req.Selection); err != nil {
		s.writeError(w, r, err)
		return
	}
	price, err := req.Selection.Price(plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.QuotesTotal.WithLabelValues(string(plan.Type), string(req.Frequency)).Inc()
	}
	httputil.WriteSuccess(w, Quote{
		PlanID:             plan.ID,
		PlanName:           plan.Name,
		Size:               req.Size,
		Frequency:          req.Frequency,
		SubscriptionPeriod: req.Period(),
		DeliveriesPerMonth: req.Frequency.Multiplier(),
		Price:              price,
	})
}

func (s *Server) deliveryBoard(w http.ResponseWriter, r *http.Request) {
	order, err := delivery.ParseOrder(httputil.ParseQueryString(r, "order", string(delivery.OrderAsc)))
	if err != nil {
		httputil.WriteValidationError(w, "order", err.Error())
		return
	}
	filter := delivery.Filter{
		Status: delivery.Status(httputil.ParseQueryString(r, "status", "")),
		Search: httputil.ParseQueryString(r, "search", ""),
	}

	board, err := s.dashboardService(r.Context()).DeliveryBoard(r.Context(), filter, order, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(len(board.Sorted)))
	httputil.WriteSuccess(w, board)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	order, err := delivery.ParseOrder(httputil.ParseQueryString(r, "order", string(delivery.OrderAsc)))
	if err != nil {
		httputil.WriteValidationError(w, "order", err.Error())
		return
	}

	overview, err := s.dashboardService(r.Context()).Overview(r.Context(), order, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, overview)
}
