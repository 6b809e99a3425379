package client

import (
	"context"
	"net/http"

	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/platinummonkey/gaslink/pkg/pricing"
)

const (
	routeLogin              = "/api/v1/auth/login"
	routeMe                 = "/api/v1/auth/me"
	routePlans              = "/api/v1/subscription-plans"
	routePlan               = "/api/v1/subscription-plans/{id}"
	routeSubscriptions      = "/api/v1/subscriptions"
	routeSubscription       = "/api/v1/subscriptions/{id}"
	routeSubscriptionPause  = "/api/v1/subscriptions/{id}/pause"
	routeSubscriptionResume = "/api/v1/subscriptions/{id}/resume"
	routeSubscriptionCancel = "/api/v1/subscriptions/{id}/cancel"
	routeAdminSubscriptions = "/api/v1/admin/subscriptions"
	routeAdminSubscription  = "/api/v1/admin/subscriptions/{id}"
	routeAdminUsers         = "/api/v1/admin/users"
	routeAdminUser          = "/api/v1/admin/users/{id}"
	routeDashboardOverview  = "/api/v1/dashboard/overview"
	routeMyDeliveries       = "/api/v1/admin/delivery/my-deliveries"
	routeSupport            = "/api/v1/support"
	routeSettings           = "/api/v1/settings"
	routePayments           = "/api/v1/payments"
	routeWallet             = "/api/v1/wallet"
)

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		route:  routeLogin,
		body:   map[string]string{"email": email, "password": password},

		anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	result := &LoginResult{}
	if err := env.decode(result, "data"); err != nil {
		return nil, err
	}
	if result.Token == "" {
		if err := env.decode(&result.Token, "token"); err != nil {
			return nil, err
		}
	}
	if result.User.ID == "" {
		if err := env.decode(&result.User, "user"); err != nil {
			return nil, err
		}
	}
	if result.Token == "" {
		return nil, &Error{Kind: KindAPI, Method: http.MethodPost, Path: routeLogin, Status: http.StatusOK, Message: "login response did not include a token"}
	}
	return result, nil
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*User, error) {
	user := &User{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routeMe}, user, "user", "data"); err != nil {
		return nil, err
	}
	return user, nil
}

// ListPlans returns every plan the platform offers
func (c *Client) ListPlans(ctx context.Context) ([]pricing.Plan, error) {
	plans := []pricing.Plan{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routePlans}, &plans, "plans", "data"); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetPlan returns a single plan
func (c *Client) GetPlan(ctx context.Context, id string) (*pricing.Plan, error) {
	plan := &pricing.Plan{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routePlan, id: id}, plan, "plan", "data"); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListSubscriptions returns the current user's subscriptions
func (c *Client) ListSubscriptions(ctx context.Context, opts ListOptions) (*Page[Subscription], error) {
	return list[Subscription](ctx, c, routeSubscriptions, opts, "subscriptions", "data")
}

// GetSubscription returns one of the current user's subscriptions
func (c *Client) GetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodGet, route: routeSubscription, id: id})
}

// CreateSubscription subscribes the current user to a plan
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPost, route: routeSubscriptions, body: req})
}

// PauseSubscription pauses deliveries on a subscription
func (c *Client) PauseSubscription(ctx context.Context, id string) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPut, route: routeSubscriptionPause, id: id})
}

// ResumeSubscription resumes a paused subscription
func (c *Client) ResumeSubscription(ctx context.Context, id string) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPut, route: routeSubscriptionResume, id: id})
}

// CancelSubscription cancels a subscription
func (c *Client) CancelSubscription(ctx context.Context, id string) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPut, route: routeSubscriptionCancel, id: id})
}

func (c *Client) subscription(ctx context.Context, req call) (*Subscription, error) {
	sub := &Subscription{}
	if err := c.get(ctx, req, sub, "subscription", "data"); err != nil {
		return nil, err
	}
	return sub, nil
}

// AdminListSubscriptions lists subscriptions across all users
func (c *Client) AdminListSubscriptions(ctx context.Context, opts ListOptions) (*Page[Subscription], error) {
	return list[Subscription](ctx, c, routeAdminSubscriptions, opts, "subscriptions", "data")
}

// AdminGetSubscription returns any user's subscription
func (c *Client) AdminGetSubscription(ctx context.Context, id string) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodGet, route: routeAdminSubscription, id: id})
}

// AdminCreateSubscription creates a subscription on behalf of a user
func (c *Client) AdminCreateSubscription(ctx context.Context, req AdminSubscriptionRequest) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPost, route: routeAdminSubscriptions, body: req})
}

// AdminUpdateSubscription changes a subscription
func (c *Client) AdminUpdateSubscription(ctx context.Context, id string, req UpdateSubscriptionRequest) (*Subscription, error) {
	return c.subscription(ctx, call{method: http.MethodPut, route: routeAdminSubscription, id: id, body: req})
}

// AdminDeleteSubscription deletes a subscription
func (c *Client) AdminDeleteSubscription(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, route: routeAdminSubscription, id: id})
	return err
}

// AdminListUsers lists platform accounts
func (c *Client) AdminListUsers(ctx context.Context, opts ListOptions) (*Page[User], error) {
	return list[User](ctx, c, routeAdminUsers, opts, "users", "data")
}

// AdminGetUser returns a platform account
func (c *Client) AdminGetUser(ctx context.Context, id string) (*User, error) {
	return c.user(ctx, call{method: http.MethodGet, route: routeAdminUser, id: id})
}

// AdminCreateUser creates a platform account
func (c *Client) AdminCreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	return c.user(ctx, call{method: http.MethodPost, route: routeAdminUsers, body: req})
}

// AdminUpdateUser changes a platform account
func (c *Client) AdminUpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	return c.user(ctx, call{method: http.MethodPut, route: routeAdminUser, id: id, body: req})
}

// AdminDeleteUser deletes a platform account
func (c *Client) AdminDeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, route: routeAdminUser, id: id})
	return err
}

func (c *Client) user(ctx context.Context, req call) (*User, error) {
	user := &User{}
	if err := c.get(ctx, req, user, "user", "data"); err != nil {
		return nil, err
	}
	return user, nil
}

// DashboardOverview returns the platform-computed dashboard summary
func (c *Client) DashboardOverview(ctx context.Context) (*OverviewStats, error) {
	stats := &OverviewStats{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routeDashboardOverview}, stats, "data", "overview"); err != nil {
		return nil, err
	}
	return stats, nil
}

// MyDeliveries lists the deliveries on the current user's subscriptions
func (c *Client) MyDeliveries(ctx context.Context, opts ListOptions) (*Page[delivery.Record], error) {
	return list[delivery.Record](ctx, c, routeMyDeliveries, opts, "deliveries", "data")
}

// ListTickets lists the current user's support tickets
func (c *Client) ListTickets(ctx context.Context, opts ListOptions) (*Page[Ticket], error) {
	return list[Ticket](ctx, c, routeSupport, opts, "tickets", "data")
}

// CreateTicket opens a support ticket
func (c *Client) CreateTicket(ctx context.Context, req CreateTicketRequest) (*Ticket, error) {
	ticket := &Ticket{}
	if err := c.get(ctx, call{method: http.MethodPost, route: routeSupport, body: req}, ticket, "ticket", "data"); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetSettings returns the current user's preferences
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	settings := &Settings{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routeSettings}, settings, "settings", "data"); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings replaces the current user's preferences
func (c *Client) UpdateSettings(ctx context.Context, s Settings) (*Settings, error) {
	settings := &Settings{}
	if err := c.get(ctx, call{method: http.MethodPut, route: routeSettings, body: s}, settings, "settings", "data"); err != nil {
		return nil, err
	}
	return settings, nil
}

// ListPayments returns the current user's payment history
func (c *Client) ListPayments(ctx context.Context, opts ListOptions) (*Page[Payment], error) {
	return list[Payment](ctx, c, routePayments, opts, "payments", "data")
}

// WalletBalance returns the current user's wallet
func (c *Client) WalletBalance(ctx context.Context) (*Wallet, error) {
	wallet := &Wallet{}
	if err := c.get(ctx, call{method: http.MethodGet, route: routeWallet}, wallet, "wallet", "data"); err != nil {
		return nil, err
	}
	return wallet, nil
}
