package client

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/platinummonkey/gaslink/pkg/pricing"
)

// Role is a platform account role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
)

// User is a platform account
type User struct {
	ID        string     `json:"_id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// FullName joins first and last name
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// LoginResult is the payload of a successful login
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SubscriptionStatus is the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// PlanRef is a plan reference that the platform sends either as an ID or as
// the populated plan document
type PlanRef struct {
	ID   string
	Plan *pricing.Plan
}

func (p *PlanRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.ID)
	}
	var plan pricing.Plan
	if err := json.Unmarshal(b, &plan); err != nil {
		return err
	}
	p.ID = plan.ID
	p.Plan = &plan
	return nil
}

func (p PlanRef) MarshalJSON() ([]byte, error) {
	if p.Plan != nil {
		return json.Marshal(p.Plan)
	}
	return json.Marshal(p.ID)
}

// Name returns the populated plan name, or the ID when unpopulated
func (p PlanRef) Name() string {
	if p.Plan != nil && p.Plan.Name != "" {
		return p.Plan.Name
	}
	return p.ID
}

// UserRef is a user reference sent either as an ID or a populated document
type UserRef struct {
	ID   string
	User *User
}

func (u *UserRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &u.ID)
	}
	var user User
	if err := json.Unmarshal(b, &user); err != nil {
		return err
	}
	u.ID = user.ID
	u.User = &user
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	if u.User != nil {
		return json.Marshal(u.User)
	}
	return json.Marshal(u.ID)
}

// Subscription is a customer's recurring (or one-off) gas order
type Subscription struct {
	ID                 string             `json:"_id"`
	User               UserRef            `json:"user"`
	Plan               PlanRef            `json:"plan"`
	Size               string             `json:"size"`
	Frequency          pricing.Frequency  `json:"frequency"`
	SubscriptionPeriod int                `json:"subscriptionPeriod"`
	Price              int64              `json:"price"`
	Status             SubscriptionStatus `json:"status"`
	Address            string             `json:"address,omitempty"`
	StartDate          *time.Time         `json:"startDate,omitempty"`
	EndDate            *time.Time         `json:"endDate,omitempty"`
	NextDeliveryDate   *time.Time         `json:"nextDeliveryDate,omitempty"`
	CreatedAt          *time.Time         `json:"createdAt,omitempty"`
}

// CreateSubscriptionRequest subscribes the current user to a plan
type CreateSubscriptionRequest struct {
	PlanID             string            `json:"planId"`
	Size               string            `json:"size"`
	Frequency          pricing.Frequency `json:"frequency"`
	SubscriptionPeriod int               `json:"subscriptionPeriod"`
	Price              int64             `json:"price"`
	Address            string            `json:"address,omitempty"`
}

// AdminSubscriptionRequest creates a subscription on behalf of a user
type AdminSubscriptionRequest struct {
	UserID string `json:"userId"`
	CreateSubscriptionRequest
	StartDate *time.Time `json:"startDate,omitempty"`
}

// UpdateSubscriptionRequest carries the fields an admin may change. Nil fields are left untouched.
type UpdateSubscriptionRequest struct {
	Status             *SubscriptionStatus `json:"status,omitempty"`
	Size               *string             `json:"size,omitempty"`
	Frequency          *pricing.Frequency  `json:"frequency,omitempty"`
	SubscriptionPeriod *int                `json:"subscriptionPeriod,omitempty"`
	Price              *int64              `json:"price,omitempty"`
	Address            *string             `json:"address,omitempty"`
	NextDeliveryDate   *time.Time          `json:"nextDeliveryDate,omitempty"`
}

// CreateUserRequest creates a platform account
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
}

// UpdateUserRequest carries the account fields an admin may change
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// OverviewStats is the dashboard summary computed by the platform
type OverviewStats struct {
	ActiveSubscriptions int        `json:"activeSubscriptions"`
	TotalDeliveries     int        `json:"totalDeliveries"`
	PendingDeliveries   int        `json:"pendingDeliveries"`
	CompletedDeliveries int        `json:"completedDeliveries"`
	TotalSpent          int64      `json:"totalSpent"`
	WalletBalance       int64      `json:"walletBalance"`
	NextDeliveryDate    *time.Time `json:"nextDeliveryDate,omitempty"`
}

// TicketStatus is the state of a support ticket
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// Ticket is a support request
type Ticket struct {
	ID        string       `json:"_id"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Category  string       `json:"category,omitempty"`
	Priority  string       `json:"priority,omitempty"`
	Status    TicketStatus `json:"status"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// CreateTicketRequest opens a support ticket
type CreateTicketRequest struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// NotificationSettings toggles notification channels
type NotificationSettings struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// Settings are the current user's preferences
type Settings struct {
	Notifications  NotificationSettings `json:"notifications"`
	Language       string               `json:"language,omitempty"`
	Timezone       string               `json:"timezone,omitempty"`
	DefaultAddress string               `json:"defaultAddress,omitempty"`
}

// Payment is one wallet or card transaction
type Payment struct {
	ID          string     `json:"_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	Method      string     `json:"method,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Wallet is the current user's prepaid balance
type Wallet struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency,omitempty"`
}

// Pagination describes the position of a page within a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether another page follows
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Page is one page of a listing
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// ListOptions are the listing filters shared by every list endpoint
type ListOptions struct {
	Page      int
	Limit     int
	Status    string
	Search    string
	SortBy    string
	SortOrder string
}

// Values encodes the options as query parameters, omitting zero values
func (o ListOptions) Values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Status != "" {
		v.Set("status", o.Status)
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.SortBy != "" {
		v.Set("sortBy", o.SortBy)
	}
	if o.SortOrder != "" {
		v.Set("sortOrder", o.SortOrder)
	}
	return v
}
