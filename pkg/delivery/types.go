package delivery

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a delivery as reported by the platform
type Status string

const (
	StatusPending        Status = "pending"
	StatusAssigned       Status = "assigned"
	StatusAccepted       Status = "accepted"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusFailed         Status = "failed"
	StatusCancelled      Status = "cancelled"
	StatusPaused         Status = "paused"
)

// unknownPriority places unrecognised statuses after every known one
const unknownPriority = 99

var statusPriority = map[Status]int{
	StatusOutForDelivery: 1,
	StatusAccepted:       2,
	StatusAssigned:       3,
	StatusPending:        4,
	StatusFailed:         5,
	StatusCancelled:      6,
	StatusDelivered:      7,
	StatusPaused:         8,
}

// Priority returns the display rank of a status; lower ranks come first
func (s Status) Priority() int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return unknownPriority
}

// Terminal reports whether the status can no longer become overdue
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusFailed
}

// Confirmation is the customer's acknowledgement of a completed delivery
type Confirmation struct {
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
}

// Record is a single scheduled delivery
type Record struct {
	ID                   string        `json:"_id"`
	SubscriptionID       string        `json:"subscriptionId,omitempty"`
	DeliveryDate         time.Time     `json:"deliveryDate"`
	Status               Status        `json:"status"`
	Address              string        `json:"address,omitempty"`
	CylinderSize         string        `json:"cylinderSize,omitempty"`
	Quantity             int           `json:"quantity,omitempty"`
	DeliveredAt          *time.Time    `json:"deliveredAt,omitempty"`
	CustomerConfirmation *Confirmation `json:"customerConfirmation,omitempty"`
	RetryCount           int           `json:"retryCount,omitempty"`
	Notes                string        `json:"notes,omitempty"`
}

// Order selects the date direction used once the today/tomorrow rules are exhausted
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder accepts "asc" or "desc"; an empty string means ascending
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be asc or desc)", s)
	}
}

// startOfDay truncates t to local midnight in loc
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
