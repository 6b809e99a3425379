package audit

import (
	"context"
	"time"
)

// EventType names the admin action that was audited
type EventType string

const (
	EventTypeUserCreate         EventType = "admin.user_create"
	EventTypeUserUpdate         EventType = "admin.user_update"
	EventTypeUserDelete         EventType = "admin.user_delete"
	EventTypeSubscriptionCreate EventType = "admin.subscription_create"
	EventTypeSubscriptionUpdate EventType = "admin.subscription_update"
	EventTypeSubscriptionDelete EventType = "admin.subscription_delete"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
)

// ResourceType is the kind of platform record an action touched
type ResourceType string

const (
	ResourceTypeUser         ResourceType = "user"
	ResourceTypeSubscription ResourceType = "subscription"
)

// Event is a single audit log entry
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	ActorID    string `json:"actor_id,omitempty"`
	ActorEmail string `json:"actor_email,omitempty"`

	ResourceType ResourceType `json:"resource_type"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Changes holds the fields sent to the platform for creates and updates
	Changes      interface{} `json:"changes,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Logger records audit events
type Logger interface {
	Log(ctx context.Context, event *Event) error
	Close() error
}

// NoOpLogger discards every event. It is used when no audit directory is configured.
type NoOpLogger struct{}

func (NoOpLogger) Log(ctx context.Context, event *Event) error { return nil }
func (NoOpLogger) Close() error                                { return nil }

// Record logs event with its status taken from the outcome err
func Record(ctx context.Context, l Logger, event *Event, err error) error {
	event.Status = EventStatusSuccess
	if err != nil {
		event.Status = EventStatusFailure
		event.ErrorMessage = err.Error()
	}
	return l.Log(ctx, event)
}
