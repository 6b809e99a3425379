package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/platinummonkey/gaslink/pkg/reminders"
	"github.com/sirupsen/logrus"
)

// EventDeliveryReminder is sent when deliveries are due or overdue
const EventDeliveryReminder = "deliveries.reminder"

// Event is the JSON body posted to the webhook
type Event struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Data      reminders.Reminder `json:"data"`
}

// permanentError marks a failure that retrying cannot fix
type permanentError struct {
	status int
	err    error
}

func (e *permanentError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("webhook rejected delivery: %d", e.status)
}

func (e *permanentError) Unwrap() error { return e.err }

// Notifier posts reminders to a webhook URL, signing the body with HMAC-SHA256
// when a secret is set. It implements reminders.Notifier.
type Notifier struct {
	url    string
	secret string
	client *http.Client
	retry  *RetryPolicy
	logger *logrus.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// Option configures a Notifier
type Option func(*Notifier)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// WithRetry sets the retry configuration
func WithRetry(cfg RetryConfig) Option {
	return func(n *Notifier) { n.retry = NewRetryPolicy(cfg) }
}

// WithLogger sets the logger
func WithLogger(l *logrus.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// NewNotifier creates a webhook notifier for url
func NewNotifier(url, secret string, opts ...Option) *Notifier {
	n := &Notifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  NewRetryPolicy(DefaultRetryConfig()),
		logger: logrus.StandardLogger(),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify delivers r, retrying network failures, 429 and 5xx responses
func (n *Notifier) Notify(ctx context.Context, r reminders.Reminder) error {
	event := Event{
		ID:        uuid.NewString(),
		Type:      EventDeliveryReminder,
		Timestamp: n.now(),
		Data:      r,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	entry := n.logger.WithFields(logrus.Fields{"event_id": event.ID, "url": n.url})
	for attempt := 1; ; attempt++ {
		err = n.send(ctx, event, payload)
		if err == nil {
			entry.WithField("attempts", attempt).Debug("Webhook delivered")
			return nil
		}
		if !n.retry.ShouldRetry(attempt, err) {
			return fmt.Errorf("webhook delivery failed after %d attempt(s): %w", attempt, err)
		}
		delay := n.retry.NextRetryDelay(attempt)
		entry.WithError(err).WithField("retry_in", delay).Warn("Webhook delivery failed, retrying")
		if err := n.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (n *Notifier) send(ctx context.Context, event Event, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return &permanentError{err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gaslink-Event", event.Type)
	req.Header.Set("X-Gaslink-Event-ID", event.ID)
	if n.secret != "" {
		req.Header.Set("X-Gaslink-Signature", generateSignature(payload, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	default:
		return &permanentError{status: resp.StatusCode}
	}
}

// VerifySignature checks an X-Gaslink-Signature header against payload
func VerifySignature(payload []byte, signature, secret string) bool {
	expected := generateSignature(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func generateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ reminders.Notifier = (*Notifier)(nil)
