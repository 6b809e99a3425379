package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var (
	// ErrNoSession is returned when nobody is logged in
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired is returned when the stored token has expired
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// Session is the authenticated user and their bearer token
type Session struct {
	Token     string      `json:"token" yaml:"token"`
	User      client.User `json:"user" yaml:"user"`
	ExpiresAt time.Time   `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
}

// Expired reports whether the token has expired at now. A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists the current session
type Store interface {
	// Load returns the stored session, or nil when none is stored
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// Service owns the session lifecycle. It is the single place the token is
// set (login), read (every request) and cleared (logout or expiry).
type Service struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time

	mu     sync.Mutex
	cached *Session
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a session service backed by store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login stores a new session for token and user
func (s *Service) Login(ctx context.Context, token string, user client.User) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("login: empty token")
	}

	sess := &Session{
		Token:     token,
		User:      user,
		ExpiresAt: TokenExpiry(token),
	}
	if sess.Expired(s.now()) {
		return nil, ErrSessionExpired
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	s.cached = sess
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"expires_at": sess.ExpiresAt,
	}).Debug("Session started")
	return sess, nil
}

// Logout clears the stored session
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the active session. An expired session is cleared and
// reported as ErrSessionExpired.
func (s *Service) Current(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	sess := s.cached
	s.mu.Unlock()

	if sess == nil {
		loaded, err := s.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading session: %w", err)
		}
		if loaded == nil {
			return nil, ErrNoSession
		}
		sess = loaded
	}

	if sess.Expired(s.now()) {
		if err := s.Logout(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to clear expired session")
		}
		return nil, ErrSessionExpired
	}

	s.mu.Lock()
	s.cached = sess
	s.mu.Unlock()
	return sess, nil
}

// Invalidate drops the in-memory copy so the next read goes to the store
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// IsAdmin reports whether the current session belongs to an admin
func (s *Service) IsAdmin(ctx context.Context) bool {
	sess, err := s.Current(ctx)
	return err == nil && sess.User.Role == client.RoleAdmin
}

// Token implements oauth2.TokenSource so the API client can attach the
// bearer token to every request
func (s *Service) Token() (*oauth2.Token, error) {
	sess, err := s.Current(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		Expiry:      sess.ExpiresAt,
	}, nil
}

var _ oauth2.TokenSource = (*Service)(nil)

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque or
// malformed tokens and tokens without exp return the zero time.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
