package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/gaslink/pkg/audit"
	"github.com/platinummonkey/gaslink/pkg/catalog"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/config"
	"github.com/platinummonkey/gaslink/pkg/dashboard"
	"github.com/platinummonkey/gaslink/pkg/session"
	"github.com/sirupsen/logrus"
)

const sessionName = "default"

// App holds the dependencies shared by every command. Fields left nil are
// built from Config on first use.
type App struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Store     session.Store
	Sessions  *session.Service
	API       *client.Client
	Catalog   *catalog.Catalog
	Sequencer *client.Sequencer
	Audit     audit.Logger
	Now       func() time.Time

	closers []func() error
}

// setup builds the missing dependencies
func (a *App) setup(ctx context.Context) error {
	if a.Config == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		a.Config = cfg
	}
	if a.Logger == nil {
		a.Logger = logrus.StandardLogger()
	}
	if a.Now == nil {
		a.Now = time.Now
	}

	if a.Store == nil {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		a.Store = store
	}
	if a.Sessions == nil {
		a.Sessions = session.NewService(a.Store, session.WithLogger(a.Logger))
	}
	if a.API == nil {
		a.API = client.New(a.Config.API.BaseURL,
			client.WithTokenSource(a.Sessions),
			client.WithTimeout(a.Config.API.Timeout),
			client.WithLogger(a.Logger),
		)
	}
	if a.Catalog == nil {
		a.Catalog = catalog.New(a.API, catalog.Config{TTL: a.Config.Catalog.TTL, Size: a.Config.Catalog.Size, FetchTimeout: a.Config.API.Timeout}, nil)
	}
	if a.Sequencer == nil {
		a.Sequencer = client.NewSequencer(nil)
	}
	if a.Audit == nil {
		if err := a.openAudit(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) openAudit() error {
	if a.Config.Audit.Dir == "" {
		a.Audit = audit.NoOpLogger{}
		return nil
	}
	logger, err := audit.NewFileLogger(audit.DefaultFileLoggerConfig(a.Config.Audit.Dir))
	if err != nil {
		return err
	}
	a.Audit = logger
	a.closers = append(a.closers, logger.Close)
	return nil
}

// recordAudit writes an admin action to the audit trail. Audit failures are
// logged and never fail the command.
func (a *App) recordAudit(ctx context.Context, event *audit.Event, err error) {
	if sess, sessErr := a.Sessions.Current(ctx); sessErr == nil {
		event.ActorID = sess.User.ID
		event.ActorEmail = sess.User.Email
	}
	if logErr := audit.Record(ctx, a.Audit, event, err); logErr != nil {
		a.Logger.WithError(logErr).WithField("event_type", event.EventType).Warn("Failed to write audit log")
	}
}

func (a *App) openStore(ctx context.Context) (session.Store, error) {
	switch a.Config.Session.Store {
	case config.SessionStoreMemory:
		return session.NewMemoryStore(), nil
	case config.SessionStoreRedis:
		rdb, err := session.NewRedisClient(ctx, a.Config.Session.RedisURL, a.Config.Session.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return session.NewRedisStore(rdb, sessionName), nil
	default:
		return session.NewFileStore(a.Config.Session.FilePath), nil
	}
}

// Close releases connections opened by setup
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) dashboard() *dashboard.Service {
	return dashboard.NewService(a.API, a.Logger, nil)
}

func (a *App) requireAdmin(ctx context.Context) error {
	sess, err := a.Sessions.Current(ctx)
	if err != nil {
		return err
	}
	if sess.User.Role != client.RoleAdmin {
		return fmt.Errorf("admin access required (logged in as %s)", sess.User.Role)
	}
	return nil
}
