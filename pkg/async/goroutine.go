package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn in a goroutine bounded by timeout. Errors and panics are
// logged against taskName instead of crashing the process. The returned
// channel closes when fn has returned.
//
//	async.SafeGo(ctx, logger, 10*time.Second, "catalog warm-up", func(ctx context.Context) error {
//	    _, err := cat.List(ctx)
//	    return err
//	})
func SafeGo(parent context.Context, logger *logrus.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) <-chan struct{} {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		entry := logger.WithField("task", taskName)
		if err := run(ctx, fn); err != nil {
			entry.WithError(err).Warn("Background task failed")
			return
		}
		entry.Debug("Background task finished")
	}()
	return done
}

func run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}
