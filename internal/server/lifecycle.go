// Package server runs the bot's long-lived listeners and shuts them down
// cleanly on SIGINT or SIGTERM.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownGrace bounds how long shutdown waits for listeners to drain.
const shutdownGrace = 15 * time.Second

// Listener is a blocking front end: the Slack HTTP server or the Discord
// gateway session.
type Listener interface {
	// Listen blocks until the listener stops or fails. It must return nil
	// after Shutdown is called.
	Listen() error
	// Shutdown stops the listener, honoring the context deadline.
	Shutdown(ctx context.Context) error
}

// closer is a resource released after the listeners stop, e.g. a connection
// pool or a cache client.
type closer struct {
	name string
	fn   func()
}

// Runner owns the listeners and teardown order for one bot process.
// Listeners run concurrently; closers run in reverse registration order
// after every listener has drained.
type Runner struct {
	logger    *zap.Logger
	listeners map[string]Listener
	closers   []closer
}

// NewRunner creates an empty Runner.
//
// Precondition: logger must be non-nil.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		logger:    logger,
		listeners: make(map[string]Listener),
	}
}

// Listen registers a named listener to run.
func (r *Runner) Listen(name string, l Listener) {
	r.listeners[name] = l
}

// Defer registers a named cleanup to run after the listeners stop. Cleanups
// run in reverse registration order.
func (r *Runner) Defer(name string, fn func()) {
	r.closers = append(r.closers, closer{name: name, fn: fn})
}

// Run starts every listener and blocks until a termination signal arrives,
// the context is cancelled, or a listener fails. It then drains the
// listeners and releases resources.
//
// Postcondition: every registered cleanup has run when Run returns. The
// first listener failure, if any, is returned.
func (r *Runner) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := make(chan error, len(r.listeners))
	for name, l := range r.listeners {
		go func(name string, l Listener) {
			r.logger.Info("listener starting", zap.String("listener", name))
			if err := l.Listen(); err != nil {
				failed <- fmt.Errorf("listener %s: %w", name, err)
			}
		}(name, l)
	}

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutting down", zap.String("reason", ctx.Err().Error()))
	case runErr = <-failed:
		r.logger.Error("listener failed", zap.Error(runErr))
	}

	r.drain()
	r.release()
	return runErr
}

// drain stops every listener with a bounded grace period.
func (r *Runner) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	for name, l := range r.listeners {
		if err := l.Shutdown(ctx); err != nil {
			r.logger.Warn("listener shutdown failed",
				zap.String("listener", name),
				zap.Error(err),
			)
			continue
		}
		r.logger.Info("listener stopped", zap.String("listener", name))
	}
}

// release runs the cleanups in reverse registration order.
func (r *Runner) release() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		c := r.closers[i]
		c.fn()
		r.logger.Info("resource released", zap.String("resource", c.name))
	}
}
