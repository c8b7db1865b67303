package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingListener blocks until Shutdown, optionally failing immediately.
type blockingListener struct {
	failWith error

	mu       sync.Mutex
	done     chan struct{}
	shutdown bool
}

func newBlockingListener(failWith error) *blockingListener {
	return &blockingListener{failWith: failWith, done: make(chan struct{})}
}

func (l *blockingListener) Listen() error {
	if l.failWith != nil {
		return l.failWith
	}
	<-l.done
	return nil
}

func (l *blockingListener) Shutdown(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.shutdown {
		l.shutdown = true
		close(l.done)
	}
	return nil
}

func (l *blockingListener) wasShutdown() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shutdown
}

func TestRunStopsOnContextCancel(t *testing.T) {
	r := NewRunner(zap.NewNop())
	l := newBlockingListener(nil)
	r.Listen("test", l)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, l.wasShutdown())
}

func TestRunReturnsListenerFailure(t *testing.T) {
	boom := errors.New("bind: address already in use")
	r := NewRunner(zap.NewNop())
	r.Listen("broken", newBlockingListener(boom))
	healthy := newBlockingListener(nil)
	r.Listen("healthy", healthy)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "listener broken")
	assert.True(t, healthy.wasShutdown(), "a failing listener drains the others")
}

func TestRunReleasesInReverseOrder(t *testing.T) {
	r := NewRunner(zap.NewNop())
	l := newBlockingListener(nil)
	r.Listen("test", l)

	var order []string
	r.Defer("database", func() { order = append(order, "database") })
	r.Defer("redis", func() { order = append(order, "redis") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))

	assert.Equal(t, []string{"redis", "database"}, order)
}
