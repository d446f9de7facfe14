package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type fakeChecker struct {
	mu  sync.Mutex
	err error
}

func (c *fakeChecker) HealthCheck(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeChecker) set(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func TestMonitorProbe(t *testing.T) {
	checker := &fakeChecker{}
	m := NewConnectivityMonitor(checker, slog.Default(), time.Second)

	// Offline until the first probe says otherwise.
	assert.False(t, m.Online())

	assert.True(t, m.Probe(context.Background()))
	assert.True(t, m.Online())

	checker.set(errors.New("connection refused"))
	assert.False(t, m.Probe(context.Background()))
	assert.False(t, m.Online())

	checker.set(nil)
	assert.True(t, m.Probe(context.Background()))
	assert.True(t, m.Online())
}

func TestMonitorSubscribe(t *testing.T) {
	checker := &fakeChecker{}
	m := NewConnectivityMonitor(checker, slog.Default(), time.Second)

	transitions, cancel := m.Subscribe()
	defer cancel()

	m.Probe(context.Background())
	assert.True(t, <-transitions)

	checker.set(errors.New("connection refused"))
	m.Probe(context.Background())
	assert.False(t, <-transitions)

	// No transition, no event.
	m.Probe(context.Background())
	select {
	case got := <-transitions:
		t.Fatalf("unexpected transition event: %v", got)
	default:
	}
}

func TestMonitorRun(t *testing.T) {
	checker := &fakeChecker{}
	m := NewConnectivityMonitor(checker, slog.Default(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	assert.Eventually(t, m.Online, time.Second, 5*time.Millisecond)

	checker.set(errors.New("dial tcp: i/o timeout"))
	assert.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
