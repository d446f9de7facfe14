package client

import (
	"context"
	gosync "sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"
)

const probeTimeout = 5 * time.Second

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectivityMonitor polls the server health endpoint and exposes the last
// observed reachability. The coordinator reads it as a cheap hint; an actual
// submission failing is still handled on its own.
type ConnectivityMonitor struct {
	checker  healthChecker
	log      *slog.Logger
	interval time.Duration
	online   atomic.Bool

	mu   gosync.Mutex
	subs map[chan bool]struct{}
}

func NewConnectivityMonitor(checker healthChecker, log *slog.Logger, interval time.Duration) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		checker:  checker,
		log:      log.With("component", "connectivity_monitor"),
		interval: interval,
		subs:     make(map[chan bool]struct{}),
	}
}

// Online returns the last observed reachability.
func (m *ConnectivityMonitor) Online() bool {
	return m.online.Load()
}

// Subscribe returns a channel that receives the new reachability on every
// online/offline transition, and a cancel func that closes it.
func (m *ConnectivityMonitor) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

// notify never blocks: a slow subscriber misses a transition rather than
// stalling the probe loop.
func (m *ConnectivityMonitor) notify(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
}

// Probe performs one health check immediately and records the result.
func (m *ConnectivityMonitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := m.checker.HealthCheck(probeCtx)
	was := m.online.Swap(err == nil)
	now := err == nil

	if was != now {
		if now {
			m.log.Info("connectivity restored")
		} else {
			m.log.Warn("connectivity lost", "error", err)
		}
		m.notify(now)
	}
	return now
}

// Run probes on the configured interval until the context is cancelled.
func (m *ConnectivityMonitor) Run(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}
