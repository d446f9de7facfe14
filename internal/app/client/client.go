package client

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client/config"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
	"github.com/Civic-3-io/citizen-connect-ind/internal/infrastructure/storage/sqlite"
)

// App wires the local report queue together: durable SQLite storage, the
// HTTP gateway to the municipal server, the connectivity monitor and the
// sync coordinator on top of them.
type App struct {
	config      *config.Config
	log         *slog.Logger
	storage     *sqlite.Storage
	gateway     *httpGateway
	monitor     *ConnectivityMonitor
	coordinator *queue.Coordinator

	wg     gosync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := sqlite.New(cfg.QueuePath)
	if err != nil {
		return nil, fmt.Errorf("init local storage: %w", err)
	}

	gateway := newHTTPGateway(cfg, log)
	monitor := NewConnectivityMonitor(gateway, log, time.Duration(cfg.ProbeInterval)*time.Second)

	coordinator := queue.NewCoordinator(storage, gateway, monitor, log, queue.Config{
		Parallelism:   cfg.SyncParallelism,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBase:     time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		RetryMax:      time.Duration(cfg.RetryMaxMS) * time.Millisecond,
		SubmitTimeout: time.Duration(cfg.SubmitTimeout) * time.Second,
	})

	// A previous run may have died mid-submission; make those records
	// retryable again before anything else touches the queue.
	if n, err := coordinator.Recover(context.Background()); err != nil {
		storage.Close()
		return nil, fmt.Errorf("recover queue: %w", err)
	} else if n > 0 {
		log.Warn("recovered interrupted submissions", "count", n)
	}

	return &App{
		config:      cfg,
		log:         log,
		storage:     storage,
		gateway:     gateway,
		monitor:     monitor,
		coordinator: coordinator,
	}, nil
}

// Queue exposes the coordinator to the CLI commands.
func (a *App) Queue() queue.Servicer {
	return a.coordinator
}

// Monitor exposes the connectivity monitor to the CLI commands.
func (a *App) Monitor() *ConnectivityMonitor {
	return a.monitor
}

// Run starts the connectivity monitor and the periodic sync loop and blocks
// until a termination signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.handleSignals()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.monitor.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.startSync(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watchEvents(ctx)
	}()

	a.log.Info("client started",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"sync_interval", a.config.SyncInterval,
	)

	a.wg.Wait()
	return nil
}

func (a *App) startSync(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(a.config.SyncInterval) * time.Second)
	defer ticker.Stop()

	transitions, cancel := a.monitor.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			a.log.Info("sync loop stopped")
			return
		case online := <-transitions:
			// Coming back online drains the queue right away instead of
			// waiting out the ticker.
			if online {
				a.syncOnce(ctx)
			}
		case <-ticker.C:
			if !a.monitor.Online() {
				continue
			}
			a.syncOnce(ctx)
		}
	}
}

func (a *App) syncOnce(ctx context.Context) {
	if _, err := a.coordinator.SyncAll(ctx); err != nil && err != queue.ErrBatchInProgress {
		a.log.Error("periodic sync failed", "error", err)
	}
}

// watchEvents logs every record transition the coordinator publishes.
func (a *App) watchEvents(ctx context.Context) {
	events, cancel := a.coordinator.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case queue.EventSynced:
				a.log.Info("report submitted", "local_id", ev.LocalID, "tracking_id", ev.RemoteID)
			case queue.EventSyncFailed:
				a.log.Warn("report submission failed", "local_id", ev.LocalID, "error", ev.Error)
			default:
				a.log.Debug("queue event", "kind", ev.Kind, "local_id", ev.LocalID, "state", ev.State)
			}
		}
	}
}

func (a *App) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	a.log.Info("termination signal received", "signal", sig.String())

	if a.cancel != nil {
		a.cancel()
	}
}

// Shutdown stops background work and closes the local store.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if err := a.storage.Close(); err != nil {
		a.log.Warn("failed to close local storage", "error", err)
	}
	a.log.Info("client stopped")
}
