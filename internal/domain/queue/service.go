package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

// Config tunes the sync coordinator.
type Config struct {
	// Parallelism is the number of independent records that may be in flight
	// at once. 1 (the default) preserves strict causal submission order.
	Parallelism int
	// MaxAttempts caps automatic retries per record. Once exhausted the
	// record stays Failed until the citizen triggers sync explicitly.
	MaxAttempts int
	// RetryBase and RetryMax bound the exponential backoff window.
	RetryBase time.Duration
	RetryMax  time.Duration
	// SubmitTimeout bounds a single gateway call.
	SubmitTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 5
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 2 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 5 * time.Minute
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 30 * time.Second
	}
	return c
}

// BatchError records why one report failed during a batch.
type BatchError struct {
	LocalID string `json:"local_id"`
	Error   string `json:"error"`
}

// BatchResult summarizes one queue drain.
type BatchResult struct {
	Selected     int           `json:"selected"`
	Synced       int           `json:"synced"`
	Failed       int           `json:"failed"`
	StoppedEarly bool          `json:"stopped_early"`
	Errors       []BatchError  `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Servicer is the queue interface the presentation layer consumes.
type Servicer interface {
	Enqueue(ctx context.Context, payload report.Payload, attachments []report.Attachment) (*QueuedReport, error)
	List(ctx context.Context) ([]*QueuedReport, error)
	Get(ctx context.Context, localID string) (*QueuedReport, error)
	Delete(ctx context.Context, localID string) error
	SyncNow(ctx context.Context, localID string) (*QueuedReport, error)
	SyncAll(ctx context.Context) (*BatchResult, error)
	PurgeSynced(ctx context.Context, olderThan time.Duration) (int, error)
	Subscribe() (<-chan Event, func())
}

// Coordinator drives queued reports through the pending -> syncing ->
// synced/failed lifecycle. All record mutation goes through it; the store is
// the single source of truth and every transition is persisted before it is
// observable.
type Coordinator struct {
	store   Store
	gateway Gateway
	net     Connectivity
	log     *slog.Logger
	cfg     Config
	backoff Backoff
	bus     *eventBus
	now     func() time.Time

	mu       sync.Mutex
	leases   map[string]struct{}
	draining bool
}

// NewCoordinator creates a sync coordinator over the given collaborators.
func NewCoordinator(store Store, gateway Gateway, net Connectivity, log *slog.Logger, cfg Config) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		store:   store,
		gateway: gateway,
		net:     net,
		log:     log.With("component", "sync_coordinator"),
		cfg:     cfg,
		backoff: Backoff{Base: cfg.RetryBase, Max: cfg.RetryMax},
		bus:     newEventBus(),
		now:     time.Now,
	}
}

// Subscribe returns a channel of lifecycle events and a cancel func.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	return c.bus.subscribe()
}

// Enqueue validates and durably stores a new report in Pending state and
// returns the stored record.
func (c *Coordinator) Enqueue(ctx context.Context, payload report.Payload, attachments []report.Attachment) (*QueuedReport, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if len(attachments) > report.MaxAttachments {
		return nil, fmt.Errorf("%w: at most %d attachments", report.ErrInvalidPayload, report.MaxAttachments)
	}

	rec := &QueuedReport{
		LocalID:     uuid.NewString(),
		Payload:     payload,
		Attachments: attachments,
		State:       StatePending,
		CreatedAt:   c.now(),
	}

	if err := c.store.Put(ctx, rec); err != nil {
		c.log.Error("failed to persist enqueued report", "error", err)
		return nil, fmt.Errorf("persist report: %w", err)
	}

	c.log.Info("report enqueued",
		"local_id", rec.LocalID,
		"category", payload.Category,
		"attachments", len(attachments),
	)
	c.bus.publish(Event{Kind: EventEnqueued, LocalID: rec.LocalID, State: rec.State, At: c.now()})

	return rec.Clone(), nil
}

// List returns all queued reports ordered by creation time ascending.
func (c *Coordinator) List(ctx context.Context) ([]*QueuedReport, error) {
	recs, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return recs, nil
}

// Get returns a single queued report by its local identifier.
func (c *Coordinator) Get(ctx context.Context, localID string) (*QueuedReport, error) {
	rec, err := c.store.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a Pending or Failed record. Synced records may also be
// deleted explicitly (the audit trail is kept only until the citizen clears
// it); a Syncing record is refused so an in-flight submission is never
// orphaned.
func (c *Coordinator) Delete(ctx context.Context, localID string) error {
	c.mu.Lock()
	_, leased := c.leases[localID]
	c.mu.Unlock()
	if leased {
		return ErrNotDeletable
	}

	rec, err := c.store.Get(ctx, localID)
	if err != nil {
		return err
	}
	if rec.State == StateSyncing {
		return ErrNotDeletable
	}

	if err := c.store.Delete(ctx, localID); err != nil {
		return err
	}

	c.log.Info("report deleted", "local_id", localID, "state", rec.State)
	c.bus.publish(Event{Kind: EventDeleted, LocalID: localID, State: rec.State, At: c.now()})
	return nil
}

// SyncNow submits a single record immediately, bypassing the automatic
// scheduler's backoff and retry-budget filters. Calling it on a record that
// is already Synced is a no-op: no gateway call, no state change.
func (c *Coordinator) SyncNow(ctx context.Context, localID string) (*QueuedReport, error) {
	if !c.tryLease(localID) {
		return nil, ErrSyncInProgress
	}
	defer c.release(localID)

	// Read under the lease so the state cannot go stale before the attempt.
	rec, err := c.store.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if rec.State == StateSynced {
		return rec, nil
	}
	if rec.State == StateSyncing {
		// The lease was free, so no submission is in flight: the record was
		// left behind by an interrupted run.
		rec, err = c.recoverOrphan(ctx, rec)
		if err != nil {
			return nil, err
		}
	}

	updated, err := c.attempt(ctx, rec)
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// SyncAll drains the queue: every Pending record plus every Failed record
// that is retryable, due, and under its attempt budget is submitted oldest
// first. Each selected record is driven until it is Synced or its budget for
// this batch is exhausted. If connectivity drops mid-batch the remaining
// records keep their current state and the batch stops early without error.
func (c *Coordinator) SyncAll(ctx context.Context) (*BatchResult, error) {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return nil, ErrBatchInProgress
	}
	c.draining = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.draining = false
		c.mu.Unlock()
	}()

	start := c.now()
	result := &BatchResult{}

	if !c.net.Online() {
		c.log.Debug("sync skipped, offline")
		result.StoppedEarly = true
		return result, nil
	}

	recs, err := c.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	var selected []*QueuedReport
	for _, rec := range recs {
		if c.eligibleForAuto(rec) {
			selected = append(selected, rec)
		}
	}
	result.Selected = len(selected)
	if len(selected) == 0 {
		result.Duration = c.now().Sub(start)
		return result, nil
	}

	c.log.Info("sync batch started", "selected", len(selected), "parallelism", c.cfg.Parallelism)

	jobs := make(chan *QueuedReport)
	var (
		wg       sync.WaitGroup
		resultMu sync.Mutex
		stopped  bool
	)

	offline := func() bool {
		resultMu.Lock()
		defer resultMu.Unlock()
		if stopped {
			return true
		}
		if ctx.Err() != nil || !c.net.Online() {
			stopped = true
			return true
		}
		return false
	}

	for i := 0; i < c.cfg.Parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if offline() {
					continue
				}
				synced, err := c.drainRecord(ctx, rec, offline)

				resultMu.Lock()
				if synced {
					result.Synced++
				} else if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, BatchError{LocalID: rec.LocalID, Error: err.Error()})
				}
				resultMu.Unlock()
			}
		}()
	}

	for _, rec := range selected {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	resultMu.Lock()
	result.StoppedEarly = stopped
	resultMu.Unlock()
	result.Duration = c.now().Sub(start)

	c.log.Info("sync batch finished",
		"selected", result.Selected,
		"synced", result.Synced,
		"failed", result.Failed,
		"stopped_early", result.StoppedEarly,
		"duration", result.Duration,
	)
	return result, nil
}

// PurgeSynced deletes Synced records whose confirmation is older than the
// given retention window. Used by an explicit user action, never implicitly.
func (c *Coordinator) PurgeSynced(ctx context.Context, olderThan time.Duration) (int, error) {
	recs, err := c.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reports: %w", err)
	}

	cutoff := c.now().Add(-olderThan)
	purged := 0
	for _, rec := range recs {
		if rec.State != StateSynced || rec.SyncedAt == nil || rec.SyncedAt.After(cutoff) {
			continue
		}
		if err := c.store.Delete(ctx, rec.LocalID); err != nil {
			return purged, fmt.Errorf("purge report %s: %w", rec.LocalID, err)
		}
		c.bus.publish(Event{Kind: EventDeleted, LocalID: rec.LocalID, State: rec.State, At: c.now()})
		purged++
	}
	return purged, nil
}

// Recover makes records left Syncing by an interrupted run retryable again.
// Call it once at startup, before any sync runs: a stored Syncing record
// whose lease is free has no submission in flight, only an unknown outcome.
func (c *Coordinator) Recover(ctx context.Context) (int, error) {
	recs, err := c.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reports: %w", err)
	}

	recovered := 0
	for _, rec := range recs {
		if rec.State != StateSyncing {
			continue
		}
		if !c.tryLease(rec.LocalID) {
			continue
		}
		_, rerr := c.recoverOrphan(ctx, rec)
		c.release(rec.LocalID)
		if rerr != nil {
			return recovered, rerr
		}
		recovered++
	}
	return recovered, nil
}

// recoverOrphan reclassifies a Syncing record with no submission in flight.
// The gateway may or may not have accepted it, so it becomes a retryable
// ambiguous failure; the idempotency token makes resubmitting it safe. The
// caller must hold the record's lease.
func (c *Coordinator) recoverOrphan(ctx context.Context, rec *QueuedReport) (*QueuedReport, error) {
	working := rec.Clone()
	working.State = StateFailed
	working.LastError = "submission interrupted before confirmation"
	working.LastErrorKind = ErrKindAmbiguous

	if err := c.store.Put(ctx, working); err != nil {
		c.log.Error("failed to persist recovered report", "local_id", working.LocalID, "error", err)
		return nil, fmt.Errorf("persist report: %w", err)
	}

	c.log.Warn("recovered interrupted submission", "local_id", working.LocalID, "attempts", working.AttemptCount)
	c.bus.publish(Event{
		Kind:    EventSyncFailed,
		LocalID: working.LocalID,
		State:   working.State,
		Error:   working.LastError,
		At:      c.now(),
	})
	return working, nil
}

// eligibleForAuto decides whether the automatic scheduler picks up a record.
func (c *Coordinator) eligibleForAuto(rec *QueuedReport) bool {
	switch rec.State {
	case StatePending:
		return true
	case StateFailed:
		if !rec.LastErrorKind.Retryable() {
			return false
		}
		if rec.AttemptCount >= c.cfg.MaxAttempts {
			return false
		}
		return !c.now().Before(c.backoff.NextAttemptAt(rec))
	default:
		return false
	}
}

// drainRecord drives one record until Synced, non-retryable failure, or
// exhausted budget, waiting out the backoff between attempts.
func (c *Coordinator) drainRecord(ctx context.Context, rec *QueuedReport, offline func() bool) (bool, error) {
	if !c.tryLease(rec.LocalID) {
		// Someone called SyncNow concurrently; leave the record to them.
		return false, nil
	}
	defer c.release(rec.LocalID)

	var lastErr error
	for {
		// The batch listing is a snapshot; by the time the lease is held a
		// concurrent SyncNow may already have moved the record on, or a
		// delete removed it. Only the stored state decides what happens.
		current, err := c.store.Get(ctx, rec.LocalID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if current.State == StateSyncing {
			current, err = c.recoverOrphan(ctx, current)
			if err != nil {
				return false, err
			}
		}
		if current.State == StateSynced || !c.eligibleForAuto(current) {
			return false, lastErr
		}

		updated, err := c.attempt(ctx, current)
		if err != nil {
			return false, err
		}
		if updated.State == StateSynced {
			return true, nil
		}

		lastErr = errors.New(updated.LastError)
		if !updated.LastErrorKind.Retryable() || updated.AttemptCount >= c.cfg.MaxAttempts {
			return false, lastErr
		}

		delay := c.backoff.Delay(updated.AttemptCount)
		select {
		case <-ctx.Done():
			return false, lastErr
		case <-time.After(delay):
		}
		if offline() {
			return false, lastErr
		}
	}
}

// attempt performs exactly one submission: Pending/Failed -> Syncing ->
// Synced/Failed. Every transition is persisted before the next step runs;
// if the Syncing transition cannot be made durable the gateway is never
// called.
func (c *Coordinator) attempt(ctx context.Context, rec *QueuedReport) (*QueuedReport, error) {
	if !rec.State.CanTransitionTo(StateSyncing) {
		return nil, fmt.Errorf("report %s is %s and cannot start syncing", rec.LocalID, rec.State)
	}

	now := c.now()
	working := rec.Clone()
	working.State = StateSyncing
	working.AttemptCount++
	working.LastAttemptAt = &now
	working.LastError = ""
	working.LastErrorKind = ""

	if err := c.store.Put(ctx, working); err != nil {
		c.log.Error("failed to persist syncing transition", "local_id", rec.LocalID, "error", err)
		return nil, fmt.Errorf("persist report: %w", err)
	}
	c.bus.publish(Event{Kind: EventSyncStarted, LocalID: working.LocalID, State: working.State, At: now})

	c.log.Debug("submitting report",
		"local_id", working.LocalID,
		"attempt", working.AttemptCount,
	)

	// The submission must run to completion even if the batch is cancelled:
	// aborting mid-flight risks a duplicate remote report. Only the per-call
	// timeout bounds it, and the outcome write below uses the same detached
	// context so an accepted report is never left unconfirmed by a cancel.
	detached := context.WithoutCancel(ctx)
	submitCtx, cancel := context.WithTimeout(detached, c.cfg.SubmitTimeout)
	defer cancel()

	remoteID, submitErr := c.gateway.Submit(submitCtx, working.LocalID, working.Payload, working.Attachments)

	done := c.now()
	if submitErr != nil {
		working.State = StateFailed
		working.LastError = submitErr.Error()
		working.LastErrorKind = Classify(submitErr)

		if err := c.store.Put(detached, working); err != nil {
			c.log.Error("failed to persist failed transition", "local_id", working.LocalID, "error", err)
			return nil, fmt.Errorf("persist report: %w", err)
		}

		c.log.Warn("report submission failed",
			"local_id", working.LocalID,
			"attempt", working.AttemptCount,
			"kind", working.LastErrorKind,
			"error", submitErr,
		)
		c.bus.publish(Event{
			Kind:    EventSyncFailed,
			LocalID: working.LocalID,
			State:   working.State,
			Error:   working.LastError,
			At:      done,
		})
		return working, nil
	}

	working.State = StateSynced
	working.RemoteID = remoteID
	working.SyncedAt = &done

	if err := c.store.Put(detached, working); err != nil {
		// The remote accepted the report but the confirmation is not durable.
		// The record stays Syncing in the store; recovery reclassifies it as
		// an ambiguous failure and the idempotency token dedupes the resend.
		c.log.Error("failed to persist synced transition", "local_id", working.LocalID, "error", err)
		return nil, fmt.Errorf("persist report: %w", err)
	}

	c.log.Info("report synced",
		"local_id", working.LocalID,
		"remote_id", remoteID,
		"attempts", working.AttemptCount,
	)
	c.bus.publish(Event{
		Kind:     EventSynced,
		LocalID:  working.LocalID,
		State:    working.State,
		RemoteID: remoteID,
		At:       done,
	})
	return working, nil
}

func (c *Coordinator) tryLease(localID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.leases == nil {
		c.leases = make(map[string]struct{})
	}
	if _, busy := c.leases[localID]; busy {
		return false
	}
	c.leases[localID] = struct{}{}
	return true
}

func (c *Coordinator) release(localID string) {
	c.mu.Lock()
	delete(c.leases, localID)
	c.mu.Unlock()
}
