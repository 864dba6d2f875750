package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	"github.com/fitsync/fitsync/internal/metrics"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// EngineConfig holds processing loop configuration.
type EngineConfig struct {
	// TickInterval is the cadence of the batch fetch loop.
	TickInterval time.Duration
	// CleanupInterval is the cadence of the cleanup sweeper.
	CleanupInterval time.Duration
	// BatchSize is the maximum number of events fetched per pass.
	BatchSize int
	// MaxConcurrent bounds simultaneous handler executions.
	MaxConcurrent int
	// StaleThreshold is how long an event may stay pending before the
	// sweeper surfaces it.
	StaleThreshold time.Duration
	// BackoffTable overrides the retry escalation; empty uses the default.
	BackoffTable []time.Duration
}

// DefaultEngineConfig returns the production defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TickInterval:    100 * time.Millisecond,
		CleanupInterval: 5 * time.Minute,
		BatchSize:       10,
		MaxConcurrent:   3,
		StaleThreshold:  5 * time.Minute,
	}
}

// SyncEngine drains pending sync events on a fixed cadence, dispatching
// each through a shared concurrency limiter to its type handler. A single
// supervisor owns the running state; Start/Stop are serialized through it
// so concurrent lifecycle calls cannot race.
type SyncEngine struct {
	config   EngineConfig
	repo     EventRepository
	registry *Registry
	backoff  *BackoffPolicy
	logger   *slog.Logger
	metrics  metrics.SyncMetrics

	mu      sync.Mutex
	running bool
	ownerID uuid.UUID
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	sem     *semaphore.Weighted
}

// NewSyncEngine creates a new SyncEngine. syncMetrics may be nil when
// metrics collection is disabled.
func NewSyncEngine(
	config EngineConfig,
	repo EventRepository,
	registry *Registry,
	logger *slog.Logger,
	syncMetrics metrics.SyncMetrics,
) *SyncEngine {
	defaults := DefaultEngineConfig()
	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}
	if config.StaleThreshold <= 0 {
		config.StaleThreshold = defaults.StaleThreshold
	}

	return &SyncEngine{
		config:   config,
		repo:     repo,
		registry: registry,
		backoff:  NewBackoffPolicy(config.BackoffTable),
		logger:   logger,
		metrics:  syncMetrics,
	}
}

// Start begins processing for the owner. Events left in processing status
// by a previous run are reset to pending first so nothing claimed by a
// crashed process is lost.
func (e *SyncEngine) Start(ownerID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return syncDomain.ErrEngineRunning
	}
	if ownerID == uuid.Nil {
		return syncDomain.ErrUnauthenticated
	}

	ctx, cancel := context.WithCancel(context.Background())

	if count, err := e.repo.ResetProcessing(ctx, ownerID); err != nil {
		e.logger.Warn("failed to reset stuck processing events",
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
	} else if count > 0 {
		e.logger.Info("reset stuck processing events",
			slog.String("owner_id", ownerID.String()),
			slog.Int64("count", count),
		)
	}

	e.running = true
	e.ownerID = ownerID
	e.runCtx = ctx
	e.cancel = cancel
	e.sem = semaphore.NewWeighted(int64(e.config.MaxConcurrent))

	e.wg.Add(2)
	go e.runLoop(ctx, ownerID)
	go e.runCleanup(ctx, ownerID)

	e.logger.Info("sync engine started",
		slog.String("owner_id", ownerID.String()),
		slog.Duration("tick_interval", e.config.TickInterval),
		slog.Int("batch_size", e.config.BatchSize),
		slog.Int("max_concurrent", e.config.MaxConcurrent),
	)
	return nil
}

// Stop cancels the timers and waits for in-flight handler calls to finish.
// Handlers are not forcibly aborted; their results are recorded as normal.
// Safe to call when not running.
func (e *SyncEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.cancel()
	e.wg.Wait()
	e.running = false

	e.logger.Info("sync engine stopped", slog.String("owner_id", e.ownerID.String()))
}

// TriggerImmediate requests an out-of-band processing pass. It runs
// concurrently with the periodic loop and shares its concurrency limiter.
// No-op when the engine is not running for this owner.
func (e *SyncEngine) TriggerImmediate(ownerID uuid.UUID) {
	e.mu.Lock()
	if !e.running || e.ownerID != ownerID {
		e.mu.Unlock()
		return
	}
	ctx := e.runCtx
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		if err := e.processBatch(ctx, ownerID); err != nil && ctx.Err() == nil {
			e.logger.Error("immediate processing pass failed", slog.Any("error", err))
		}
	}()
}

// TriggerImmediateAndWait runs a processing pass and waits for the
// resulting batch to complete, honoring both the caller's context and the
// engine lifetime.
func (e *SyncEngine) TriggerImmediateAndWait(ctx context.Context, ownerID uuid.UUID) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return syncDomain.ErrEngineStopped
	}
	if e.ownerID != ownerID {
		e.mu.Unlock()
		return apperrors.Wrap(apperrors.ErrInvalidInput, "engine is running for a different owner")
	}
	runCtx := e.runCtx
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-runCtx.Done():
			cancel()
		case <-passCtx.Done():
		}
	}()

	return e.processBatch(passCtx, ownerID)
}

// runLoop drives the periodic batch fetch.
func (e *SyncEngine) runLoop(ctx context.Context, ownerID uuid.UUID) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sync loop stopping")
			return
		case <-ticker.C:
			if err := e.processBatch(ctx, ownerID); err != nil && ctx.Err() == nil {
				// Logged and waited out; the loop itself never terminates
				// on a store error.
				e.logger.Error("batch processing failed", slog.Any("error", err))
			}
		}
	}
}

// runCleanup drives the independent cleanup sweeper cadence.
func (e *SyncEngine) runCleanup(ctx context.Context, ownerID uuid.UUID) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("cleanup sweeper stopping")
			return
		case <-ticker.C:
			e.cleanupPass(ctx, ownerID)
		}
	}
}

// processBatch fetches one batch of dispatch-ready events and hands each
// to the concurrency limiter. An empty result returns immediately. The
// call blocks until every event in the batch has been handled.
func (e *SyncEngine) processBatch(ctx context.Context, ownerID uuid.UUID) error {
	events, err := e.repo.GetPending(ctx, ownerID, e.config.BatchSize)
	if err != nil {
		return apperrors.Wrap(err, "failed to fetch pending events")
	}
	if len(events) == 0 {
		return nil
	}

	e.logger.Debug("dispatching events", slog.Int("count", len(events)))

	var wg sync.WaitGroup
	for _, event := range events {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			// Engine stopping; unclaimed events stay pending.
			break
		}
		wg.Add(1)
		go func(ev *syncDomain.SyncEvent) {
			defer wg.Done()
			defer e.sem.Release(1)
			e.processEvent(ctx, ev)
		}(event)
	}
	wg.Wait()

	return nil
}

// processEvent runs one event through backoff, status transition, handler
// execution, and result recording. Failures of any kind end in MarkFailed,
// never in a crashed loop.
func (e *SyncEngine) processEvent(ctx context.Context, event *syncDomain.SyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("handler panicked",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", string(event.EventType)),
				slog.Any("panic", r),
			)
			e.failEvent(ctx, event, fmt.Sprintf("panic: %v", r))
		}
	}()

	// Per-event retry backoff: sleeps inside the worker so fresh events in
	// the same batch are not delayed.
	if delay := e.backoff.Delay(event.AttemptCount); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// Not attempted; the event keeps its last persisted status.
			return
		case <-timer.C:
		}
	}

	if err := e.repo.MarkProcessing(ctx, event.ID); err != nil {
		e.logger.Warn("failed to mark event processing",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	start := time.Now()
	err := e.handleEvent(ctx, event)

	status := "success"
	if err != nil {
		status = "failure"
		e.failEvent(ctx, event, err.Error())
	} else {
		e.completeEvent(ctx, event)
	}

	if e.metrics != nil {
		e.metrics.RecordAttempt(ctx, string(event.EventType), status, time.Since(start))
	}
}

// handleEvent executes the type handler contract for one event.
func (e *SyncEngine) handleEvent(ctx context.Context, event *syncDomain.SyncEvent) error {
	handler, ok := e.registry.Lookup(event.EventType)
	if !ok {
		return apperrors.Wrapf(syncDomain.ErrUnsupportedEventType, "%s", event.EventType)
	}

	if event.IsDeleteOperation() {
		return e.handleDelete(ctx, event, handler)
	}

	entity, err := handler.Fetch(ctx, event.EntityID, event.OwnerID)
	if err != nil {
		return apperrors.Wrap(err, "failed to fetch local entity")
	}

	outcome := handler.Upload(ctx, entity)
	switch outcome.Kind {
	case syncDomain.UploadSuccess:
		if outcome.RemoteID == "" {
			return syncDomain.ErrMissingRemoteID
		}
		return handler.Reconcile(ctx, event.EntityID, outcome.RemoteID, event.OwnerID)
	case syncDomain.UploadAlreadyDone:
		// The remote already has this record; reconcile exactly as if the
		// upload had succeeded.
		return handler.Reconcile(ctx, event.EntityID, outcome.RemoteID, event.OwnerID)
	case syncDomain.UploadRetryable:
		return apperrors.Wrap(outcome.Err, "transient upload failure")
	case syncDomain.UploadPermanent:
		return apperrors.Wrap(outcome.Err, "permanent upload failure")
	default:
		return apperrors.New("unknown upload outcome")
	}
}

// handleDelete removes the backend copy for delete operations. The local
// deletion already took effect and is authoritative: a remote failure is
// surfaced through logs and metrics but never fails the event.
func (e *SyncEngine) handleDelete(ctx context.Context, event *syncDomain.SyncEvent, handler Handler) error {
	remoteID, ok := event.RemoteID()
	if !ok {
		// Never uploaded; there is nothing to remove remotely.
		e.logger.Debug("delete event carries no remote id",
			slog.String("event_id", event.ID.String()),
		)
		return nil
	}

	if err := handler.DeleteRemote(ctx, remoteID); err != nil {
		e.logger.Error("remote delete failed, local deletion stands",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.String("remote_id", remoteID),
			slog.Any("error", err),
		)
		if e.metrics != nil {
			e.metrics.RecordRemoteDeleteFailure(ctx, string(event.EventType))
		}
	}
	return nil
}

// failEvent records a failed attempt. Exhausted events stay failed and
// visible; they are never auto-deleted.
func (e *SyncEngine) failEvent(ctx context.Context, event *syncDomain.SyncEvent, message string) {
	if err := e.repo.MarkFailed(ctx, event.ID, message); err != nil {
		e.logger.Error("failed to record event failure",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err),
		)
		return
	}

	attempts := event.AttemptCount + 1
	if attempts >= event.MaxAttempts {
		e.logger.Error("sync event exhausted retry budget",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.Int("attempts", attempts),
			slog.String("error", message),
		)
		return
	}

	e.logger.Warn("sync event attempt failed",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Int("attempts", attempts),
		slog.String("error", message),
	)
}

// completeEvent deletes the event after a successful upload. If the delete
// fails the event is parked in completed status for the sweeper to reap.
func (e *SyncEngine) completeEvent(ctx context.Context, event *syncDomain.SyncEvent) {
	err := e.repo.Delete(ctx, event.ID)
	if err == nil {
		return
	}
	e.logger.Warn("failed to delete completed event, parking for sweeper",
		slog.String("event_id", event.ID.String()),
		slog.Any("error", err),
	)

	if err := e.repo.MarkCompleted(ctx, event.ID); err != nil {
		e.logger.Error("failed to mark event completed",
			slog.String("event_id", event.ID.String()),
			slog.Any("error", err),
		)
	}
}

// cleanupPass reaps completed events and surfaces long-pending ones.
// Stale events are logged, not auto-remediated.
func (e *SyncEngine) cleanupPass(ctx context.Context, ownerID uuid.UUID) {
	count, err := e.repo.DeleteCompleted(ctx, time.Now().UTC())
	if err != nil {
		e.logger.Error("cleanup sweep failed", slog.Any("error", err))
	} else if count > 0 {
		e.logger.Info("reaped completed events", slog.Int64("count", count))
	}

	cutoff := time.Now().UTC().Add(-e.config.StaleThreshold)
	stale, err := e.repo.GetStale(ctx, ownerID, cutoff)
	if err != nil {
		e.logger.Error("stale event query failed", slog.Any("error", err))
		return
	}

	for _, event := range stale {
		e.logger.Warn("sync event pending too long",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", string(event.EventType)),
			slog.Duration("age", time.Since(event.CreatedAt)),
		)
	}
	if e.metrics != nil && len(stale) > 0 {
		e.metrics.RecordStaleEvents(ctx, len(stale))
	}
}
