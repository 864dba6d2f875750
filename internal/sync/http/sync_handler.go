// Package http provides HTTP handlers for sync queue operations.
// All endpoints are owner-scoped via the X-Owner-ID header set by the
// device session layer.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	"github.com/fitsync/fitsync/internal/httputil"
	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
	"github.com/fitsync/fitsync/internal/sync/http/dto"
	syncUseCase "github.com/fitsync/fitsync/internal/sync/usecase"
	customValidation "github.com/fitsync/fitsync/internal/validation"
)

// SyncHandler handles HTTP requests for sync queue operations.
// It coordinates the event queue and the sync engine triggers.
type SyncHandler struct {
	eventUseCase syncUseCase.EventUseCase
	engine       syncUseCase.Engine
	logger       *slog.Logger
}

// NewSyncHandler creates a new sync handler with required dependencies.
func NewSyncHandler(
	eventUseCase syncUseCase.EventUseCase,
	engine syncUseCase.Engine,
	logger *slog.Logger,
) *SyncHandler {
	return &SyncHandler{
		eventUseCase: eventUseCase,
		engine:       engine,
		logger:       logger,
	}
}

// EnqueueHandler enqueues a sync event for an entity.
// POST /v1/sync/events
// Returns 201 Created with the new event id.
func (h *SyncHandler) EnqueueHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	var req dto.EnqueueEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	// Validate already guarantees a parseable non-nil UUID.
	entityID := uuid.MustParse(req.EntityID)

	eventID, err := h.eventUseCase.Enqueue(c.Request.Context(), &syncUseCase.EnqueueInput{
		OwnerID:     ownerID,
		EventType:   syncDomain.EventType(req.EventType),
		EntityID:    entityID,
		IsNewRecord: req.IsNewRecord,
		Priority:    req.Priority,
		Metadata:    req.Metadata,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.EnqueueEventResponse{EventID: eventID.String()})
}

// TriggerHandler requests an out-of-band processing pass.
// POST /v1/sync/trigger?wait=true
// Without wait it returns 202 Accepted immediately; with wait it blocks
// until the triggered batch finishes and returns 200 OK.
func (h *SyncHandler) TriggerHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	if c.Query("wait") == "true" {
		if err := h.engine.TriggerImmediateAndWait(c.Request.Context(), ownerID); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "completed"})
		return
	}

	h.engine.TriggerImmediate(ownerID)
	c.JSON(http.StatusAccepted, gin.H{"status": "triggered"})
}

// ListFailedHandler retrieves events in failed status for diagnostics.
// GET /v1/sync/events/failed?limit=50
// Returns 200 OK with the failed events, including retry-exhausted ones.
func (h *SyncHandler) ListFailedHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	limit, err := httputil.ParseLimit(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.eventUseCase.ListFailed(c.Request.Context(), ownerID, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}

// ListStaleHandler retrieves events pending longer than the staleness
// threshold. Stale events are reported, never auto-remediated.
// GET /v1/sync/events/stale
func (h *SyncHandler) ListStaleHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	events, err := h.eventUseCase.ListStale(c.Request.Context(), ownerID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapEventsToListResponse(events))
}
