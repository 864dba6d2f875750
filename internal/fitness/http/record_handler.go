// Package http provides HTTP handlers for fitness record operations.
// Records are stored locally first; every write enqueues a sync event in
// the same transaction.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/fitsync/fitsync/internal/errors"
	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	"github.com/fitsync/fitsync/internal/fitness/http/dto"
	fitnessUseCase "github.com/fitsync/fitsync/internal/fitness/usecase"
	"github.com/fitsync/fitsync/internal/httputil"
	customValidation "github.com/fitsync/fitsync/internal/validation"
)

// RecordHandler handles HTTP requests for fitness record operations.
type RecordHandler struct {
	recordUseCase fitnessUseCase.RecordUseCase
	logger        *slog.Logger
}

// NewRecordHandler creates a new record handler with required dependencies.
func NewRecordHandler(recordUseCase fitnessUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		recordUseCase: recordUseCase,
		logger:        logger,
	}
}

// CreateHandler creates a new fitness record and enqueues its sync event.
// POST /v1/records
// Returns 201 Created with the stored record.
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	req, ok := h.bindSaveRequest(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.SaveRecord(c.Request.Context(), &fitnessUseCase.SaveRecordInput{
		OwnerID:    ownerID,
		RecordType: fitnessDomain.RecordType(req.RecordType),
		Payload:    req.Payload,
		Priority:   req.Priority,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// UpdateHandler replaces the payload of an existing record and re-enqueues
// its sync event.
// PUT /v1/records/:id
// Returns 200 OK with the updated record.
func (h *RecordHandler) UpdateHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	recordID, ok := h.recordIDParam(c)
	if !ok {
		return
	}

	req, ok := h.bindSaveRequest(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.SaveRecord(c.Request.Context(), &fitnessUseCase.SaveRecordInput{
		OwnerID:    ownerID,
		RecordID:   &recordID,
		RecordType: fitnessDomain.RecordType(req.RecordType),
		Payload:    req.Payload,
		Priority:   req.Priority,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// GetHandler retrieves a record by id, scoped to the owner.
// GET /v1/records/:id
func (h *RecordHandler) GetHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	recordID, ok := h.recordIDParam(c)
	if !ok {
		return
	}

	record, err := h.recordUseCase.GetRecord(c.Request.Context(), ownerID, recordID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// ListHandler retrieves the owner's records of one type, newest first.
// GET /v1/records?type=workout&limit=50
func (h *RecordHandler) ListHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	recordType := c.Query("type")
	if recordType == "" {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("type parameter is required"),
			h.logger,
		)
		return
	}

	limit, err := httputil.ParseLimit(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.recordUseCase.ListRecords(
		c.Request.Context(),
		ownerID,
		fitnessDomain.RecordType(recordType),
		limit,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordsToListResponse(records))
}

// DeleteHandler removes the local record and enqueues the remote delete.
// DELETE /v1/records/:id
// Returns 204 No Content.
func (h *RecordHandler) DeleteHandler(c *gin.Context) {
	ownerID, err := httputil.OwnerID(c)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, err.Error()), h.logger)
		return
	}

	recordID, ok := h.recordIDParam(c)
	if !ok {
		return
	}

	if err := h.recordUseCase.DeleteRecord(c.Request.Context(), ownerID, recordID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// bindSaveRequest parses and validates the save record request body. It
// writes the error response itself and reports success via the bool.
func (h *RecordHandler) bindSaveRequest(c *gin.Context) (*dto.SaveRecordRequest, bool) {
	var req dto.SaveRecordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return nil, false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}

	return &req, true
}

// recordIDParam parses the :id URL parameter. It writes the error response
// itself and reports success via the bool.
func (h *RecordHandler) recordIDParam(c *gin.Context) (uuid.UUID, bool) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(
			c,
			fmt.Errorf("invalid record id: must be a UUID"),
			h.logger,
		)
		return uuid.Nil, false
	}
	return recordID, true
}
