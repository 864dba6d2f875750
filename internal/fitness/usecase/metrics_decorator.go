package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	fitnessDomain "github.com/fitsync/fitsync/internal/fitness/domain"
	"github.com/fitsync/fitsync/internal/metrics"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// SaveRecord records metrics for record save operations.
func (r *recordUseCaseWithMetrics) SaveRecord(
	ctx context.Context,
	input *SaveRecordInput,
) (*fitnessDomain.Record, error) {
	start := time.Now()
	record, err := r.next.SaveRecord(ctx, input)

	operation := "record_create"
	if input.RecordID != nil {
		operation = "record_update"
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "fitness", operation, status)
	r.metrics.RecordDuration(ctx, "fitness", operation, time.Since(start), status)

	return record, err
}

// GetRecord records metrics for record retrieval operations.
func (r *recordUseCaseWithMetrics) GetRecord(
	ctx context.Context,
	ownerID, recordID uuid.UUID,
) (*fitnessDomain.Record, error) {
	start := time.Now()
	record, err := r.next.GetRecord(ctx, ownerID, recordID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "fitness", "record_get", status)
	r.metrics.RecordDuration(ctx, "fitness", "record_get", time.Since(start), status)

	return record, err
}

// ListRecords records metrics for record list operations.
func (r *recordUseCaseWithMetrics) ListRecords(
	ctx context.Context,
	ownerID uuid.UUID,
	recordType fitnessDomain.RecordType,
	limit int,
) ([]*fitnessDomain.Record, error) {
	start := time.Now()
	records, err := r.next.ListRecords(ctx, ownerID, recordType, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "fitness", "record_list", status)
	r.metrics.RecordDuration(ctx, "fitness", "record_list", time.Since(start), status)

	return records, err
}

// DeleteRecord records metrics for record deletion operations.
func (r *recordUseCaseWithMetrics) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	start := time.Now()
	err := r.next.DeleteRecord(ctx, ownerID, recordID)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "fitness", "record_delete", status)
	r.metrics.RecordDuration(ctx, "fitness", "record_delete", time.Since(start), status)

	return err
}
