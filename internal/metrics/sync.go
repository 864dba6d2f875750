package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics defines the interface for recording sync engine metrics.
// Implementations track upload attempts, queue health, and the remote
// delete failures the engine deliberately swallows.
type SyncMetrics interface {
	// RecordEnqueued counts a newly enqueued sync event.
	RecordEnqueued(ctx context.Context, eventType string)

	// RecordAttempt records one handler execution with its status
	// ("success" or "failure") and duration.
	RecordAttempt(ctx context.Context, eventType, status string, duration time.Duration)

	// RecordStaleEvents counts events the sweeper found pending too long.
	RecordStaleEvents(ctx context.Context, count int)

	// RecordRemoteDeleteFailure counts swallowed remote delete failures.
	RecordRemoteDeleteFailure(ctx context.Context, eventType string)
}

// syncMetrics implements SyncMetrics using OpenTelemetry metrics.
type syncMetrics struct {
	enqueuedCounter     metric.Int64Counter
	attemptCounter      metric.Int64Counter
	attemptDuration     metric.Float64Histogram
	staleCounter        metric.Int64Counter
	remoteDeleteCounter metric.Int64Counter
}

// NewSyncMetrics creates a SyncMetrics implementation using the provided
// meter provider. The namespace prefixes all metric names.
func NewSyncMetrics(meterProvider metric.MeterProvider, namespace string) (SyncMetrics, error) {
	meter := meterProvider.Meter(namespace)

	enqueuedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_events_enqueued_total", namespace),
		metric.WithDescription("Total number of sync events enqueued"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enqueued counter: %w", err)
	}

	attemptCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_attempts_total", namespace),
		metric.WithDescription("Total number of sync attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt counter: %w", err)
	}

	attemptDuration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_attempt_duration_seconds", namespace),
		metric.WithDescription("Duration of sync attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt duration histogram: %w", err)
	}

	staleCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_stale_events_total", namespace),
		metric.WithDescription("Events found pending longer than the staleness threshold"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stale counter: %w", err)
	}

	remoteDeleteCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_remote_delete_failures_total", namespace),
		metric.WithDescription("Remote delete failures swallowed by the delete path"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote delete counter: %w", err)
	}

	return &syncMetrics{
		enqueuedCounter:     enqueuedCounter,
		attemptCounter:      attemptCounter,
		attemptDuration:     attemptDuration,
		staleCounter:        staleCounter,
		remoteDeleteCounter: remoteDeleteCounter,
	}, nil
}

// RecordEnqueued increments the enqueued counter with an event type label.
func (s *syncMetrics) RecordEnqueued(ctx context.Context, eventType string) {
	s.enqueuedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("event_type", eventType)),
	)
}

// RecordAttempt increments the attempt counter and records the duration.
func (s *syncMetrics) RecordAttempt(ctx context.Context, eventType, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	)
	s.attemptCounter.Add(ctx, 1, attrs)
	s.attemptDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStaleEvents adds the sweep's stale count.
func (s *syncMetrics) RecordStaleEvents(ctx context.Context, count int) {
	s.staleCounter.Add(ctx, int64(count))
}

// RecordRemoteDeleteFailure increments the swallowed remote delete counter.
func (s *syncMetrics) RecordRemoteDeleteFailure(ctx context.Context, eventType string) {
	s.remoteDeleteCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("event_type", eventType)),
	)
}
