package usecase

import "time"

// DefaultBackoffTable is the fixed escalation applied between retry
// attempts of the same event.
var DefaultBackoffTable = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
}

// BackoffPolicy maps an event's attempt count to the delay imposed before
// its handler runs. The delay is a per-event sleep inside the worker, not
// a scheduling delay on the whole batch, so fresh events in the same batch
// are not penalized by a sibling's backoff.
type BackoffPolicy struct {
	table []time.Duration
}

// NewBackoffPolicy creates a policy over the given escalation table.
// An empty table falls back to DefaultBackoffTable.
func NewBackoffPolicy(table []time.Duration) *BackoffPolicy {
	if len(table) == 0 {
		table = DefaultBackoffTable
	}
	return &BackoffPolicy{table: table}
}

// Delay returns the sleep before the next attempt. Fresh events
// (attemptCount == 0) run immediately; beyond the table the last entry
// applies.
func (p *BackoffPolicy) Delay(attemptCount int) time.Duration {
	if attemptCount <= 0 {
		return 0
	}
	idx := attemptCount - 1
	if idx >= len(p.table) {
		idx = len(p.table) - 1
	}
	return p.table[idx]
}
