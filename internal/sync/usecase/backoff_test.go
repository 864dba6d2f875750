package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffPolicy_Delay(t *testing.T) {
	policy := NewBackoffPolicy(nil)

	tests := []struct {
		attemptCount int
		expected     time.Duration
	}{
		{0, 0},
		{-1, 0},
		{1, 1 * time.Second},
		{2, 5 * time.Second},
		{3, 30 * time.Second},
		{4, 2 * time.Minute},
		{5, 10 * time.Minute},
		{6, 10 * time.Minute},
		{100, 10 * time.Minute},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.Delay(tt.attemptCount), "attemptCount=%d", tt.attemptCount)
	}
}

func TestBackoffPolicy_ThirdAttemptWindow(t *testing.T) {
	// An event on its third retry waits at least 30s and less than 2min.
	policy := NewBackoffPolicy(nil)
	delay := policy.Delay(3)
	assert.GreaterOrEqual(t, delay, 30*time.Second)
	assert.Less(t, delay, 120*time.Second)
}

func TestBackoffPolicy_CustomTable(t *testing.T) {
	policy := NewBackoffPolicy([]time.Duration{time.Millisecond, 2 * time.Millisecond})

	assert.Equal(t, time.Millisecond, policy.Delay(1))
	assert.Equal(t, 2*time.Millisecond, policy.Delay(2))
	assert.Equal(t, 2*time.Millisecond, policy.Delay(3))
}
