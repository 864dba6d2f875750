package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// staticHandler is a minimal Handler used to exercise the registry.
type staticHandler struct {
	eventType syncDomain.EventType
}

func (h *staticHandler) EventType() syncDomain.EventType {
	return h.eventType
}

func (h *staticHandler) Fetch(_ context.Context, _, _ uuid.UUID) (any, error) {
	return nil, nil
}

func (h *staticHandler) Upload(_ context.Context, _ any) syncDomain.UploadOutcome {
	return syncDomain.Success("remote-id")
}

func (h *staticHandler) Reconcile(_ context.Context, _ uuid.UUID, _ string, _ uuid.UUID) error {
	return nil
}

func (h *staticHandler) DeleteRemote(_ context.Context, _ string) error {
	return nil
}

// TestRegistry tests handler registration and lookup.
func TestRegistry(t *testing.T) {
	t.Run("LookupUnregisteredType", func(t *testing.T) {
		registry := NewRegistry()

		handler, ok := registry.Lookup(syncDomain.EventTypeWorkout)

		assert.False(t, ok)
		assert.Nil(t, handler)
	})

	t.Run("RegisterAndLookup", func(t *testing.T) {
		registry := NewRegistry()
		workoutHandler := &staticHandler{eventType: syncDomain.EventTypeWorkout}
		mealHandler := &staticHandler{eventType: syncDomain.EventTypeMealLog}

		registry.Register(workoutHandler)
		registry.Register(mealHandler)

		got, ok := registry.Lookup(syncDomain.EventTypeWorkout)
		assert.True(t, ok)
		assert.Same(t, workoutHandler, got)

		got, ok = registry.Lookup(syncDomain.EventTypeMealLog)
		assert.True(t, ok)
		assert.Same(t, mealHandler, got)
	})

	t.Run("RegisterReplacesPreviousHandler", func(t *testing.T) {
		registry := NewRegistry()
		first := &staticHandler{eventType: syncDomain.EventTypeWorkout}
		second := &staticHandler{eventType: syncDomain.EventTypeWorkout}

		registry.Register(first)
		registry.Register(second)

		got, ok := registry.Lookup(syncDomain.EventTypeWorkout)
		assert.True(t, ok)
		assert.Same(t, second, got)
		assert.Len(t, registry.RegisteredTypes(), 1)
	})

	t.Run("RegisteredTypes", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(&staticHandler{eventType: syncDomain.EventTypeWorkout})
		registry.Register(&staticHandler{eventType: syncDomain.EventTypeSleepSession})

		types := registry.RegisteredTypes()

		assert.ElementsMatch(t, []syncDomain.EventType{
			syncDomain.EventTypeWorkout,
			syncDomain.EventTypeSleepSession,
		}, types)
	})
}
