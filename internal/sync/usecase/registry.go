package usecase

import (
	"sync"

	syncDomain "github.com/fitsync/fitsync/internal/sync/domain"
)

// Registry maps an event's type tag to the handler that uploads it.
// Adding a new entity kind is a registration, not a new switch arm in the
// processing loop.
type Registry struct {
	mu       sync.RWMutex
	handlers map[syncDomain.EventType]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[syncDomain.EventType]Handler),
	}
}

// Register wires a handler for its event type, replacing any previous one.
func (r *Registry) Register(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.EventType()] = handler
}

// Lookup returns the handler for the event type, if one is registered.
func (r *Registry) Lookup(eventType syncDomain.EventType) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[eventType]
	return handler, ok
}

// RegisteredTypes returns the event types with a wired handler.
func (r *Registry) RegisteredTypes() []syncDomain.EventType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]syncDomain.EventType, 0, len(r.handlers))
	for eventType := range r.handlers {
		types = append(types, eventType)
	}
	return types
}
