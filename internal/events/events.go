package events

import (
	"context"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// EventCatalogFetched is emitted after a successful upstream fetch.
	EventCatalogFetched EventType = "catalog.fetched"
	// EventCatalogDegraded is emitted when a list fetch failed and the
	// caller was handed an empty result instead of the error.
	EventCatalogDegraded EventType = "catalog.degraded"
	// EventHealthChecked is emitted after an upstream health probe.
	EventHealthChecked EventType = "health.checked"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// CatalogFetchedData describes a completed upstream fetch.
type CatalogFetchedData struct {
	Operation string
	Records   int
	Elapsed   time.Duration
}

// CatalogDegradedData describes a list fetch that was absorbed into an
// empty-result success. Reason carries the full error text; it stays
// server-side.
type CatalogDegradedData struct {
	Operation string
	Reason    string
}

// HealthCheckedData describes a health probe result.
type HealthCheckedData struct {
	Upstream bool
	Cached   bool
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
}

// NewManager creates a new event manager.
func NewManager(enabled bool) *Manager {
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	if !m.enabled {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish publishes an event to all subscribed handlers. Handlers run
// asynchronously so publishing never blocks a request, and they get a
// fresh context: the request-scoped one is canceled as soon as the
// response is written, before a handler may have run.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	if !m.enabled {
		return
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	for _, handler := range handlers {
		go func(h Handler) {
			_ = h(context.Background(), event)
		}(handler)
	}
}

// PublishCatalogFetched publishes a catalog fetched event.
func (m *Manager) PublishCatalogFetched(ctx context.Context, operation string, records int, elapsed time.Duration) {
	m.Publish(ctx, EventCatalogFetched, CatalogFetchedData{
		Operation: operation,
		Records:   records,
		Elapsed:   elapsed,
	})
}

// PublishCatalogDegraded publishes a catalog degraded event.
func (m *Manager) PublishCatalogDegraded(ctx context.Context, operation, reason string) {
	m.Publish(ctx, EventCatalogDegraded, CatalogDegradedData{
		Operation: operation,
		Reason:    reason,
	})
}

// PublishHealthChecked publishes a health checked event.
func (m *Manager) PublishHealthChecked(ctx context.Context, upstream, cached bool) {
	m.Publish(ctx, EventHealthChecked, HealthCheckedData{
		Upstream: upstream,
		Cached:   cached,
	})
}

// Shutdown shuts down the event manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
}
