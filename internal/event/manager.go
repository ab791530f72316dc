package event

import (
	"sync"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Handler receives dispatched events. It returns true if it consumed the
// event, which stops delivery to later handlers.
type Handler func(e Event) bool

type subscription struct {
	id      int
	handler Handler
}

// Manager handles event subscriptions and dispatching.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Type][]subscription
	nextID   int
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[Type][]subscription),
	}
}

// Subscribe adds a handler for an event type and returns a function that
// removes it again.
func (m *Manager) Subscribe(eventType Type, handler Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.handlers[eventType] = append(m.handlers[eventType], subscription{id: id, handler: handler})
	logger.DebugTagf("event", "handler subscribed to %v", eventType)

	return func() { m.unsubscribe(eventType, id) }
}

func (m *Manager) unsubscribe(eventType Type, id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			m.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Dispatch sends an event to the handlers registered for its type,
// synchronously and in subscription order.
func (m *Manager) Dispatch(e Event) {
	m.mu.RLock()
	subs := make([]subscription, len(m.handlers[e.Type]))
	copy(subs, m.handlers[e.Type])
	m.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	logger.DebugTagf("event", "dispatching %v to %d handler(s)", e.Type, len(subs))

	for _, s := range subs {
		if s.handler(e) {
			break
		}
	}
}
