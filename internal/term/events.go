package term

// Handler processes one decoded key. It returns true when the key was
// consumed, which stops propagation down the chain.
type Handler func(Key) bool

// EventManager is an ordered chain of key handlers for one screen. Handlers
// run in registration order; the first one to consume a key wins. A key no
// handler consumes is simply ignored, not an error.
type EventManager struct {
	handlers []*handlerEntry
	nextID   int
}

type handlerEntry struct {
	id int
	fn Handler
}

// NewEventManager returns an empty handler chain.
func NewEventManager() *EventManager {
	return &EventManager{}
}

// AddHandler appends a handler to the chain and returns a removal token.
func (m *EventManager) AddHandler(fn Handler) int {
	m.nextID++
	m.handlers = append(m.handlers, &handlerEntry{id: m.nextID, fn: fn})
	return m.nextID
}

// RemoveHandler removes the handler registered under id. Unknown ids are
// ignored.
func (m *EventManager) RemoveHandler(id int) {
	for i, h := range m.handlers {
		if h.id == id {
			m.handlers = append(m.handlers[:i], m.handlers[i+1:]...)
			return
		}
	}
}

// RemoveAll clears the chain.
func (m *EventManager) RemoveAll() {
	m.handlers = nil
}

// Process dispatches key through the chain. It returns true iff some handler
// consumed the key.
func (m *EventManager) Process(key Key) bool {
	// Copy first: handlers may add or remove handlers while running.
	chain := make([]*handlerEntry, len(m.handlers))
	copy(chain, m.handlers)

	for _, h := range chain {
		if h.fn(key) {
			return true
		}
	}
	return false
}

// Len returns the number of registered handlers.
func (m *EventManager) Len() int {
	return len(m.handlers)
}
