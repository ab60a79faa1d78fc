package term

// Screen is one navigable view in the stack. Exactly one screen is active
// (receiving keys) at any time. Lifecycle: constructed → Activate (attach
// handlers, immediate render) → key handling and re-renders → Deactivate →
// Cleanup. Deactivate and Cleanup are each called exactly once per
// transition, even on abnormal exit.
type Screen interface {
	// ID identifies the screen for logs.
	ID() string

	// Breadcrumb is the ordered list of display labels showing navigation
	// depth, rendered at the top of the frame.
	Breadcrumb() []string

	// Activate attaches the screen's key handlers and renders immediately.
	Activate()

	// Deactivate detaches handlers; the screen keeps its state and may be
	// reactivated when a child above it pops.
	Deactivate()

	// Cleanup releases resources. Called once when the screen leaves the
	// stack for good.
	Cleanup()

	// HandleKey dispatches one decoded key through the screen's handler
	// chain; returns true when consumed.
	HandleKey(Key) bool

	// View produces the full frame text for the current state.
	View() (string, error)
}
