package screens

import "secretpeek/internal/term"

// base carries the state and lifecycle plumbing every screen shares: the app
// handle, identity, breadcrumb trail, handler chain and the transient error
// line. Concrete screens embed it and register handlers on events.
type base struct {
	app    *App
	id     string
	crumbs []string
	events *term.EventManager
	self   term.Screen
	active bool
	errMsg string
}

func newBase(app *App, id string, crumbs []string) base {
	return base{app: app, id: id, crumbs: crumbs, events: term.NewEventManager()}
}

// bind gives base access to the concrete screen's View for re-renders. Every
// constructor calls it once.
func (b *base) bind(self term.Screen) {
	b.self = self
}

func (b *base) ID() string { return b.id }

func (b *base) Breadcrumb() []string { return b.crumbs }

// Activate marks the screen live and forces a full redraw. Reactivation after
// a child pops goes through here too: the terminal content is the child's.
func (b *base) Activate() {
	b.active = true
	b.render(true)
}

func (b *base) Deactivate() { b.active = false }

func (b *base) Cleanup() {}

func (b *base) HandleKey(k term.Key) bool {
	return b.events.Process(k)
}

func (b *base) render(immediate bool) {
	if b.self == nil {
		return
	}
	b.app.Term.Renderer().Render(b.self.View, immediate)
}
