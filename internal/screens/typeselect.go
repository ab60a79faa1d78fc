package screens

import (
	"context"
	"fmt"

	"secretpeek/internal/provider"
	"secretpeek/internal/term"
)

// TypeSelect is the root screen: pick a storage type. A type only navigates
// forward once its provider listed at least one item; an empty or failing
// backend shows an inline error and stays put.
type TypeSelect struct {
	base
	list    fuzzyList
	loading bool
}

// NewTypeSelect builds the root screen over the registered storage types.
func NewTypeSelect(app *App) *TypeSelect {
	kinds := app.Providers.Kinds()
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = kindLabel(k)
	}

	s := &TypeSelect{
		base: newBase(app, "type-select", []string{"secrets"}),
		list: newFuzzyList(labels),
	}
	s.bind(s)
	s.events.AddHandler(s.onKey)
	return s
}

func (s *TypeSelect) onKey(k term.Key) bool {
	switch s.list.handleKey(k) {
	case listChosen:
		if label, ok := s.list.current(); ok {
			s.open(labelKind(label))
		}
	case listBack:
		s.app.Term.PopScreen()
	case listMoved:
		s.errMsg = ""
		s.render(true)
	case listFiltered:
		s.render(false)
	case listHandled:
	default:
		return false
	}
	return true
}

// open lists the chosen backend and pushes item selection when it has
// content. The list call blocks the dispatch loop behind a static loading
// frame; input typed meanwhile queues up.
func (s *TypeSelect) open(kind provider.Kind) {
	p, err := s.app.Providers.Get(kind)
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}

	s.errMsg = ""
	s.loading = true
	s.render(true)

	items, err := p.List(context.Background(), s.app.OptionsFor(kind))
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}
	if len(items) == 0 {
		s.errMsg = fmt.Sprintf("no secrets found under %s", kindLabel(kind))
		s.render(true)
		return
	}

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	s.app.Term.PushScreen(NewItemSelect(s.app, kind, names))
}

func (s *TypeSelect) View() (string, error) {
	out := header(s.crumbs)
	out += searchLine(s.list.query, s.list.searching)
	out += s.list.renderRows()
	if s.loading {
		out += "\r\n" + dimStyle.Render("loading…") + "\r\n"
	}
	out += statusLines("", s.errMsg)
	out += footer("↑/↓ move", "enter open", "/ search", "esc quit")
	return out, nil
}
