package screens

import (
	"context"

	"secretpeek/internal/history"
	"secretpeek/internal/provider"
	"secretpeek/internal/term"
)

// ItemSelect lists the secrets of one storage type, recently opened ones
// first. Its query and cursor survive while a child screen is on top.
type ItemSelect struct {
	base
	kind    provider.Kind
	list    fuzzyList
	loading bool
}

// NewItemSelect builds the item list for kind, ordered by access recency.
func NewItemSelect(app *App, kind provider.Kind, names []string) *ItemSelect {
	ordered := history.SortByRecency(names, app.recentNames(kind))

	s := &ItemSelect{
		base: newBase(app, "item-select", []string{"secrets", kindLabel(kind)}),
		kind: kind,
		list: newFuzzyList(ordered),
	}
	s.bind(s)
	s.events.AddHandler(s.onKey)
	return s
}

func (s *ItemSelect) onKey(k term.Key) bool {
	switch s.list.handleKey(k) {
	case listChosen:
		if name, ok := s.list.current(); ok {
			s.open(name)
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

// open fetches the chosen secret and pushes the key browser.
func (s *ItemSelect) open(name string) {
	p, err := s.app.Providers.Get(s.kind)
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}

	s.errMsg = ""
	s.loading = true
	s.render(true)

	rec, err := p.Fetch(context.Background(), name, s.app.OptionsFor(s.kind))
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}

	s.app.recordAccess(s.kind, name)
	s.app.Term.PushScreen(NewKeyBrowser(s.app, s.kind, name, rec))
}

func (s *ItemSelect) View() (string, error) {
	out := header(s.crumbs)
	out += searchLine(s.list.query, s.list.searching)
	out += s.list.renderRows()
	if s.loading {
		out += "\r\n" + dimStyle.Render("loading…") + "\r\n"
	}
	out += statusLines("", s.errMsg)
	out += footer("↑/↓ move", "enter open", "/ search", "esc back")
	return out, nil
}
