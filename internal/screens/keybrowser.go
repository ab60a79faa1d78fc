package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"secretpeek/internal/fuzzy"
	"secretpeek/internal/provider"
	"secretpeek/internal/secret"
	"secretpeek/internal/term"
)

// KeyBrowser shows the keys of one fetched secret. Values start masked; the
// visibility toggle, clipboard copy and external edit all operate on the
// filtered view. Typing narrows the key list directly, so every action lives
// on a control key and printable input stays free for the filter.
type KeyBrowser struct {
	base
	kind provider.Kind
	name string
	rec  *secret.Record

	list     fuzzyList
	revealed bool
	dirty    bool
	status   string
}

// NewKeyBrowser builds the browser over an already-fetched record.
func NewKeyBrowser(app *App, kind provider.Kind, name string, rec *secret.Record) *KeyBrowser {
	s := &KeyBrowser{
		base: newBase(app, "key-browser", []string{"secrets", kindLabel(kind), name}),
		kind: kind,
		name: name,
		rec:  rec,
		list: newFuzzyList(rec.Keys()),
	}
	s.bind(s)
	s.events.AddHandler(s.onAction)
	s.events.AddHandler(s.onList)
	return s
}

// onAction handles the browsing action keys.
func (s *KeyBrowser) onAction(k term.Key) bool {
	switch k.Kind {
	case term.KeyCtrlV:
		s.toggleReveal()
	case term.KeyCtrlY:
		s.yank()
	case term.KeyCtrlE:
		s.edit()
	case term.KeyCtrlU:
		s.upload()
	case term.KeyCtrlO:
		s.app.Term.PushScreen(NewCopyWizard(s.app, s.kind, s.name, s.rec))
	default:
		return false
	}
	return true
}

func (s *KeyBrowser) onList(k term.Key) bool {
	switch s.list.handleKey(k) {
	case listChosen:
		// Enter doubles as the visibility toggle when browsing.
		s.toggleReveal()
	case listBack:
		s.app.Term.PopScreen()
	case listMoved:
		s.status = ""
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

func (s *KeyBrowser) toggleReveal() {
	s.revealed = !s.revealed
	s.render(true)
}

// yank copies the selected key's value to the system clipboard. The value
// itself never appears in the status line.
func (s *KeyBrowser) yank() {
	key, ok := s.list.current()
	if !ok {
		return
	}
	value, _ := s.rec.Get(key)

	if err := clipboard.WriteAll(value); err != nil {
		s.errMsg = fmt.Sprintf("clipboard copy failed: %v", err)
	} else {
		s.status = fmt.Sprintf("copied value of %s", key)
		s.errMsg = ""
	}
	s.render(true)
}

// edit hands the currently visible subset to the external editor and merges
// the result back. Writable backends persist immediately; the rest mark the
// record dirty until an explicit upload.
func (s *KeyBrowser) edit() {
	p, err := s.app.Providers.Get(s.kind)
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}

	subset := s.rec.Subset(s.list.visible())
	if subset.Len() == 0 {
		s.status = "nothing to edit"
		s.render(true)
		return
	}

	edited, ok, err := s.app.Editor.Edit(subset, p.Syntax())
	if err != nil {
		s.errMsg = fmt.Sprintf("edit failed: %v", err)
		s.render(true)
		return
	}
	if !ok {
		s.status = "edit cancelled"
		s.errMsg = ""
		s.render(true)
		return
	}

	s.rec.Merge(edited)
	s.list.setItems(s.rec.Keys())
	s.errMsg = ""

	if p.Writable() {
		msg, err := p.Store(context.Background(), s.name, s.rec, s.app.OptionsFor(s.kind))
		if err != nil {
			s.errMsg = fmt.Sprintf("save failed: %v", err)
		} else {
			s.status = msg
		}
	} else {
		s.dirty = true
		s.status = "edited locally; press ^u to upload"
	}
	s.render(true)
}

// upload pushes the whole record back to a backend that needs an explicit
// write step.
func (s *KeyBrowser) upload() {
	p, err := s.app.Providers.Get(s.kind)
	if err != nil {
		s.errMsg = err.Error()
		s.render(true)
		return
	}
	if p.Writable() {
		s.status = "changes are saved on edit for this storage type"
		s.render(true)
		return
	}

	msg, err := p.Store(context.Background(), s.name, s.rec, s.app.OptionsFor(s.kind))
	if err != nil {
		s.errMsg = fmt.Sprintf("upload failed: %v", err)
	} else {
		s.dirty = false
		s.status = msg
		s.errMsg = ""
	}
	s.render(true)
}

func (s *KeyBrowser) View() (string, error) {
	crumbs := s.crumbs
	if s.dirty {
		crumbs = append(append([]string(nil), crumbs...), dirtyStyle.Render("modified"))
	}

	out := header(crumbs)
	out += searchLine(s.list.query, s.list.searching)
	out += s.renderRows()
	out += statusLines(s.status, s.errMsg)
	out += footer("type to filter", "^v reveal", "^y copy", "^e edit", "^u upload", "^o copy-to-file", "esc back")
	return out, nil
}

func (s *KeyBrowser) renderRows() string {
	vis := s.list.visible()
	if len(vis) == 0 {
		return dimStyle.Render("  (no matches)") + "\r\n"
	}

	var b strings.Builder
	for i, key := range vis {
		value := maskedValue
		if s.revealed {
			v, _ := s.rec.Get(key)
			value = truncate(v, maxValueWidth)
		}

		line := fuzzy.Highlight(s.list.query, key) + " = " + value
		if i == s.list.selected {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\r\n")
	}
	return b.String()
}
