package screens

import (
	"strings"

	"secretpeek/internal/fuzzy"
	"secretpeek/internal/term"
)

// listAction tells the owning screen what a key did to the list.
type listAction int

const (
	// listIgnored means the list did not handle the key.
	listIgnored listAction = iota
	// listHandled means the key was consumed without visible change.
	listHandled
	// listMoved means the selection moved; redraw immediately.
	listMoved
	// listFiltered means the query changed; redraw debounced.
	listFiltered
	// listChosen means Enter was pressed on the current item.
	listChosen
	// listBack means Escape was pressed with nothing left to clear.
	listBack
)

// fuzzyList is the selection state shared by every list screen: the full item
// set, the filter query, the cursor and search mode. Any printable key
// extends the query; slash additionally enters search mode, where Enter
// commits the filter and Escape abandons it.
type fuzzyList struct {
	items     []string
	query     string
	searching bool
	selected  int
	pageSize  int
}

func newFuzzyList(items []string) fuzzyList {
	return fuzzyList{items: items, pageSize: 10}
}

// setItems replaces the item set, keeping the cursor in range.
func (l *fuzzyList) setItems(items []string) {
	l.items = items
	l.clamp()
}

// visible returns the items matching the current query, in input order.
func (l *fuzzyList) visible() []string {
	return fuzzy.Filter(l.query, l.items)
}

// current returns the item under the cursor.
func (l *fuzzyList) current() (string, bool) {
	vis := l.visible()
	if len(vis) == 0 || l.selected >= len(vis) {
		return "", false
	}
	return vis[l.selected], true
}

func (l *fuzzyList) clamp() {
	n := len(l.visible())
	if n == 0 {
		l.selected = 0
		return
	}
	if l.selected >= n {
		l.selected = n - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

func (l *fuzzyList) move(delta int) {
	l.selected += delta
	l.clamp()
}

// handleKey applies one key to the list state and reports what happened.
func (l *fuzzyList) handleKey(k term.Key) listAction {
	switch k.Kind {
	case term.KeyUp:
		l.move(-1)
		return listMoved
	case term.KeyDown:
		l.move(1)
		return listMoved
	case term.KeyPageUp:
		l.move(-l.pageSize)
		return listMoved
	case term.KeyPageDown:
		l.move(l.pageSize)
		return listMoved

	case term.KeyEnter:
		if l.searching {
			// Commit the filter, keep the query.
			l.searching = false
			return listMoved
		}
		if _, ok := l.current(); ok {
			return listChosen
		}
		return listHandled

	case term.KeyEscape:
		// Escape peels back one layer of list state at a time; only a bare
		// list escapes the screen itself.
		if l.searching {
			l.searching = false
			return listMoved
		}
		if l.query != "" {
			l.query = ""
			l.selected = 0
			return listMoved
		}
		return listBack

	case term.KeyBackspace:
		if l.query == "" {
			return listHandled
		}
		runes := []rune(l.query)
		l.query = string(runes[:len(runes)-1])
		l.clamp()
		return listFiltered

	case term.KeySlash:
		if !l.searching {
			l.searching = true
			return listMoved
		}
	}

	if k.IsPrintable() {
		l.query += string(k.Rune)
		l.selected = 0
		return listFiltered
	}
	return listIgnored
}

// renderRows draws the visible items with the cursor marker and substring
// highlighting. The empty-result line keeps the frame from collapsing.
func (l *fuzzyList) renderRows() string {
	vis := l.visible()
	if len(vis) == 0 {
		return dimStyle.Render("  (no matches)") + "\r\n"
	}

	var b strings.Builder
	for i, item := range vis {
		line := fuzzy.Highlight(l.query, item)
		if i == l.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\r\n")
	}
	return b.String()
}
