package screens

import (
	"reflect"
	"testing"

	"secretpeek/internal/term"
)

func TestFuzzyList_TypeToFilter(t *testing.T) {
	l := newFuzzyList([]string{"alpha", "beta", "gamma"})

	l.handleKey(keyChar('b'))
	l.handleKey(keyChar('e'))

	if got := l.visible(); !reflect.DeepEqual(got, []string{"beta"}) {
		t.Errorf("visible = %v, want [beta]", got)
	}
}

func TestFuzzyList_EscapePeelsBack(t *testing.T) {
	l := newFuzzyList([]string{"alpha", "beta"})

	l.handleKey(keySlash)
	if !l.searching {
		t.Fatal("slash should enter search mode")
	}
	l.handleKey(keyChar('b'))

	// First escape leaves search mode, query intact.
	if got := l.handleKey(keyEsc); got != listMoved || l.searching || l.query != "b" {
		t.Fatalf("after first escape: action=%v searching=%v query=%q", got, l.searching, l.query)
	}
	// Second escape clears the query.
	if got := l.handleKey(keyEsc); got != listMoved || l.query != "" {
		t.Fatalf("after second escape: action=%v query=%q", got, l.query)
	}
	// Third escape backs out of the screen.
	if got := l.handleKey(keyEsc); got != listBack {
		t.Fatalf("after third escape: action=%v, want listBack", got)
	}
}

func TestFuzzyList_CursorStaysInRange(t *testing.T) {
	l := newFuzzyList([]string{"a", "b", "c"})

	l.handleKey(term.Key{Kind: term.KeyPageDown})
	if cur, _ := l.current(); cur != "c" {
		t.Errorf("page down past end: cursor on %q, want c", cur)
	}
	l.handleKey(term.Key{Kind: term.KeyPageUp})
	if cur, _ := l.current(); cur != "a" {
		t.Errorf("page up past start: cursor on %q, want a", cur)
	}

	// Narrowing the filter pulls the cursor back in range.
	l.handleKey(term.Key{Kind: term.KeyDown})
	l.handleKey(term.Key{Kind: term.KeyDown})
	l.handleKey(keyChar('a'))
	if cur, ok := l.current(); !ok || cur != "a" {
		t.Errorf("cursor after narrowing = %q ok=%v, want a", cur, ok)
	}
}

func TestFuzzyList_EnterCommitsSearch(t *testing.T) {
	l := newFuzzyList([]string{"alpha", "beta"})

	l.handleKey(keySlash)
	l.handleKey(keyChar('a'))
	if got := l.handleKey(keyEnter); got != listMoved || l.searching {
		t.Fatalf("enter in search mode: action=%v searching=%v", got, l.searching)
	}
	// Next enter chooses the item.
	if got := l.handleKey(keyEnter); got != listChosen {
		t.Fatalf("enter after commit: action=%v, want listChosen", got)
	}
}
