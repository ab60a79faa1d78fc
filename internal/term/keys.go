// Package term implements the interactive terminal engine: raw-mode and
// alternate-screen ownership, escape-sequence decoding, key dispatch, frame
// rendering and the navigable screen stack.
package term

import "fmt"

// KeyKind identifies a decoded key token.
type KeyKind int

const (
	// KeyChar is a printable character (Rune is set).
	KeyChar KeyKind = iota
	// KeyEnter is carriage return or line feed.
	KeyEnter
	// KeyBackspace is DEL (0x7F) or BS (0x08).
	KeyBackspace
	// KeyEscape is a standalone escape press, resolved after the
	// disambiguation timeout.
	KeyEscape
	// KeyUp is the up arrow.
	KeyUp
	// KeyDown is the down arrow.
	KeyDown
	// KeyLeft is the left arrow.
	KeyLeft
	// KeyRight is the right arrow.
	KeyRight
	// KeyCtrlC is the interrupt key.
	KeyCtrlC
	// KeyCtrlV toggles value visibility in browsing screens.
	KeyCtrlV
	// KeyCtrlE opens the external editor in browsing screens.
	KeyCtrlE
	// KeyCtrlY copies the selected value to the clipboard.
	KeyCtrlY
	// KeyCtrlU uploads pending edits in browsing screens.
	KeyCtrlU
	// KeyCtrlO starts the copy-to-file flow.
	KeyCtrlO
	// KeyPageUp is the page-up key.
	KeyPageUp
	// KeyPageDown is the page-down key.
	KeyPageDown
	// KeySlash starts search mode in list screens.
	KeySlash
	// KeyOther carries raw bytes that decoded to no known token.
	KeyOther
)

// Key is one decoded, unambiguous input event. Produced once per logical
// keypress and never mutated afterwards.
type Key struct {
	Kind KeyKind
	Rune rune
	Raw  []byte
}

// String renders the key for logs and diagnostics.
func (k Key) String() string {
	switch k.Kind {
	case KeyChar:
		return string(k.Rune)
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	case KeyEscape:
		return "esc"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyCtrlC:
		return "ctrl+c"
	case KeyCtrlV:
		return "ctrl+v"
	case KeyCtrlE:
		return "ctrl+e"
	case KeyCtrlY:
		return "ctrl+y"
	case KeyCtrlU:
		return "ctrl+u"
	case KeyCtrlO:
		return "ctrl+o"
	case KeyPageUp:
		return "pgup"
	case KeyPageDown:
		return "pgdown"
	case KeySlash:
		return "/"
	default:
		return fmt.Sprintf("other(% x)", k.Raw)
	}
}

// IsNavigation reports whether the key moves the selection.
func (k Key) IsNavigation() bool {
	return k.Kind == KeyUp || k.Kind == KeyDown
}

// IsPaging reports whether the key moves the selection a page at a time.
func (k Key) IsPaging() bool {
	return k.Kind == KeyPageUp || k.Kind == KeyPageDown
}

// IsEditing reports whether the key edits text input.
func (k Key) IsEditing() bool {
	return k.Kind == KeyBackspace
}

// IsPrintable reports whether the key inserts a visible character. Slash is
// printable: screens that are not in search mode treat it as the search
// trigger instead.
func (k Key) IsPrintable() bool {
	if k.Kind == KeySlash {
		return true
	}
	return k.Kind == KeyChar && k.Rune >= ' '
}
