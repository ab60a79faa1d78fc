package term

import (
	"sync"
	"time"
	"unicode/utf8"
)

// EscapeTimeout is how long the decoder waits for continuation bytes after a
// lone ESC before resolving it as a standalone Escape press. Terminals send
// arrow keys as 3-byte sequences that may be split across reads by
// scheduling jitter, so a bare ESC is ambiguous until this window closes.
const EscapeTimeout = 100 * time.Millisecond

const esc = 0x1b

// escSequences maps complete escape sequences to their tokens.
var escSequences = map[string]KeyKind{
	"\x1b[A":  KeyUp,
	"\x1b[B":  KeyDown,
	"\x1b[C":  KeyRight,
	"\x1b[D":  KeyLeft,
	"\x1b[5~": KeyPageUp,
	"\x1b[6~": KeyPageDown,
}

// maxSequenceLen is the longest recognized escape sequence.
const maxSequenceLen = 4

// Decoder turns raw byte chunks into Key tokens. A chunk may contain several
// logical keys, or a partial multi-byte sequence completed by a later chunk.
// Resolved tokens are passed to the emit callback; the pending-escape timer
// fires on its own goroutine, so emit must be safe to call from there (the
// manager funnels everything into a single channel).
type Decoder struct {
	mu      sync.Mutex
	pending []byte
	timer   *time.Timer
	timeout time.Duration
	emit    func(Key)
}

// NewDecoder creates a decoder delivering tokens to emit.
func NewDecoder(emit func(Key)) *Decoder {
	return &Decoder{timeout: EscapeTimeout, emit: emit}
}

// Feed consumes one raw chunk from the input stream.
func (d *Decoder) Feed(chunk []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(chunk) == 0 {
		return
	}

	if len(d.pending) > 0 {
		d.feedPending(chunk)
		return
	}

	if chunk[0] == esc {
		if len(chunk) == 1 {
			// Ambiguous: either a standalone Escape or the start of an
			// arrow sequence whose tail has not arrived yet.
			d.pending = []byte{esc}
			d.armTimer()
			return
		}
		if kind, ok := escSequences[string(chunk)]; ok {
			d.emit(Key{Kind: kind, Raw: append([]byte(nil), chunk...)})
			return
		}
		// Unknown multi-byte escape content passes through untouched.
		d.emit(Key{Kind: KeyOther, Raw: append([]byte(nil), chunk...)})
		return
	}

	d.emitLiterals(chunk)
}

// feedPending appends continuation bytes to the buffered escape and resolves
// it as soon as it matches, overflows, or can no longer match.
func (d *Decoder) feedPending(chunk []byte) {
	d.pending = append(d.pending, chunk...)

	if kind, ok := escSequences[string(d.pending)]; ok {
		d.stopTimer()
		raw := d.pending
		d.pending = nil
		d.emit(Key{Kind: kind, Raw: raw})
		return
	}

	if len(d.pending) > maxSequenceLen {
		d.flushPendingLocked()
		return
	}

	// Still a strict prefix of some known sequence? Keep waiting.
	if d.pendingIsPrefix() {
		return
	}
	d.flushPendingLocked()
}

func (d *Decoder) pendingIsPrefix() bool {
	p := string(d.pending)
	for seq := range escSequences {
		if len(seq) > len(p) && seq[:len(p)] == p {
			return true
		}
	}
	return false
}

// flushPendingLocked gives up on the buffered escape. The leading ESC comes
// out as an Escape token, not a raw literal: when the continuation bytes turn
// out to be ordinary typed input, that ESC was a real Escape press followed
// by fast typing, and demoting it to an opaque token would swallow the
// user's back-navigation. The remaining bytes are emitted as literals.
func (d *Decoder) flushPendingLocked() {
	d.stopTimer()
	buffered := d.pending
	d.pending = nil

	d.emit(Key{Kind: KeyEscape, Raw: buffered[:1]})
	if len(buffered) > 1 {
		d.emitLiterals(buffered[1:])
	}
}

// armTimer (re)starts the disambiguation timer for a lone buffered ESC.
func (d *Decoder) armTimer() {
	d.stopTimer()
	d.timer = time.AfterFunc(d.timeout, d.timeoutFired)
}

func (d *Decoder) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// timeoutFired resolves a still-pending ESC as a standalone Escape press.
func (d *Decoder) timeoutFired() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}
	d.timer = nil
	d.flushPendingLocked()
}

// emitLiterals splits a chunk of non-escape bytes into per-keypress tokens.
func (d *Decoder) emitLiterals(chunk []byte) {
	for len(chunk) > 0 {
		b := chunk[0]

		switch b {
		case '\r', '\n':
			d.emit(Key{Kind: KeyEnter, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x7f, 0x08:
			d.emit(Key{Kind: KeyBackspace, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x03:
			d.emit(Key{Kind: KeyCtrlC, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x16:
			d.emit(Key{Kind: KeyCtrlV, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x05:
			d.emit(Key{Kind: KeyCtrlE, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x19:
			d.emit(Key{Kind: KeyCtrlY, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x15:
			d.emit(Key{Kind: KeyCtrlU, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case 0x0f:
			d.emit(Key{Kind: KeyCtrlO, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		case '/':
			d.emit(Key{Kind: KeySlash, Rune: '/', Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		}

		if b < ' ' {
			d.emit(Key{Kind: KeyOther, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		}

		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size == 1 {
			d.emit(Key{Kind: KeyOther, Raw: chunk[:1]})
			chunk = chunk[1:]
			continue
		}
		d.emit(Key{Kind: KeyChar, Rune: r, Raw: append([]byte(nil), chunk[:size]...)})
		chunk = chunk[size:]
	}
}

// SetTimeout overrides the disambiguation window. Used by tests.
func (d *Decoder) SetTimeout(timeout time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeout = timeout
}
