package term

import (
	"sync"
	"testing"
	"time"
)

// collector gathers emitted keys behind a mutex, since the decoder's timeout
// fires on its own goroutine.
type collector struct {
	mu   sync.Mutex
	keys []Key
}

func (c *collector) emit(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, k)
}

func (c *collector) snapshot() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

func TestDecoder_ArrowsInSingleChunk(t *testing.T) {
	tests := []struct {
		chunk string
		want  KeyKind
	}{
		{"\x1b[A", KeyUp},
		{"\x1b[B", KeyDown},
		{"\x1b[C", KeyRight},
		{"\x1b[D", KeyLeft},
		{"\x1b[5~", KeyPageUp},
		{"\x1b[6~", KeyPageDown},
	}

	for _, tt := range tests {
		c := &collector{}
		d := NewDecoder(c.emit)
		d.Feed([]byte(tt.chunk))

		keys := c.snapshot()
		if len(keys) != 1 {
			t.Fatalf("chunk %q: got %d keys, want 1: %v", tt.chunk, len(keys), keys)
		}
		if keys[0].Kind != tt.want {
			t.Errorf("chunk %q: kind = %v, want %v", tt.chunk, keys[0], tt.want)
		}
		if keys[0].Kind == KeyEscape {
			t.Errorf("chunk %q: emitted an Escape token", tt.chunk)
		}
	}
}

func TestDecoder_LoneEscapeResolvesAfterTimeout(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)
	d.SetTimeout(30 * time.Millisecond)

	d.Feed([]byte{0x1b})

	// Not before the timeout.
	if keys := c.snapshot(); len(keys) != 0 {
		t.Fatalf("token emitted before timeout: %v", keys)
	}

	time.Sleep(60 * time.Millisecond)

	keys := c.snapshot()
	if len(keys) != 1 || keys[0].Kind != KeyEscape {
		t.Fatalf("after timeout: got %v, want exactly one Escape", keys)
	}
}

func TestDecoder_SplitArrowWithinTimeout(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)
	d.SetTimeout(50 * time.Millisecond)

	d.Feed([]byte{0x1b})
	d.Feed([]byte("["))
	d.Feed([]byte("A"))

	// Give a mistakenly armed timer the chance to misfire.
	time.Sleep(80 * time.Millisecond)

	keys := c.snapshot()
	if len(keys) != 1 {
		t.Fatalf("got %d keys, want 1: %v", len(keys), keys)
	}
	if keys[0].Kind != KeyUp {
		t.Errorf("kind = %v, want up", keys[0])
	}
	for _, k := range keys {
		if k.Kind == KeyEscape {
			t.Error("split arrow produced an Escape token")
		}
	}
}

func TestDecoder_PendingOverflowFlushesLiterals(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)
	d.SetTimeout(time.Hour) // never fires

	d.Feed([]byte{0x1b})
	d.Feed([]byte("[9999"))

	keys := c.snapshot()
	if len(keys) == 0 {
		t.Fatal("overflowed buffer emitted nothing")
	}
	if keys[0].Kind != KeyEscape {
		t.Errorf("first flushed token = %v, want esc", keys[0])
	}
	// The continuation bytes come back as literal characters.
	var chars string
	for _, k := range keys[1:] {
		if k.Kind == KeyChar {
			chars += string(k.Rune)
		}
	}
	if chars != "[9999" {
		t.Errorf("flushed literals = %q, want [9999", chars)
	}
}

func TestDecoder_EscapeThenMismatchFlushes(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)
	d.SetTimeout(time.Hour)

	d.Feed([]byte{0x1b})
	d.Feed([]byte("x")) // cannot extend to any known sequence

	keys := c.snapshot()
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
	if keys[0].Kind != KeyEscape || keys[1].Kind != KeyChar || keys[1].Rune != 'x' {
		t.Errorf("got %v, want [esc x]", keys)
	}
}

func TestDecoder_UnknownMultiByteEscapePassthrough(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)

	d.Feed([]byte("\x1b[1;5C")) // ctrl+right, not in the recognized set

	keys := c.snapshot()
	if len(keys) != 1 || keys[0].Kind != KeyOther {
		t.Fatalf("got %v, want one Other token", keys)
	}
}

func TestDecoder_ControlBytes(t *testing.T) {
	tests := []struct {
		b    byte
		want KeyKind
	}{
		{'\r', KeyEnter},
		{'\n', KeyEnter},
		{0x7f, KeyBackspace},
		{0x08, KeyBackspace},
		{0x03, KeyCtrlC},
		{0x16, KeyCtrlV},
		{0x05, KeyCtrlE},
		{0x19, KeyCtrlY},
		{0x15, KeyCtrlU},
		{0x0f, KeyCtrlO},
		{'/', KeySlash},
		{0x01, KeyOther},
	}
	for _, tt := range tests {
		c := &collector{}
		d := NewDecoder(c.emit)
		d.Feed([]byte{tt.b})

		keys := c.snapshot()
		if len(keys) != 1 || keys[0].Kind != tt.want {
			t.Errorf("byte 0x%02x: got %v, want kind %v", tt.b, keys, tt.want)
		}
	}
}

func TestDecoder_MultipleKeysInOneChunk(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)

	d.Feed([]byte("ab\rc"))

	keys := c.snapshot()
	if len(keys) != 4 {
		t.Fatalf("got %d keys, want 4: %v", len(keys), keys)
	}
	if keys[0].Rune != 'a' || keys[1].Rune != 'b' || keys[2].Kind != KeyEnter || keys[3].Rune != 'c' {
		t.Errorf("unexpected sequence: %v", keys)
	}
}

func TestDecoder_UTF8Rune(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.emit)

	d.Feed([]byte("é"))

	keys := c.snapshot()
	if len(keys) != 1 || keys[0].Kind != KeyChar || keys[0].Rune != 'é' {
		t.Fatalf("got %v, want one char é", keys)
	}
}
