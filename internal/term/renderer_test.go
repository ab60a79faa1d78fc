package term

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer: debounced draws happen on a timer
// goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func frameOf(s string) FrameFunc {
	return func() (string, error) { return s, nil }
}

func TestRenderer_ImmediateDrawsNow(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out)

	r.Render(frameOf("hello"), true)

	got := out.String()
	if !strings.HasPrefix(got, clearAndHome) {
		t.Errorf("frame missing clear+home prefix: %q", got)
	}
	if !strings.HasSuffix(got, "hello") {
		t.Errorf("frame content missing: %q", got)
	}
}

func TestRenderer_DebounceCoalesces(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out)
	r.SetInterval(20 * time.Millisecond)

	r.Render(frameOf("one"), false)
	r.Render(frameOf("two"), false)
	r.Render(frameOf("three"), false)

	if out.String() != "" {
		t.Fatalf("debounced render drew before interval: %q", out.String())
	}

	time.Sleep(50 * time.Millisecond)

	got := out.String()
	if strings.Count(got, clearAndHome) != 1 {
		t.Errorf("expected exactly one draw, got %q", got)
	}
	if !strings.Contains(got, "three") || strings.Contains(got, "one") {
		t.Errorf("last frame should win: %q", got)
	}
}

func TestRenderer_ImmediateCancelsPending(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out)
	r.SetInterval(20 * time.Millisecond)

	r.Render(frameOf("debounced"), false)
	r.Render(frameOf("instant"), true)

	time.Sleep(50 * time.Millisecond)

	got := out.String()
	if strings.Count(got, clearAndHome) != 1 {
		t.Errorf("pending debounce should have been cancelled: %q", got)
	}
	if !strings.Contains(got, "instant") {
		t.Errorf("immediate frame missing: %q", got)
	}
}

func TestRenderer_FrameErrorIsOneLine(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out)

	r.Render(func() (string, error) {
		return "", errors.New("boom")
	}, true)

	if !strings.Contains(out.String(), "render error: boom") {
		t.Errorf("error not surfaced: %q", out.String())
	}
}

func TestRenderer_FramePanicIsCaught(t *testing.T) {
	out := &syncBuffer{}
	r := NewRenderer(out)

	r.Render(func() (string, error) {
		panic("kaboom")
	}, true)

	got := out.String()
	if !strings.Contains(got, "render error") || !strings.Contains(got, "kaboom") {
		t.Errorf("panic not surfaced as diagnostic: %q", got)
	}
}
