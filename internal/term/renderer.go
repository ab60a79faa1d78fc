package term

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// DebounceInterval is roughly one animation frame. Rapid input such as typed
// search characters coalesces into a single redraw per interval.
const DebounceInterval = 16 * time.Millisecond

// clearAndHome repositions the cursor at the top-left and clears the screen,
// so each frame is a full flicker-free redraw with no partial diffing.
const clearAndHome = "\x1b[H\x1b[2J"

// FrameFunc produces the full frame text for the current screen state.
type FrameFunc func() (string, error)

// Renderer owns render scheduling for the active screen. Navigation and
// toggles render immediately; typed input renders debounced. At most one
// debounce timer is outstanding at a time.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	timer    *time.Timer
	interval time.Duration
}

// NewRenderer creates a renderer writing frames to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, interval: DebounceInterval}
}

// Render schedules or performs a redraw. Immediate renders cancel any
// pending debounced render first, so the user never sees a stale frame after
// instant-feedback actions.
func (r *Renderer) Render(frame FrameFunc, immediate bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if immediate {
		r.cancelLocked()
		r.drawLocked(frame)
		return
	}

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.interval, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.timer = nil
		r.drawLocked(frame)
	})
}

// Cancel drops any pending debounced render.
func (r *Renderer) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

func (r *Renderer) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// drawLocked writes one full frame. A failing or panicking frame function
// must not corrupt the terminal session, so it is reduced to a one-line
// diagnostic instead of propagating.
func (r *Renderer) drawLocked(frame FrameFunc) {
	text, err := safeFrame(frame)
	if err != nil {
		text = fmt.Sprintf("render error: %v", err)
	}
	fmt.Fprint(r.out, clearAndHome+text)
}

func safeFrame(frame FrameFunc) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return frame()
}

// SetInterval overrides the debounce interval. Used by tests.
func (r *Renderer) SetInterval(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interval = d
}
