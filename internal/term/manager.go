package term

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// Terminal control sequences.
const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
)

// ErrNotInteractive is returned by Run when the process is not attached to
// an interactive terminal.
var ErrNotInteractive = errors.New("standard input is not an interactive terminal")

type sessionState int

const (
	stateInactive sessionState = iota
	stateActive
	stateSuspended
)

// Manager owns the terminal session: raw-mode state, the alternate screen
// buffer, the input byte stream and the stack of active screens. There is
// exactly one Manager per process, constructed in main and passed by
// reference; it is the only shared mutable resource in the engine, and every
// mutation path (stack ops, suspend/resume, cleanup) is idempotent because
// exit handlers may race a user-initiated teardown.
type Manager struct {
	mu sync.Mutex

	state    sessionState
	disabled bool

	in  *os.File
	out io.Writer
	fd  int

	savedState *term.State
	reader     cancelreader.CancelReader

	decoder  *Decoder
	renderer *Renderer
	keys     chan Key
	quit     chan struct{}

	stack   []Screen
	current Screen

	global *EventManager

	done     chan struct{}
	doneOnce sync.Once
	sigOnce  sync.Once

	log      *slog.Logger
	exitFunc func(int)

	// Terminal primitives, swappable in tests so suspend/resume failure
	// paths can be exercised without a real tty.
	isTerminal  func(fd uintptr) bool
	makeRaw     func(fd int) (*term.State, error)
	restoreTerm func(fd int, st *term.State) error
	newReader   func(f *os.File) (cancelreader.CancelReader, error)
}

// NewManager creates the terminal manager. Screens render to out; input is
// read from in once Initialize succeeds.
func NewManager(in *os.File, out io.Writer, log *slog.Logger) *Manager {
	m := &Manager{
		in:       in,
		out:      out,
		global:   NewEventManager(),
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
		keys:     make(chan Key, 64),
		log:      log,
		exitFunc: os.Exit,

		isTerminal:  isatty.IsTerminal,
		makeRaw:     term.MakeRaw,
		restoreTerm: term.Restore,
		newReader: func(f *os.File) (cancelreader.CancelReader, error) {
			return cancelreader.NewReader(f)
		},
	}
	m.renderer = NewRenderer(out)
	m.decoder = NewDecoder(m.enqueueKey)

	// Force-quit is checked before any per-screen handler and tears the
	// whole session down regardless of which screen is active.
	m.global.AddHandler(func(k Key) bool {
		if k.Kind != KeyCtrlC {
			return false
		}
		m.log.Debug("force quit")
		m.Cleanup()
		m.exitFunc(130)
		return true
	})
	return m
}

// Renderer exposes the render scheduler to screens.
func (m *Manager) Renderer() *Renderer {
	return m.renderer
}

// AddGlobalHandler registers a process-wide key handler checked before the
// active screen's chain.
func (m *Manager) AddGlobalHandler(fn Handler) int {
	return m.global.AddHandler(fn)
}

// Interactive reports whether the engine is attached to a real terminal.
func (m *Manager) Interactive() bool {
	return !m.disabled
}

// Initialize transitions Inactive→Active: raw mode, alternate screen,
// input stream, signal handlers. When stdin is not a terminal the engine is
// disabled rather than erroring; Run then refuses with ErrNotInteractive.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != stateInactive {
		return nil
	}

	if !m.isTerminal(m.in.Fd()) {
		m.disabled = true
		m.log.Debug("stdin is not a tty; interactive mode disabled")
		return nil
	}

	m.fd = int(m.in.Fd())
	saved, err := m.makeRaw(m.fd)
	if err != nil {
		m.disabled = true
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	m.savedState = saved

	fmt.Fprint(m.out, enterAltScreen+hideCursor)

	if err := m.startReaderLocked(); err != nil {
		// Roll back so the shell is never left raw.
		_ = m.restoreTerm(m.fd, m.savedState)
		fmt.Fprint(m.out, showCursor+exitAltScreen)
		m.disabled = true
		return err
	}

	go m.processLoop()

	m.sigOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-ch
			m.Cleanup()
			m.exitFunc(1)
		}()
	})

	m.state = stateActive
	m.log.Debug("terminal session active")
	return nil
}

// startReaderLocked attaches a cancellable reader to stdin and starts the
// read loop feeding the decoder.
func (m *Manager) startReaderLocked() error {
	reader, err := m.newReader(m.in)
	if err != nil {
		return fmt.Errorf("failed to attach input reader: %w", err)
	}
	m.reader = reader

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := reader.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				m.decoder.Feed(chunk)
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

func (m *Manager) enqueueKey(k Key) {
	select {
	case m.keys <- k:
	default:
		// Input faster than dispatch; dropping beats blocking the decoder
		// timer goroutine.
		m.log.Warn("key dropped", "key", k.String())
	}
}

// processLoop is the single consumer of decoded keys for the whole session.
func (m *Manager) processLoop() {
	for {
		select {
		case k := <-m.keys:
			m.DispatchKey(k)
		case <-m.quit:
			return
		}
	}
}

// DispatchKey routes one decoded key: global handlers first, then the
// active screen's chain.
func (m *Manager) DispatchKey(k Key) bool {
	if m.global.Process(k) {
		return true
	}

	m.mu.Lock()
	screen := m.current
	m.mu.Unlock()

	if screen == nil {
		return false
	}
	return screen.HandleKey(k)
}

// SetRootScreen tears down every existing screen, then installs screen as
// the new root. Used to restart the whole navigation flow.
func (m *Manager) SetRootScreen(screen Screen) {
	m.mu.Lock()
	m.teardownStackLocked()
	m.current = screen
	m.mu.Unlock()

	m.log.Debug("root screen set", "screen", screen.ID())
	screen.Activate()
}

// PushScreen suspends the current screen and activates a child on top of it.
// The parent keeps its state untouched until the child pops.
func (m *Manager) PushScreen(screen Screen) {
	m.mu.Lock()
	if m.current != nil {
		m.current.Deactivate()
		m.stack = append(m.stack, m.current)
	}
	m.current = screen
	depth := len(m.stack)
	m.mu.Unlock()

	m.log.Debug("screen pushed", "screen", screen.ID(), "depth", depth)
	screen.Activate()
}

// PopScreen removes the active screen and reactivates its caller. A
// re-render is mandatory on reactivation since the terminal content was
// overwritten by the child. Popping the last screen ends the session.
func (m *Manager) PopScreen() {
	m.mu.Lock()
	old := m.current
	if old != nil {
		old.Deactivate()
		old.Cleanup()
	}

	if len(m.stack) == 0 {
		m.current = nil
		m.mu.Unlock()
		m.log.Debug("screen stack empty; session complete")
		m.finish()
		return
	}

	next := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.current = next
	m.mu.Unlock()

	if old != nil {
		m.log.Debug("screen popped", "screen", old.ID())
	}
	next.Activate()
}

// ReplaceScreen swaps the active screen without growing the stack.
func (m *Manager) ReplaceScreen(screen Screen) {
	m.mu.Lock()
	if m.current != nil {
		m.current.Deactivate()
		m.current.Cleanup()
	}
	m.current = screen
	m.mu.Unlock()

	screen.Activate()
}

// Current returns the active screen, or nil.
func (m *Manager) Current() Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Depth returns the navigation depth (stack length plus the active screen).
func (m *Manager) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return len(m.stack)
	}
	return len(m.stack) + 1
}

// Run installs root and blocks until the stack empties or a global quit
// tears the session down. Initialize must have been called.
func (m *Manager) Run(root Screen) error {
	if m.disabled {
		return ErrNotInteractive
	}
	m.SetRootScreen(root)
	<-m.done
	m.Cleanup()
	return nil
}

// Suspend transitions Active→Suspended: the input stream is detached, the
// alternate screen exited and cooked mode restored, so an external process
// (the editor) can own the terminal. Safe to call when already suspended.
func (m *Manager) Suspend() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled || m.state != stateActive {
		return nil
	}

	if m.reader != nil {
		m.reader.Cancel()
		m.reader = nil
	}
	m.renderer.Cancel()

	fmt.Fprint(m.out, showCursor+exitAltScreen)
	if err := m.restoreTerm(m.fd, m.savedState); err != nil {
		// Raw mode could not be undone, so a suspended state would be a
		// lie: re-enter the session fully so Cleanup can still tear it
		// down later.
		fmt.Fprint(m.out, enterAltScreen+hideCursor)
		if rerr := m.startReaderLocked(); rerr != nil {
			m.log.Error("failed to restart input reader", "error", rerr)
		}
		return fmt.Errorf("failed to restore terminal mode: %w", err)
	}

	m.state = stateSuspended
	m.log.Debug("terminal suspended")
	return nil
}

// Resume transitions Suspended→Active, reversing Suspend step for step, and
// forces an immediate re-render: the frame behind the editor is dirty.
func (m *Manager) Resume() error {
	m.mu.Lock()

	if m.disabled || m.state != stateSuspended {
		m.mu.Unlock()
		return nil
	}

	saved, err := m.makeRaw(m.fd)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to re-enter raw mode: %w", err)
	}
	m.savedState = saved

	fmt.Fprint(m.out, enterAltScreen+hideCursor)

	if err := m.startReaderLocked(); err != nil {
		// Undo raw mode and the alternate screen: the session stays
		// suspended, and the shell stays usable. Resume can be retried.
		fmt.Fprint(m.out, showCursor+exitAltScreen)
		if rerr := m.restoreTerm(m.fd, m.savedState); rerr != nil {
			m.log.Error("failed to restore terminal", "error", rerr)
		}
		m.mu.Unlock()
		return err
	}

	m.state = stateActive
	screen := m.current
	m.mu.Unlock()

	m.log.Debug("terminal resumed")
	if screen != nil {
		m.renderer.Render(screen.View, true)
	}
	return nil
}

// Cleanup transitions to Inactive from any state, restoring the user's
// shell. It is registered against interrupt/termination signals and called
// on every exit path, so it must tolerate repeated and concurrent calls.
func (m *Manager) Cleanup() {
	m.mu.Lock()

	if m.state == stateActive {
		if m.reader != nil {
			m.reader.Cancel()
			m.reader = nil
		}
		m.renderer.Cancel()
		fmt.Fprint(m.out, showCursor+exitAltScreen)
		if err := m.restoreTerm(m.fd, m.savedState); err != nil {
			m.log.Error("failed to restore terminal", "error", err)
		}
	}

	if m.state != stateInactive {
		select {
		case <-m.quit:
		default:
			close(m.quit)
		}
	}

	m.teardownStackLocked()
	m.state = stateInactive
	m.mu.Unlock()

	m.finish()
}

// teardownStackLocked deactivates and cleans up every screen exactly once.
func (m *Manager) teardownStackLocked() {
	if m.current != nil {
		m.current.Deactivate()
		m.current.Cleanup()
		m.current = nil
	}
	for i := len(m.stack) - 1; i >= 0; i-- {
		m.stack[i].Cleanup()
	}
	m.stack = nil
}

func (m *Manager) finish() {
	m.doneOnce.Do(func() { close(m.done) })
}

// SetExitFunc overrides process termination. Used by tests.
func (m *Manager) SetExitFunc(fn func(int)) {
	m.exitFunc = fn
}
