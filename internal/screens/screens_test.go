package screens

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"testing"

	"secretpeek/internal/config"
	"secretpeek/internal/logging"
	"secretpeek/internal/provider"
	"secretpeek/internal/secret"
	"secretpeek/internal/term"
)

// stubProvider is an in-memory backend for driving screens in tests.
type stubProvider struct {
	kind     provider.Kind
	names    []string
	records  map[string]*secret.Record
	writable bool
	syntax   secret.Syntax

	stored    map[string]*secret.Record
	lastFetch provider.Options
}

func (s *stubProvider) Kind() provider.Kind { return s.kind }

func (s *stubProvider) List(_ context.Context, _ provider.Options) ([]provider.Item, error) {
	items := make([]provider.Item, len(s.names))
	for i, n := range s.names {
		items[i] = provider.Item{Name: n}
	}
	return items, nil
}

func (s *stubProvider) Fetch(_ context.Context, name string, opts provider.Options) (*secret.Record, error) {
	s.lastFetch = opts
	rec, ok := s.records[name]
	if !ok {
		return nil, &provider.Error{Kind: provider.ErrNotFound, Name: name, Err: fmt.Errorf("no such secret")}
	}
	return rec.Clone(), nil
}

func (s *stubProvider) Store(_ context.Context, name string, rec *secret.Record, _ provider.Options) (string, error) {
	if s.stored == nil {
		s.stored = make(map[string]*secret.Record)
	}
	s.stored[name] = rec.Clone()
	return fmt.Sprintf("stored %s", name), nil
}

func (s *stubProvider) Writable() bool        { return s.writable }
func (s *stubProvider) Syntax() secret.Syntax { return s.syntax }

// newTestApp wires an app around an inactive terminal manager rendering into
// a buffer. The stack machinery works without a tty.
func newTestApp(t *testing.T, providers ...provider.Provider) (*App, *term.Manager) {
	t.Helper()
	m := term.NewManager(nil, &bytes.Buffer{}, logging.Discard())
	m.SetExitFunc(func(int) { t.Fatal("unexpected exit") })

	app := &App{
		Term:      m,
		Providers: provider.NewRegistry(providers...),
		Config:    &config.Config{},
		Log:       logging.Discard(),
	}
	return app, m
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh as the editor")
	}
}

var (
	keyEnter = term.Key{Kind: term.KeyEnter}
	keyEsc   = term.Key{Kind: term.KeyEscape}
	keyDown  = term.Key{Kind: term.KeyDown}
	keySlash = term.Key{Kind: term.KeySlash, Rune: '/'}
	keyCtrlV = term.Key{Kind: term.KeyCtrlV}
	keyCtrlE = term.Key{Kind: term.KeyCtrlE}
	keyCtrlU = term.Key{Kind: term.KeyCtrlU}
)

func keyChar(r rune) term.Key {
	if r == '/' {
		return keySlash
	}
	return term.Key{Kind: term.KeyChar, Rune: r}
}

// typeText dispatches s rune by rune, the way the decoder would emit it.
func typeText(m *term.Manager, s string) {
	for _, r := range s {
		m.DispatchKey(keyChar(r))
	}
}

func testRecord(pairs ...string) *secret.Record {
	rec := secret.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Set(pairs[i], pairs[i+1])
	}
	return rec
}
