package editor

import (
	"os"
	"runtime"
	"testing"

	"secretpeek/internal/logging"
	"secretpeek/internal/secret"
)

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
}

// stubSession records suspend/resume ordering.
type stubSession struct {
	calls []string
}

func (s *stubSession) Suspend() error {
	s.calls = append(s.calls, "suspend")
	return nil
}

func (s *stubSession) Resume() error {
	s.calls = append(s.calls, "resume")
	return nil
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh as the editor")
	}
}

func testRecord() *secret.Record {
	rec := secret.NewRecord()
	rec.Set("FOO", "1")
	rec.Set("BAR", "2")
	return rec
}

func TestBridge_CleanEditAppliesChanges(t *testing.T) {
	requireShell(t)
	session := &stubSession{}

	// An "editor" that rewrites the file in place.
	script := t.TempDir() + "/edit.sh"
	writeScript(t, script, "#!/bin/sh\nprintf 'FOO=1\\nBAR=20\\n' > \"$1\"\n")

	b := NewBridge(session, "sh "+script, logging.Discard())

	edited, ok, err := b.Edit(testRecord(), secret.SyntaxEnv)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if !ok {
		t.Fatal("edit should not be cancelled")
	}
	if v, _ := edited.Get("BAR"); v != "20" {
		t.Errorf("BAR = %q, want 20", v)
	}

	if len(session.calls) != 2 || session.calls[0] != "suspend" || session.calls[1] != "resume" {
		t.Errorf("session calls = %v, want [suspend resume]", session.calls)
	}
}

func TestBridge_NonZeroExitIsCancelled(t *testing.T) {
	requireShell(t)
	session := &stubSession{}
	b := NewBridge(session, "false", logging.Discard())

	edited, ok, err := b.Edit(testRecord(), secret.SyntaxEnv)
	if err != nil {
		t.Fatalf("cancelled edit must not error: %v", err)
	}
	if ok || edited != nil {
		t.Error("non-zero exit should report a cancelled edit")
	}

	// Resume still happens.
	if len(session.calls) != 2 || session.calls[1] != "resume" {
		t.Errorf("session calls = %v", session.calls)
	}
}

func TestBridge_UnparseableResultIsCancelled(t *testing.T) {
	requireShell(t)
	session := &stubSession{}

	script := t.TempDir() + "/garbage.sh"
	writeScript(t, script, "#!/bin/sh\nprintf 'not a valid env line' > \"$1\"\n")

	b := NewBridge(session, "sh "+script, logging.Discard())

	edited, ok, err := b.Edit(testRecord(), secret.SyntaxEnv)
	if err != nil {
		t.Fatalf("unparseable edit must not error: %v", err)
	}
	if ok || edited != nil {
		t.Error("unparseable result should report a cancelled edit")
	}
}

func TestBridge_SpawnFailureIsError(t *testing.T) {
	session := &stubSession{}
	b := NewBridge(session, "/definitely/not/an/editor", logging.Discard())

	_, _, err := b.Edit(testRecord(), secret.SyntaxJSON)
	if err == nil {
		t.Fatal("spawn failure should surface as an error")
	}

	// Suspend happened, and resume must still pair with it.
	if len(session.calls) != 2 || session.calls[1] != "resume" {
		t.Errorf("session calls = %v", session.calls)
	}
}

func TestBridge_JSONRoundTripThroughTempFile(t *testing.T) {
	requireShell(t)
	session := &stubSession{}

	// "true" leaves the file untouched: a clean no-op edit.
	b := NewBridge(session, "true", logging.Discard())

	rec := secret.NewRecord()
	rec.Set("NAME", "svc")
	rec.Set("PORT", "8080")
	rec.Set("DEBUG", "false")

	edited, ok, err := b.Edit(rec, secret.SyntaxJSON)
	if err != nil || !ok {
		t.Fatalf("no-op edit failed: ok=%v err=%v", ok, err)
	}
	if !rec.Equal(edited) {
		t.Error("record did not survive the temp-file round trip")
	}
}
