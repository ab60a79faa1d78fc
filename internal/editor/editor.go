// Package editor hands a secret subset to the user's external editor and
// reads the result back. The terminal session is suspended for the whole
// time the editor owns the terminal; cancelled or failed edits leave the
// record untouched.
package editor

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"secretpeek/internal/secret"
)

// Session is the part of the terminal manager the bridge needs: cooked mode
// must be restored strictly before the child process is spawned, and the
// session resumed only after it exits.
type Session interface {
	Suspend() error
	Resume() error
}

// Bridge runs edit round-trips through an external editor.
type Bridge struct {
	term    Session
	command string
	log     *slog.Logger
}

// NewBridge creates an editor bridge using command (e.g. "vim").
func NewBridge(term Session, command string, log *slog.Logger) *Bridge {
	return &Bridge{term: term, command: command, log: log}
}

// Edit writes rec to a temp file in the given syntax, opens the editor on
// it and reparses the file on exit. It returns (edited, true, nil) on a
// clean edit; (nil, false, nil) when the user cancelled — non-zero exit or
// unparseable content; and a non-nil error only when the editor could not
// be spawned or the session could not be suspended.
func (b *Bridge) Edit(rec *secret.Record, syntax secret.Syntax) (*secret.Record, bool, error) {
	path, err := b.writeTempFile(rec, syntax)
	if err != nil {
		return nil, false, err
	}
	defer os.Remove(path)

	if err := b.term.Suspend(); err != nil {
		return nil, false, fmt.Errorf("failed to suspend terminal: %w", err)
	}
	// The session must come back no matter how the edit went.
	defer func() {
		if rerr := b.term.Resume(); rerr != nil {
			b.log.Error("failed to resume terminal", "error", rerr)
		}
	}()

	edited, ok, err := b.runEditor(path, syntax)
	if err != nil {
		return nil, false, err
	}
	return edited, ok, nil
}

func (b *Bridge) writeTempFile(rec *secret.Record, syntax secret.Syntax) (string, error) {
	pattern := "secretpeek-*.json"
	if syntax == secret.SyntaxEnv {
		pattern = "secretpeek-*.env"
	}

	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	// Secret material: owner-only before anything is written.
	if err := f.Chmod(0600); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to restrict temp file permissions: %w", err)
	}

	if _, err := f.Write(secret.Render(rec, syntax)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}

// runEditor spawns the editor with the temp file as its sole argument and
// blocks until it exits.
func (b *Bridge) runEditor(path string, syntax secret.Syntax) (*secret.Record, bool, error) {
	parts := strings.Fields(b.command)
	if len(parts) == 0 {
		return nil, false, fmt.Errorf("no editor configured")
	}
	args := append(parts[1:], path)

	cmd := exec.Command(parts[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, false, fmt.Errorf("failed to start editor %q: %w", b.command, err)
	}

	if err := cmd.Wait(); err != nil {
		// Non-zero exit means the user aborted the edit.
		b.log.Debug("editor exited non-zero; edit cancelled", "error", err)
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read edited file: %w", err)
	}

	edited, err := secret.Parse(data, syntax)
	if err != nil {
		// Unparseable content is treated as a cancelled edit, not a fatal
		// error; the user is returned to the browser unchanged.
		b.log.Debug("edited file failed to parse; edit cancelled", "error", err)
		return nil, false, nil
	}
	return edited, true, nil
}
