package screens

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"secretpeek/internal/provider"
	"secretpeek/internal/secret"
	"secretpeek/internal/term"
)

// wizardStep names one stop in the copy flow.
type wizardStep int

const (
	stepPreview wizardStep = iota
	stepType
	stepNamespace
	stepSecret
	stepFile
	stepConfirm
	stepCopying
	stepDone
	stepError
)

func (s wizardStep) String() string {
	switch s {
	case stepPreview:
		return "preview"
	case stepType:
		return "source"
	case stepNamespace:
		return "namespace"
	case stepSecret:
		return "secret"
	case stepFile:
		return "file"
	case stepConfirm:
		return "confirm"
	case stepCopying:
		return "copying"
	case stepDone:
		return "done"
	case stepError:
		return "error"
	default:
		return "unknown"
	}
}

// Wizard source choices.
const (
	sourceCurrent = "This secret"
	sourceCluster = "A cluster secret"
)

// CopyWizard exports a secret to a local file through a multi-step flow:
// preview, source type, namespace and secret name (cluster sources only),
// destination file, confirm. Escape walks backwards one step at a time
// through a per-instance back-step table; the write happens only on an
// explicit confirmation, and a failed write never re-runs without a fresh
// confirm.
type CopyWizard struct {
	base
	srcKind provider.Kind
	srcName string
	rec     *secret.Record

	step        wizardStep
	typeList    fuzzyList
	fromCluster bool
	namespace   string
	secretName  string
	file        string

	back      map[wizardStep]wizardStep
	confirmed bool
	copyErr   string
	result    string
	writes    int
}

// NewCopyWizard builds the wizard over the record open in the key browser.
func NewCopyWizard(app *App, kind provider.Kind, name string, rec *secret.Record) *CopyWizard {
	s := &CopyWizard{
		base:    newBase(app, "copy-wizard", []string{"secrets", kindLabel(kind), name, "copy"}),
		srcKind: kind,
		srcName: name,
		rec:     rec,
		step:    stepPreview,
		typeList: fuzzyList{
			items:    []string{sourceCurrent, sourceCluster},
			pageSize: 10,
		},
		namespace: app.Config.Namespace,
	}
	// Escape retreats exactly one step. The file entry points at the source
	// type until a cluster source inserts the namespace/secret detour.
	s.back = map[wizardStep]wizardStep{
		stepType:      stepPreview,
		stepNamespace: stepType,
		stepSecret:    stepNamespace,
		stepFile:      stepType,
		stepConfirm:   stepFile,
	}
	s.bind(s)
	s.events.AddHandler(s.onKey)
	return s
}

func (s *CopyWizard) onKey(k term.Key) bool {
	switch s.step {
	case stepPreview:
		switch k.Kind {
		case term.KeyEnter:
			s.enter(stepType)
		case term.KeyEscape:
			s.app.Term.PopScreen()
		default:
			return false
		}

	case stepType:
		switch s.typeList.handleKey(k) {
		case listChosen:
			choice, _ := s.typeList.current()
			s.chooseSource(choice)
		case listBack:
			s.goBack()
		case listMoved, listFiltered:
			s.render(true)
		case listHandled:
		default:
			return false
		}

	case stepConfirm:
		switch {
		case k.Kind == term.KeyEnter, k.Kind == term.KeyChar && k.Rune == 'y':
			s.runCopy()
		case k.Kind == term.KeyEscape, k.Kind == term.KeyChar && k.Rune == 'n':
			s.goBack()
		default:
			return false
		}

	case stepDone:
		switch k.Kind {
		case term.KeyEnter, term.KeyEscape:
			s.app.Term.PopScreen()
		default:
			return false
		}

	case stepError:
		switch k.Kind {
		case term.KeyEnter, term.KeyEscape:
			// Back to confirm, disarmed: the failed write must not repeat
			// until the user confirms again.
			s.enter(stepConfirm)
		default:
			return false
		}

	default:
		// Text-entry steps have a TextInput on top; nothing reaches here.
		return false
	}
	return true
}

func (s *CopyWizard) chooseSource(choice string) {
	s.fromCluster = choice == sourceCluster
	if s.fromCluster {
		s.back[stepFile] = stepSecret
		s.enter(stepNamespace)
	} else {
		s.back[stepFile] = stepType
		s.enter(stepFile)
	}
}

// goBack retreats one step via the back table; retreating from the first
// step closes the wizard.
func (s *CopyWizard) goBack() {
	prev, ok := s.back[s.step]
	if !ok {
		s.app.Term.PopScreen()
		return
	}
	s.enter(prev)
}

// enter transitions to a step and performs its entry action. Text-entry
// steps push a prompt screen; its resolution drives the next transition, and
// its cancellation retreats through the same back table.
func (s *CopyWizard) enter(step wizardStep) {
	s.step = step

	switch step {
	case stepNamespace:
		s.prompt("cluster namespace", s.namespace, secret.ValidateClusterKey, func(v string) {
			s.namespace = v
			s.enter(stepSecret)
		})
	case stepSecret:
		s.prompt("cluster secret name", s.secretName, secret.ValidateClusterKey, func(v string) {
			s.secretName = v
			s.enter(stepFile)
		})
	case stepFile:
		s.prompt("destination file (.json or .env)", s.file, validateDestination, func(v string) {
			s.file = v
			s.enter(stepConfirm)
		})
	case stepConfirm:
		s.confirmed = false
		s.render(true)
	default:
		s.render(true)
	}
}

func (s *CopyWizard) prompt(label, initial string, validate func(string) error, accept func(string)) {
	s.render(true)
	crumbs := append(append([]string(nil), s.crumbs...), s.step.String())
	s.app.Term.PushScreen(NewTextInput(s.app, crumbs, label, initial, validate, func(v string, ok bool) {
		if !ok {
			s.goBack()
			return
		}
		accept(v)
	}))
}

// runCopy resolves the source record and writes the destination file. Runs
// only from an explicit confirmation.
func (s *CopyWizard) runCopy() {
	s.confirmed = true
	s.step = stepCopying
	s.render(true)

	rec := s.rec
	if s.fromCluster {
		p, err := s.app.Providers.Get(provider.KindCluster)
		if err != nil {
			s.failCopy(err)
			return
		}
		opts := s.app.OptionsFor(provider.KindCluster)
		opts.Namespace = s.namespace
		rec, err = p.Fetch(context.Background(), s.secretName, opts)
		if err != nil {
			s.failCopy(err)
			return
		}
	}

	path, err := expandUserPath(s.file)
	if err != nil {
		s.failCopy(err)
		return
	}

	syntax := secret.SyntaxEnv
	if strings.EqualFold(filepath.Ext(path), ".json") {
		syntax = secret.SyntaxJSON
	}

	s.writes++
	if err := os.WriteFile(path, secret.Render(rec, syntax), 0600); err != nil {
		s.failCopy(fmt.Errorf("failed to write %s: %w", path, err))
		return
	}

	s.result = fmt.Sprintf("wrote %d keys to %s", rec.Len(), path)
	s.step = stepDone
	s.render(true)
}

func (s *CopyWizard) failCopy(err error) {
	s.copyErr = err.Error()
	s.step = stepError
	s.render(true)
}

func (s *CopyWizard) View() (string, error) {
	out := header(append(append([]string(nil), s.crumbs...), s.step.String()))

	switch s.step {
	case stepPreview:
		out += fmt.Sprintf("Copy a secret to a local file.\r\n\r\nCurrent secret %s holds %d keys:\r\n\r\n", s.srcName, s.rec.Len())
		for _, key := range s.rec.Keys() {
			out += "  " + key + "\r\n"
		}
		out += footer("enter continue", "esc close")

	case stepType:
		out += "What should be copied?\r\n\r\n"
		out += s.typeList.renderRows()
		out += footer("↑/↓ move", "enter choose", "esc back")

	case stepConfirm:
		out += "About to write:\r\n\r\n"
		if s.fromCluster {
			out += fmt.Sprintf("  source: cluster %s/%s\r\n", s.namespace, s.secretName)
		} else {
			out += fmt.Sprintf("  source: %s %s\r\n", kindLabel(s.srcKind), s.srcName)
		}
		out += fmt.Sprintf("  destination: %s\r\n", s.file)
		out += footer("y/enter write", "n/esc back")

	case stepDone:
		out += statusStyle.Render(s.result) + "\r\n"
		out += footer("enter close")

	case stepCopying:
		out += dimStyle.Render("copying…") + "\r\n"

	case stepError:
		out += errorStyle.Render("copy failed: "+s.copyErr) + "\r\n"
		out += footer("enter back to confirm")

	default:
		// A prompt screen is covering this step.
		out += dimStyle.Render("…") + "\r\n"
	}
	return out, nil
}

// validateDestination accepts paths with a recognized secret file extension.
func validateDestination(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("destination file is required")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".env":
		return nil
	}
	return fmt.Errorf("destination must end in .json or .env")
}

// expandUserPath resolves a leading ~/ against the home directory; other
// paths are taken as given, relative to the working directory.
func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
