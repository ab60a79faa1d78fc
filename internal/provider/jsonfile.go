package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"secretpeek/internal/secret"
)

// JSONFile serves flat JSON secret files from a directory.
type JSONFile struct{}

// NewJSONFile returns the json file provider.
func NewJSONFile() *JSONFile {
	return &JSONFile{}
}

func (p *JSONFile) Kind() Kind            { return KindJSON }
func (p *JSONFile) Writable() bool        { return true }
func (p *JSONFile) Syntax() secret.Syntax { return secret.SyntaxJSON }

func (p *JSONFile) List(ctx context.Context, opts Options) ([]Item, error) {
	return listFiles(opts, ".json")
}

func (p *JSONFile) Fetch(ctx context.Context, name string, opts Options) (*secret.Record, error) {
	data, err := readFile(KindJSON, name, opts)
	if err != nil {
		return nil, err
	}

	rec, err := secret.ParseJSON(data)
	if err != nil {
		return nil, &Error{Kind: ErrMalformed, Name: name, Err: err}
	}
	return rec, nil
}

func (p *JSONFile) Store(ctx context.Context, name string, rec *secret.Record, opts Options) (string, error) {
	path, err := filePath(KindJSON, name, opts)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, secret.RenderJSON(rec), 0600); err != nil {
		return "", &Error{Kind: ErrTransport, Name: name, Err: err}
	}
	return fmt.Sprintf("wrote %d keys to %s", rec.Len(), path), nil
}

// filePath resolves a secret name inside the configured directory. The
// extension is optional in user input: "app" resolves to "app.env".
func filePath(kind Kind, name string, opts Options) (string, error) {
	if opts.Path == "" {
		return "", &Error{Kind: ErrConfig, Err: fmt.Errorf("no directory configured for %s files", kind)}
	}

	ext := "." + string(kind)
	if !strings.HasSuffix(name, ext) {
		name += ext
	}

	// Secret names must stay inside the configured directory.
	if strings.Contains(name, string(filepath.Separator)) || name == ext {
		return "", &Error{Kind: ErrValidation, Name: name, Err: fmt.Errorf("invalid file name")}
	}

	return filepath.Join(opts.Path, name), nil
}

func readFile(kind Kind, name string, opts Options) ([]byte, error) {
	path, err := filePath(kind, name, opts)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, &Error{Kind: ErrNotFound, Name: name, Err: err}
		case os.IsPermission(err):
			return nil, &Error{Kind: ErrAccessDenied, Name: name, Err: err}
		default:
			return nil, &Error{Kind: ErrTransport, Name: name, Err: err}
		}
	}
	return data, nil
}

func listFiles(opts Options, ext string) ([]Item, error) {
	if opts.Path == "" {
		return nil, &Error{Kind: ErrConfig, Err: fmt.Errorf("no directory configured for %s files", ext)}
	}

	entries, err := os.ReadDir(opts.Path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, nil
		case os.IsPermission(err):
			return nil, &Error{Kind: ErrAccessDenied, Err: err}
		default:
			return nil, &Error{Kind: ErrTransport, Err: err}
		}
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		item := Item{Name: entry.Name()}
		if info, err := entry.Info(); err == nil {
			item.ModifiedAt = info.ModTime()
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
