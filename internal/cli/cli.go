// Package cli implements the non-interactive subcommands: listing secrets,
// printing one, writing a single key and dumping the access history. Output
// goes to a plain writer, suitable for pipes and scripts.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"secretpeek/internal/history"
	"secretpeek/internal/provider"
	"secretpeek/internal/secret"
)

// Env bundles what the subcommands operate on.
type Env struct {
	Providers *provider.Registry
	History   *history.Store // may be nil
	Log       *slog.Logger
	Out       io.Writer
}

// GetOptions shapes the output of Get.
type GetOptions struct {
	// Query is an optional JMESPath expression applied to the JSON form.
	Query string
	// Output selects the rendering: "json" (default) or "env".
	Output string
}

// List prints the secret names available under kind, one per line.
func (e *Env) List(ctx context.Context, kind provider.Kind, opts provider.Options) error {
	p, err := e.Providers.Get(kind)
	if err != nil {
		return err
	}

	items, err := p.List(ctx, opts)
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Fprintln(e.Out, it.Name)
	}
	return nil
}

// Get fetches one secret and prints it.
func (e *Env) Get(ctx context.Context, kind provider.Kind, name string, opts provider.Options, get GetOptions) error {
	p, err := e.Providers.Get(kind)
	if err != nil {
		return err
	}

	rec, err := p.Fetch(ctx, name, opts)
	if err != nil {
		return err
	}
	e.recordAccess(kind, name)

	if get.Query != "" {
		result, err := ApplyQuery(secret.RenderJSON(rec), get.Query)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.Out, result)
		return nil
	}

	data, err := renderAs(rec, get.Output)
	if err != nil {
		return err
	}
	e.Out.Write(data)
	return nil
}

// Set writes KEY=VALUE pairs into a secret, creating the secret when the
// backend reports it missing.
func (e *Env) Set(ctx context.Context, kind provider.Kind, name string, pairs []string, opts provider.Options) error {
	p, err := e.Providers.Get(kind)
	if err != nil {
		return err
	}

	rec, err := p.Fetch(ctx, name, opts)
	if err != nil {
		if provider.KindOf(err) != provider.ErrNotFound {
			return err
		}
		rec = secret.NewRecord()
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid pair %q (want KEY=VALUE)", pair)
		}
		rec.Set(key, value)
	}

	msg, err := p.Store(ctx, name, rec, opts)
	if err != nil {
		return err
	}
	e.recordAccess(kind, name)
	fmt.Fprintln(e.Out, msg)
	return nil
}

// PrintHistory prints the newest access-log entries.
func (e *Env) PrintHistory(limit int) error {
	if e.History == nil {
		return fmt.Errorf("history database is not available")
	}

	entries, err := e.History.List(limit)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Fprintf(e.Out, "%s\t%s\t%s\n", entry.AccessedAt.Format("2006-01-02 15:04:05"), entry.Kind, entry.Name)
	}
	return nil
}

func (e *Env) recordAccess(kind provider.Kind, name string) {
	if e.History == nil {
		return
	}
	if err := e.History.Record(string(kind), name); err != nil {
		e.Log.Warn("failed to record access", "error", err)
	}
}

func renderAs(rec *secret.Record, output string) ([]byte, error) {
	switch output {
	case "", "json":
		return secret.RenderJSON(rec), nil
	case "env":
		return secret.RenderEnv(rec), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want json or env)", output)
	}
}
