// Package screens implements the browser's screen types: storage type
// selection, item selection, the key browser, the copy wizard and the text
// input prompt. Screens own isolated state and a key-handler chain; all
// terminal access goes through the term.Manager they are handed.
package screens

import (
	"log/slog"

	"secretpeek/internal/config"
	"secretpeek/internal/editor"
	"secretpeek/internal/history"
	"secretpeek/internal/provider"
	"secretpeek/internal/term"
)

// App bundles the dependencies every screen needs. One instance is built in
// main and shared by reference; screens never reach for globals.
type App struct {
	Term      *term.Manager
	Providers *provider.Registry
	History   *history.Store // may be nil when the database is unavailable
	Config    *config.Config
	Editor    *editor.Bridge
	Log       *slog.Logger
}

// OptionsFor resolves the selector options for a storage kind from config.
func (a *App) OptionsFor(kind provider.Kind) provider.Options {
	opts := provider.Options{
		Region:    a.Config.Region,
		Namespace: a.Config.Namespace,
	}
	switch kind {
	case provider.KindJSON:
		opts.Path, _ = config.ExpandPath(a.Config.JSONDir)
	case provider.KindEnv:
		opts.Path, _ = config.ExpandPath(a.Config.EnvDir)
	}
	return opts
}

// recordAccess logs a secret access, best effort.
func (a *App) recordAccess(kind provider.Kind, name string) {
	if a.History == nil {
		return
	}
	if err := a.History.Record(string(kind), name); err != nil {
		a.Log.Warn("failed to record access", "error", err)
	}
}

// recentNames returns the recently accessed names for a kind, best effort.
func (a *App) recentNames(kind provider.Kind) []string {
	if a.History == nil {
		return nil
	}
	names, err := a.History.Recent(string(kind), 50)
	if err != nil {
		a.Log.Warn("failed to load history", "error", err)
		return nil
	}
	return names
}

// Run starts the interactive browser and blocks until the user leaves it.
func Run(app *App) error {
	return app.Term.Run(NewTypeSelect(app))
}
