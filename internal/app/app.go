package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/specialistvlad/symlib/internal/manifest"
	"github.com/specialistvlad/symlib/internal/symtab"
)

// App owns one symbol table per library declared under the configured
// manifest path.
type App struct {
	logger *slog.Logger
	libs   map[string]*symtab.Lib
}

// Open loads every manifest under cfg.ManifestPath, checks it against
// bindings and builds the symbol tables. Logs are written to outW.
func Open(ctx context.Context, outW io.Writer, cfg *Config, bindings *manifest.Bindings) (*App, error) {
	logger := newLogger(cfg, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	libs, err := manifest.LoadFiles(ctx, cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	if len(libs) == 0 {
		return nil, fmt.Errorf("no libraries declared under %s", cfg.ManifestPath)
	}
	logger.Debug("Manifests loaded.", "libraries", len(libs))

	if err := manifest.Validate(ctx, libs, bindings); err != nil {
		return nil, err
	}

	app := &App{logger: logger, libs: make(map[string]*symtab.Lib, len(libs))}
	for _, lib := range libs {
		table, err := manifest.Build(lib, bindings)
		if err != nil {
			return nil, err
		}
		l, err := symtab.New(table, lib.Name, symtab.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("library '%s': %w", lib.Name, err)
		}
		app.libs[lib.Name] = l
		logger.Debug("Library ready.", "lib", lib.Name, "symbols", len(table.Globals), "origin", lib.Origin)
	}

	logger.Info("Libraries opened.", "count", len(app.libs))
	return app, nil
}

// Lib returns the symbol table of the named library.
func (a *App) Lib(name string) (*symtab.Lib, bool) {
	l, ok := a.libs[name]
	return l, ok
}

// Libraries returns the names of all libraries in sorted order.
func (a *App) Libraries() []string {
	names := make([]string, 0, len(a.libs))
	for name := range a.libs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close closes every library. Symbols resolved before Close stay usable.
func (a *App) Close() {
	for _, name := range a.Libraries() {
		a.libs[name].Close()
	}
	a.logger.Debug("All libraries closed.")
}
