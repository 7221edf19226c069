package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/specialistvlad/symlib/internal/fsutil"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifest file at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) ([]*Library, error)
}

// loaders maps file extensions to the loader for their format.
var loaders = map[string]Loader{
	".hcl":  NewHCLLoader(),
	".yaml": NewYAMLLoader(),
	".yml":  NewYAMLLoader(),
}

// LoaderFor returns the loader for a manifest file, chosen by extension.
func LoaderFor(path string) (Loader, bool) {
	l, ok := loaders[filepath.Ext(path)]
	return l, ok
}

// LoadFiles loads every manifest found under paths. A path may be a file or
// a directory. A library declared in more than one place is an error.
func LoadFiles(ctx context.Context, paths ...string) ([]*Library, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loading started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl", ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	var libs []*Library
	seen := make(map[string]*Library)
	for _, file := range files {
		loader, ok := LoaderFor(file)
		if !ok {
			continue
		}
		fileCtx, fileLogger := ctxlog.With(ctx, "path", file)
		loaded, err := loader.Load(fileCtx, file)
		if err != nil {
			return nil, err
		}
		for _, lib := range loaded {
			if prev, dup := seen[lib.Name]; dup {
				return nil, fmt.Errorf("library '%s' declared twice: %s and %s", lib.Name, prev.Origin, lib.Origin)
			}
			seen[lib.Name] = lib
			libs = append(libs, lib)
			fileLogger.Debug("Library declared.", "lib", lib.Name, "origin", lib.Origin)
		}
	}

	logger.Debug("Manifest loading complete.", "files", len(files), "libraries", len(libs))
	return libs, nil
}
