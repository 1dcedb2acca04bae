// Package workspace gathers the source files of a Scarb workspace for submission
// to a verifier.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pendergraft/contraverify/internal/verification"
)

// sourceExtensions are the file types a verifier needs to recompile a workspace.
var sourceExtensions = map[string]bool{
	".cairo": true,
	".toml":  true,
}

// Bundle maps a workspace-relative, slash-separated path to file content.
type Bundle map[string]string

// Collector reads the source bundle of a workspace.
type Collector interface {
	Collect(root string) (Bundle, error)
}

// FileCollector collects from the local filesystem.
type FileCollector struct{}

// Collect implements Collector.
func (FileCollector) Collect(root string) (Bundle, error) {
	return Collect(root)
}

// Collect walks root, following symbolic links, and returns the content of
// every Cairo source and TOML manifest below it. Any I/O failure aborts the
// whole collection. Symlink cycles are not detected.
func Collect(root string) (Bundle, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", verification.ErrWorkspacePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", verification.ErrWorkspacePath, root)
	}

	bundle := make(Bundle)
	if err := walk(root, root, bundle); err != nil {
		return nil, fmt.Errorf("%w: %w", verification.ErrWorkspacePath, err)
	}
	return bundle, nil
}

func walk(root, dir string, bundle Bundle) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// os.Stat resolves symlinks, so linked directories are descended too
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}

		if info.IsDir() {
			if err := walk(root, path, bundle); err != nil {
				return err
			}
			continue
		}

		// A dotfile such as ".cairo" has the extension as its whole name
		ext := filepath.Ext(entry.Name())
		if !info.Mode().IsRegular() || ext == entry.Name() || !sourceExtensions[ext] {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		bundle[filepath.ToSlash(rel)] = string(content)
	}

	return nil
}
