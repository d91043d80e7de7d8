// Package walker enumerates Nix source files under a directory tree.
//
// Files are produced lazily through an iter.Seq2, in lexicographic order at
// every directory level, so two walks of an unchanged tree yield the same
// sequence. Directories reached through symbolic links are entered at most
// once per resolved real path, which makes symlink cycles terminate.
package walker

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/nixdoc/pkg/types"
)

// Options controls which files a Walker yields
type Options struct {
	Extension      string   // File suffix to match (default: ".nix")
	ExcludeDirs    []string // Directory names never entered
	FollowSymlinks bool     // Descend into symlinked directories and yield symlinked files
}

// DefaultOptions returns the options used by the CLI when nothing is configured
func DefaultOptions() Options {
	return Options{
		Extension:      ".nix",
		ExcludeDirs:    []string{".git"},
		FollowSymlinks: true,
	}
}

// Walker yields matching files below a root directory
type Walker struct {
	opts Options
}

// New creates a Walker. An empty Extension falls back to ".nix".
func New(opts Options) *Walker {
	if opts.Extension == "" {
		opts.Extension = ".nix"
	}
	return &Walker{opts: opts}
}

// CheckRoot verifies that the root directory can be listed. The returned
// error wraps types.ErrRootUnreadable.
func (w *Walker) CheckRoot(root string) error {
	if _, err := os.ReadDir(root); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrRootUnreadable, root, err)
	}
	return nil
}

// Files returns a sequence of matching file paths below root. Unreadable
// subdirectories are reported as ("", *types.DirectoryAccessError) and
// their subtree is skipped; iteration then continues. Every call to the
// returned sequence starts a fresh walk.
func (w *Walker) Files(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		visited := make(map[string]struct{})
		w.walkDir(root, visited, yield)
	}
}

// walkDir reports false once the consumer stops iterating
func (w *Walker) walkDir(dir string, visited map[string]struct{}, yield func(string, error) bool) bool {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return yield("", &types.DirectoryAccessError{Path: dir, Err: err})
	}
	if abs, err := filepath.Abs(real); err == nil {
		real = abs
	}
	if _, seen := visited[real]; seen {
		return true
	}
	visited[real] = struct{}{}

	// os.ReadDir returns entries sorted by name
	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield("", &types.DirectoryAccessError{Path: dir, Err: err})
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		if mode&fs.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				// Dangling link
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if w.excluded(entry.Name()) {
				continue
			}
			if !w.walkDir(path, visited, yield) {
				return false
			}
		case mode.IsRegular():
			if !strings.HasSuffix(entry.Name(), w.opts.Extension) {
				continue
			}
			if !yield(path, nil) {
				return false
			}
		}
	}

	return true
}

func (w *Walker) excluded(name string) bool {
	return slices.Contains(w.opts.ExcludeDirs, name)
}
