package types

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrMissingFileInfo = errors.New("file info is required")
	ErrEmptyContent    = errors.New("content cannot be empty")

	// ErrRootUnreadable is returned when the search root cannot be listed.
	// It is fatal to the whole search.
	ErrRootUnreadable = errors.New("root directory is not readable")
)

// FileReadError reports a file that could not be read. Recoverable.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// EncodingError reports a file whose content is not valid UTF-8. Recoverable.
type EncodingError struct {
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("file %s is not valid UTF-8", e.Path)
}

// DirectoryAccessError reports a directory that could not be listed during
// the walk. The subtree is skipped. Recoverable.
type DirectoryAccessError struct {
	Path string
	Err  error
}

func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("failed to read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error { return e.Err }

// PatternError reports a search pattern that failed to compile. Fatal.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }
