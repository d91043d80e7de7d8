package types

import (
	"errors"
	"fmt"
)

// CommentStyle represents the syntactic form of a comment
type CommentStyle string

const (
	CommentLine  CommentStyle = "line"  // # ...
	CommentBlock CommentStyle = "block" // /* ... */
)

// Position represents a location in source code
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based, in bytes
}

// String formats the position as file:line:column
func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Comment is a contiguous run of line comments or a single block comment
// directly preceding a binding.
type Comment struct {
	Style   CommentStyle
	Start   Position
	EndLine int

	// Lines holds the raw source lines, comment markers included
	Lines []string
}

// Binding represents a name bound to a lambda expression
type Binding struct {
	Name      string
	Signature string   // Source text from the name through the last parameter introducer
	Position  Position // First lambda introducer
	Doc       *Comment // Nil when no adjacent comment exists
}

// HasDoc returns true if a documentation comment is attached
func (b *Binding) HasDoc() bool {
	return b.Doc != nil && len(b.Doc.Lines) > 0
}

// Validate checks if the binding is valid
func (b *Binding) Validate() error {
	if b.Name == "" {
		return errors.New("binding name is required")
	}

	if b.Position.Line <= 0 || b.Position.Column <= 0 {
		return errors.New("invalid position: line and column must be positive")
	}

	if b.Doc != nil {
		if b.Doc.Style != CommentLine && b.Doc.Style != CommentBlock {
			return errors.New("invalid comment style")
		}
		if b.Doc.EndLine > b.Position.Line {
			return errors.New("documentation must precede the binding")
		}
	}

	return nil
}

// DocEntry is the searchable, renderable unit: a documented binding with its
// normalized documentation text.
type DocEntry struct {
	Name      string
	Text      string
	Signature string
	Position  Position
}

// Validate checks if the entry is valid
func (e *DocEntry) Validate() error {
	if e.Name == "" {
		return errors.New("entry name is required")
	}

	if e.Text == "" {
		return ErrEmptyContent
	}

	if e.Position.File == "" {
		return ErrMissingFileInfo
	}

	if e.Position.Line <= 0 || e.Position.Column <= 0 {
		return errors.New("invalid position: line and column must be positive")
	}

	return nil
}
