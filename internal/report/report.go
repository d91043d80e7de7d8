// Package report renders documentation entries as plain text blocks.
//
// Each entry is printed as its documentation indented by three spaces, the
// binding signature and a "# file:line" locator:
//
//	   Adds two numbers.
//	add = a: b: ...
//	# lib/trivial.nix:2
//
// Consecutive entries are separated by a line of 45 '─' characters. Render
// produces one block without a separator; the MCP get_doc tool and the doc
// subcommand use it so their output is byte-identical to a search result.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dshills/nixdoc/pkg/types"
)

// Indent is prepended to every non-blank documentation line
const Indent = "   "

// Separator is the line written between two entries
var Separator = strings.Repeat("─", 45)

// ColorMode selects when the Formatter emits terminal styling
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Style only when the writer is a color terminal
	ColorAlways ColorMode = "always" // Style regardless of the writer
	ColorNever  ColorMode = "never"  // Plain text
)

// ParseColorMode validates a color mode string
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(s)); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q: want auto, always or never", s)
	}
}

// Render formats a single entry, newline terminated
func Render(e types.DocEntry) string {
	return render(e, identity, identity)
}

// Write renders entries in order with a separator line between them
func Write(w io.Writer, entries []types.DocEntry) error {
	return write(w, entries, Render, Separator)
}

// Formatter renders entries with optional styling of the signature and
// locator lines. Documentation text is never styled.
type Formatter struct {
	plain     bool
	signature lipgloss.Style
	location  lipgloss.Style
	separator lipgloss.Style
}

// NewFormatter creates a Formatter whose styling is bound to w's terminal
// capabilities according to mode
func NewFormatter(w io.Writer, mode ColorMode) *Formatter {
	renderer := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		if renderer.ColorProfile() == termenv.Ascii {
			renderer.SetColorProfile(termenv.ANSI256)
		}
	case ColorNever:
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &Formatter{
		plain: renderer.ColorProfile() == termenv.Ascii,
		signature: renderer.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		location: renderer.NewStyle().
			Foreground(lipgloss.Color("242")),
		separator: renderer.NewStyle().
			Foreground(lipgloss.Color("238")),
	}
}

// Styled reports whether the Formatter emits escape sequences
func (f *Formatter) Styled() bool {
	return !f.plain
}

// Render formats a single entry
func (f *Formatter) Render(e types.DocEntry) string {
	if f.plain {
		return Render(e)
	}
	return render(e,
		func(s string) string { return f.signature.Render(s) },
		func(s string) string { return f.location.Render(s) })
}

// Write renders entries in order with a separator line between them
func (f *Formatter) Write(w io.Writer, entries []types.DocEntry) error {
	if f.plain {
		return Write(w, entries)
	}
	return write(w, entries, f.Render, f.separator.Render(Separator))
}

func identity(s string) string { return s }

func render(e types.DocEntry, signature, location func(string) string) string {
	var sb strings.Builder
	for _, line := range strings.Split(e.Text, "\n") {
		if line != "" {
			sb.WriteString(Indent)
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(signature(e.Signature))
	sb.WriteByte('\n')
	sb.WriteString(location(fmt.Sprintf("# %s:%d", e.Position.File, e.Position.Line)))
	sb.WriteByte('\n')
	return sb.String()
}

func write(w io.Writer, entries []types.DocEntry, render func(types.DocEntry) string, separator string) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, separator+"\n"); err != nil {
				return fmt.Errorf("failed to write separator: %w", err)
			}
		}
		if _, err := io.WriteString(w, render(e)); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", e.Name, err)
		}
	}
	return nil
}
