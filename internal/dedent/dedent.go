// Package dedent normalizes raw comment blocks into documentation text.
//
// Comment markers are stripped first (StripMarkers), then the common margin is
// removed (Lines, Text). The line holding the opening marker is treated as
// sitting at column zero and does not take part in the margin computation, so a
// block such as
//
//	/* Adds two numbers.
//
//	   Example:
//	     add 1 2
//	*/
//
// becomes "Adds two numbers.\n\nExample:\n  add 1 2". When the marker sits
// alone on its line every content line takes part, so
//
//	/*
//	   Example:
//	     add 1 2
//	*/
//
// becomes "Example:\n  add 1 2". Deeper lines keep their extra indentation.
// Normalizing text already produced by Text is a no-op.
package dedent

import (
	"strings"

	"github.com/dshills/nixdoc/pkg/types"
)

// Result carries normalized text and whether the margin could be removed
type Result struct {
	Text string

	// Fallback is set when the lines mix tabs and spaces in their margin.
	// Text is then returned without any column removal.
	Fallback bool
}

// Block strips the markers of a comment block and normalizes it
func Block(c types.Comment) string {
	return Comment(c).Text
}

// Comment strips the markers of a comment block and normalizes the remaining
// lines. A first line left blank by marker removal is dropped and the margin is
// then taken over all content lines.
func Comment(c types.Comment) Result {
	stripped := StripMarkers(c)
	if len(stripped) > 0 && strings.TrimSpace(stripped[0]) == "" {
		return normalize(stripped, false)
	}
	return normalize(stripped, true)
}

// Text normalizes documentation text that has no comment markers
func Text(s string) string {
	return Lines(strings.Split(s, "\n")).Text
}

// StripMarkers removes comment markers from each raw line. Line comments lose
// one leading '#' per line; block comments lose the opening marker on the
// first line and the closing marker on the last line, independently.
func StripMarkers(c types.Comment) []string {
	out := make([]string, len(c.Lines))
	copy(out, c.Lines)

	switch c.Style {
	case types.CommentLine:
		for i, line := range out {
			trimmed := strings.TrimLeft(line, " \t")
			out[i] = strings.TrimPrefix(trimmed, "#")
		}
	case types.CommentBlock:
		if len(out) == 0 {
			return out
		}
		first := strings.TrimLeft(out[0], " \t")
		switch {
		case strings.HasPrefix(first, "/**") && !strings.HasPrefix(first, "/**/"):
			first = first[3:]
		case strings.HasPrefix(first, "/*"):
			first = first[2:]
		}
		out[0] = first

		last := len(out) - 1
		out[last] = strings.TrimSuffix(strings.TrimRight(out[last], " \t\r"), "*/")
	}

	return out
}

// Lines normalizes marker-free lines: trailing whitespace and leading blank
// lines are dropped, the first line is left-trimmed, the smallest margin of the
// remaining non-blank lines is removed from each of them, and blank lines at
// either end are trimmed.
func Lines(lines []string) Result {
	return normalize(lines, true)
}

// normalize removes the common margin. With skipFirst unset the first content
// line takes part in the margin like any other line.
func normalize(lines []string, skipFirst bool) Result {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, strings.TrimRight(line, " \t\r"))
	}

	for len(cleaned) > 0 && cleaned[0] == "" {
		cleaned = cleaned[1:]
	}
	if len(cleaned) == 0 {
		return Result{}
	}

	from := 0
	if skipFirst {
		cleaned[0] = strings.TrimLeft(cleaned[0], " \t")
		from = 1
	}

	margin, ok := commonMargin(cleaned[from:])
	if ok {
		for i := from; i < len(cleaned); i++ {
			if cleaned[i] != "" {
				cleaned[i] = cleaned[i][len(margin):]
			}
		}
	}

	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}

	return Result{
		Text:     strings.Join(cleaned, "\n"),
		Fallback: !ok,
	}
}

// commonMargin returns the shortest leading whitespace among non-blank lines.
// It reports false when that margin is not a prefix of every other line's
// leading whitespace, which happens when tabs and spaces are mixed.
func commonMargin(lines []string) (string, bool) {
	margin := ""
	found := false
	for _, line := range lines {
		if line == "" {
			continue
		}
		lead := leadingWhitespace(line)
		if !found || len(lead) < len(margin) {
			margin = lead
			found = true
		}
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, margin) {
			return "", false
		}
	}

	return margin, true
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
