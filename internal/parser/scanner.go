package parser

import (
	"github.com/dshills/nixdoc/pkg/types"
)

// EventKind identifies the kind of a scan event
type EventKind int

const (
	EventOther EventKind = iota
	EventComment
	EventIdentifier
	EventAssign
	EventLambdaIntro
)

func (k EventKind) String() string {
	switch k {
	case EventComment:
		return "comment"
	case EventIdentifier:
		return "identifier"
	case EventAssign:
		return "assign"
	case EventLambdaIntro:
		return "lambda"
	default:
		return "other"
	}
}

// Event is a single token seen by the scanner
type Event struct {
	Kind EventKind

	// Text is the attribute path for identifiers, the parameter name for
	// lambda introducers and the raw source for comments
	Text string

	Pos     types.Position
	EndLine int

	// Byte offsets [Offset, End) into the source
	Offset int
	End    int

	// Comments only
	Style   types.CommentStyle
	OwnLine bool // nothing but whitespace precedes the comment on its line
}

var keywords = map[string]bool{
	"if":      true,
	"then":    true,
	"else":    true,
	"assert":  true,
	"with":    true,
	"let":     true,
	"in":      true,
	"rec":     true,
	"inherit": true,
	"or":      true,
}

// Scan tokenizes a Nix source file in a single left-to-right pass. String
// contents and comment bodies are skipped, so lambda-like text inside them is
// never reported. Malformed fragments are recorded as parse errors and the
// scan continues.
func Scan(src []byte, file string) ([]Event, []types.ParseError) {
	s := &scanner{
		src:  src,
		file: file,
		line: 1,
		col:  1,
	}
	s.run()
	return s.events, s.errs
}

type scanner struct {
	src  []byte
	file string

	off  int
	line int
	col  int

	// set once a token has started on the current line
	lineHasToken bool

	events []Event
	errs   []types.ParseError
}

func (s *scanner) run() {
	for s.off < len(s.src) {
		c := s.src[s.off]

		switch {
		case isSpace(c):
			s.advance()
		case c == '#':
			s.lineComment()
		case c == '/' && s.peek(1) == '*':
			s.blockComment()
		case c == '"':
			s.skipWith(skipString, "unterminated string")
		case c == '\'' && s.peek(1) == '\'':
			s.skipWith(skipIndentedString, "unterminated indented string")
		case isIdentStart(c):
			s.identifier()
		case c == '=':
			if s.peek(1) == '=' {
				s.other(2)
			} else {
				s.emit(EventAssign, "=", s.off+1)
			}
		case (c == '!' || c == '<' || c == '>') && s.peek(1) == '=':
			s.other(2)
		case c == '<':
			if end, ok := scanSearchPath(s.src, s.off); ok {
				s.other(end - s.off)
			} else {
				s.other(1)
			}
		case c == '{':
			s.openBrace()
		case c == '.' && (s.peek(1) == '/' || (s.peek(1) == '.' && s.peek(2) == '/')):
			s.other(scanPath(s.src, s.off) - s.off)
		case c == '~' && s.peek(1) == '/':
			s.other(scanPath(s.src, s.off) - s.off)
		case c == '/' && isPathChar(s.peek(1)):
			s.other(scanPath(s.src, s.off) - s.off)
		case c == '/' && s.peek(1) == '/':
			s.other(2)
		case isDigit(c):
			end := s.off
			for end < len(s.src) && (isDigit(s.src[end]) || s.src[end] == '.' || s.src[end] == 'e' || s.src[end] == 'E') {
				end++
			}
			s.other(end - s.off)
		default:
			s.other(1)
		}
	}
}

// lineComment consumes '#' up to the end of the line
func (s *scanner) lineComment() {
	start := s.off
	end := start
	for end < len(s.src) && s.src[end] != '\n' {
		end++
	}
	s.comment(types.CommentLine, start, end)
}

// blockComment consumes '/*' through the matching '*/'. Block comments do not
// nest.
func (s *scanner) blockComment() {
	start := s.off
	end, ok := skipBlockComment(s.src, start)
	if !ok {
		s.addError("unterminated block comment")
		s.advanceTo(len(s.src))
		return
	}
	s.comment(types.CommentBlock, start, end)
}

func (s *scanner) comment(style types.CommentStyle, start, end int) {
	ev := Event{
		Kind:    EventComment,
		Text:    string(s.src[start:end]),
		Pos:     s.pos(),
		Offset:  start,
		End:     end,
		Style:   style,
		OwnLine: !s.lineHasToken,
	}
	s.advanceTo(end)
	s.lineHasToken = true
	ev.EndLine = s.line
	s.events = append(s.events, ev)
}

// identifier consumes an identifier or attribute path and decides whether it
// introduces a lambda parameter, is a URI, a relative path or a keyword.
func (s *scanner) identifier() {
	start := s.off
	end := scanIdent(s.src, start)
	name := string(s.src[start:end])

	// foo/bar.nix
	if end < len(s.src) && s.src[end] == '/' && isPathChar(s.peekAt(end+1)) {
		s.other(scanPath(s.src, start) - start)
		return
	}

	if end < len(s.src) && s.src[end] == ':' {
		// https://example.org, but not x: x
		if uriEnd := scanURI(s.src, start, end); uriEnd > end+1 {
			s.other(uriEnd - start)
			return
		}
	}

	if keywords[name] {
		s.other(end - start)
		return
	}

	next := skipSpace(s.src, end)
	switch s.peekAt(next) {
	case ':':
		s.emitLambda(name, next+1)
		return
	case '@':
		brace := skipSpace(s.src, next+1)
		if s.peekAt(brace) == '{' {
			if closeEnd, ok := matchFormals(s.src, brace); ok {
				colon := skipSpace(s.src, closeEnd)
				if s.peekAt(colon) == ':' {
					s.emitLambda(name, colon+1)
					return
				}
			}
		}
	}

	// Attribute path: a.b.c
	for end+1 < len(s.src) && s.src[end] == '.' && isIdentStart(s.src[end+1]) {
		end = scanIdent(s.src, end+1)
	}

	s.emit(EventIdentifier, string(s.src[start:end]), end)
}

// openBrace emits a lambda introducer for a formals set ({ a, b ? 1, ... }:
// or { ... }@args:) and a plain token otherwise.
func (s *scanner) openBrace() {
	start := s.off
	closeEnd, ok := matchFormals(s.src, start)
	if !ok {
		s.other(1)
		return
	}

	next := skipSpace(s.src, closeEnd)
	switch s.peekAt(next) {
	case ':':
		s.emitLambda("{", next+1)
		return
	case '@':
		id := skipSpace(s.src, next+1)
		if isIdentStart(s.peekAt(id)) {
			colon := skipSpace(s.src, scanIdent(s.src, id))
			if s.peekAt(colon) == ':' {
				s.emitLambda("{", colon+1)
				return
			}
		}
	}

	s.other(1)
}

func (s *scanner) emitLambda(param string, end int) {
	s.emit(EventLambdaIntro, param, end)
}

func (s *scanner) skipWith(skip func([]byte, int) (int, bool), msg string) {
	end, ok := skip(s.src, s.off)
	if !ok {
		s.addError(msg)
	}
	s.other(end - s.off)
}

func (s *scanner) other(n int) {
	if n < 1 {
		n = 1
	}
	s.emit(EventOther, "", s.off+n)
}

// emit records an event starting at the current offset and advances to end
func (s *scanner) emit(kind EventKind, text string, end int) {
	ev := Event{
		Kind:   kind,
		Text:   text,
		Pos:    s.pos(),
		Offset: s.off,
		End:    end,
	}
	s.advanceTo(end)
	s.lineHasToken = true
	ev.EndLine = s.line
	s.events = append(s.events, ev)
}

func (s *scanner) pos() types.Position {
	return types.Position{File: s.file, Line: s.line, Column: s.col}
}

func (s *scanner) addError(msg string) {
	s.errs = append(s.errs, types.ParseError{
		File:    s.file,
		Line:    s.line,
		Column:  s.col,
		Message: msg,
	})
}

func (s *scanner) advance() {
	if s.src[s.off] == '\n' {
		s.line++
		s.col = 1
		s.lineHasToken = false
	} else {
		s.col++
	}
	s.off++
}

func (s *scanner) advanceTo(end int) {
	if end > len(s.src) {
		end = len(s.src)
	}
	for s.off < end {
		s.advance()
	}
}

func (s *scanner) peek(n int) byte {
	return s.peekAt(s.off + n)
}

func (s *scanner) peekAt(i int) byte {
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}
