package parser

import (
	"io"
	"os"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/dshills/nixdoc/internal/dedent"
	"github.com/dshills/nixdoc/pkg/types"
)

// Parser turns Nix source files into lambda bindings and documentation entries
type Parser struct {
	logger *log.Logger
}

// New creates a new Parser instance that logs nothing
func New() *Parser {
	return NewWithLogger(nil)
}

// NewWithLogger creates a Parser that reports skipped fragments and comment
// layout fallbacks at debug level
func NewWithLogger(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{logger: logger}
}

// ParseFile reads a file and extracts its bindings and documentation entries.
// Read failures and invalid UTF-8 are returned as *types.FileReadError and
// *types.EncodingError; malformed fragments inside a readable file are only
// recorded in the result.
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := ReadSource(filePath)
	if err != nil {
		return nil, err
	}

	return p.ParseSource(filePath, content), nil
}

// ReadSource loads a file and checks that it is valid UTF-8
func ReadSource(filePath string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &types.FileReadError{Path: filePath, Err: err}
	}

	if !utf8.Valid(content) {
		return nil, &types.EncodingError{Path: filePath}
	}

	return content, nil
}

// ParseSource extracts bindings and entries from already loaded content
func (p *Parser) ParseSource(filePath string, content []byte) *types.ParseResult {
	result := &types.ParseResult{File: filePath}

	events, errs := Scan(content, filePath)
	for _, e := range errs {
		p.logger.Debug("skipped malformed fragment", "file", e.File, "line", e.Line, "column", e.Column, "reason", e.Message)
	}
	result.Errors = errs

	result.Bindings = Extract(events, content, filePath)

	for _, b := range result.Bindings {
		if !b.HasDoc() {
			continue
		}

		normalized := dedent.Comment(*b.Doc)
		if normalized.Fallback {
			p.logger.Debug("comment margin mixes tabs and spaces, kept as is", "file", filePath, "line", b.Doc.Start.Line)
		}
		// An empty comment documents nothing
		if normalized.Text == "" {
			continue
		}

		result.Entries = append(result.Entries, types.DocEntry{
			Name:      b.Name,
			Text:      normalized.Text,
			Signature: b.Signature,
			Position:  b.Position,
		})
	}

	return result
}
