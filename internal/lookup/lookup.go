// Package lookup answers "what documentation belongs to the lambda at this
// position?".
//
// Index works over an already built entry table. Service scans a single file
// on demand through the same parser and dedent path a tree search uses, so
// the text it returns is byte-identical to the search output for the same
// binding. Service keeps recently used files in an LRU cache and rescans a
// file whenever its modification time or size changes.
package lookup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/nixdoc/internal/parser"
	"github.com/dshills/nixdoc/pkg/types"
)

// DefaultCacheSize is the number of files a Service keeps indexed
const DefaultCacheSize = 128

type posKey struct {
	file   string
	line   int
	column int
}

type lineKey struct {
	file string
	line int
}

// Index maps source positions to documentation entries
type Index struct {
	exact  map[posKey]types.DocEntry
	byLine map[lineKey][]types.DocEntry
}

// NewIndex builds an index over entries. Paths are compared after cleaning
// and resolving them to absolute form.
func NewIndex(entries []types.DocEntry) *Index {
	idx := &Index{
		exact:  make(map[posKey]types.DocEntry, len(entries)),
		byLine: make(map[lineKey][]types.DocEntry, len(entries)),
	}
	for _, e := range entries {
		file := normalize(e.Position.File)
		idx.exact[posKey{file, e.Position.Line, e.Position.Column}] = e
		lk := lineKey{file, e.Position.Line}
		idx.byLine[lk] = append(idx.byLine[lk], e)
	}
	return idx
}

// Lookup returns the entry at pos. Without an exact column match, the entry
// is still returned when it is the only one on that line; a zero column
// always takes that route.
func (i *Index) Lookup(pos types.Position) (types.DocEntry, bool) {
	file := normalize(pos.File)

	if pos.Column > 0 {
		if e, ok := i.exact[posKey{file, pos.Line, pos.Column}]; ok {
			return e, true
		}
	}

	if onLine := i.byLine[lineKey{file, pos.Line}]; len(onLine) == 1 {
		return onLine[0], true
	}
	return types.DocEntry{}, false
}

// Len returns the number of indexed entries
func (i *Index) Len() int {
	return len(i.exact)
}

// fileIndex is the cached scan of one file
type fileIndex struct {
	modTime  time.Time
	size     int64
	index    *Index
	bindings []types.Binding
}

// Service scans files on demand for position lookups
type Service struct {
	parser *parser.Parser
	files  *lru.Cache[string, *fileIndex]
	logger *log.Logger
}

// NewService creates a Service. A nil parser gets a default one and a
// non-positive size falls back to DefaultCacheSize.
func NewService(p *parser.Parser, size int) *Service {
	if p == nil {
		p = parser.New()
	}
	if size <= 0 {
		size = DefaultCacheSize
	}

	files, err := lru.New[string, *fileIndex](size)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Service{
		parser: p,
		files:  files,
		logger: log.New(io.Discard),
	}
}

// SetLogger sets the logger used for cache diagnostics
func (s *Service) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Doc returns the documentation entry of the lambda at pos. The boolean is
// false when no documented binding is found there.
func (s *Service) Doc(ctx context.Context, pos types.Position) (types.DocEntry, bool, error) {
	fi, err := s.load(ctx, pos.File)
	if err != nil {
		return types.DocEntry{}, false, err
	}
	e, ok := fi.index.Lookup(pos)
	return e, ok, nil
}

// Bindings returns every lambda binding in file, documented or not, in
// source order
func (s *Service) Bindings(ctx context.Context, file string) ([]types.Binding, error) {
	fi, err := s.load(ctx, file)
	if err != nil {
		return nil, err
	}
	return fi.bindings, nil
}

// Positions returns the positions of the lambdas bound to name in file
func (s *Service) Positions(ctx context.Context, file, name string) ([]types.Position, error) {
	bindings, err := s.Bindings(ctx, file)
	if err != nil {
		return nil, err
	}

	positions := make([]types.Position, 0)
	for _, b := range bindings {
		if b.Name == name {
			positions = append(positions, b.Position)
		}
	}
	return positions, nil
}

func (s *Service) load(ctx context.Context, file string) (*fileIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := normalize(file)
	info, err := os.Stat(key)
	if err != nil {
		return nil, &types.FileReadError{Path: file, Err: err}
	}

	if fi, ok := s.files.Get(key); ok && fi.modTime.Equal(info.ModTime()) && fi.size == info.Size() {
		return fi, nil
	}

	result, err := s.parser.ParseFile(key)
	if err != nil {
		return nil, err
	}

	fi := &fileIndex{
		modTime:  info.ModTime(),
		size:     info.Size(),
		index:    NewIndex(result.Entries),
		bindings: result.Bindings,
	}
	s.files.Add(key, fi)
	s.logger.Debug("indexed file for lookup", "path", key, "bindings", len(result.Bindings), "entries", len(result.Entries))

	return fi, nil
}

func normalize(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return filepath.Clean(file)
}
