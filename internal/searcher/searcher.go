package searcher

import (
	"context"
	"fmt"
	"regexp"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/nixdoc/internal/indexer"
	"github.com/dshills/nixdoc/pkg/types"
)

// DefaultPatternCacheSize bounds the number of compiled patterns kept
const DefaultPatternCacheSize = 256

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Result     *types.SearchResult
	Statistics *indexer.Statistics
	Duration   time.Duration
}

// Searcher compiles patterns and matches them against a freshly indexed tree
type Searcher struct {
	indexer  *indexer.Indexer
	patterns *lru.Cache[string, *regexp.Regexp]
}

// NewSearcher creates a new Searcher instance
func NewSearcher(idx *indexer.Indexer) *Searcher {
	patterns, err := lru.New[string, *regexp.Regexp](DefaultPatternCacheSize)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	if idx == nil {
		idx = indexer.New(nil)
	}

	return &Searcher{
		indexer:  idx,
		patterns: patterns,
	}
}

// Compile compiles a search pattern. Failures are returned as
// *types.PatternError.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &types.PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// Match keeps the entries whose name or documentation text matches re, in
// their original order
func Match(re *regexp.Regexp, entries []types.DocEntry) []types.DocEntry {
	matched := make([]types.DocEntry, 0)
	for _, e := range entries {
		if re.MatchString(e.Name) || re.MatchString(e.Text) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Compile compiles pattern, reusing a previously compiled expression when
// the same pattern was seen recently
func (s *Searcher) Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := s.patterns.Get(pattern); ok {
		return re, nil
	}

	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	s.patterns.Add(pattern, re)
	return re, nil
}

// SearchText indexes root and returns the entries matching pattern. The
// pattern is compiled before any file is read, so an invalid pattern never
// costs a scan.
func (s *Searcher) SearchText(ctx context.Context, pattern, root string) (*types.SearchResult, error) {
	resp, err := s.Search(ctx, pattern, root)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// Search is SearchText with scan statistics and timing
func (s *Searcher) Search(ctx context.Context, pattern, root string) (*SearchResponse, error) {
	startTime := time.Now()

	re, err := s.Compile(pattern)
	if err != nil {
		return nil, err
	}

	stats, entries, err := s.indexer.IndexTree(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", root, err)
	}

	return &SearchResponse{
		Result: &types.SearchResult{
			Entries:  Match(re, entries),
			Warnings: stats.Warnings,
		},
		Statistics: stats,
		Duration:   time.Since(startTime),
	}, nil
}
