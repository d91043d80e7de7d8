package indexer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/nixdoc/internal/parser"
	"github.com/dshills/nixdoc/internal/storage"
	"github.com/dshills/nixdoc/internal/walker"
	"github.com/dshills/nixdoc/pkg/types"
)

// Indexer coordinates the scanning pipeline: walk -> parse -> collect -> sort
type Indexer struct {
	parser *parser.Parser
	walker *walker.Walker
	cache  storage.Storage
	logger *log.Logger

	// Worker pool configuration
	workers int
}

// Config contains configuration for the indexer
type Config struct {
	Workers int             // Number of concurrent workers (default: runtime.NumCPU())
	Walker  walker.Options  // File selection (default: walker.DefaultOptions())
	Cache   storage.Storage // Optional entry cache; nil rescans every file
	Logger  *log.Logger     // Optional; nil discards log output
}

// Statistics contains statistics about a scan
type Statistics struct {
	FilesScanned int // Parsed from source
	FilesCached  int // Served from the cache
	FilesFailed  int
	EntriesFound int
	ParseErrors  int // Malformed fragments skipped inside readable files
	Duration     time.Duration

	// Recoverable per-file and per-directory problems, in discovery order
	Warnings []types.Warning
}

// fileBatch is everything one worker produced for one file. Batches are
// published whole, so a file's entries are either all present or absent.
type fileBatch struct {
	index       int
	entries     []types.DocEntry
	warning     *types.Warning
	cached      bool
	parseErrors int
}

// New creates a new Indexer instance
func New(config *Config) *Indexer {
	if config == nil {
		config = &Config{
			Workers: runtime.NumCPU(),
			Walker:  walker.DefaultOptions(),
		}
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Indexer{
		parser:  parser.NewWithLogger(logger),
		walker:  walker.New(config.Walker),
		cache:   config.Cache,
		logger:  logger,
		workers: workers,
	}
}

// IndexTree scans every matching file under root and returns all
// documentation entries ordered by file discovery order, then line, then
// column. An unreadable root is fatal; unreadable files and directories are
// reported in Statistics.Warnings. When ctx is cancelled the scan is
// abandoned and ctx.Err() is returned without any entries.
func (idx *Indexer) IndexTree(ctx context.Context, root string) (*Statistics, []types.DocEntry, error) {
	startTime := time.Now()

	if err := idx.walker.CheckRoot(root); err != nil {
		return nil, nil, err
	}

	// Single aggregation point for all batches
	batches := make(chan fileBatch)
	collected := make(chan []fileBatch, 1)
	go func() {
		var all []fileBatch
		for b := range batches {
			all = append(all, b)
		}
		collected <- all
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)

	// Directory warnings are recorded by the walking goroutine only
	var walkWarnings []indexedWarning
	discovered := 0

	for path, err := range idx.walker.Files(root) {
		if gctx.Err() != nil {
			break
		}

		index := discovered
		discovered++

		if err != nil {
			walkWarnings = append(walkWarnings, indexedWarning{index: index, warning: warningFor(err)})
			idx.logger.Debug("skipping directory", "err", err)
			continue
		}

		g.Go(func() error {
			batch := idx.indexFile(gctx, path)
			batch.index = index

			select {
			case batches <- batch:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	waitErr := g.Wait()
	close(batches)
	all := <-collected

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if waitErr != nil {
		return nil, nil, fmt.Errorf("failed to index tree: %w", waitErr)
	}

	stats, entries := merge(all, walkWarnings)
	stats.Duration = time.Since(startTime)

	idx.logger.Debug("indexed tree",
		"root", root,
		"files", stats.FilesScanned+stats.FilesCached,
		"cached", stats.FilesCached,
		"entries", stats.EntriesFound,
		"warnings", len(stats.Warnings),
		"duration", stats.Duration)

	return stats, entries, nil
}

// IndexFile scans a single file through the same path IndexTree uses,
// including the cache. Read and encoding failures are returned as errors.
func (idx *Indexer) IndexFile(ctx context.Context, path string) ([]types.DocEntry, error) {
	batch := idx.indexFile(ctx, path)
	if batch.warning != nil {
		return nil, batch.warning.Err
	}
	return batch.entries, nil
}

type indexedWarning struct {
	index   int
	warning types.Warning
}

// merge flattens batches into the deterministic output order
func merge(batches []fileBatch, walkWarnings []indexedWarning) (*Statistics, []types.DocEntry) {
	slices.SortFunc(batches, func(a, b fileBatch) int {
		return cmp.Compare(a.index, b.index)
	})

	stats := &Statistics{}
	warnings := slices.Clone(walkWarnings)

	var entries []types.DocEntry
	for _, b := range batches {
		switch {
		case b.warning != nil:
			stats.FilesFailed++
			warnings = append(warnings, indexedWarning{index: b.index, warning: *b.warning})
			continue
		case b.cached:
			stats.FilesCached++
		default:
			stats.FilesScanned++
		}
		stats.ParseErrors += b.parseErrors

		// Within a file the extractor already emits source order; the
		// stable sort guards that contract
		fileEntries := slices.Clone(b.entries)
		slices.SortStableFunc(fileEntries, func(x, y types.DocEntry) int {
			if c := cmp.Compare(x.Position.Line, y.Position.Line); c != 0 {
				return c
			}
			return cmp.Compare(x.Position.Column, y.Position.Column)
		})
		entries = append(entries, fileEntries...)
	}
	stats.EntriesFound = len(entries)

	slices.SortStableFunc(warnings, func(a, b indexedWarning) int {
		return cmp.Compare(a.index, b.index)
	})
	for _, w := range warnings {
		stats.Warnings = append(stats.Warnings, w.warning)
	}

	return stats, entries
}

// indexFile produces the batch for a single file. It never fails the scan:
// problems become the batch's warning.
func (idx *Indexer) indexFile(ctx context.Context, path string) fileBatch {
	if idx.cache != nil {
		if batch, ok := idx.fromCache(ctx, path); ok {
			return batch
		}
	}

	content, err := parser.ReadSource(path)
	if err != nil {
		idx.logger.Debug("skipping file", "path", path, "err", err)
		return fileBatch{warning: &types.Warning{Path: path, Err: err}}
	}

	result := idx.parser.ParseSource(path, content)
	batch := fileBatch{
		entries:     result.Entries,
		parseErrors: len(result.Errors),
	}

	if idx.cache != nil {
		idx.store(ctx, path, content, result.Entries)
	}

	return batch
}

// fromCache serves a file from the cache when its record is still fresh, or
// when only its timestamp changed but the content fingerprint matches
func (idx *Indexer) fromCache(ctx context.Context, path string) (fileBatch, bool) {
	key, err := cacheKey(path)
	if err != nil {
		return fileBatch{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return fileBatch{}, false
	}

	record, err := idx.cache.GetFile(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			idx.logger.Warn("cache lookup failed", "path", path, "err", err)
		}
		return fileBatch{}, false
	}

	if !record.Fresh(info.ModTime(), info.Size()) {
		content, err := parser.ReadSource(path)
		if err != nil || storage.Fingerprint(content) != record.ContentHash {
			return fileBatch{}, false
		}
		record.ModTime = info.ModTime()
		record.SizeBytes = info.Size()
		if err := idx.cache.TouchFile(ctx, record); err != nil {
			idx.logger.Warn("cache update failed", "path", path, "err", err)
		}
	}

	stored, err := idx.cache.ListEntriesByFile(ctx, record.ID)
	if err != nil {
		idx.logger.Warn("cache read failed", "path", path, "err", err)
		return fileBatch{}, false
	}

	entries := make([]types.DocEntry, 0, len(stored))
	for _, e := range stored {
		entries = append(entries, e.ToDocEntry(path))
	}
	return fileBatch{entries: entries, cached: true}, true
}

// store records a freshly scanned file. Cache failures only cost speed.
func (idx *Indexer) store(ctx context.Context, path string, content []byte, entries []types.DocEntry) {
	key, err := cacheKey(path)
	if err != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	record := &storage.File{
		Path:        key,
		ContentHash: storage.Fingerprint(content),
		ModTime:     info.ModTime(),
		SizeBytes:   info.Size(),
	}
	rows := make([]*storage.Entry, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, storage.FromDocEntry(e, 0, i))
	}

	if err := idx.cache.ReplaceFile(ctx, record, rows); err != nil {
		idx.logger.Warn("cache write failed", "path", path, "err", err)
	}
}

func cacheKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func warningFor(err error) types.Warning {
	var dirErr *types.DirectoryAccessError
	if errors.As(err, &dirErr) {
		return types.Warning{Path: dirErr.Path, Err: err}
	}
	return types.Warning{Err: err}
}
