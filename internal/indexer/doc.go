// Package indexer scans a directory tree of Nix files into documentation
// entries.
//
// The indexer drives the walker, parses each file on a bounded worker pool and
// merges the per-file results into one deterministic table.
//
// # Basic Usage
//
//	idx := indexer.New(&indexer.Config{
//	    Workers: 8,
//	    Walker:  walker.DefaultOptions(),
//	})
//
//	stats, entries, err := idx.IndexTree(ctx, "/src/nixpkgs/lib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%d entries from %d files\n", len(entries), stats.FilesScanned)
//
// # Pipeline
//
//  1. Walk: lazily enumerate matching files in lexicographic order, numbering
//     them in discovery order
//  2. Parse: read, scan, extract and dedent each file on an errgroup with
//     SetLimit(workers)
//  3. Collect: every worker sends its whole file batch on one channel to a
//     single collector goroutine
//  4. Sort: after all workers finish, entries are ordered by discovery index,
//     then line, then column
//
// The output never depends on which worker finishes first.
//
// # Errors
//
// Only an unreadable root or a cancelled context fails IndexTree. Unreadable
// files, invalid UTF-8 and unreadable subdirectories become Warnings in the
// returned Statistics. When the context is cancelled, in-flight files are
// abandoned and no partial table is returned.
//
// # Cache
//
// With Config.Cache set, a file whose modification time and size match its
// stored record is served from the cache. If only the timestamp changed and
// the xxhash of the content still matches, the record is refreshed and its
// entries reused. Anything else is rescanned and written back. Cache failures
// are logged and never change the result.
package indexer
