// Package searcher matches documentation entries against a regular
// expression.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(indexer.New(nil))
//
//	result, err := s.SearchText(ctx, "concat", "/src/nixpkgs/lib")
//	if err != nil {
//	    log.Fatal(err) // *types.PatternError or unreadable root
//	}
//
//	for _, entry := range result.Entries {
//	    fmt.Println(entry.Name, entry.Position)
//	}
//
// # Matching
//
// Patterns use Go's RE2 syntax and match anywhere in the binding name or the
// dedented documentation text. Matching keeps the table order, so results are
// ordered by file discovery, then line, then column. Zero matches is an empty
// result, not an error.
//
// Compiled patterns are kept in an LRU cache, which matters for the MCP server
// where the same pattern is often repeated against different roots.
package searcher
