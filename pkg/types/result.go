package types

import "fmt"

// SearchResult is the ordered outcome of a search: file discovery order, then
// line, then column.
type SearchResult struct {
	Entries []DocEntry

	// Recoverable problems met while scanning, reported after the results
	Warnings []Warning
}

// Len returns the number of matched entries
func (sr *SearchResult) Len() int {
	return len(sr.Entries)
}

// Empty returns true when nothing matched
func (sr *SearchResult) Empty() bool {
	return len(sr.Entries) == 0
}

// Warning records a file or directory that contributed no entries
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}
