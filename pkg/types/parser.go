package types

// ParseResult represents the output of scanning a single source file
type ParseResult struct {
	File string

	// Extracted data
	Bindings []Binding
	Entries  []DocEntry

	// Malformed fragments skipped while scanning
	Errors []ParseError
}

// ParseError represents a fragment the scanner could not make sense of.
// It never aborts the scan of a file.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return pe.Message
}

// HasErrors returns true if any malformed fragments were skipped
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a parsing error to the result
func (pr *ParseResult) AddError(file string, line, col int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:    file,
		Line:    line,
		Column:  col,
		Message: msg,
	})
}
