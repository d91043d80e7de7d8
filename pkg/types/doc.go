// Package types provides shared type definitions for nixdoc.
//
// This package defines the domain types used across the scanner, extractor,
// indexer, searcher and lookup components: source positions, comment blocks,
// lambda bindings, documentation entries and search results.
//
// # Core Types
//
// Binding represents a name bound to a lambda, as found by the scanner:
//
//	binding := types.Binding{
//	    Name:      "add",
//	    Signature: "add = a: b: ...",
//	    Position:  types.Position{File: "lib/trivial.nix", Line: 2, Column: 7},
//	}
//
// Position always points at the first parameter introducer of the lambda, not
// at the binding name, so it matches the position an evaluator records for the
// lambda value itself.
//
// DocEntry is the externally visible unit. It exists only for bindings that
// carry a documentation comment:
//
//	entry := types.DocEntry{
//	    Name:      "add",
//	    Text:      "Adds two numbers.",
//	    Signature: "add = a: b: ...",
//	    Position:  binding.Position,
//	}
//
// # Validation
//
// Domain types implement validation methods:
//
//	if err := entry.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
// Per-file and per-directory failures (FileReadError, EncodingError,
// DirectoryAccessError) are recoverable and surface as Warnings. PatternError
// and ErrRootUnreadable are fatal to a search.
package types
