// Package parser finds documented lambda bindings in Nix source files.
//
// Nix is not parsed into a syntax tree. A single-pass scanner (Scan) produces a
// flat stream of events: comments, identifiers and attribute paths, '=' and
// lambda introducers. The extractor (Extract) then matches the shape
//
//	name = a: b: ...
//	name = { x, y ? 1, ... }: ...
//	name = args@{ x, ... }: ...
//
// and attaches the comment that directly precedes the name.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.ParseFile("lib/trivial.nix")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, entry := range result.Entries {
//	    fmt.Printf("%s at %s\n", entry.Name, entry.Position)
//	}
//
// # Scanning Rules
//
// String literals ("..." and ''...'', including ${...} interpolation) and
// comment bodies are skipped, so text such as "x: y" inside a string never
// yields a binding. URIs (https://nixos.org), paths (./a.nix, <nixpkgs>) and
// comparison operators (==, <=, >=, !=) are opaque tokens. Keywords never start
// a binding.
//
// # Documentation Comments
//
// A comment documents a binding only when it starts its own line and ends on
// the line of the name or the line above. Consecutive '#' lines merge into one
// block; a '/* */' comment is always used alone. A blank line breaks the
// association.
//
// # Positions
//
// Binding positions are 1-based and point at the first lambda introducer
// (the first parameter name or the opening '{' of the formals), in bytes.
//
// # Error Handling
//
// Unterminated strings and comments are recorded in ParseResult.Errors and the
// rest of the file is still scanned. Unreadable files and invalid UTF-8 are
// returned as errors from ParseFile.
package parser
