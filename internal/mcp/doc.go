// Package mcp implements the Model Context Protocol (MCP) server for nixdoc.
//
// The server exposes the documentation search and the evaluator-style
// introspection entry points to MCP clients:
//   - search_docs: search documentation comments under a directory
//   - get_doc: documentation of the lambda at a position, or null
//   - print_doc: same as get_doc, also printed to the server's stderr
//   - get_lambda_pos: positions of the lambdas bound to a name in a file
//   - get_status: build information and cache statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout is reserved for protocol messages. Logs and print_doc output go to
// stderr.
//
// # Basic Usage
//
//	nixdoc serve
//
// # Tool: search_docs
//
//	Request:
//	{
//	  "name": "search_docs",
//	  "arguments": {"pattern": "concat", "path": "/src/nixpkgs/lib"}
//	}
//
// The default text format returns the same report the CLI prints. With
// "format": "json" the response lists entries with name, text, signature,
// file, line and column, plus scan statistics and up to five warnings.
//
// # Tool: get_doc
//
//	Request:
//	{
//	  "name": "get_doc",
//	  "arguments": {"file": "/src/nixpkgs/lib/lists.nix", "line": 42, "column": 10}
//	}
//
// Line and column are those of the lambda's first parameter, as reported by
// get_lambda_pos and by search results. The column may be omitted when only
// one documented lambda starts on that line. The response text is the
// rendered entry, byte-identical to the corresponding search output block, or
// the literal null.
//
// # Tool: get_lambda_pos
//
//	Request:
//	{
//	  "name": "get_lambda_pos",
//	  "arguments": {"file": "/src/nixpkgs/lib/lists.nix", "name": "foldl'"}
//	}
//
//	Response:
//	[{"file": "/src/nixpkgs/lib/lists.nix", "line": 97, "column": 11}]
//
// # Error Handling
//
// Tool errors are returned as MCPError values carrying a JSON-RPC code:
//   - -32602: invalid parameters (missing, relative or nonexistent paths)
//   - -32001: search root cannot be listed
//   - -32002: source file cannot be read or is not valid UTF-8
//   - -32004: empty or invalid pattern
//   - -32603: internal errors
package mcp
