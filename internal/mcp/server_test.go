package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nixdoc/internal/indexer"
	"github.com/dshills/nixdoc/internal/storage"
)

const triviaNix = `{
  # Adds two numbers.
  add = a: b: a + b;

  id = x: x;
}
`

func newTestServer(t *testing.T, opts Options) (*Server, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.Output == nil {
		opts.Output = &out
	}
	s, err := NewServer(opts)
	require.NoError(t, err)
	return s, &out
}

func writeNix(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %v", err)
	assert.Equal(t, code, mcpErr.Code)
}

func TestNewServer_Defaults(t *testing.T) {
	s, err := NewServer(Options{})
	require.NoError(t, err)

	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.searcher)
	assert.NotNil(t, s.lookup)
	assert.NotNil(t, s.logger)
	assert.Nil(t, s.cache)
}

func TestSearchDocs_Text(t *testing.T) {
	root := t.TempDir()
	path := writeNix(t, root, "trivial.nix", triviaNix)
	s, _ := newTestServer(t, Options{Indexer: indexer.New(&indexer.Config{Workers: 2})})

	result, err := s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": "add",
		"path":    root,
	}))
	require.NoError(t, err)

	want := "   Adds two numbers.\n" +
		"add = a: b: ...\n" +
		"# " + path + ":3\n"
	assert.Equal(t, want, resultText(t, result))
}

func TestSearchDocs_JSON(t *testing.T) {
	root := t.TempDir()
	path := writeNix(t, root, "trivial.nix", triviaNix)
	writeNix(t, root, "broken.nix", "\xff\xfe")
	s, _ := newTestServer(t, Options{})

	result, err := s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": ".",
		"path":    root,
		"format":  "json",
	}))
	require.NoError(t, err)

	var resp struct {
		Count   int `json:"count"`
		Entries []struct {
			Name   string `json:"name"`
			File   string `json:"file"`
			Line   int    `json:"line"`
			Column int    `json:"column"`
		} `json:"entries"`
		WarningCount int `json:"warning_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))

	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "add", resp.Entries[0].Name)
	assert.Equal(t, path, resp.Entries[0].File)
	assert.Equal(t, 3, resp.Entries[0].Line)
	assert.Equal(t, 9, resp.Entries[0].Column)
	assert.Equal(t, 1, resp.WarningCount)
}

func TestSearchDocs_NoMatchIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeNix(t, root, "trivial.nix", triviaNix)
	s, _ := newTestServer(t, Options{})

	result, err := s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": "nothing-here",
		"path":    root,
	}))
	require.NoError(t, err)
	assert.Empty(t, resultText(t, result))
}

func TestSearchDocs_Errors(t *testing.T) {
	root := t.TempDir()
	s, _ := newTestServer(t, Options{})

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing pattern", map[string]interface{}{"path": root}, ErrorCodeInvalidPattern},
		{"invalid pattern", map[string]interface{}{"pattern": "(", "path": root}, ErrorCodeInvalidPattern},
		{"missing path", map[string]interface{}{"pattern": "x"}, ErrorCodeInvalidParams},
		{"relative path", map[string]interface{}{"pattern": "x", "path": "lib"}, ErrorCodeInvalidParams},
		{"nonexistent path", map[string]interface{}{"pattern": "x", "path": filepath.Join(root, "missing")}, ErrorCodeInvalidParams},
		{"bad format", map[string]interface{}{"pattern": "x", "path": root, "format": "xml"}, ErrorCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleSearchDocs(context.Background(), call("search_docs", tt.args))
			requireCode(t, err, tt.code)
		})
	}
}

func TestSearchDocs_UnreadableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	s, _ := newTestServer(t, Options{})
	_, err := s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": "x",
		"path":    locked,
	}))
	requireCode(t, err, ErrorCodeRootUnreadable)
}

func TestGetDoc(t *testing.T) {
	root := t.TempDir()
	path := writeNix(t, root, "trivial.nix", triviaNix)
	s, out := newTestServer(t, Options{})

	result, err := s.handleGetDoc(context.Background(), call("get_doc", map[string]interface{}{
		"file":   path,
		"line":   float64(3),
		"column": float64(9),
	}))
	require.NoError(t, err)
	doc := resultText(t, result)
	assert.Equal(t, "   Adds two numbers.\nadd = a: b: ...\n# "+path+":3\n", doc)

	// Same text as the search output
	search, err := s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": "add",
		"path":    root,
	}))
	require.NoError(t, err)
	assert.Equal(t, resultText(t, search), doc)

	// get_doc never prints
	assert.Empty(t, out.String())
}

func TestGetDoc_NoDoc(t *testing.T) {
	path := writeNix(t, t.TempDir(), "trivial.nix", triviaNix)
	s, _ := newTestServer(t, Options{})

	result, err := s.handleGetDoc(context.Background(), call("get_doc", map[string]interface{}{
		"file": path,
		"line": float64(5),
	}))
	require.NoError(t, err)
	assert.Equal(t, "null", resultText(t, result))
}

func TestGetDoc_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeNix(t, dir, "trivial.nix", triviaNix)
	broken := writeNix(t, dir, "broken.nix", "\xff\xfe")
	s, _ := newTestServer(t, Options{})

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing file", map[string]interface{}{"line": float64(1)}, ErrorCodeInvalidParams},
		{"directory", map[string]interface{}{"file": dir, "line": float64(1)}, ErrorCodeInvalidParams},
		{"missing line", map[string]interface{}{"file": path}, ErrorCodeInvalidParams},
		{"negative column", map[string]interface{}{"file": path, "line": float64(3), "column": float64(-1)}, ErrorCodeInvalidParams},
		{"invalid utf-8", map[string]interface{}{"file": broken, "line": float64(1)}, ErrorCodeFileUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleGetDoc(context.Background(), call("get_doc", tt.args))
			requireCode(t, err, tt.code)
		})
	}
}

func TestPrintDoc(t *testing.T) {
	path := writeNix(t, t.TempDir(), "trivial.nix", triviaNix)
	s, out := newTestServer(t, Options{})

	result, err := s.handlePrintDoc(context.Background(), call("print_doc", map[string]interface{}{
		"file": path,
		"line": float64(3),
	}))
	require.NoError(t, err)
	assert.Equal(t, resultText(t, result), out.String())
	assert.Contains(t, out.String(), "Adds two numbers.")

	out.Reset()
	result, err = s.handlePrintDoc(context.Background(), call("print_doc", map[string]interface{}{
		"file": path,
		"line": float64(5),
	}))
	require.NoError(t, err)
	assert.Equal(t, "null", resultText(t, result))
	assert.Empty(t, out.String())
}

func TestGetLambdaPos(t *testing.T) {
	path := writeNix(t, t.TempDir(), "trivial.nix", triviaNix)
	s, _ := newTestServer(t, Options{})

	result, err := s.handleGetLambdaPos(context.Background(), call("get_lambda_pos", map[string]interface{}{
		"file": path,
		"name": "id",
	}))
	require.NoError(t, err)

	var positions []struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, path, positions[0].File)
	assert.Equal(t, 5, positions[0].Line)
	assert.Equal(t, 8, positions[0].Column)

	result, err = s.handleGetLambdaPos(context.Background(), call("get_lambda_pos", map[string]interface{}{
		"file": path,
		"name": "missing",
	}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, result))

	_, err = s.handleGetLambdaPos(context.Background(), call("get_lambda_pos", map[string]interface{}{
		"file": path,
	}))
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestGetStatus(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	result, err := s.handleGetStatus(context.Background(), call("get_status", nil))
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, false, resp["cache_enabled"])
	assert.Equal(t, storage.BuildMode, resp["build_mode"])
	assert.NotContains(t, resp, "cache")
}

func TestGetStatus_WithCache(t *testing.T) {
	cache, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	root := t.TempDir()
	writeNix(t, root, "trivial.nix", triviaNix)
	idx := indexer.New(&indexer.Config{Cache: cache})
	s, _ := newTestServer(t, Options{Indexer: idx, Cache: cache})

	_, err = s.handleSearchDocs(context.Background(), call("search_docs", map[string]interface{}{
		"pattern": "add",
		"path":    root,
	}))
	require.NoError(t, err)

	result, err := s.handleGetStatus(context.Background(), call("get_status", nil))
	require.NoError(t, err)

	var resp struct {
		CacheEnabled bool `json:"cache_enabled"`
		Cache        struct {
			SchemaVersion string `json:"schema_version"`
			FilesCount    int    `json:"files_count"`
			EntriesCount  int    `json:"entries_count"`
		} `json:"cache"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.True(t, resp.CacheEnabled)
	assert.Equal(t, storage.CurrentSchemaVersion, resp.Cache.SchemaVersion)
	assert.Equal(t, 1, resp.Cache.FilesCount)
	assert.Equal(t, 1, resp.Cache.EntriesCount)
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeInvalidParams, "bad", nil)
	assert.Equal(t, "MCP error -32602: bad", err.Error())
}
