package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/nixdoc/internal/report"
	"github.com/dshills/nixdoc/internal/storage"
	"github.com/dshills/nixdoc/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodeRootUnreadable = -32001 // Search root cannot be listed
	ErrorCodeFileUnreadable = -32002 // Source file cannot be read or decoded
	ErrorCodeInvalidPattern = -32004 // Pattern is empty or does not compile
)

// maxWarnings bounds the warnings included in a search response
const maxWarnings = 5

// handleSearchDocs handles the search_docs tool invocation
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, newMCPError(ErrorCodeInvalidPattern, "pattern parameter is required and cannot be empty", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateDir(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	format := getStringDefault(args, "format", "text")
	if format != "text" && format != "json" {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid format", map[string]interface{}{
			"param":   "format",
			"value":   format,
			"allowed": []string{"text", "json"},
		})
	}

	s.logger.Debug("search_docs", "pattern", pattern, "path", path)

	resp, err := s.searcher.Search(ctx, pattern, path)
	if err != nil {
		var patErr *types.PatternError
		switch {
		case errors.As(err, &patErr):
			return nil, newMCPError(ErrorCodeInvalidPattern, "invalid pattern", map[string]interface{}{
				"param":  "pattern",
				"reason": patErr.Err.Error(),
			})
		case errors.Is(err, types.ErrRootUnreadable):
			return nil, newMCPError(ErrorCodeRootUnreadable, "search root is not readable", map[string]interface{}{
				"error": err.Error(),
			})
		default:
			return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	for _, w := range resp.Result.Warnings {
		s.logger.Warn("skipped", "path", w.Path, "err", w.Err)
	}

	if format == "text" {
		var sb strings.Builder
		if err := report.Write(&sb, resp.Result.Entries); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to render results", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	entries := make([]map[string]interface{}, 0, len(resp.Result.Entries))
	for _, e := range resp.Result.Entries {
		entries = append(entries, entryJSON(e))
	}

	response := map[string]interface{}{
		"pattern":       pattern,
		"path":          path,
		"count":         len(entries),
		"entries":       entries,
		"files_scanned": resp.Statistics.FilesScanned,
		"files_cached":  resp.Statistics.FilesCached,
		"duration_ms":   resp.Duration.Milliseconds(),
	}

	if len(resp.Result.Warnings) > 0 {
		warnings := make([]string, 0, maxWarnings)
		for i, w := range resp.Result.Warnings {
			if i == maxWarnings {
				break
			}
			warnings = append(warnings, w.String())
		}
		response["warnings"] = warnings
		response["warning_count"] = len(resp.Result.Warnings)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetDoc handles the get_doc tool invocation
func (s *Server) handleGetDoc(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, found, err := s.docAt(ctx, request)
	if err != nil {
		return nil, err
	}
	if !found {
		return mcp.NewToolResultText("null"), nil
	}
	return mcp.NewToolResultText(report.Render(entry)), nil
}

// handlePrintDoc handles the print_doc tool invocation
func (s *Server) handlePrintDoc(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, found, err := s.docAt(ctx, request)
	if err != nil {
		return nil, err
	}
	if !found {
		return mcp.NewToolResultText("null"), nil
	}

	text := report.Render(entry)
	if _, err := io.WriteString(s.output, text); err != nil {
		s.logger.Warn("failed to print doc", "err", err)
	}
	return mcp.NewToolResultText(text), nil
}

// handleGetLambdaPos handles the get_lambda_pos tool invocation
func (s *Server) handleGetLambdaPos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	file, err := requireFile(args)
	if err != nil {
		return nil, err
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	positions, err := s.lookup.Positions(ctx, file, name)
	if err != nil {
		return nil, lookupError(err)
	}

	list := make([]map[string]interface{}, 0, len(positions))
	for _, p := range positions {
		list = append(list, map[string]interface{}{
			"file":   p.File,
			"line":   p.Line,
			"column": p.Column,
		})
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode positions", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"server":        ServerName,
		"version":       ServerVersion,
		"build_mode":    storage.BuildMode,
		"sqlite_driver": storage.DriverName,
		"cache_enabled": s.cache != nil,
	}

	if s.cache != nil {
		status, err := s.cache.GetStatus(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to get cache status", map[string]interface{}{
				"error": err.Error(),
			})
		}

		cache := map[string]interface{}{
			"schema_version": status.SchemaVersion,
			"files_count":    status.FilesCount,
			"entries_count":  status.EntriesCount,
		}
		if !status.LastIndexedAt.IsZero() {
			cache["last_indexed_at"] = status.LastIndexedAt.Format(time.RFC3339)
		}
		response["cache"] = cache
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// docAt resolves the position arguments of get_doc and print_doc
func (s *Server) docAt(ctx context.Context, request mcp.CallToolRequest) (types.DocEntry, bool, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return types.DocEntry{}, false, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	file, err := requireFile(args)
	if err != nil {
		return types.DocEntry{}, false, err
	}

	line := getIntDefault(args, "line", 0)
	if line < 1 {
		return types.DocEntry{}, false, newMCPError(ErrorCodeInvalidParams, "line must be a positive integer", map[string]interface{}{
			"param": "line",
			"value": line,
		})
	}

	column := getIntDefault(args, "column", 0)
	if column < 0 {
		return types.DocEntry{}, false, newMCPError(ErrorCodeInvalidParams, "column must be a positive integer", map[string]interface{}{
			"param": "column",
			"value": column,
		})
	}

	pos := types.Position{File: file, Line: line, Column: column}
	s.logger.Debug("doc lookup", "pos", pos)

	entry, found, err := s.lookup.Doc(ctx, pos)
	if err != nil {
		return types.DocEntry{}, false, lookupError(err)
	}
	return entry, found, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// lookupError maps a per-file lookup failure to an MCP error
func lookupError(err error) error {
	var readErr *types.FileReadError
	var encErr *types.EncodingError
	if errors.As(err, &readErr) || errors.As(err, &encErr) {
		return newMCPError(ErrorCodeFileUnreadable, "file is not readable", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// requireFile extracts and validates the file parameter
func requireFile(args map[string]interface{}) (string, error) {
	file, ok := args["file"].(string)
	if !ok || file == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}

	if err := validateFile(file); err != nil {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid file", map[string]interface{}{
			"param":  "file",
			"reason": err.Error(),
		})
	}
	return file, nil
}

// validateDir checks that path is an absolute, existing directory
func validateDir(path string) error {
	info, err := statAbsolute(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// validateFile checks that path is an absolute, existing regular file
func validateFile(path string) error {
	info, err := statAbsolute(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}
	return nil
}

func statAbsolute(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return nil, ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, ErrPathNotReadable
	}
	return info, nil
}

func entryJSON(e types.DocEntry) map[string]interface{} {
	return map[string]interface{}{
		"name":      e.Name,
		"text":      e.Text,
		"signature": e.Signature,
		"file":      e.Position.File,
		"line":      e.Position.Line,
		"column":    e.Position.Column,
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrIsDirectory     = errors.New("path is a directory")
)
