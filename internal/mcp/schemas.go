package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// positionProperties are shared by get_doc and print_doc
func positionProperties() map[string]interface{} {
	return map[string]interface{}{
		"file": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the Nix file containing the lambda",
		},
		"line": map[string]interface{}{
			"type":        "integer",
			"description": "1-based line of the lambda's first parameter",
			"minimum":     1,
		},
		"column": map[string]interface{}{
			"type":        "integer",
			"description": "1-based byte column of the lambda's first parameter. Optional when the line holds a single lambda",
			"minimum":     1,
		},
	}
}

// searchDocsTool returns the tool definition for search_docs
func searchDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_docs",
		Description: "Search documentation comments of lambda bindings in a tree of Nix files by regular expression",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "RE2 regular expression matched against binding names and documentation text",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the directory to search",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "text returns the rendered report, json returns structured entries",
					"enum":        []string{"text", "json"},
					"default":     "text",
				},
			},
			Required: []string{"pattern", "path"},
		},
	}
}

// getDocTool returns the tool definition for get_doc
func getDocTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_doc",
		Description: "Return the rendered documentation of the lambda at a source position, or null when it has none",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"file", "line"},
		},
	}
}

// printDocTool returns the tool definition for print_doc
func printDocTool() mcp.Tool {
	return mcp.Tool{
		Name:        "print_doc",
		Description: "Print the documentation of the lambda at a source position to the server's stderr and return it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"file", "line"},
		},
	}
}

// getLambdaPosTool returns the tool definition for get_lambda_pos
func getLambdaPosTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_lambda_pos",
		Description: "List the source positions of lambdas bound to a name in a Nix file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the Nix file",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Binding name as written, e.g. map or strings.concatMap",
				},
			},
			Required: []string{"file", "name"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report server build information and documentation cache statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
