package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var kindNames = []string{"namespace", "record", "function", "enum", "typedef", "variable", "field"}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the indexed C++ source root",
	}
}

// symbolSelector returns the properties shared by tools that address one
// symbol, either by identity or by (qualified) name
func symbolSelector() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"id": map[string]interface{}{
			"type":        "string",
			"description": "Symbol identity as 40 hex digits (takes precedence over name)",
		},
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Symbol name, optionally qualified (e.g. 'geo::Circle')",
		},
	}
}

// indexSourcesTool returns the tool definition for index_sources
func indexSourcesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_sources",
		Description: "Index the C++ declarations under a source root",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the source root",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rebuild even when no file changed",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getSymbolTool returns the tool definition for get_symbol
func getSymbolTool() mcp.Tool {
	props := symbolSelector()
	props["kind"] = map[string]interface{}{
		"type":        "string",
		"description": "Restrict matches to one kind",
		"enum":        kindNames,
	}
	return mcp.Tool{
		Name:        "get_symbol",
		Description: "Get the full metadata of a C++ symbol: specifiers, members, bases, parameters, locations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"path"},
		},
	}
}

// listOverloadsTool returns the tool definition for list_overloads
func listOverloadsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_overloads",
		Description: "List the overload sets of a namespace: functions grouped by case-insensitive name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": pathProperty(),
				"namespace": map[string]interface{}{
					"type":        "string",
					"description": "Qualified namespace name or identity (default: global namespace)",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Only the overload set with this name",
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Search indexed C++ symbols by name and documentation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": pathProperty(),
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Name prefix or words from doc comments",
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"description": "Filter by symbol kind",
					"items": map[string]interface{}{
						"type": "string",
						"enum": kindNames,
					},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: hybrid (name + text), name (prefix only), or text (BM25 only)",
					"enum":        []string{"hybrid", "name", "text"},
					"default":     "hybrid",
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getHierarchyTool returns the tool definition for get_hierarchy
func getHierarchyTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_hierarchy",
		Description: "Show the bases, derived classes, ancestors and descendants of a C++ record",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: symbolSelector(),
			Required:   []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a C++ source root",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": pathProperty(),
			},
			Required: []string{"path"},
		},
	}
}
