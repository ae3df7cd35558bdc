// Package mcp implements the Model Context Protocol (MCP) server for cxxcorpus.
//
// The server exposes six tools to AI coding assistants:
//   - index_sources: Parse the C++ sources under a root into a corpus
//   - get_symbol: Look up a symbol by identity or qualified name
//   - list_overloads: List the overload sets of a namespace
//   - search_symbols: Search symbol names and doc comments
//   - get_hierarchy: Walk the inheritance graph around a record
//   - get_status: Check indexing status and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is typically started via the serve command:
//
//	cxxcorpus serve
//
// # Tool: list_overloads
//
//	Request:
//	{
//	  "name": "list_overloads",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "namespace": "geo",
//	    "name": "scale"
//	  }
//	}
//
//	Response:
//	{
//	  "namespace": "geo",
//	  "count": 1,
//	  "overload_sets": [
//	    {
//	      "name": "scale",
//	      "functions": [
//	        {"id": "…", "signature": "void scale(int n)", ...},
//	        {"id": "…", "signature": "void Scale(double f)", ...}
//	      ]
//	    }
//	  ]
//	}
//
// Overload sets group functions whose names are equal ignoring ASCII case;
// the set is labelled with the first spelling in sorted order.
//
// # Views
//
// Overload sets and the inheritance graph are derived from the corpus on
// demand and cached per project. Reindexing a project drops its views and
// the search cache.
//
// # Error Handling
//
// Handlers return *MCPError values with a JSON-RPC code:
//   - -32602: Invalid params (missing or invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Symbol not found
//   - -32002: Indexing in progress
//   - -32003: Project not indexed
//   - -32004: Empty query
//   - -32005: Corpus inconsistent (unresolved overload member, inheritance cycle)
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the protocol.
package mcp
