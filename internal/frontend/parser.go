package frontend

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// Parser turns C++ source into declaration facts
type Parser struct {
	parser *sitter.Parser
}

// New creates a Parser for C++
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Parser{parser: p}
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	p.parser.Close()
}

// ParseFile reads and parses a file. The path is recorded in every location.
func (p *Parser) ParseFile(ctx context.Context, path string) (*metadata.ParseResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseSource(ctx, path, content)
}

// ParseSource parses in-memory source. path names the file in locations and
// diagnostics.
func (p *Parser) ParseSource(ctx context.Context, path string, src []byte) (*metadata.ParseResult, error) {
	result := &metadata.ParseResult{File: path}
	if len(src) == 0 {
		return result, nil
	}

	tree, err := p.parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Recovery leaves ERROR nodes in place; declarations around them are
		// still usable.
		line := 0
		if bad := firstError(root); bad != nil {
			line = int(bad.StartPoint().Row) + 1
		}
		result.AddError(line, "syntax error, declarations may be incomplete")
	}

	e := newExtractor(path, src)
	e.walkBody(root, e.global, nil)
	result.Facts = e.facts
	return result, nil
}

// firstError returns the first ERROR or MISSING node in document order
func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
