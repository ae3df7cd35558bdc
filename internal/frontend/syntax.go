package frontend

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// text returns the source covered by a node
func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// line returns the 1-based line a node starts on
func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// normalize collapses whitespace and drops it around punctuation, so
// "const std::string &" and "const std::string&" compare equal.
func normalize(s string) string {
	var b strings.Builder
	var last byte
	for i, f := range strings.Fields(s) {
		if i > 0 && !isPunct(last) && !isPunct(f[0]) {
			b.WriteByte(' ')
		}
		b.WriteString(f)
		last = f[len(f)-1]
	}
	return b.String()
}

func isPunct(c byte) bool {
	return strings.IndexByte("*&,<>()[]:=", c) >= 0
}

// children returns the named children of n
func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// fieldChildren returns every child attached to the named field
func fieldChildren(n *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

// hasToken reports whether a direct child of n spells tok. Keywords are
// anonymous tokens or single-token named nodes depending on the grammar
// rule, so both are checked.
func hasToken(n *sitter.Node, src []byte, tok string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.ChildCount() <= 1 && c.Content(src) == tok {
			return true
		}
	}
	return false
}

// childOfType returns the first direct child of the given type
func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// childrenText returns the contents of the direct children of the given type
func childrenText(n *sitter.Node, src []byte, typ string) []string {
	var out []string
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			out = append(out, c.Content(src))
		}
	}
	return out
}

// inner steps into a wrapping declarator
func inner(n *sitter.Node) *sitter.Node {
	if d := n.ChildByFieldName("declarator"); d != nil {
		return d
	}
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		c := n.NamedChild(i)
		if c.Type() != "type_qualifier" && c.Type() != "attribute_declaration" {
			return c
		}
	}
	return nil
}

// splitDeclarator separates a declarator into the declared name node and
// the type suffix it applies ("*", "&", "[]").
func splitDeclarator(n *sitter.Node, src []byte) (name *sitter.Node, suffix string) {
	for n != nil {
		switch n.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			suffix += "*"
			for _, q := range childrenText(n, src, "type_qualifier") {
				suffix += " " + q
			}
		case "reference_declarator", "abstract_reference_declarator":
			suffix += n.Child(0).Content(src)
		case "array_declarator", "abstract_array_declarator":
			name, s := splitDeclarator(n.ChildByFieldName("declarator"), src)
			return name, suffix + s + "[]"
		case "function_declarator":
			name, s := splitDeclarator(n.ChildByFieldName("declarator"), src)
			return name, suffix + s + normalize(text(n.ChildByFieldName("parameters"), src))
		case "init_declarator", "attributed_declarator", "parenthesized_declarator":
		case "variadic_declarator":
			suffix += "..."
		default:
			return n, suffix
		}
		n = inner(n)
	}
	return nil, suffix
}

// functionDeclarator finds the function_declarator under a declarator,
// returning the suffix applied to the return type.
func functionDeclarator(n *sitter.Node, src []byte) (*sitter.Node, string) {
	suffix := ""
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			return n, suffix
		case "pointer_declarator":
			// a pointer to function is a variable, not a function
			if d := n.ChildByFieldName("declarator"); d != nil && d.Type() == "function_declarator" {
				suffix += "*"
			} else {
				return nil, ""
			}
		case "reference_declarator":
			suffix += n.Child(0).Content(src)
		case "attributed_declarator", "init_declarator":
		default:
			return nil, ""
		}
		n = inner(n)
	}
	return nil, ""
}

// typeText renders the declared type of a declaration node: its type
// qualifiers followed by the type specifier.
func typeText(n *sitter.Node, src []byte) string {
	t := n.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	var parts []string
	for _, q := range childrenText(n, src, "type_qualifier") {
		if q == "const" || q == "volatile" {
			parts = append(parts, q)
		}
	}
	parts = append(parts, t.Content(src))
	return normalize(strings.Join(parts, " "))
}

// docComment gathers the comments directly above n
func docComment(n *sitter.Node, src []byte) string {
	var blocks []string
	next := n
	for prev := n.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if prev.EndPoint().Row+1 < next.StartPoint().Row {
			break
		}
		// a comment trailing the previous declaration belongs to it
		if before := prev.PrevSibling(); before != nil && before.Type() != "comment" &&
			before.EndPoint().Row == prev.StartPoint().Row {
			break
		}
		blocks = append(blocks, cleanComment(prev.Content(src)))
		next = prev
	}
	if len(blocks) == 0 {
		return ""
	}
	var lines []string
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i] != "" {
			lines = append(lines, blocks[i])
		}
	}
	return strings.Join(lines, "\n")
}

// cleanComment strips comment markers
func cleanComment(c string) string {
	if strings.HasPrefix(c, "/*") {
		c = strings.TrimSuffix(strings.TrimPrefix(c, "/*"), "*/")
		c = strings.TrimLeft(c, "*!")
		var lines []string
		for _, l := range strings.Split(c, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
			if l != "" {
				lines = append(lines, l)
			}
		}
		return strings.Join(lines, "\n")
	}
	c = strings.TrimPrefix(c, "//")
	c = strings.TrimLeft(c, "/!")
	return strings.TrimSpace(c)
}
