// Package sexp reads the textual IR encoding back into a generic
// node tree. It is the verification half of the S-expression
// contract: the printer in the ir package writes it, this package
// checks that what was written parses and lets tools walk it.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var sexpLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
		{Name: "Symbol", Pattern: `[a-zA-Z_*][a-zA-Z0-9_*.\-]*`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})

// Node is one S-expression: exactly one of the leaf fields is set,
// or the node is a list.
type Node struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Symbol *string `parser:"| @Symbol"`
	List []*Node `parser:"| '(' @@* ')'"`
}

type document struct {
	Root *Node `parser:"@@"`
}

var parser = participle.MustBuild[document](
	participle.Lexer(sexpLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse reads one S-expression. name labels the source in error
// positions.
func Parse(name, input string) (*Node, error) {
	doc, err := parser.ParseString(name, input)
	if err != nil {
		return nil, fmt.Errorf("invalid s-expression: %w", err)
	}
	return doc.Root, nil
}

// IsList reports whether the node is a parenthesized list. An empty
// list and an absent leaf are distinguishable only through the
// grammar, so leaf checks come first.
func (n *Node) IsList() bool {
	return n.String == nil && n.Number == nil && n.Symbol == nil
}

// Head returns the leading symbol of a list node, the node kind in
// the IR encoding.
func (n *Node) Head() (string, bool) {
	if !n.IsList() || len(n.List) == 0 || n.List[0].Symbol == nil {
		return "", false
	}
	return *n.List[0].Symbol, true
}

// Field returns the value list of the named `(field value...)` entry.
func (n *Node) Field(name string) ([]*Node, bool) {
	if !n.IsList() {
		return nil, false
	}
	for _, child := range n.List[1:] {
		if head, ok := child.Head(); ok && head == name {
			return child.List[1:], true
		}
	}
	return nil, false
}

// Text returns the scalar text of a leaf node: unquoted string
// content, or the number/symbol spelling.
func (n *Node) Text() (string, bool) {
	switch {
	case n.String != nil:
		s, err := strconv.Unquote(*n.String)
		if err != nil {
			return *n.String, true
		}
		return s, true
	case n.Number != nil:
		return *n.Number, true
	case n.Symbol != nil:
		return *n.Symbol, true
	}
	return "", false
}
