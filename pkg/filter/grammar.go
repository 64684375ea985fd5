// Package filter parses Typesense filter_by expressions and prints them
// back with the minimal set of parentheses.
package filter

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// https://typesense.org/docs/latest/api/search.html#filter-parameters

var (
	filterLexer = lexer.MustSimple([]lexer.SimpleRule{
		{"String", `"(\\.|[^"\\])*"`},
		{"Backtick", "`[^`]*`"},
		{"Op", `:(!=|>=|<=|=|>|<)?`},
		{"And", `&&`},
		{"Or", `\|\|`},
		{"Number", `-?\d+(\.\d+)?([eE][+-]?\d+)?`},
		{"Ident", `[A-Za-z_$@][A-Za-z0-9_.\-@$]*`},
		{"Punct", `[()\[\],]`},
		{"Whitespace", `\s+`},
	})

	Parser = participle.MustBuild(&Expression{},
		participle.Lexer(filterLexer),
		participle.Elide("Whitespace"),
	)
)

// Expression is a disjunction; && binds tighter than ||.
type Expression struct {
	Or []*Conjunction `@@ ( "||" @@ )*`
}

type Conjunction struct {
	And []*Operand `@@ ( "&&" @@ )*`
}

type Operand struct {
	Group     *Expression `  "(" @@ ")"`
	Predicate *Predicate  `| @@`
}

// Predicate is a single field comparison. Literal tokens keep their quotes so
// they print back unchanged.
type Predicate struct {
	Field string `@Ident`
	Op    string `@Op`
	Value *Value `@@`
}

type Value struct {
	List   *List   `  @@`
	Scalar *string `| @(String | Backtick | Number | Ident)`
}

type List struct {
	Items []string `"[" @(String | Backtick | Number | Ident) ( "," @(String | Backtick | Number | Ident) )* "]"`
}

// Parse parses a filter_by expression.
func Parse(s string) (*Expression, error) {
	expr := &Expression{}
	if err := Parser.ParseString("", s, expr); err != nil {
		return nil, err
	}
	return expr, nil
}
