// Package transform translates Elasticsearch query clauses into a Typesense
// search query. Every clause kind has a handler registered by dsl.Kind; the
// handlers recurse through Dispatch for bool and function_score and report
// anything they cannot translate as warnings instead of failing.
package transform

import (
	"github.com/atomic77/esfilter/pkg/fieldmatch"
	"github.com/atomic77/esfilter/pkg/mapping"
)

// Context is the read only configuration handed down the clause tree. It is
// passed by value; handlers derive children with Negate and never write to
// PropertyMapping.
type Context struct {
	PropertyMapping map[string]string
	ElasticSchema   *mapping.ElasticSchema
	TypesenseSchema *mapping.TypesenseSchema
	// FieldMatchStrategy is tried against TypesenseSchema when a field has
	// no PropertyMapping entry. Nil disables it.
	FieldMatchStrategy fieldmatch.Strategy
	// Negated asks handlers to emit the negation of their clause.
	Negated           bool
	DefaultScoreField string
}

// Negate returns a copy of the context with the negation flag flipped.
func (c Context) Negate() Context {
	c.Negated = !c.Negated
	return c
}

// Typesense has no NOT for arbitrary expressions, so a negated subtree is
// written with De Morgan: the connectives swap and leaves emit their negated
// comparison.
func (c Context) and() string {
	if c.Negated {
		return " || "
	}
	return " && "
}

func (c Context) or() string {
	if c.Negated {
		return " && "
	}
	return " || "
}
