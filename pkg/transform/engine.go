package transform

import (
	"strings"

	"github.com/atomic77/esfilter/pkg/dsl"
	"github.com/atomic77/esfilter/pkg/filter"
)

type handler func(c dsl.Clause, ctx Context) fragment

var handlers map[dsl.Kind]handler

// Filled in init: the bool and function_score handlers call back into
// dispatch, which reads this map.
func init() {
	handlers = map[dsl.Kind]handler{
		dsl.KindMatch:         handleMatch,
		dsl.KindTerm:          handleTerm,
		dsl.KindTerms:         handleTerms,
		dsl.KindRange:         handleRange,
		dsl.KindBool:          handleBool,
		dsl.KindFunctionScore: handleFunctionScore,
		dsl.KindMatchAll:      handleMatchAll,
	}
}

// Transform translates a query object. It never fails: clauses, fields and
// parameters that have no Typesense equivalent are left out and reported in
// Result.Warnings.
func Transform(q *dsl.Query, ctx Context) Result {
	f := dispatch(q, ctx)
	warnings := f.warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Result{
		Query: TargetQuery{
			Q:        "*",
			FilterBy: f.filter,
			SortBy:   strings.Join(dedupe(f.sortBy), ","),
		},
		Warnings: warnings,
	}
}

// NormalizeParentheses balances the parentheses of a filter_by expression and
// removes the ones operator precedence makes redundant.
func NormalizeParentheses(s string) string {
	return filter.Normalize(s)
}

// dispatch runs the handler of every clause in source order and ANDs the
// resulting filters together.
func dispatch(q *dsl.Query, ctx Context) fragment {
	var f fragment
	if q == nil {
		return f
	}
	var filters []string
	for _, c := range q.Clauses {
		switch c := c.(type) {
		case *dsl.Unsupported:
			f.warn("Unsupported clause: %q", c.Name)
			continue
		case *dsl.Malformed:
			f.warn("Malformed clause %q: %v", c.Name, c.Err)
			continue
		}
		h, ok := handlers[c.Kind()]
		if !ok {
			f.warn("Unsupported clause: %q", c.Keyword())
			continue
		}
		filters = append(filters, f.add(h(c, ctx)))
	}
	f.filter = NormalizeParentheses(join(filters, ctx.and()))
	return f
}

// A negated match_all matches nothing, which filter_by cannot express.
func handleMatchAll(c dsl.Clause, ctx Context) fragment {
	var f fragment
	if ctx.Negated {
		f.warn("Unsupported negated clause: %q", c.Keyword())
	}
	return f
}
