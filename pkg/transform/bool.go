package transform

import (
	"github.com/atomic77/esfilter/pkg/dsl"
)

// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/query-dsl-bool-query.html
//
// Occurrence types are always handled in the order must, filter, should,
// must_not, whatever order they were written in. Under a negated context the
// whole clause is rewritten with De Morgan: the connectives swap, must and
// should entries are negated and must_not entries become affirmative.
func handleBool(c dsl.Clause, ctx Context) fragment {
	b := c.(*dsl.Bool)
	var (
		f      fragment
		groups []string
	)

	for _, q := range b.Must {
		groups = append(groups, f.add(dispatch(q, ctx)))
	}
	for _, q := range b.Filter {
		groups = append(groups, f.add(dispatch(q, ctx)))
	}

	var should []string
	for _, q := range b.Should {
		should = append(should, f.add(dispatch(q, ctx)))
	}
	groups = append(groups, join(should, ctx.or()))

	negated := ctx.Negate()
	for _, q := range b.MustNot {
		groups = append(groups, f.add(dispatch(q, negated)))
	}

	for _, p := range b.Params {
		f.warn("Unsupported bool parameter: %q", p)
	}
	f.filter = join(groups, ctx.and())
	return f
}
