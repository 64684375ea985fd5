package transform

import (
	"strings"

	"github.com/atomic77/esfilter/pkg/dsl"
)

// Treat Term and Match as interchangeable: Typesense has no analyzed
// equality, both become an exact match.
func handleMatch(c dsl.Clause, ctx Context) fragment {
	return handleEquality("match", c.(*dsl.Match).Fields, ctx)
}

func handleTerm(c dsl.Clause, ctx Context) fragment {
	return handleEquality("term", c.(*dsl.Term).Fields, ctx)
}

func handleEquality(clause string, fields []dsl.FieldValue, ctx Context) fragment {
	var (
		f     fragment
		preds []string
	)
	op := ":="
	if ctx.Negated {
		op = ":!="
	}
	for _, fv := range fields {
		mapped, ok := ResolveField(fv.Field, ctx)
		if !ok {
			f.warn("Skipped unmapped field %q", fv.Field)
			continue
		}
		for _, p := range fv.Params {
			f.warn("Unsupported %s parameter: %q", clause, p)
		}
		val, ok := renderValue(fv.Value)
		if !ok {
			f.warn("Skipped unsupported value for field %q", fv.Field)
			continue
		}
		preds = append(preds, mapped+op+val)
	}
	f.filter = strings.Join(preds, ctx.and())
	return f
}

func handleTerms(c dsl.Clause, ctx Context) fragment {
	t := c.(*dsl.Terms)
	var (
		f     fragment
		preds []string
	)
	op := ":="
	if ctx.Negated {
		op = ":!="
	}
	for _, fv := range t.Fields {
		mapped, ok := ResolveField(fv.Field, ctx)
		if !ok {
			f.warn("Skipped unmapped field %q", fv.Field)
			continue
		}
		list, ok := renderList(fv.Value)
		if !ok {
			f.warn("Skipped unsupported value for field %q", fv.Field)
			continue
		}
		preds = append(preds, mapped+op+list)
	}
	for _, p := range t.Params {
		f.warn("Unsupported terms parameter: %q", p)
	}
	f.filter = strings.Join(preds, ctx.and())
	return f
}
