package transform

import (
	"strings"

	"github.com/atomic77/esfilter/pkg/date"
	"github.com/atomic77/esfilter/pkg/dsl"
)

var (
	boundOps = map[dsl.BoundOp]string{
		dsl.Gte: ":>=",
		dsl.Gt:  ":>",
		dsl.Lte: ":<=",
		dsl.Lt:  ":<",
	}
	// Complement of each bound, used when the range is negated.
	negatedBoundOps = map[dsl.BoundOp]string{
		dsl.Gte: ":<",
		dsl.Gt:  ":<=",
		dsl.Lte: ":>",
		dsl.Lt:  ":>=",
	}
)

func handleRange(c dsl.Clause, ctx Context) fragment {
	r := c.(*dsl.Range)
	var (
		f     fragment
		preds []string
	)
	ops := boundOps
	if ctx.Negated {
		ops = negatedBoundOps
	}

	for _, rf := range r.Fields {
		mapped, ok := ResolveField(rf.Field, ctx)
		if !ok {
			f.warn("Skipped unmapped field %q", rf.Field)
			continue
		}
		for _, p := range rf.Params {
			f.warn("Unsupported range parameter: %q", p)
		}

		format := rangeFormat(rf, ctx)
		var fieldPreds []string
		for _, b := range rf.Bounds {
			v, err := date.Epoch(format, b.Value)
			if err != nil {
				fieldPreds = nil
				f.warn("Skipped unsupported value for field %q", rf.Field)
				break
			}
			fieldPreds = append(fieldPreds, mapped+ops[b.Op]+v)
		}
		preds = append(preds, fieldPreds...)
	}
	f.filter = strings.Join(preds, ctx.and())
	return f
}

// rangeFormat is the format given in the clause, or else the one declared
// for the field in the Elasticsearch mapping.
func rangeFormat(rf dsl.RangeField, ctx Context) string {
	if rf.Format != "" {
		return rf.Format
	}
	if p, ok := ctx.ElasticSchema.Property(cleanseKeyField(rf.Field)); ok {
		return p.Format
	}
	return ""
}
