package transform

import (
	"github.com/atomic77/esfilter/pkg/dsl"
)

// Scoring has no place in filter_by. The wrapped query is translated as if
// the function_score were not there; field_value_factor on a mapped field
// becomes a descending sort. An unmapped factor field is reported like any
// other unmapped field. Any other parameter is either approximated by a sort
// on DefaultScoreField or reported.
func handleFunctionScore(c dsl.Clause, ctx Context) fragment {
	fs := c.(*dsl.FunctionScore)
	var f fragment
	f.filter = f.add(dispatch(fs.Query, ctx))

	usedDefault := false
	for _, p := range fs.Params {
		if p == "field_value_factor" && fs.FieldValueFactor != nil {
			mapped, ok := ResolveField(fs.FieldValueFactor.Field, ctx)
			if ok {
				f.sortBy = append(f.sortBy, mapped+":desc")
				continue
			}
			f.warn("Skipped unmapped field %q", fs.FieldValueFactor.Field)
			if ctx.DefaultScoreField == "" {
				continue
			}
		}
		if ctx.DefaultScoreField == "" {
			f.warn("Unsupported function_score parameter: %q", p)
			continue
		}
		if !usedDefault {
			f.sortBy = append(f.sortBy, ctx.DefaultScoreField+":desc")
			usedDefault = true
		}
	}
	return f
}
