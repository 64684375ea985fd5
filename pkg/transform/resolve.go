package transform

import "strings"

// ResolveField returns the Typesense field for an Elasticsearch field. The
// property mapping is consulted first, also for the name without a trailing
// ".keyword" since Typesense has no separate keyword sub field. After that
// the field match strategy, if any, picks the first Typesense schema field it
// accepts. ok is false when nothing matched; callers must skip the field
// rather than use the Elasticsearch name.
func ResolveField(field string, ctx Context) (string, bool) {
	base := cleanseKeyField(field)
	for _, name := range []string{field, base} {
		if mapped := ctx.PropertyMapping[name]; mapped != "" {
			return mapped, true
		}
	}

	if ctx.FieldMatchStrategy == nil || ctx.TypesenseSchema == nil {
		return "", false
	}
	for _, name := range []string{field, base} {
		for _, candidate := range ctx.TypesenseSchema.FieldNames() {
			if ctx.FieldMatchStrategy(name, candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// Strip away .keyword since we don't distinguish it
func cleanseKeyField(f string) string {
	return strings.TrimSuffix(f, ".keyword")
}
