// Package fieldmatch provides the name matching strategies used to pair
// Elasticsearch field names with Typesense field names when no explicit
// mapping entry exists.
package fieldmatch

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy reports whether an Elasticsearch field and a Typesense field
// should be treated as the same field.
type Strategy func(elasticField, typesenseField string) bool

// Exact matches identical names only.
func Exact(elasticField, typesenseField string) bool {
	return elasticField == typesenseField
}

// CaseInsensitive matches names that differ only in case.
func CaseInsensitive(elasticField, typesenseField string) bool {
	return strings.EqualFold(elasticField, typesenseField)
}

// Normalized matches names that are equal after dropping case and
// separators (created_at ~ createdAt ~ created.at).
func Normalized(elasticField, typesenseField string) bool {
	return NormalizeIdent(elasticField) == NormalizeIdent(typesenseField)
}

// Fuzzy matches names whose Similarity is at least threshold.
func Fuzzy(threshold float64) Strategy {
	return func(elasticField, typesenseField string) bool {
		return Similarity(elasticField, typesenseField) >= threshold
	}
}

// ByName resolves a strategy from its configuration name: "exact",
// "case_insensitive", "normalized" or "fuzzy" with an optional threshold
// ("fuzzy:0.8", default 0.85). An empty name means no strategy.
func ByName(name string) (Strategy, error) {
	kind, arg, hasArg := strings.Cut(name, ":")
	switch kind {
	case "":
		return nil, nil
	case "exact":
		return Exact, nil
	case "case_insensitive":
		return CaseInsensitive, nil
	case "normalized":
		return Normalized, nil
	case "fuzzy":
		threshold := 0.85
		if hasArg {
			t, err := strconv.ParseFloat(arg, 64)
			if err != nil || t <= 0 || t > 1 {
				return nil, fmt.Errorf("invalid fuzzy threshold %q", arg)
			}
			threshold = t
		}
		return Fuzzy(threshold), nil
	}
	return nil, fmt.Errorf("unknown field match strategy %q", name)
}
