package transform

import (
	"fmt"
	"strings"
)

// https://typesense.org/docs/latest/api/search.html#search-parameters
type TargetQuery struct {
	Q              string `json:"q"`
	FilterBy       string `json:"filter_by,omitempty"`
	SortBy         string `json:"sort_by,omitempty"`
	PerPage        *int   `json:"per_page,omitempty"`
	Page           *int   `json:"page,omitempty"`
	QueryBy        string `json:"query_by,omitempty"`
	QueryByWeights string `json:"query_by_weights,omitempty"`
	FacetBy        string `json:"facet_by,omitempty"`
	MaxFacetValues *int   `json:"max_facet_values,omitempty"`
}

// Result is a translated query together with everything that could not be
// translated, in the order it was met.
type Result struct {
	Query    TargetQuery `json:"query"`
	Warnings []string    `json:"warnings"`
}

// fragment is what a clause handler produces.
type fragment struct {
	filter   string
	sortBy   []string
	warnings []string
}

func (f *fragment) warn(format string, args ...interface{}) {
	f.warnings = append(f.warnings, fmt.Sprintf(format, args...))
}

// add merges a child's sort hints and warnings into f and returns the
// child's filter.
func (f *fragment) add(child fragment) string {
	f.sortBy = append(f.sortBy, child.sortBy...)
	f.warnings = append(f.warnings, child.warnings...)
	return child.filter
}

// join combines non empty filters with op. With more than one operand each is
// parenthesized and so is the whole; Normalize strips what is not needed.
func join(filters []string, op string) string {
	var parts []string
	for _, f := range filters {
		if f != "" {
			parts = append(parts, f)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	for i, p := range parts {
		parts[i] = "(" + p + ")"
	}
	return "(" + strings.Join(parts, op) + ")"
}

// dedupe drops repeated sort hints, keeping the first occurrence.
func dedupe(hints []string) []string {
	seen := make(map[string]bool, len(hints))
	var out []string
	for _, h := range hints {
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
