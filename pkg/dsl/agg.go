package dsl

import (
	"encoding/json"
	"fmt"
)

// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/search-aggregations.html
// Only terms aggregations have a counterpart (facets); the rest are kept by
// type name so they can be reported.
type Aggregate struct {
	Name string
	Type string
	// Terms is set when Type is "terms".
	Terms *AggTerms
	// Sub holds nested aggregations ("aggs" inside an aggregation).
	Sub []*Aggregate
}

type AggTerms struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

func parseAggregations(raw json.RawMessage) ([]*Aggregate, error) {
	var aggs []*Aggregate
	err := eachMember(raw, func(name string, body json.RawMessage) error {
		a, err := parseAggregate(name, body)
		if err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
		aggs = append(aggs, a)
		return nil
	})
	return aggs, err
}

func parseAggregate(name string, raw json.RawMessage) (*Aggregate, error) {
	a := &Aggregate{Name: name}
	err := eachMember(raw, func(key string, body json.RawMessage) error {
		switch key {
		case "aggs", "aggregations":
			sub, err := parseAggregations(body)
			if err != nil {
				return err
			}
			a.Sub = append(a.Sub, sub...)
			return nil
		case "meta":
			return nil
		}
		if a.Type != "" {
			return fmt.Errorf("found both %q and %q", a.Type, key)
		}
		a.Type = key
		if key == "terms" {
			a.Terms = &AggTerms{}
			return json.Unmarshal(body, a.Terms)
		}
		return nil
	})
	return a, err
}
