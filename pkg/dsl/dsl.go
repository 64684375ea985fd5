package dsl

import (
	"encoding/json"
	"fmt"
)

// https://www.elastic.co/guide/en/elasticsearch/reference/current/search-search.html#search-search-api-example

// Request is the body of an Elasticsearch _search call.
type Request struct {
	Query *Query
	Size  *int
	From  *int
	Sort  []*Sort
	Aggs  []*Aggregate
	// Params lists top level keys that were not understood.
	Params []string
}

// https://www.elastic.co/guide/en/elasticsearch/reference/current/sort-search-results.html
type Sort struct {
	Field string `json:"-"`
	Order string `json:"order"`
	Mode  string `json:"mode"`
}

// Parse decodes an Elasticsearch search body.
func Parse(b []byte) (*Request, error) {
	r := &Request{}
	if err := json.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("dsl: %w", err)
	}
	return r, nil
}

func (r *Request) UnmarshalJSON(b []byte) error {
	*r = Request{}
	return eachMember(b, func(key string, raw json.RawMessage) error {
		var err error
		switch key {
		case "query":
			if isNull(raw) {
				return nil
			}
			r.Query = &Query{}
			err = json.Unmarshal(raw, r.Query)
		case "size":
			err = json.Unmarshal(raw, &r.Size)
		case "from":
			err = json.Unmarshal(raw, &r.From)
		case "sort":
			r.Sort, err = parseSort(raw)
		case "aggs", "aggregations":
			var aggs []*Aggregate
			aggs, err = parseAggregations(raw)
			r.Aggs = append(r.Aggs, aggs...)
		default:
			r.Params = append(r.Params, key)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

// Sort entries can be "field", {"field": "desc"} or
// {"field": {"order": "desc", "mode": "avg"}}, either alone or in an array.
func parseSort(raw json.RawMessage) ([]*Sort, error) {
	var entries []json.RawMessage
	if firstByte(raw) == '[' {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
	} else {
		entries = []json.RawMessage{raw}
	}

	var sorts []*Sort
	for _, e := range entries {
		if firstByte(e) == '"' {
			s := &Sort{}
			if err := json.Unmarshal(e, &s.Field); err != nil {
				return nil, err
			}
			sorts = append(sorts, s)
			continue
		}
		err := eachMember(e, func(field string, rawOrder json.RawMessage) error {
			s := &Sort{Field: field}
			if firstByte(rawOrder) == '"' {
				if err := json.Unmarshal(rawOrder, &s.Order); err != nil {
					return err
				}
			} else if err := json.Unmarshal(rawOrder, s); err != nil {
				return err
			}
			sorts = append(sorts, s)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return sorts, nil
}
