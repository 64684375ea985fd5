package dsl

// Custom json handling to deal with all the wacky ways ES allows users
// to submit queries, while keeping the key order of every object: Go maps
// would lose it and the translated filter must follow the source order.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("expected a JSON object")

// eachMember calls fn for every member of the JSON object in b, in document
// order.
func eachMember(b []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return err
		}
		if err = fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// decodeValue decodes raw keeping numbers as json.Number so that literals
// survive translation unchanged.
func decodeValue(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func firstByte(raw json.RawMessage) byte {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (q *Query) UnmarshalJSON(b []byte) error {
	q.Clauses = nil
	return eachMember(b, func(key string, raw json.RawMessage) error {
		q.Clauses = append(q.Clauses, parseClause(key, raw))
		return nil
	})
}

func parseClause(key string, raw json.RawMessage) Clause {
	var (
		c   Clause
		err error
	)
	switch Kind(key) {
	case KindMatch:
		var fields []FieldValue
		fields, err = parseFieldValues(raw, "query")
		c = &Match{Fields: fields}
	case KindTerm:
		var fields []FieldValue
		fields, err = parseFieldValues(raw, "value")
		c = &Term{Fields: fields}
	case KindTerms:
		c, err = parseTerms(raw)
	case KindRange:
		c, err = parseRange(raw)
	case KindBool:
		c, err = parseBool(raw)
	case KindFunctionScore:
		c, err = parseFunctionScore(raw)
	case KindMatchAll:
		if firstByte(raw) != '{' {
			err = errNotObject
		}
		c = &MatchAll{}
	default:
		return &Unsupported{Name: key}
	}
	if err != nil {
		return &Malformed{Name: key, Err: err}
	}
	return c
}

// parseFieldValues accepts both the shorthand {"field": "value"} and the
// long form {"field": {"<valueKey>": "value", ...}}.
// More info: https://www.elastic.co/guide/en/elasticsearch/reference/7.17/query-dsl-match-query.html#query-dsl-match-query-short-ex
func parseFieldValues(raw json.RawMessage, valueKey string) ([]FieldValue, error) {
	var fields []FieldValue
	err := eachMember(raw, func(field string, rawVal json.RawMessage) error {
		fv := FieldValue{Field: field}
		if firstByte(rawVal) != '{' {
			v, err := decodeValue(rawVal)
			if err != nil {
				return err
			}
			fv.Value = v
			fields = append(fields, fv)
			return nil
		}

		found := false
		err := eachMember(rawVal, func(key string, opt json.RawMessage) error {
			if key != valueKey {
				fv.Params = append(fv.Params, key)
				return nil
			}
			v, err := decodeValue(opt)
			if err != nil {
				return err
			}
			fv.Value = v
			found = true
			return nil
		})
		if err != nil {
			return err
		}
		if !found {
			// Leave the whole object as the value so it gets reported.
			obj, err := decodeValue(rawVal)
			if err != nil {
				return err
			}
			fv.Value = obj
			fv.Params = nil
		}
		fields = append(fields, fv)
		return nil
	})
	return fields, err
}

func parseTerms(raw json.RawMessage) (*Terms, error) {
	t := &Terms{}
	err := eachMember(raw, func(key string, rawVal json.RawMessage) error {
		switch key {
		case "boost", "_name":
			t.Params = append(t.Params, key)
			return nil
		}
		v, err := decodeValue(rawVal)
		if err != nil {
			return err
		}
		t.Fields = append(t.Fields, FieldValue{Field: key, Value: v})
		return nil
	})
	return t, err
}

func parseRange(raw json.RawMessage) (*Range, error) {
	r := &Range{}
	err := eachMember(raw, func(field string, rawOpts json.RawMessage) error {
		rf, err := parseRangeField(field, rawOpts)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		r.Fields = append(r.Fields, rf)
		return nil
	})
	return r, err
}

func parseRangeField(field string, raw json.RawMessage) (RangeField, error) {
	rf := RangeField{Field: field}
	var (
		from, to                   interface{}
		hasFrom, hasTo             bool
		includeLower, includeUpper = true, true
		bounds                     = map[BoundOp]interface{}{}
	)

	err := eachMember(raw, func(key string, rawVal json.RawMessage) error {
		var err error
		switch key {
		case "gte":
			bounds[Gte], err = decodeValue(rawVal)
		case "gt":
			bounds[Gt], err = decodeValue(rawVal)
		case "lte":
			bounds[Lte], err = decodeValue(rawVal)
		case "lt":
			bounds[Lt], err = decodeValue(rawVal)
		case "from":
			// Explicit nulls mean "unbounded" in the legacy syntax.
			if !isNull(rawVal) {
				from, err = decodeValue(rawVal)
				hasFrom = true
			}
		case "to":
			if !isNull(rawVal) {
				to, err = decodeValue(rawVal)
				hasTo = true
			}
		// These have been deprecated since version 0.9 (!) but some clients
		// in the wild still depend on them.
		// https://github.com/elastic/elasticsearch/issues/48538
		case "include_lower":
			err = json.Unmarshal(rawVal, &includeLower)
		case "include_upper":
			err = json.Unmarshal(rawVal, &includeUpper)
		case "format":
			err = json.Unmarshal(rawVal, &rf.Format)
		default:
			rf.Params = append(rf.Params, key)
		}
		return err
	})
	if err != nil {
		return rf, err
	}

	if hasFrom {
		if includeLower {
			bounds[Gte] = from
		} else {
			bounds[Gt] = from
		}
	}
	if hasTo {
		if includeUpper {
			bounds[Lte] = to
		} else {
			bounds[Lt] = to
		}
	}
	for _, op := range []BoundOp{Gte, Gt, Lte, Lt} {
		if v, ok := bounds[op]; ok {
			rf.Bounds = append(rf.Bounds, Bound{Op: op, Value: v})
		}
	}
	return rf, nil
}

// parseQueries accepts a single query object or an array of them, as ES
// does for every bool occurrence type.
func parseQueries(raw json.RawMessage) ([]*Query, error) {
	if firstByte(raw) == '[' {
		var qs []*Query
		if err := json.Unmarshal(raw, &qs); err != nil {
			return nil, err
		}
		for i, q := range qs {
			if q == nil {
				return nil, fmt.Errorf("entry %d is null", i)
			}
		}
		return qs, nil
	}
	q := &Query{}
	if err := json.Unmarshal(raw, q); err != nil {
		return nil, err
	}
	return []*Query{q}, nil
}

func parseBool(raw json.RawMessage) (*Bool, error) {
	b := &Bool{}
	err := eachMember(raw, func(key string, rawVal json.RawMessage) error {
		var (
			qs  []*Query
			err error
		)
		switch key {
		case "must", "filter", "should", "must_not":
			qs, err = parseQueries(rawVal)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		default:
			b.Params = append(b.Params, key)
			return nil
		}
		switch key {
		case "must":
			b.Must = append(b.Must, qs...)
		case "filter":
			b.Filter = append(b.Filter, qs...)
		case "should":
			b.Should = append(b.Should, qs...)
		case "must_not":
			b.MustNot = append(b.MustNot, qs...)
		}
		return nil
	})
	return b, err
}

func parseFunctionScore(raw json.RawMessage) (*FunctionScore, error) {
	fs := &FunctionScore{}
	err := eachMember(raw, func(key string, rawVal json.RawMessage) error {
		switch key {
		case "query":
			q := &Query{}
			if err := json.Unmarshal(rawVal, q); err != nil {
				return fmt.Errorf("query: %w", err)
			}
			fs.Query = q
			return nil
		case "field_value_factor":
			fvf := &FieldValueFactor{}
			if err := json.Unmarshal(rawVal, fvf); err != nil {
				return fmt.Errorf("field_value_factor: %w", err)
			}
			fs.FieldValueFactor = fvf
		}
		fs.Params = append(fs.Params, key)
		return nil
	})
	return fs, err
}
