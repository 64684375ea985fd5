package dsl

import (
	"encoding/json"
	"testing"

	require "github.com/alecthomas/assert/v2"
	"github.com/alecthomas/repr"
)

func parseQuery(t *testing.T, s string) *Query {
	t.Helper()
	q := &Query{}
	require.NoError(t, json.Unmarshal([]byte(s), q))
	return q
}

func TestClauseOrderIsPreserved(t *testing.T) {
	q := parseQuery(t, `{"range": {"b": {"gte": 1}}, "match": {"z": "1", "a": "2"}, "foo": {}}`)
	require.Equal(t, 3, len(q.Clauses))
	require.Equal(t, KindRange, q.Clauses[0].Kind())
	require.Equal(t, KindMatch, q.Clauses[1].Kind())
	require.Equal(t, KindUnsupported, q.Clauses[2].Kind())
	require.Equal(t, "foo", q.Clauses[2].Keyword())

	m := q.Clauses[1].(*Match)
	require.Equal(t, "z", m.Fields[0].Field)
	require.Equal(t, "a", m.Fields[1].Field)
}

func TestBasicMatch(t *testing.T) {
	q := parseQuery(t, `{"match": {"foo": "bar", "n": 42, "ok": true}}`)
	m := q.Clauses[0].(*Match)
	require.Equal(t, []FieldValue{
		{Field: "foo", Value: "bar"},
		{Field: "n", Value: json.Number("42")},
		{Field: "ok", Value: true},
	}, m.Fields)
}

func TestMatchLongForm(t *testing.T) {
	q := parseQuery(t, `{"match": {"message": {"query": "hello", "operator": "and", "fuzziness": "AUTO"}}}`)
	m := q.Clauses[0].(*Match)
	require.Equal(t, "hello", m.Fields[0].Value)
	require.Equal(t, []string{"operator", "fuzziness"}, m.Fields[0].Params)
}

func TestMatchLongFormWithoutQuery(t *testing.T) {
	q := parseQuery(t, `{"match": {"message": {"operator": "and"}}}`)
	m := q.Clauses[0].(*Match)
	require.Equal[interface{}](t, map[string]interface{}{"operator": "and"}, m.Fields[0].Value)
	require.Equal(t, 0, len(m.Fields[0].Params))
}

func TestTermLongForm(t *testing.T) {
	q := parseQuery(t, `{"term": {"user.id": {"value": "kimchy", "boost": 1.0}}}`)
	term := q.Clauses[0].(*Term)
	require.Equal(t, "kimchy", term.Fields[0].Value)
	require.Equal(t, []string{"boost"}, term.Fields[0].Params)
}

func TestTerms(t *testing.T) {
	q := parseQuery(t, `{"terms": {"tags": ["a", "b"], "boost": 2}}`)
	terms := q.Clauses[0].(*Terms)
	require.Equal(t, 1, len(terms.Fields))
	require.Equal[interface{}](t, []interface{}{"a", "b"}, terms.Fields[0].Value)
	require.Equal(t, []string{"boost"}, terms.Params)
}

func TestRange(t *testing.T) {
	q := parseQuery(t, `
	{
		"range": {
			"fooTime": {
				"lte": "1655322854570",
				"gte": 1654718054570,
				"format": "epoch_millis",
				"boost": 2
			}
		}
	}`)
	r := q.Clauses[0].(*Range)
	rf := r.Fields[0]
	require.Equal(t, "fooTime", rf.Field)
	require.Equal(t, "epoch_millis", rf.Format)
	require.Equal(t, []Bound{
		{Op: Gte, Value: json.Number("1654718054570")},
		{Op: Lte, Value: "1655322854570"},
	}, rf.Bounds)
	require.Equal(t, []string{"boost"}, rf.Params)
}

func TestRangeWithBooleanParams(t *testing.T) {
	/* Legacy from/to with include_lower/include_upper */
	q := parseQuery(t, `
	{
		"range": {
			"age": {"from": 10, "to": 20, "include_lower": false},
			"price": {"from": null, "to": 5}
		}
	}`)
	r := q.Clauses[0].(*Range)
	require.Equal(t, []Bound{
		{Op: Gt, Value: json.Number("10")},
		{Op: Lte, Value: json.Number("20")},
	}, r.Fields[0].Bounds)
	require.Equal(t, []Bound{{Op: Lte, Value: json.Number("5")}}, r.Fields[1].Bounds)
}

func TestNestedBoolArrayMultiple(t *testing.T) {
	q := parseQuery(t, `
	{
		"bool": {
			"must": [
				{"match": {"foo": "bar"}},
				{"range": {"fooTime": {"gte": 1654718054570, "lte": 1655322854570}}}
			],
			"should": {"term": {"oof": "rab"}},
			"must_not": [{"match": {"x": 1}}],
			"filter": [],
			"minimum_should_match": 1
		}
	}`)
	b := q.Clauses[0].(*Bool)
	require.Equal(t, 2, len(b.Must))
	require.Equal(t, 1, len(b.Should))
	require.Equal(t, 1, len(b.MustNot))
	require.Equal(t, 0, len(b.Filter))
	require.Equal(t, []string{"minimum_should_match"}, b.Params)
	require.Equal(t, KindTerm, b.Should[0].Clauses[0].Kind())
}

func TestMalformedClause(t *testing.T) {
	q := parseQuery(t, `{"bool": {"must": "nope"}, "terms": [1, 2]}`)
	require.Equal(t, KindMalformed, q.Clauses[0].Kind())
	require.Equal(t, "bool", q.Clauses[0].Keyword())
	require.Equal(t, KindMalformed, q.Clauses[1].Kind())
	require.Equal(t, "terms", q.Clauses[1].Keyword())
}

func TestFunctionScore(t *testing.T) {
	q := parseQuery(t, `
	{
		"function_score": {
			"boost": 5,
			"query": {"match": {"title": "go"}},
			"field_value_factor": {"field": "likes", "factor": 1.2},
			"boost_mode": "multiply"
		}
	}`)
	fs := q.Clauses[0].(*FunctionScore)
	require.Equal(t, KindMatch, fs.Query.Clauses[0].Kind())
	require.Equal(t, "likes", fs.FieldValueFactor.Field)
	require.Equal(t, []string{"boost", "field_value_factor", "boost_mode"}, fs.Params)
}

func TestQueryMustBeObject(t *testing.T) {
	q := &Query{}
	require.Error(t, json.Unmarshal([]byte(`["match"]`), q))
}

func TestRequest(t *testing.T) {
	r, err := Parse([]byte(`
	{
		"query": {"term": {"foo": "bar"}},
		"size": 10,
		"from": 20,
		"sort": ["_score", {"asdf": {"order": "desc"}}, {"price": "asc"}],
		"track_total_hits": true
	}`))
	require.NoError(t, err)
	repr.Println(r)
	require.Equal(t, 10, *r.Size)
	require.Equal(t, 20, *r.From)
	require.Equal(t, []*Sort{
		{Field: "_score"},
		{Field: "asdf", Order: "desc"},
		{Field: "price", Order: "asc"},
	}, r.Sort)
	require.Equal(t, []string{"track_total_hits"}, r.Params)
}

func TestRequestNullQuery(t *testing.T) {
	r, err := Parse([]byte(`{"query": null, "size": 0}`))
	require.NoError(t, err)
	require.True(t, r.Query == nil)
}
