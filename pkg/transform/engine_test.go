package transform

import (
	"encoding/json"
	"strings"
	"testing"

	require "github.com/alecthomas/assert/v2"

	"github.com/atomic77/esfilter/pkg/dsl"
	"github.com/atomic77/esfilter/pkg/fieldmatch"
	"github.com/atomic77/esfilter/pkg/mapping"
)

func query(t *testing.T, s string) *dsl.Query {
	t.Helper()
	q := &dsl.Query{}
	require.NoError(t, json.Unmarshal([]byte(s), q))
	return q
}

func testContext() Context {
	return Context{
		PropertyMapping: map[string]string{
			"status":     "status",
			"a":          "a",
			"b":          "b",
			"c":          "c",
			"price":      "price",
			"tags":       "tags",
			"likes":      "likes",
			"created_at": "createdAt",
		},
	}
}

func TestMatch(t *testing.T) {
	res := Transform(query(t, `{"match": {"status": "active"}}`), testContext())
	require.Equal(t, "*", res.Query.Q)
	require.Equal(t, `status:="active"`, res.Query.FilterBy)
	require.Equal(t, 0, len(res.Warnings))
}

func TestMatchScalars(t *testing.T) {
	res := Transform(query(t, `{"match": {"price": 9.5, "a": true, "b": "say \"hi\""}}`), testContext())
	require.Equal(t, "price:=9.5 && a:=true && b:=`say \"hi\"`", res.Query.FilterBy)
}

func TestMatchBackslashes(t *testing.T) {
	res := Transform(query(t, `{"match": {"a": "C:\\"}}`), testContext())
	require.Equal(t, "a:=`C:\\`", res.Query.FilterBy)
	require.Equal(t, 0, len(res.Warnings))

	res = Transform(query(t, `{"match": {"a": "x\\"}, "term": {"b": "y"}}`), testContext())
	require.Equal(t, "a:=`x\\` && b:=\"y\"", res.Query.FilterBy)
	require.Equal(t, 0, len(res.Warnings))
}

func TestMatchValueWithoutLiteralForm(t *testing.T) {
	res := Transform(query(t, "{\"match\": {\"a\": \"it's \\\"q\\\" and `tick`\", \"b\": \"y\"}}"), testContext())
	require.Equal(t, `b:="y"`, res.Query.FilterBy)
	require.Equal(t, []string{`Skipped unsupported value for field "a"`}, res.Warnings)

	res = Transform(query(t, `{"terms": {"tags": ["ok", "a\\`+"`"+`b"]}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, []string{`Skipped unsupported value for field "tags"`}, res.Warnings)
}

func TestMatchUnmappedField(t *testing.T) {
	res := Transform(query(t, `{"match": {"status": "active", "nope": "x"}}`), testContext())
	require.Equal(t, `status:="active"`, res.Query.FilterBy)
	require.Equal(t, []string{`Skipped unmapped field "nope"`}, res.Warnings)
}

func TestMatchUnsupportedValues(t *testing.T) {
	res := Transform(query(t, `{"match": {"a": null, "b": [1], "c": {"operator": "and"}}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, []string{
		`Skipped unsupported value for field "a"`,
		`Skipped unsupported value for field "b"`,
		`Skipped unsupported value for field "c"`,
	}, res.Warnings)
}

func TestMatchLongForm(t *testing.T) {
	res := Transform(query(t, `{"match": {"a": {"query": "x", "fuzziness": "AUTO"}}}`), testContext())
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported match parameter: "fuzziness"`}, res.Warnings)
}

func TestTermKeywordSuffix(t *testing.T) {
	res := Transform(query(t, `{"term": {"status.keyword": {"value": "active", "boost": 2}}}`), testContext())
	require.Equal(t, `status:="active"`, res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported term parameter: "boost"`}, res.Warnings)
}

func TestTerms(t *testing.T) {
	res := Transform(query(t, `{"terms": {"tags": ["a", "b"], "price": [1, 2.5], "boost": 1}}`), testContext())
	require.Equal(t, `tags:=["a","b"] && price:=[1,2.5]`, res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported terms parameter: "boost"`}, res.Warnings)
}

func TestTermsRejectsNonLists(t *testing.T) {
	res := Transform(query(t, `{"terms": {"tags": [], "a": "x", "b": [["nested"]]}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, 3, len(res.Warnings))
}

func TestRange(t *testing.T) {
	res := Transform(query(t, `{"range": {"price": {"lt": 20, "gte": 10}}}`), testContext())
	require.Equal(t, `price:>=10 && price:<20`, res.Query.FilterBy)

	neg := testContext()
	neg.Negated = true
	res = Transform(query(t, `{"range": {"price": {"lt": 20, "gte": 10}}}`), neg)
	require.Equal(t, `price:<10 || price:>=20`, res.Query.FilterBy)
}

func TestRangeDates(t *testing.T) {
	res := Transform(query(t, `{"range": {"created_at": {"gte": "2022-11-11T13:31:29Z", "lte": "1668173489"}}}`), testContext())
	require.Equal(t, `createdAt:>=1668173489 && createdAt:<=1668173489`, res.Query.FilterBy)

	ctx := testContext()
	ctx.ElasticSchema = &mapping.ElasticSchema{Properties: map[string]mapping.ElasticProperty{
		"created_at": {Type: "date", Format: "epoch_millis"},
	}}
	res = Transform(query(t, `{"range": {"created_at": {"gt": "2022-11-11"}}}`), ctx)
	require.Equal(t, `createdAt:>1668124800000`, res.Query.FilterBy)
}

func TestRangeWarnings(t *testing.T) {
	res := Transform(query(t, `{"range": {"price": {"gte": true, "lte": 5}, "a": {"gte": 1, "time_zone": "+01:00"}}}`), testContext())
	require.Equal(t, `a:>=1`, res.Query.FilterBy)
	require.Equal(t, []string{
		`Skipped unsupported value for field "price"`,
		`Unsupported range parameter: "time_zone"`,
	}, res.Warnings)
}

func TestRangeRejectsNonFiniteBounds(t *testing.T) {
	res := Transform(query(t, `{"range": {"price": {"gte": "NaN"}, "a": {"lt": "Infinity"}, "b": {"gt": 2}}}`), testContext())
	require.Equal(t, `b:>2`, res.Query.FilterBy)
	require.Equal(t, []string{
		`Skipped unsupported value for field "price"`,
		`Skipped unsupported value for field "a"`,
	}, res.Warnings)
}

func TestBoolMustNot(t *testing.T) {
	res := Transform(query(t, `
	{
		"bool": {
			"must": [{"match": {"a": "x"}}],
			"must_not": [{"match": {"b": "y"}}]
		}
	}`), testContext())
	require.Equal(t, `a:="x" && b:!="y"`, res.Query.FilterBy)
	require.Equal(t, 0, len(res.Warnings))
}

func TestBoolProcessingOrder(t *testing.T) {
	res := Transform(query(t, `
	{
		"bool": {
			"must_not": {"match": {"b": "y"}},
			"should": {"term": {"c": "z"}},
			"filter": {"term": {"status": "active"}},
			"must": {"match": {"a": "x"}}
		}
	}`), testContext())
	require.Equal(t, `a:="x" && status:="active" && c:="z" && b:!="y"`, res.Query.FilterBy)
}

func TestBoolShould(t *testing.T) {
	res := Transform(query(t, `
	{
		"bool": {
			"must": {"term": {"status": "active"}},
			"should": [{"term": {"a": "x"}}, {"term": {"b": "y"}}],
			"minimum_should_match": 1
		}
	}`), testContext())
	require.Equal(t, `status:="active" && (a:="x" || b:="y")`, res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported bool parameter: "minimum_should_match"`}, res.Warnings)
}

func TestNestedBool(t *testing.T) {
	res := Transform(query(t, `
	{
		"bool": {
			"must": [
				{"bool": {"must": [{"term": {"a": "x"}}, {"term": {"b": "y"}}]}},
				{"term": {"c": "z"}}
			]
		}
	}`), testContext())
	require.Equal(t, `a:="x" && b:="y" && c:="z"`, res.Query.FilterBy)

	res = Transform(query(t, `
	{
		"bool": {
			"should": [
				{"bool": {"must": [{"term": {"a": "x"}}, {"term": {"b": "y"}}]}},
				{"term": {"c": "z"}}
			]
		}
	}`), testContext())
	require.Equal(t, `(a:="x" && b:="y") || c:="z"`, res.Query.FilterBy)
}

func TestNegatedShouldUsesDeMorgan(t *testing.T) {
	res := Transform(query(t, `
	{
		"bool": {
			"must_not": {
				"bool": {"should": [{"term": {"a": "x"}}, {"range": {"price": {"gte": 1, "lte": 2}}}]}
			}
		}
	}`), testContext())
	require.Equal(t, `a:!="x" && (price:<1 || price:>2)`, res.Query.FilterBy)
}

func TestDoubleNegationCancels(t *testing.T) {
	neg := testContext()
	neg.Negated = true
	res := Transform(query(t, `{"bool": {"must_not": [{"match": {"a": "x"}}]}}`), neg)
	plain := Transform(query(t, `{"match": {"a": "x"}}`), testContext())
	require.Equal(t, plain.Query.FilterBy, res.Query.FilterBy)
	require.Equal(t, `a:="x"`, res.Query.FilterBy)

	res = Transform(query(t, `{"bool": {"must_not": {"bool": {"must_not": {"term": {"a": "x"}}}}}}`), testContext())
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
}

func TestNegatedMatchJoinsWithOr(t *testing.T) {
	neg := testContext()
	neg.Negated = true
	res := Transform(query(t, `{"match": {"a": "x", "b": 1}}`), neg)
	require.Equal(t, `a:!="x" || b:!=1`, res.Query.FilterBy)
}

func TestUnsupportedClause(t *testing.T) {
	res := Transform(query(t, `{"foo": {"x": 1}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported clause: "foo"`}, res.Warnings)
}

func TestMalformedClause(t *testing.T) {
	res := Transform(query(t, `{"terms": [1, 2], "match": {"a": "x"}}`), testContext())
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
	require.Equal(t, 1, len(res.Warnings))
	require.True(t, strings.HasPrefix(res.Warnings[0], `Malformed clause "terms": `))
}

func TestWarningsFollowTraversalOrder(t *testing.T) {
	res := Transform(query(t, `
	{
		"foo": 1,
		"match": {"x": "1"},
		"bool": {
			"must_not": [{"match": {"y": "2"}}],
			"must": [{"bar": {}}]
		}
	}`), Context{})
	require.Equal(t, []string{
		`Unsupported clause: "foo"`,
		`Skipped unmapped field "x"`,
		`Unsupported clause: "bar"`,
		`Skipped unmapped field "y"`,
	}, res.Warnings)
}

func TestMatchAll(t *testing.T) {
	res := Transform(query(t, `{"match_all": {}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, 0, len(res.Warnings))
}

func TestNegatedMatchAll(t *testing.T) {
	res := Transform(query(t, `{"bool": {"must_not": [{"match_all": {}}]}}`), testContext())
	require.Equal(t, "", res.Query.FilterBy)
	require.Equal(t, []string{`Unsupported negated clause: "match_all"`}, res.Warnings)

	res = Transform(query(t, `{"bool": {"must_not": [{"bool": {"must_not": [{"match_all": {}}]}}]}}`), testContext())
	require.Equal(t, 0, len(res.Warnings))
}

func TestNilQuery(t *testing.T) {
	res := Transform(nil, testContext())
	require.Equal(t, "*", res.Query.Q)
	require.Equal(t, "", res.Query.FilterBy)
}

func TestFunctionScore(t *testing.T) {
	in := `
	{
		"function_score": {
			"query": {"match": {"a": "x"}},
			"field_value_factor": {"field": "likes", "modifier": "log1p"},
			"boost": 2,
			"boost_mode": "multiply"
		}
	}`
	res := Transform(query(t, in), testContext())
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
	require.Equal(t, "likes:desc", res.Query.SortBy)
	require.Equal(t, []string{
		`Unsupported function_score parameter: "boost"`,
		`Unsupported function_score parameter: "boost_mode"`,
	}, res.Warnings)

	ctx := testContext()
	ctx.DefaultScoreField = "popularity"
	res = Transform(query(t, in), ctx)
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
	require.Equal(t, "likes:desc,popularity:desc", res.Query.SortBy)
	require.Equal(t, 0, len(res.Warnings))
}

func TestFunctionScoreUnmappedFactorField(t *testing.T) {
	in := `{"function_score": {"query": {"match": {"a": "x"}}, "field_value_factor": {"field": "rating"}, "boost": 2}}`
	res := Transform(query(t, in), testContext())
	require.Equal(t, `a:="x"`, res.Query.FilterBy)
	require.Equal(t, "", res.Query.SortBy)
	require.Equal(t, []string{
		`Skipped unmapped field "rating"`,
		`Unsupported function_score parameter: "boost"`,
	}, res.Warnings)

	ctx := testContext()
	ctx.DefaultScoreField = "popularity"
	res = Transform(query(t, in), ctx)
	require.Equal(t, "popularity:desc", res.Query.SortBy)
	require.Equal(t, []string{`Skipped unmapped field "rating"`}, res.Warnings)
}

func TestFunctionScoreSortHintsAreDeduplicated(t *testing.T) {
	ctx := testContext()
	ctx.DefaultScoreField = "popularity"
	res := Transform(query(t, `
	{
		"bool": {
			"should": [
				{"function_score": {"query": {"term": {"a": "x"}}, "boost": 2}},
				{"function_score": {"query": {"term": {"b": "y"}}, "weight": 3}}
			]
		}
	}`), ctx)
	require.Equal(t, `a:="x" || b:="y"`, res.Query.FilterBy)
	require.Equal(t, "popularity:desc", res.Query.SortBy)
}

func TestResolveField(t *testing.T) {
	ctx := Context{
		PropertyMapping: map[string]string{"product_name": "name", "empty": ""},
		TypesenseSchema: &mapping.TypesenseSchema{Fields: []mapping.TypesenseField{
			{Name: "name", Type: "string"},
			{Name: "createdAt", Type: "int64"},
		}},
	}

	mapped, ok := ResolveField("product_name.keyword", ctx)
	require.True(t, ok)
	require.Equal(t, "name", mapped)

	_, ok = ResolveField("created_at", ctx)
	require.False(t, ok)
	_, ok = ResolveField("empty", ctx)
	require.False(t, ok)

	ctx.FieldMatchStrategy = fieldmatch.Normalized
	mapped, ok = ResolveField("created_at", ctx)
	require.True(t, ok)
	require.Equal(t, "createdAt", mapped)
}

func TestOutputIsNormalized(t *testing.T) {
	for _, in := range []string{
		`{"bool": {"should": [{"bool": {"must_not": [{"term": {"a": "x"}}, {"term": {"b": "y"}}]}}, {"terms": {"tags": ["t"]}}]}}`,
		`{"bool": {"must": {"bool": {"should": {"bool": {"must": [{"term": {"a": "x"}}]}}}}}}`,
	} {
		f := Transform(query(t, in), testContext()).Query.FilterBy
		require.Equal(t, f, NormalizeParentheses(f))
	}
}
