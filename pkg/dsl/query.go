package dsl

// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/query-dsl.html

// Kind tags each clause variant so transformers can be looked up without
// probing payloads.
type Kind string

const (
	KindMatch         Kind = "match"
	KindTerm          Kind = "term"
	KindTerms         Kind = "terms"
	KindRange         Kind = "range"
	KindBool          Kind = "bool"
	KindFunctionScore Kind = "function_score"
	KindMatchAll      Kind = "match_all"

	// KindUnsupported and KindMalformed have no transformer.
	KindUnsupported Kind = "unsupported"
	KindMalformed   Kind = "malformed"
)

// Clause is one keyword of a query object together with its decoded payload.
type Clause interface {
	Kind() Kind
	// Keyword is the key the clause was written under in the source query.
	Keyword() string
}

// Query is a query object. Clauses keep the key order of the source JSON,
// which decides the order of the translated filter fragments.
type Query struct {
	Clauses []Clause
}

// FieldValue is a single field entry of a match, term or terms clause.
type FieldValue struct {
	Field string
	// Value is a string, json.Number, bool, nil, []interface{} or
	// map[string]interface{} as decoded from the source.
	Value interface{}
	// Params lists options given next to the value in the long form
	// ({"field": {"query": ..., "fuzziness": ...}}).
	Params []string
}

type Match struct {
	Fields []FieldValue
}

type Term struct {
	Fields []FieldValue
}

type Terms struct {
	Fields []FieldValue
	Params []string
}

type BoundOp int

const (
	Gte BoundOp = iota
	Gt
	Lte
	Lt
)

func (op BoundOp) String() string {
	switch op {
	case Gte:
		return "gte"
	case Gt:
		return "gt"
	case Lte:
		return "lte"
	case Lt:
		return "lt"
	}
	return "unknown"
}

type Bound struct {
	Op    BoundOp
	Value interface{}
}

type RangeField struct {
	Field string
	// Bounds are ordered lower bounds first: gte, gt, lte, lt.
	Bounds []Bound
	Format string
	Params []string
}

type Range struct {
	Fields []RangeField
}

type Bool struct {
	Must    []*Query
	Filter  []*Query
	Should  []*Query
	MustNot []*Query
	Params  []string
}

// https://www.elastic.co/guide/en/elasticsearch/reference/7.17/query-dsl-function-score-query.html
type FunctionScore struct {
	Query            *Query
	FieldValueFactor *FieldValueFactor
	// Params holds every key except "query", in source order.
	Params []string
}

type FieldValueFactor struct {
	Field    string   `json:"field"`
	Factor   float64  `json:"factor"`
	Modifier string   `json:"modifier"`
	Missing  *float64 `json:"missing"`
}

type MatchAll struct{}

// Unsupported is a keyword with no known translation.
type Unsupported struct {
	Name string
}

// Malformed is a known keyword whose payload could not be decoded.
type Malformed struct {
	Name string
	Err  error
}

func (*Match) Kind() Kind         { return KindMatch }
func (*Term) Kind() Kind          { return KindTerm }
func (*Terms) Kind() Kind         { return KindTerms }
func (*Range) Kind() Kind         { return KindRange }
func (*Bool) Kind() Kind          { return KindBool }
func (*FunctionScore) Kind() Kind { return KindFunctionScore }
func (*MatchAll) Kind() Kind      { return KindMatchAll }
func (*Unsupported) Kind() Kind   { return KindUnsupported }
func (*Malformed) Kind() Kind     { return KindMalformed }

func (*Match) Keyword() string         { return string(KindMatch) }
func (*Term) Keyword() string          { return string(KindTerm) }
func (*Terms) Keyword() string         { return string(KindTerms) }
func (*Range) Keyword() string         { return string(KindRange) }
func (*Bool) Keyword() string          { return string(KindBool) }
func (*FunctionScore) Keyword() string { return string(KindFunctionScore) }
func (*MatchAll) Keyword() string      { return string(KindMatchAll) }
func (u *Unsupported) Keyword() string { return u.Name }
func (m *Malformed) Keyword() string   { return m.Name }
