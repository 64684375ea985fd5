package transform

import (
	"fmt"
	"strings"

	"github.com/atomic77/esfilter/pkg/dsl"
	"github.com/atomic77/esfilter/pkg/fieldmatch"
	"github.com/atomic77/esfilter/pkg/mapping"
)

// ES returns 10 hits unless told otherwise.
const defaultSize = 10

type Options struct {
	PropertyMapping map[string]string
	TypesenseSchema *mapping.TypesenseSchema
	ElasticSchema   *mapping.ElasticSchema
	// AutoMapProperties pairs every Elasticsearch property that has no
	// PropertyMapping entry with a Typesense field, using FieldMatchStrategy
	// or fieldmatch.Normalized. Both schemas are needed.
	AutoMapProperties  bool
	FieldMatchStrategy fieldmatch.Strategy
	// DefaultQueryString is used as q; "*" when empty.
	DefaultQueryString string
	DefaultScoreField  string
}

// Translator holds the configuration for one collection. It is not modified
// after New and can be shared between goroutines.
type Translator struct {
	ctx          Context
	defaultQuery string
}

func New(opts Options) *Translator {
	pm := make(map[string]string, len(opts.PropertyMapping))
	for k, v := range opts.PropertyMapping {
		pm[k] = v
	}
	if opts.AutoMapProperties && opts.ElasticSchema != nil && opts.TypesenseSchema != nil {
		autoMap(pm, opts)
	}

	q := opts.DefaultQueryString
	if q == "" {
		q = "*"
	}
	return &Translator{
		ctx: Context{
			PropertyMapping:    pm,
			ElasticSchema:      opts.ElasticSchema,
			TypesenseSchema:    opts.TypesenseSchema,
			FieldMatchStrategy: opts.FieldMatchStrategy,
			DefaultScoreField:  opts.DefaultScoreField,
		},
		defaultQuery: q,
	}
}

// FromProfile builds a Translator from a stored profile.
func FromProfile(p *mapping.Profile) (*Translator, error) {
	strategy, err := fieldmatch.ByName(p.FieldMatchStrategy)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Collection, err)
	}
	return New(Options{
		PropertyMapping:    p.PropertyMapping,
		TypesenseSchema:    p.TypesenseSchema,
		ElasticSchema:      p.ElasticSchema,
		AutoMapProperties:  p.AutoMapProperties,
		FieldMatchStrategy: strategy,
		DefaultQueryString: p.DefaultQueryString,
		DefaultScoreField:  p.DefaultScoreField,
	}), nil
}

func autoMap(pm map[string]string, opts Options) {
	strategy := opts.FieldMatchStrategy
	if strategy == nil {
		strategy = fieldmatch.Normalized
	}
	targets := opts.TypesenseSchema.FieldNames()
	for _, src := range opts.ElasticSchema.FieldNames() {
		if _, ok := pm[src]; ok {
			continue
		}
		for _, dst := range targets {
			if strategy(src, dst) {
				pm[src] = dst
				break
			}
		}
	}
}

// PropertyMapping returns a copy of the effective mapping, auto mapped
// entries included.
func (t *Translator) PropertyMapping() map[string]string {
	pm := make(map[string]string, len(t.ctx.PropertyMapping))
	for k, v := range t.ctx.PropertyMapping {
		pm[k] = v
	}
	return pm
}

// Translate translates a bare query object.
func (t *Translator) Translate(q *dsl.Query) Result {
	res := Transform(q, t.ctx)
	res.Query.Q = t.defaultQuery
	return res
}

// TranslateJSON decodes an Elasticsearch search body and translates it.
// Only decoding fails; everything else ends up in the warnings.
func (t *Translator) TranslateJSON(b []byte) (Result, error) {
	r, err := dsl.Parse(b)
	if err != nil {
		return Result{}, err
	}
	return t.TranslateRequest(r), nil
}

// TranslateRequest translates a whole search body: the query plus paging,
// sorting and terms aggregations.
func (t *Translator) TranslateRequest(r *dsl.Request) Result {
	res := t.Translate(r.Query)
	tq := &res.Query
	warn := func(format string, args ...interface{}) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...))
	}

	if t.ctx.TypesenseSchema != nil {
		tq.QueryBy = strings.Join(textFields(t.ctx.TypesenseSchema), ",")
	}

	size := defaultSize
	if r.Size != nil {
		size = *r.Size
		perPage := size
		tq.PerPage = &perPage
	}
	if r.From != nil && *r.From > 0 && size > 0 {
		page := *r.From/size + 1
		tq.Page = &page
		if *r.From%size != 0 {
			warn("Unaligned from offset")
		}
	}

	var sorts []string
	for _, s := range r.Sort {
		if s.Mode != "" {
			warn("Unsupported sort parameter: %q", "mode")
		}
		if s.Field == "_score" {
			sorts = append(sorts, "_text_match:"+sortOrder(s.Order, "desc"))
			continue
		}
		mapped, ok := ResolveField(s.Field, t.ctx)
		if !ok {
			warn("Skipped unmapped field %q", s.Field)
			continue
		}
		sorts = append(sorts, mapped+":"+sortOrder(s.Order, "asc"))
	}
	if len(sorts) > 0 {
		if tq.SortBy != "" {
			sorts = append(sorts, strings.Split(tq.SortBy, ",")...)
		}
		tq.SortBy = strings.Join(dedupe(sorts), ",")
	}

	facets, maxValues := t.handleAggs(r.Aggs, warn)
	if len(facets) > 0 {
		tq.FacetBy = strings.Join(dedupe(facets), ",")
	}
	if maxValues > 0 {
		tq.MaxFacetValues = &maxValues
	}

	for _, p := range r.Params {
		warn("Unsupported request parameter: %q", p)
	}
	return res
}

// Only terms aggregations map to anything: a facet on the field. The largest
// requested size becomes max_facet_values.
func (t *Translator) handleAggs(aggs []*dsl.Aggregate, warn func(string, ...interface{})) ([]string, int) {
	var (
		facets    []string
		maxValues int
	)
	for _, a := range aggs {
		if a.Terms == nil {
			warn("Unsupported aggregation: %q", a.Type)
			continue
		}
		mapped, ok := ResolveField(a.Terms.Field, t.ctx)
		if !ok {
			warn("Skipped unmapped field %q", a.Terms.Field)
			continue
		}
		facets = append(facets, mapped)
		if a.Terms.Size > maxValues {
			maxValues = a.Terms.Size
		}
		for _, sub := range a.Sub {
			warn("Unsupported aggregation: %q", sub.Type)
		}
	}
	return facets, maxValues
}

func sortOrder(order, def string) string {
	switch strings.ToLower(order) {
	case "asc":
		return "asc"
	case "desc":
		return "desc"
	}
	return def
}

// textFields lists the string fields of a collection, the ones query_by can
// search.
func textFields(s *mapping.TypesenseSchema) []string {
	var names []string
	for _, f := range s.Fields {
		if f.Type == "string" || f.Type == "string[]" {
			names = append(names, f.Name)
		}
	}
	return names
}
