package mapping

import "sort"

// TypesenseSchema is the subset of a Typesense collection schema the
// translator looks at.
type TypesenseSchema struct {
	Name   string           `yaml:"name,omitempty" json:"name,omitempty"`
	Fields []TypesenseField `yaml:"fields" json:"fields"`
}

type TypesenseField struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Facet    bool   `yaml:"facet,omitempty" json:"facet,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// FieldNames returns the field names in schema order.
func (s *TypesenseSchema) FieldNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Field looks a field up by name.
func (s *TypesenseSchema) Field(name string) (TypesenseField, bool) {
	if s != nil {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return TypesenseField{}, false
}

// ElasticSchema is the "mappings" section of an Elasticsearch index (or
// index template).
type ElasticSchema struct {
	Properties map[string]ElasticProperty `yaml:"properties" json:"properties"`
}

type ElasticProperty struct {
	Type       string                     `yaml:"type,omitempty" json:"type,omitempty"`
	Format     string                     `yaml:"format,omitempty" json:"format,omitempty"`
	Properties map[string]ElasticProperty `yaml:"properties,omitempty" json:"properties,omitempty"`
	Fields     map[string]ElasticProperty `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FieldNames flattens nested object properties into dotted names
// ("user.name"), sorted.
func (s *ElasticSchema) FieldNames() []string {
	if s == nil {
		return nil
	}
	var names []string
	flatten("", s.Properties, &names)
	sort.Strings(names)
	return names
}

// Property finds a property by its dotted name.
func (s *ElasticSchema) Property(name string) (ElasticProperty, bool) {
	if s == nil {
		return ElasticProperty{}, false
	}
	props := s.Properties
	var (
		p  ElasticProperty
		ok bool
	)
	for _, part := range splitPath(name) {
		if p, ok = props[part]; !ok {
			return ElasticProperty{}, false
		}
		props = p.Properties
	}
	return p, ok
}

func flatten(prefix string, props map[string]ElasticProperty, names *[]string) {
	for name, p := range props {
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		if len(p.Properties) > 0 {
			flatten(full, p.Properties, names)
			continue
		}
		*names = append(*names, full)
	}
}

func splitPath(name string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			parts = append(parts, name[start:i])
			start = i + 1
		}
	}
	return append(parts, name[start:])
}
