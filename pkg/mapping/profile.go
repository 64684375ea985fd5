// Package mapping holds the per collection translation profile: the field
// mapping between an Elasticsearch index and a Typesense collection, the two
// schemas, and the translation defaults.
package mapping

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/atomic77/esfilter/pkg/fieldmatch"
)

// Profile configures translation for one collection. It is decoded from
// YAML; JSON documents decode the same way.
type Profile struct {
	Collection         string            `yaml:"collection" json:"collection"`
	PropertyMapping    map[string]string `yaml:"propertyMapping,omitempty" json:"propertyMapping,omitempty"`
	TypesenseSchema    *TypesenseSchema  `yaml:"typesenseSchema,omitempty" json:"typesenseSchema,omitempty"`
	ElasticSchema      *ElasticSchema    `yaml:"elasticSchema,omitempty" json:"elasticSchema,omitempty"`
	AutoMapProperties  bool              `yaml:"autoMapProperties,omitempty" json:"autoMapProperties,omitempty"`
	FieldMatchStrategy string            `yaml:"fieldMatchStrategy,omitempty" json:"fieldMatchStrategy,omitempty"`
	DefaultQueryString string            `yaml:"defaultQueryString,omitempty" json:"defaultQueryString,omitempty"`
	DefaultScoreField  string            `yaml:"defaultScoreField,omitempty" json:"defaultScoreField,omitempty"`
}

var ErrNoCollection = errors.New("profile has no collection name")

// LoadFile reads and parses a profile file.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a profile, applies defaults and validates it.
func Parse(data []byte) (*Profile, error) {
	return parse(data, "")
}

// ParseCollection is Parse for a profile addressed by collection name. The
// document may leave the collection out but must not name a different one.
func ParseCollection(collection string, data []byte) (*Profile, error) {
	return parse(data, collection)
}

func parse(data []byte, collection string) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if collection != "" {
		if p.Collection == "" {
			p.Collection = collection
		} else if p.Collection != collection {
			return nil, fmt.Errorf("profile is for collection %q, not %q", p.Collection, collection)
		}
	}
	applyDefaults(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal serializes a profile to YAML.
func Marshal(p *Profile) ([]byte, error) {
	return yaml.Marshal(p)
}

func applyDefaults(p *Profile) {
	if p.DefaultQueryString == "" {
		p.DefaultQueryString = "*"
	}
	if p.PropertyMapping == nil {
		p.PropertyMapping = map[string]string{}
	}
	if p.TypesenseSchema != nil && p.TypesenseSchema.Name == "" {
		p.TypesenseSchema.Name = p.Collection
	}
}

// Validate checks the parts of a profile that would make every translation
// with it wrong.
func (p *Profile) Validate() error {
	if p.Collection == "" {
		return ErrNoCollection
	}
	if _, err := fieldmatch.ByName(p.FieldMatchStrategy); err != nil {
		return fmt.Errorf("profile %s: %w", p.Collection, err)
	}
	for src, dst := range p.PropertyMapping {
		if src == "" || dst == "" {
			return fmt.Errorf("profile %s: empty name in property mapping %q -> %q", p.Collection, src, dst)
		}
	}
	if p.TypesenseSchema != nil {
		seen := make(map[string]bool, len(p.TypesenseSchema.Fields))
		for _, f := range p.TypesenseSchema.Fields {
			if f.Name == "" {
				return fmt.Errorf("profile %s: typesense field without a name", p.Collection)
			}
			if seen[f.Name] {
				return fmt.Errorf("profile %s: duplicate typesense field %q", p.Collection, f.Name)
			}
			seen[f.Name] = true
		}
	}
	return nil
}
