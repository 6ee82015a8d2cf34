package store

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/sqlorm/sqlorm"
)

// Default primary key column.
const DefaultKey = `id`

/*
Declarative table definition. Typically loaded from YAML:

	name: users
	version: 2
	fields:
	  - field: id
	    type: INTEGER
	    isKey: true
	  - field: name
	    type: TEXT
	    isNotNull: true
*/
type Schema struct {
	Name    string         `json:"name"`
	Key     string         `json:"key,omitempty"`
	Version int            `json:"version,omitempty"`
	Fields  []sqlorm.Field `json:"fields"`
}

// Reports missing names and fields. Column types are checked on render.
func (self Schema) Validate() error {
	if self.Name == `` {
		return errors.New("schema has no table name")
	}
	if len(self.Fields) == 0 {
		return fmt.Errorf("schema %q has no fields", self.Name)
	}
	if self.Version < 0 {
		return fmt.Errorf("schema %q has negative version %d", self.Name, self.Version)
	}
	return nil
}

// Fields absent from `have`, in schema order.
func (self Schema) Missing(have []sqlorm.Field) []sqlorm.Field {
	known := make(map[string]struct{}, len(have))
	for _, field := range have {
		known[field.Name] = struct{}{}
	}

	var out []sqlorm.Field
	for _, field := range self.Fields {
		if _, ok := known[field.Name]; !ok {
			out = append(out, field)
		}
	}
	return out
}

// Decodes and validates a YAML or JSON schema.
func ParseSchema(src []byte) (Schema, error) {
	var out Schema
	if err := yaml.UnmarshalStrict(src, &out); err != nil {
		return Schema{}, fmt.Errorf("decoding schema: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Schema{}, err
	}
	return out, nil
}

// Reads a schema file, see `ParseSchema`.
func LoadSchema(path string) (Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("reading schema: %w", err)
	}

	out, err := ParseSchema(src)
	if err != nil {
		return Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
