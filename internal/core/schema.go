package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is returned by NewSchema for malformed field lists.
var ErrInvalidSchema = errors.New("invalid schema")

// Schema is the immutable, ordered column declaration every normalized table
// conforms to.
type Schema struct {
	fields []FieldSpec
	index  map[string]int
}

// NewSchema builds a schema from field specs in column order.
// Returns an error for an empty list, blank names, or duplicate names.
func NewSchema(specs ...FieldSpec) (*Schema, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	s := &Schema{
		fields: make([]FieldSpec, len(specs)),
		index:  make(map[string]int, len(specs)),
	}

	var errs []string
	for i, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			errs = append(errs, fmt.Sprintf("field %d has no name", i))
			continue
		}
		if _, dup := s.index[spec.Name]; dup {
			errs = append(errs, fmt.Sprintf("duplicate field %q", spec.Name))
			continue
		}
		if spec.Type != FieldText && spec.Type != FieldDecimal {
			errs = append(errs, fmt.Sprintf("field %q has unknown type %d", spec.Name, spec.Type))
			continue
		}
		s.fields[i] = spec
		s.index[spec.Name] = i
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(errs, "; "))
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Use it for package-level schema declarations.
func MustSchema(specs ...FieldSpec) *Schema {
	s, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the field specs in column order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Columns returns the column names in order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.Name
	}
	return cols
}

// Required returns the names of columns that must hold a value in every row.
func (s *Schema) Required() []string {
	var cols []string
	for _, f := range s.fields {
		if !f.Nullable {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// Nullable returns the names of columns allowed to be empty.
func (s *Schema) Nullable() []string {
	var cols []string
	for _, f := range s.fields {
		if f.Nullable {
			cols = append(cols, f.Name)
		}
	}
	return cols
}

// Field returns the spec for a column name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Index returns the schema position of a column, or -1.
func (s *Schema) Index(name string) int {
	i, ok := s.index[name]
	if !ok {
		return -1
	}
	return i
}
