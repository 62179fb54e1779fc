package sheetstore

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// Schema is the ordered, immutable set of columns of a sheet.
type Schema struct {
	columns []models.Column
	byName  map[string]models.ColumnType
}

// BuildSchema validates column specs and returns a Schema.
// An empty column list is a valid schema.
func BuildSchema(specs []models.ColumnSpec) (*Schema, error) {
	s := &Schema{
		columns: make([]models.Column, 0, len(specs)),
		byName:  make(map[string]models.ColumnType, len(specs)),
	}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, NewSchemaError(spec.Name, ErrEmptyColumnName)
		}
		if strings.Contains(spec.Name, `"`) {
			return nil, NewSchemaError(spec.Name, ErrForbiddenCharacter)
		}

		typ := models.ColumnType(spec.Type)
		if !typ.Valid() {
			return nil, NewSchemaError(spec.Name, fmt.Errorf("%w %q", ErrInvalidColumnType, spec.Type))
		}

		if _, exists := s.byName[spec.Name]; exists {
			return nil, NewSchemaError(spec.Name, ErrDuplicateColumnName)
		}

		s.byName[spec.Name] = typ
		s.columns = append(s.columns, models.Column{Name: spec.Name, Type: typ})
	}

	return s, nil
}

// HasColumn reports whether the schema has a column called name.
func (s *Schema) HasColumn(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// ColumnType returns the declared type of the named column.
func (s *Schema) ColumnType(name string) (models.ColumnType, bool) {
	typ, ok := s.byName[name]
	return typ, ok
}

// Columns returns a copy of the columns in declaration order.
func (s *Schema) Columns() []models.Column {
	out := make([]models.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}
