package sheetstore

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/parser"
)

// Sheet is a schema plus its cells. Writes are serialized; reads share.
type Sheet struct {
	id     string
	schema *Schema

	mu    sync.RWMutex
	cells *CellStore
}

// NewSheet builds the schema from specs and returns an empty sheet.
func NewSheet(id string, specs []models.ColumnSpec) (*Sheet, error) {
	schema, err := BuildSchema(specs)
	if err != nil {
		return nil, err
	}
	return newSheet(id, schema), nil
}

func newSheet(id string, schema *Schema) *Sheet {
	return &Sheet{
		id:     id,
		schema: schema,
		cells:  NewCellStore(),
	}
}

// ID returns the sheet identifier.
func (s *Sheet) ID() string {
	return s.id
}

// Schema returns the sheet schema.
func (s *Sheet) Schema() *Schema {
	return s.schema
}

// SetCell assigns a raw JSON value to (column, row). A string matching
// lookup("column", row) is stored as a lookup, anything else must be a
// literal of the column type. On error the sheet is unchanged.
func (s *Sheet) SetCell(column string, row int64, raw json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := models.CellRef{Column: column, Row: row}
	typ, err := s.target(ref)
	if err != nil {
		return NewCellError(ref, err)
	}

	content, err := parser.ParseContent(raw, typ)
	if err != nil {
		return NewCellError(ref, err)
	}

	return s.commit(ref, typ, content)
}

// SetContent assigns already-typed content to ref, with the same checks
// as SetCell.
func (s *Sheet) SetContent(ref models.CellRef, content models.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ, err := s.target(ref)
	if err != nil {
		return NewCellError(ref, err)
	}

	if !content.IsLookup() && content.Value.Type != typ {
		return NewCellError(ref, fmt.Errorf("%w: %s value in %s column", ErrTypeMismatch, content.Value.Type, typ))
	}

	return s.commit(ref, typ, content)
}

// target validates the cell slot and returns its column type.
func (s *Sheet) target(ref models.CellRef) (models.ColumnType, error) {
	if ref.Row < 0 {
		return "", ErrInvalidRow
	}
	typ, ok := s.schema.ColumnType(ref.Column)
	if !ok {
		return "", ErrUnknownColumn
	}
	return typ, nil
}

// commit stores content at ref after checking lookups. Callers hold s.mu.
func (s *Sheet) commit(ref models.CellRef, typ models.ColumnType, content models.Content) error {
	if content.IsLookup() {
		target := *content.Lookup

		targetType, ok := s.schema.ColumnType(target.Column)
		if !ok {
			return NewCellError(ref, fmt.Errorf("%w %q", ErrUnknownLookupTarget, target.Column))
		}
		if targetType != typ {
			return NewCellError(ref, fmt.Errorf("%w: lookup from %s column into %s column", ErrTypeMismatch, typ, targetType))
		}
		if err := WouldCycle(s.cells, ref, target); err != nil {
			return NewCellError(ref, err)
		}
	}

	s.cells.Set(ref, content)
	return nil
}

// Cell resolves a single cell.
func (s *Sheet) Cell(ref models.CellRef) (Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.schema.HasColumn(ref.Column) {
		return Unresolved, NewCellError(ref, ErrUnknownColumn)
	}
	return Resolve(s.cells, ref)
}

// Len returns the number of populated cells.
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cells.Len()
}

// ReadAll resolves every populated cell, column by column in ascending row
// order. Every schema column is present in the result, possibly empty.
func (s *Sheet) ReadAll(opts Options) (models.SheetContent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolver := NewResolver(s.cells)
	content := models.SheetContent{
		Columns: make(map[string][]models.CellEntry, s.schema.Len()),
	}

	for _, col := range s.schema.columns {
		entries := make([]models.CellEntry, 0)

		for row := range s.cells.Column(col.Name) {
			ref := models.CellRef{Column: col.Name, Row: row}
			res, err := resolver.Resolve(ref)
			if err != nil {
				return models.SheetContent{}, NewCellError(ref, err)
			}

			if !res.Resolved {
				if opts.OmitUnresolved {
					continue
				}
				entries = append(entries, models.CellEntry{Row: row, Value: nil})
				continue
			}
			entries = append(entries, models.CellEntry{Row: row, Value: res.Value.Interface()})
		}

		content.Columns[col.Name] = entries
	}

	return content, nil
}
