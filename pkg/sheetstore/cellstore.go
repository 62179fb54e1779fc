package sheetstore

import (
	"iter"
	"maps"
	"slices"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// CellStore is a sparse map from (column, row) to cell content. It does no
// validation and no locking; Sheet owns both.
type CellStore struct {
	columns map[string]map[int64]models.Content
	size    int
}

// NewCellStore creates an empty CellStore.
func NewCellStore() *CellStore {
	return &CellStore{
		columns: make(map[string]map[int64]models.Content),
	}
}

// Set inserts or overwrites the content at ref.
func (s *CellStore) Set(ref models.CellRef, content models.Content) {
	rows, ok := s.columns[ref.Column]
	if !ok {
		rows = make(map[int64]models.Content)
		s.columns[ref.Column] = rows
	}
	if _, exists := rows[ref.Row]; !exists {
		s.size++
	}
	rows[ref.Row] = content
}

// Get returns the content at ref, if any.
func (s *CellStore) Get(ref models.CellRef) (models.Content, bool) {
	content, ok := s.columns[ref.Column][ref.Row]
	return content, ok
}

// Column yields the populated cells of a column in ascending row order.
// Each range over the result takes a fresh snapshot of the row set.
func (s *CellStore) Column(name string) iter.Seq2[int64, models.Content] {
	return func(yield func(int64, models.Content) bool) {
		rows := s.columns[name]
		for _, row := range slices.Sorted(maps.Keys(rows)) {
			if !yield(row, rows[row]) {
				return
			}
		}
	}
}

// Len returns the number of populated cells.
func (s *CellStore) Len() int {
	return s.size
}
