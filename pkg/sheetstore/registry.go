package sheetstore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// Registry maps sheet ids to sheets for the life of the process.
// Sheets are never removed.
type Registry struct {
	mu     sync.RWMutex
	sheets map[string]*Sheet
	newID  func() string
}

// NewRegistry creates an empty registry issuing random UUID ids.
func NewRegistry() *Registry {
	return &Registry{
		sheets: make(map[string]*Sheet),
		newID:  uuid.NewString,
	}
}

// CreateSheet validates the schema, registers a new empty sheet and
// returns its id. Nothing is registered when the schema is invalid.
func (r *Registry) CreateSheet(specs []models.ColumnSpec) (string, error) {
	schema, err := BuildSchema(specs)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// retry on the off chance of an id collision
	id := r.newID()
	for {
		if _, exists := r.sheets[id]; !exists {
			break
		}
		id = r.newID()
	}

	r.sheets[id] = newSheet(id, schema)
	return id, nil
}

// Sheet returns the sheet registered under id.
func (r *Registry) Sheet(id string) (*Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sheet, ok := r.sheets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSheet, id)
	}
	return sheet, nil
}

// Len returns the number of registered sheets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sheets)
}

// ValidateSheetID reports whether id has the shape of an issued id.
func ValidateSheetID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSheetID, err)
	}
	return nil
}
