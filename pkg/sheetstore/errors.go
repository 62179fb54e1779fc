package sheetstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/parser"
)

// Schema errors.
var (
	// ErrDuplicateColumnName indicates two columns share a name.
	ErrDuplicateColumnName = errors.New("duplicate column name")
	// ErrInvalidColumnType indicates a type name outside boolean, int, double, string.
	ErrInvalidColumnType = errors.New("invalid column type")
	// ErrForbiddenCharacter indicates a column name containing a double quote.
	ErrForbiddenCharacter = errors.New(`column name contains forbidden character '"'`)
	// ErrEmptyColumnName indicates a column without a name.
	ErrEmptyColumnName = errors.New("empty column name")
)

// Cell errors.
var (
	// ErrUnknownColumn indicates a column that is not part of the schema.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownLookupTarget indicates a lookup whose target column is not
	// part of the schema. It also matches ErrUnknownColumn.
	ErrUnknownLookupTarget = fmt.Errorf("unknown lookup target: %w", ErrUnknownColumn)
	// ErrTypeMismatch indicates a value that does not fit the column type.
	ErrTypeMismatch = parser.ErrTypeMismatch
	// ErrMalformedLookup indicates a lookup expression that cannot be parsed.
	ErrMalformedLookup = parser.ErrMalformedLookup
	// ErrInvalidRow indicates a negative row index.
	ErrInvalidRow = errors.New("row must be non-negative")
	// ErrCycleDetected indicates a lookup that would close a reference cycle.
	ErrCycleDetected = errors.New("cycle detected")
)

// Registry errors.
var (
	// ErrUnknownSheet indicates no sheet is registered under the id.
	ErrUnknownSheet = errors.New("sheet doesn't exist")
	// ErrInvalidSheetID indicates an id that could never have been issued.
	ErrInvalidSheetID = errors.New("invalid sheet id")
)

// ErrInvariantViolation indicates committed data that breaks an internal
// invariant, such as a lookup cycle found while resolving. It signals a bug,
// not bad input.
var ErrInvariantViolation = errors.New("internal invariant violated")

// SchemaError represents a rejected column definition.
type SchemaError struct {
	Column string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: column %q: %v", e.Column, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(column string, err error) *SchemaError {
	return &SchemaError{
		Column: column,
		Err:    err,
	}
}

// CellError represents a rejected cell assignment.
type CellError struct {
	Ref models.CellRef
	Err error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("cell %q row %d: %v", e.Ref.Column, e.Ref.Row, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// NewCellError creates a new CellError.
func NewCellError(ref models.CellRef, err error) *CellError {
	return &CellError{
		Ref: ref,
		Err: err,
	}
}

// CycleError carries the lookup path that would form a cycle. The path
// starts and ends at the same cell.
type CycleError struct {
	Path []models.CellRef
}

func (e *CycleError) Error() string {
	steps := make([]string, len(e.Path))
	for i, ref := range e.Path {
		steps[i] = fmt.Sprintf("%s[%d]", ref.Column, ref.Row)
	}
	return fmt.Sprintf("%v: %s", ErrCycleDetected, strings.Join(steps, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
