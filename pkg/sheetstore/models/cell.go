package models

import (
	"fmt"
	"strconv"
)

// CellRef identifies a cell slot by column name and row index (0-based).
type CellRef struct {
	Column string
	Row    int64
}

// String renders the reference in lookup syntax.
func (r CellRef) String() string {
	return fmt.Sprintf("lookup(%s, %d)", strconv.Quote(r.Column), r.Row)
}

// Content is what a cell stores: a literal value, or a lookup when Lookup
// is non-nil.
type Content struct {
	Value  Value
	Lookup *CellRef
}

// Literal returns content holding v.
func Literal(v Value) Content { return Content{Value: v} }

// LookupOf returns content that refers to target.
func LookupOf(target CellRef) Content { return Content{Lookup: &target} }

// IsLookup reports whether the content is a lookup reference.
func (c Content) IsLookup() bool { return c.Lookup != nil }
