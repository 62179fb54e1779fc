package models

// ColumnSpec is a column definition as received on the wire.
type ColumnSpec struct {
	// Name is the column name.
	Name string `json:"name"`
	// Type is the column type name (boolean, int, double, string).
	Type string `json:"type"`
}

// Column is a validated schema column.
type Column struct {
	// Name is unique within the schema.
	Name string `json:"name"`
	// Type is the declared type for every literal in the column.
	Type ColumnType `json:"type"`
}
