package models

// CellEntry is one resolved cell in a sheet projection.
type CellEntry struct {
	// Row is the row index (0-based).
	Row int64 `json:"row"`
	// Value is the resolved scalar, nil for an unresolved lookup.
	Value interface{} `json:"value"`
}

// SheetContent is the serializable projection of a whole sheet.
type SheetContent struct {
	// Columns maps column name to its cells in ascending row order.
	Columns map[string][]CellEntry `json:"columns"`
}
