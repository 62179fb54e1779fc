// Package models defines data structures shared by the sheet store.
package models

// ColumnType is the declared type of a column.
type ColumnType string

const (
	// TypeBoolean holds JSON true/false.
	TypeBoolean ColumnType = "boolean"
	// TypeInt holds 64-bit signed integers.
	TypeInt ColumnType = "int"
	// TypeDouble holds 64-bit floating point numbers.
	TypeDouble ColumnType = "double"
	// TypeString holds UTF-8 strings.
	TypeString ColumnType = "string"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeBoolean, TypeInt, TypeDouble, TypeString:
		return true
	}
	return false
}

// Value is a typed literal. Only the field selected by Type is meaningful.
type Value struct {
	Type   ColumnType
	Bool   bool
	Int    int64
	Double float64
	String string
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{Type: TypeBoolean, Bool: b} }

// IntValue returns an int Value.
func IntValue(i int64) Value { return Value{Type: TypeInt, Int: i} }

// DoubleValue returns a double Value.
func DoubleValue(f float64) Value { return Value{Type: TypeDouble, Double: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Type: TypeString, String: s} }

// Interface returns the value as a JSON-compatible scalar.
func (v Value) Interface() interface{} {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeInt:
		return v.Int
	case TypeDouble:
		return v.Double
	case TypeString:
		return v.String
	}
	return nil
}
