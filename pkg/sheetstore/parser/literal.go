package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// ErrTypeMismatch indicates a value whose JSON shape does not fit the
// column type.
var ErrTypeMismatch = errors.New("type mismatch")

// DecodeScalar decodes a raw JSON value into bool, json.Number or string.
// Any other shape (null, array, object) returns ErrTypeMismatch.
func DecodeScalar(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, ErrTypeMismatch
	}

	switch v.(type) {
	case bool, json.Number, string:
		return v, nil
	}
	return nil, ErrTypeMismatch
}

// ParseLiteral converts a decoded JSON scalar into a Value of the expected type.
func ParseLiteral(v interface{}, expected models.ColumnType) (models.Value, error) {
	switch expected {
	case models.TypeBoolean:
		if b, ok := v.(bool); ok {
			return models.BoolValue(b), nil
		}
	case models.TypeInt:
		// integral only: "5.0" and "5e0" are rejected
		if n, ok := v.(json.Number); ok {
			if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
				return models.IntValue(i), nil
			}
		}
	case models.TypeDouble:
		if n, ok := v.(json.Number); ok {
			if f, err := strconv.ParseFloat(n.String(), 64); err == nil {
				return models.DoubleValue(f), nil
			}
		}
	case models.TypeString:
		if s, ok := v.(string); ok {
			return models.StringValue(s), nil
		}
	}
	return models.Value{}, ErrTypeMismatch
}

// ParseContent decides between a lookup and a literal for a raw JSON value.
// Strings are tested against the lookup pattern first, for every column
// type, so a String column cannot hold a literal that reads as a lookup.
func ParseContent(raw json.RawMessage, expected models.ColumnType) (models.Content, error) {
	v, err := DecodeScalar(raw)
	if err != nil {
		return models.Content{}, err
	}

	if s, ok := v.(string); ok {
		ref, isLookup, err := ParseLookup(s)
		if err != nil {
			return models.Content{}, err
		}
		if isLookup {
			return models.LookupOf(ref), nil
		}
	}

	value, err := ParseLiteral(v, expected)
	if err != nil {
		return models.Content{}, err
	}
	return models.Literal(value), nil
}
