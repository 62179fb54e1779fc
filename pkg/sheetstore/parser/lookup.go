// Package parser turns raw cell input into typed cell content.
package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// ErrMalformedLookup indicates a string that starts like a lookup but does
// not follow lookup("column", row).
var ErrMalformedLookup = errors.New("malformed lookup")

// LookupPrefix is the prefix that marks a string as a lookup expression.
const LookupPrefix = "lookup("

var lookupPattern = regexp.MustCompile(`^lookup\(\s*"([^"]+)"\s*,\s*(\d+)\s*\)$`)

// ParseLookup parses a lookup("column", row) expression.
// ok is false when s is not a lookup at all. A string with the lookup
// prefix that fails to parse returns ok=true and ErrMalformedLookup.
func ParseLookup(s string) (ref models.CellRef, ok bool, err error) {
	m := lookupPattern.FindStringSubmatch(s)
	if m == nil {
		if strings.HasPrefix(s, LookupPrefix) {
			return models.CellRef{}, true, ErrMalformedLookup
		}
		return models.CellRef{}, false, nil
	}

	row, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		// digits only, so this is an overflow
		return models.CellRef{}, true, ErrMalformedLookup
	}

	return models.CellRef{Column: m[1], Row: row}, true, nil
}
