// Package output renders sheet projections as JSON or xlsx.
package output

import "encoding/json"

// ToJSON serializes v, indented when pretty is set.
func ToJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
