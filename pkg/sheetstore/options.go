// Package sheetstore provides in-memory sheets of typed cells and lookups.
package sheetstore

import (
	"fmt"
	"os"
	"strconv"
)

// EnvNoLookupNulls names the environment variable that omits unresolved
// lookups from sheet reads.
const EnvNoLookupNulls = "NO_LOOKUP_NULLS"

// Options configures how sheets are read.
type Options struct {
	// OmitUnresolved drops cells whose lookup chain ends at an empty cell.
	// When false those cells are reported with a null value.
	OmitUnresolved bool
}

// DefaultOptions returns default read options.
func DefaultOptions() Options {
	return Options{}
}

// OptionsFromEnv returns options with OmitUnresolved taken from
// NO_LOOKUP_NULLS. An unset or empty variable keeps the default.
func OptionsFromEnv() (Options, error) {
	opts := DefaultOptions()

	raw := os.Getenv(EnvNoLookupNulls)
	if raw == "" {
		return opts, nil
	}

	omit, err := strconv.ParseBool(raw)
	if err != nil {
		return opts, fmt.Errorf("%s: %w", EnvNoLookupNulls, err)
	}
	opts.OmitUnresolved = omit
	return opts, nil
}
