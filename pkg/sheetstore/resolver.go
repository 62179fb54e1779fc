package sheetstore

import (
	"fmt"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
)

// Resolution is the outcome of following a lookup chain. Resolved is false
// when the chain ends at an empty cell.
type Resolution struct {
	Value    models.Value
	Resolved bool
}

// Unresolved is the resolution of a chain that ends at an empty cell.
var Unresolved = Resolution{}

// WouldCycle reports whether pointing source at target would close a lookup
// cycle, given the lookups already in store. Every cell holds at most one
// lookup, so the walk from target is a single chain; literal and empty
// cells end it. The returned *CycleError carries the path
// source -> target -> ... -> source.
func WouldCycle(store *CellStore, source, target models.CellRef) error {
	path := []models.CellRef{source}
	visited := make(map[models.CellRef]struct{})

	cur := target
	for {
		path = append(path, cur)
		if cur == source {
			return &CycleError{Path: path}
		}

		if _, seen := visited[cur]; seen {
			// a cycle that does not pass through source is already committed
			return fmt.Errorf("%w: committed lookup cycle through %q row %d", ErrInvariantViolation, cur.Column, cur.Row)
		}
		visited[cur] = struct{}{}

		content, ok := store.Get(cur)
		if !ok || !content.IsLookup() {
			return nil
		}
		cur = *content.Lookup
	}
}

// Resolver follows lookup chains to literal values. It caches every cell on
// every chain it walks, so resolving a whole sheet through one Resolver
// touches each cell once. A Resolver must not outlive the read it serves:
// the cache is not invalidated by writes.
type Resolver struct {
	store    *CellStore
	memo     map[models.CellRef]Resolution
	visiting map[models.CellRef]struct{}
}

// NewResolver creates a Resolver over store.
func NewResolver(store *CellStore) *Resolver {
	return &Resolver{
		store:    store,
		memo:     make(map[models.CellRef]Resolution),
		visiting: make(map[models.CellRef]struct{}),
	}
}

// Resolve returns the value the chain starting at ref ends in. A cycle is
// reported as ErrInvariantViolation, since writes never commit one.
func (r *Resolver) Resolve(ref models.CellRef) (Resolution, error) {
	clear(r.visiting)
	var chain []models.CellRef

	result := Unresolved
	cur := ref
	for {
		if res, ok := r.memo[cur]; ok {
			result = res
			break
		}
		if _, seen := r.visiting[cur]; seen {
			return Unresolved, fmt.Errorf("%w: lookup cycle through %q row %d", ErrInvariantViolation, cur.Column, cur.Row)
		}

		content, ok := r.store.Get(cur)
		if !ok {
			break
		}

		r.visiting[cur] = struct{}{}
		chain = append(chain, cur)

		if !content.IsLookup() {
			result = Resolution{Value: content.Value, Resolved: true}
			break
		}
		cur = *content.Lookup
	}

	for _, c := range chain {
		r.memo[c] = result
	}
	return result, nil
}

// Resolve follows the lookup chain at ref without caching across calls.
func Resolve(store *CellStore, ref models.CellRef) (Resolution, error) {
	return NewResolver(store).Resolve(ref)
}
