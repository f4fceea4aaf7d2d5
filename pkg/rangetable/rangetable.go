// Package rangetable builds dense roll→entry lookup tables from entries that
// each declare which roll values they own on each axis.
package rangetable

import (
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// StandardDomain is the roll space used by every catalogue: a d100.
const StandardDomain = 100

// Entry is anything that owns roll values on one or more axes.
type Entry interface {
	// Key identifies the entry in error reports.
	Key() string
	// Values returns the 1-based roll values the entry owns on axis.
	Values(axis int) []int
}

// Table maps every (roll, axis) cell to exactly one entry.
// A built table is read-only and safe to share between generation runs.
type Table[T Entry] struct {
	name       string
	domainSize int
	axisCount  int
	cells      [][]T // [axis][roll-1]
	entries    []T
}

// Build constructs a table over [1, domainSize] for axisCount axes.
// Double claims, values outside the domain and unset cells are
// data-integrity errors; the first one found is returned.
func Build[T Entry](name string, entries []T, axisCount, domainSize int) (*Table[T], error) {
	if axisCount < 1 || domainSize < 1 {
		return nil, generr.InvalidArgument("table %s: axis count %d and domain size %d must be positive", name, axisCount, domainSize)
	}
	if len(entries) == 0 {
		return nil, generr.Newf(generr.CodeEmptyCandidateSet, "table %s has no entries", name).With("catalogue", name)
	}

	cells := make([][]T, axisCount)
	owned := make([][]bool, axisCount)
	owner := make([][]string, axisCount)
	for a := range axisCount {
		cells[a] = make([]T, domainSize)
		owned[a] = make([]bool, domainSize)
		owner[a] = make([]string, domainSize)
	}

	for _, e := range entries {
		for a := range axisCount {
			for _, v := range e.Values(a) {
				if v < 1 || v > domainSize {
					return nil, generr.Newf(generr.CodeRangeOutOfDomain, "roll value outside [1, %d]", domainSize).
						With("catalogue", name).With("axis", a).With("value", v).With("entry", e.Key())
				}
				if owned[a][v-1] {
					return nil, generr.New(generr.CodeRangeOverlap, "roll value claimed twice").
						With("catalogue", name).With("axis", a).With("value", v).
						With("owner", owner[a][v-1]).With("claimant", e.Key())
				}
				cells[a][v-1] = e
				owned[a][v-1] = true
				owner[a][v-1] = e.Key()
			}
		}
	}

	for a := range axisCount {
		for i, ok := range owned[a] {
			if !ok {
				return nil, generr.New(generr.CodeRangeGap, "roll value has no owner").
					With("catalogue", name).With("axis", a).With("value", i+1)
			}
		}
	}

	return &Table[T]{
		name:       name,
		domainSize: domainSize,
		axisCount:  axisCount,
		cells:      cells,
		entries:    entries,
	}, nil
}

// Lookup returns the entry owning value on axis.
func (t *Table[T]) Lookup(value, axis int) (T, error) {
	var zero T
	if axis < 0 || axis >= t.axisCount {
		return zero, generr.InvalidArgument("table %s: axis %d outside [0, %d)", t.name, axis, t.axisCount)
	}
	if value < 1 || value > t.domainSize {
		return zero, generr.InvalidArgument("table %s: roll %d outside [1, %d]", t.name, value, t.domainSize)
	}
	return t.cells[axis][value-1], nil
}

// Name returns the catalogue name given at build time.
func (t *Table[T]) Name() string { return t.name }

// DomainSize returns the number of roll values per axis.
func (t *Table[T]) DomainSize() int { return t.domainSize }

// AxisCount returns the number of axes.
func (t *Table[T]) AxisCount() int { return t.axisCount }

// Entries returns the entries the table was built from.
func (t *Table[T]) Entries() []T { return t.entries }

// Any reports whether some cell on axis holds an entry matching fn.
func (t *Table[T]) Any(axis int, fn func(T) bool) bool {
	if axis < 0 || axis >= t.axisCount {
		return false
	}
	for _, e := range t.cells[axis] {
		if fn(e) {
			return true
		}
	}
	return false
}
