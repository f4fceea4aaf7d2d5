// Package sampler draws uniform rolls and resolves them through range tables.
package sampler

import (
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/rangetable"
)

// MaxDraws caps every internal rejection loop. Reaching it means the table
// is effectively all reroll entries, which Build-time checks should prevent.
const MaxDraws = 10_000

// Rerollable is an entry that may instruct the caller to roll again.
type Rerollable interface {
	rangetable.Entry
	Reroll() bool
}

// SampleAxis draws a roll in [1, domainSize] and returns its owner on axis.
func SampleAxis[T rangetable.Entry](table *rangetable.Table[T], axis int, src dice.Source) (T, error) {
	return table.Lookup(dice.Roll(src, table.DomainSize()), axis)
}

// SampleWhere keeps drawing on axis until accept returns true.
func SampleWhere[T rangetable.Entry](table *rangetable.Table[T], axis int, src dice.Source, accept func(T) bool) (T, error) {
	var zero T
	for range MaxDraws {
		e, err := SampleAxis(table, axis, src)
		if err != nil {
			return zero, err
		}
		if accept(e) {
			return e, nil
		}
	}
	return zero, generr.Newf(generr.CodeSamplerExhausted, "no acceptable entry after %d draws", MaxDraws).
		With("catalogue", table.Name()).With("axis", axis)
}

// SampleUntilNonReroll draws on axis 0 until it lands on an entry that is
// not reroll-flagged.
func SampleUntilNonReroll[T Rerollable](table *rangetable.Table[T], src dice.Source) (T, error) {
	return SampleWhere(table, 0, src, func(e T) bool { return !e.Reroll() })
}

// SampleIdentityOrDescriptorPair draws once. A settled result is returned
// alone; a reroll result means "roll twice more and use both", so drawing
// continues, discarding further reroll results, until two settled entries
// are collected.
func SampleIdentityOrDescriptorPair[T Rerollable](table *rangetable.Table[T], src dice.Source) ([]T, error) {
	first, err := SampleAxis(table, 0, src)
	if err != nil {
		return nil, err
	}
	if !first.Reroll() {
		return []T{first}, nil
	}

	out := make([]T, 0, 2)
	for range MaxDraws {
		e, err := SampleAxis(table, 0, src)
		if err != nil {
			return nil, err
		}
		if e.Reroll() {
			continue
		}
		out = append(out, e)
		if len(out) == 2 {
			return out, nil
		}
	}
	return nil, generr.Newf(generr.CodeSamplerExhausted, "could not collect two settled entries after %d draws", MaxDraws).
		With("catalogue", table.Name())
}

// CheckSettled returns a data-integrity error unless axis 0 of table holds
// at least one entry that is not reroll-flagged.
func CheckSettled[T Rerollable](table *rangetable.Table[T]) error {
	if table.Any(0, func(e T) bool { return !e.Reroll() }) {
		return nil
	}
	return generr.New(generr.CodeNoSettledEntry, "every entry is reroll-flagged").With("catalogue", table.Name())
}
