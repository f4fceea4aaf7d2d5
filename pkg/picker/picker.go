// Package picker implements exhausting sampling: draw without replacement
// until the candidate set is used up, then start over from the full set.
package picker

import (
	"slices"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// Exhausting draws from a working copy of a fixed candidate set.
// It is not safe for concurrent use; each generation run gets its own.
type Exhausting[T any] struct {
	name    string
	full    []T
	working []T
	refills int
}

// New creates a picker over a copy of full. name labels errors.
func New[T any](name string, full []T) *Exhausting[T] {
	return &Exhausting[T]{
		name:    name,
		full:    slices.Clone(full),
		working: slices.Clone(full),
	}
}

// Resume recreates a picker part way through a cycle: working holds the
// candidates not yet drawn. An empty working set refills on the next Draw.
func Resume[T any](name string, full, working []T) *Exhausting[T] {
	return &Exhausting[T]{
		name:    name,
		full:    slices.Clone(full),
		working: slices.Clone(working),
	}
}

// Draw removes and returns a uniformly chosen element of the working set,
// refilling it from the full set first when it is empty.
func (p *Exhausting[T]) Draw(src dice.Source) (T, error) {
	var zero T
	if len(p.full) == 0 {
		return zero, generr.New(generr.CodeEmptyCandidateSet, "picker has no candidates").With("catalogue", p.name)
	}
	if len(p.working) == 0 {
		p.working = slices.Clone(p.full)
		p.refills++
	}
	i := src.Intn(len(p.working))
	v := p.working[i]
	p.working = slices.Delete(p.working, i, i+1)
	return v, nil
}

// Remaining returns how many draws are left before the next refill.
func (p *Exhausting[T]) Remaining() int {
	return len(p.working)
}

// Size returns the size of the full candidate set.
func (p *Exhausting[T]) Size() int {
	return len(p.full)
}

// Refills returns how many times the working set has been refilled.
func (p *Exhausting[T]) Refills() int {
	return p.refills
}

// Clone returns an independent picker with the same full set and a fresh
// working copy.
func (p *Exhausting[T]) Clone() *Exhausting[T] {
	return New(p.name, p.full)
}
