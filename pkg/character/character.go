// Package character builds the character attribute tables and generates
// characters from them.
package character

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/rangetable"
	"github.com/jwebster45206/story-crafter/pkg/sampler"
)

// Kind names one of the six attribute tables.
type Kind string

const (
	KindIdentity   Kind = "identity"
	KindDescriptor Kind = "descriptor"
	KindGoal       Kind = "goal"
	KindMotivation Kind = "motivation"
	KindFocus      Kind = "focus"
	KindSpecial    Kind = "special"
)

// Kinds lists the attribute tables in generation order.
var Kinds = []Kind{KindSpecial, KindIdentity, KindDescriptor, KindGoal, KindMotivation, KindFocus}

// Attribute is one entry of an attribute table. Reroll entries mean
// "roll again" and are never handed to callers.
type Attribute struct {
	Name       string `json:"name"`
	Range      []int  `json:"range"`
	RerollFlag bool   `json:"reroll,omitempty"`
}

func (a *Attribute) Key() string  { return a.Name }
func (a *Attribute) Reroll() bool { return a.RerollFlag }

// Values returns the owned rolls. Attribute tables have a single axis.
func (a *Attribute) Values(axis int) []int {
	if axis != 0 {
		return nil
	}
	return a.Range
}

// AttributeSet holds the raw entries for every table, keyed by kind.
type AttributeSet map[Kind][]*Attribute

// Tables holds one built range table per attribute kind.
type Tables struct {
	byKind map[Kind]*rangetable.Table[*Attribute]
}

// NewTables builds and checks all six tables. A missing kind, a coverage
// defect or a table made only of reroll entries fails the whole build.
func NewTables(set AttributeSet) (*Tables, error) {
	t := &Tables{byKind: make(map[Kind]*rangetable.Table[*Attribute], len(Kinds))}
	for _, k := range Kinds {
		table, err := rangetable.Build("character "+string(k), set[k], 1, rangetable.StandardDomain)
		if err != nil {
			return nil, fmt.Errorf("build %s table: %w", k, err)
		}
		if err := sampler.CheckSettled(table); err != nil {
			return nil, fmt.Errorf("check %s table: %w", k, err)
		}
		t.byKind[k] = table
	}
	return t, nil
}

// Table returns the built table for kind, or nil.
func (t *Tables) Table(k Kind) *rangetable.Table[*Attribute] {
	return t.byKind[k]
}

// Character is a generated character profile.
type Character struct {
	Identities  []string `json:"identities"`
	Descriptors []string `json:"descriptors"`
	Goal        string   `json:"goal"`
	Motivation  string   `json:"motivation"`
	Focus       string   `json:"focus"`
	Special     string   `json:"special,omitempty"`
}

// Generator rolls characters on shared, read-only tables.
type Generator struct {
	tables *Tables
}

func NewGenerator(tables *Tables) *Generator {
	return &Generator{tables: tables}
}

// Generate rolls a full character. Identity and descriptor may come back
// as pairs; every other attribute is a single settled entry.
func (g *Generator) Generate(src dice.Source) (*Character, error) {
	c := &Character{}

	special, err := g.single(KindSpecial, src)
	if err != nil {
		return nil, err
	}
	c.Special = special

	if c.Identities, err = g.pair(KindIdentity, src); err != nil {
		return nil, err
	}
	if c.Descriptors, err = g.pair(KindDescriptor, src); err != nil {
		return nil, err
	}
	if c.Goal, err = g.single(KindGoal, src); err != nil {
		return nil, err
	}
	if c.Motivation, err = g.single(KindMotivation, src); err != nil {
		return nil, err
	}
	if c.Focus, err = g.single(KindFocus, src); err != nil {
		return nil, err
	}
	return c, nil
}

func (g *Generator) single(k Kind, src dice.Source) (string, error) {
	a, err := sampler.SampleUntilNonReroll(g.tables.Table(k), src)
	if err != nil {
		return "", fmt.Errorf("roll %s: %w", k, err)
	}
	return a.Name, nil
}

func (g *Generator) pair(k Kind, src dice.Source) ([]string, error) {
	attrs, err := sampler.SampleIdentityOrDescriptorPair(g.tables.Table(k), src)
	if err != nil {
		return nil, fmt.Errorf("roll %s: %w", k, err)
	}
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out, nil
}

// DisplayName renders a short label such as "Wealthy Scholar".
func (c *Character) DisplayName() string {
	parts := make([]string, 0, 2)
	if len(c.Descriptors) > 0 {
		parts = append(parts, c.Descriptors[0])
	}
	if len(c.Identities) > 0 {
		parts = append(parts, c.Identities[0])
	}
	return cases.Title(language.English).String(strings.Join(parts, " "))
}
