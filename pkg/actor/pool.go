package actor

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/picker"
)

// Pool partition. Ordinals are walked 0..PoolSize-1.
const (
	PoolSize      = 48
	BossCount     = 4
	WorkerCount   = 8
	OnMapCount    = 4
	LevelOneCount = 14
	LevelSize     = 9 // level-one second half, level-two and level-three

	firstWorker     = BossCount                  // 4
	firstOnMap      = firstWorker + WorkerCount  // 12
	firstLevelOne   = firstOnMap + OnMapCount    // 16
	firstLevelOneB  = firstLevelOne + 5          // 21
	firstLevelTwo   = firstLevelOneB + LevelSize // 30
	firstLevelThree = firstLevelTwo + LevelSize  // 39

	// MinSideArcs is how many arcs a side catalogue needs: one per on-map
	// actor plus one per sequential level-one ordinal.
	MinSideArcs = OnMapCount + (firstLevelOneB - firstLevelOne)
)

// arcSource says where an ordinal's arc comes from.
type arcSource int

const (
	arcFullRandom     arcSource = iota // with replacement from the full catalogue
	arcSideRandom                      // removed from the side working copy
	arcSideSequential                  // remainder of the side working copy, in order
	arcFullSequential                  // one sequential pass over the full catalogue per level
)

type role struct {
	status Status
	level  int
	arcs   arcSource
}

// roleFor is the static ordinal→role table.
func roleFor(ordinal int) (role, error) {
	switch {
	case ordinal < 0 || ordinal >= PoolSize:
		return role{}, generr.InvalidArgument("ordinal %d outside 0..%d", ordinal, PoolSize-1)
	case ordinal == 0:
		return role{StatusBoss, 3, arcFullRandom}, nil
	case ordinal < firstWorker:
		return role{StatusUnderboss, 2, arcFullRandom}, nil
	case ordinal < firstOnMap:
		return role{StatusWorker, 2, arcFullRandom}, nil
	case ordinal < firstLevelOne:
		return role{StatusOnMap, 1, arcSideRandom}, nil
	case ordinal < firstLevelOneB:
		return role{StatusLevelOne, 1, arcSideSequential}, nil
	case ordinal < firstLevelTwo:
		return role{StatusLevelOne, 1, arcFullSequential}, nil
	case ordinal < firstLevelThree:
		return role{StatusLevelTwo, 2, arcFullSequential}, nil
	default:
		return role{StatusLevelThree, 3, arcFullSequential}, nil
	}
}

// PoolConfig tunes boss power scores.
type PoolConfig struct {
	HQSlotCount int
	PowerFactor int
}

// DefaultPoolConfig gives the boss tiers power 15, 12, 9 and 6.
var DefaultPoolConfig = PoolConfig{HQSlotCount: 3, PowerFactor: 3}

// Pool is the assembled roster. The four boss tiers are single slots;
// everyone else lands in a role list.
type Pool struct {
	ID          uuid.UUID      `json:"id"`
	Side        string         `json:"side"`
	Boss        *ActorDraft    `json:"boss"`
	Underbosses [3]*ActorDraft `json:"underbosses"`
	Workers     []ActorDraft   `json:"workers"`
	OnMap       []ActorDraft   `json:"on_map"`
	LevelOne    []ActorDraft   `json:"level_one"`
	LevelTwo    []ActorDraft   `json:"level_two"`
	LevelThree  []ActorDraft   `json:"level_three"`
	CreatedAt   time.Time      `json:"created_at"`
}

// All returns every draft in ordinal order.
func (p *Pool) All() []ActorDraft {
	out := make([]ActorDraft, 0, PoolSize)
	if p.Boss != nil {
		out = append(out, *p.Boss)
	}
	for _, u := range p.Underbosses {
		if u != nil {
			out = append(out, *u)
		}
	}
	for _, list := range [][]ActorDraft{p.Workers, p.OnMap, p.LevelOne, p.LevelTwo, p.LevelThree} {
		out = append(out, list...)
	}
	return out
}

func (p *Pool) add(d ActorDraft) {
	switch d.Status {
	case StatusBoss:
		p.Boss = &d
	case StatusUnderboss:
		p.Underbosses[d.Ordinal-1] = &d
	case StatusWorker:
		p.Workers = append(p.Workers, d)
	case StatusOnMap:
		p.OnMap = append(p.OnMap, d)
	case StatusLevelOne:
		p.LevelOne = append(p.LevelOne, d)
	case StatusLevelTwo:
		p.LevelTwo = append(p.LevelTwo, d)
	case StatusLevelThree:
		p.LevelThree = append(p.LevelThree, d)
	}
}

// BuildPool walks the 48 ordinals and assembles a pool.
//
// Bosses and workers draw arcs with replacement from arcsFull. On-map
// actors take arcs out of a private copy of arcsSide, so no two share one,
// and ordinals 16-20 then take what is left of that copy in order. From
// ordinal 21 each level walks arcsFull once, in order. Traits come from
// traits, which the caller owns for this run only.
func BuildPool(arcsFull, arcsSide []Arc, traits *picker.Exhausting[Trait], names NameSet, cfg PoolConfig, src dice.Source) (*Pool, error) {
	if len(arcsFull) == 0 {
		return nil, generr.New(generr.CodeEmptyCandidateSet, "full arc catalogue is empty").With("catalogue", "arcs")
	}
	if len(arcsSide) < MinSideArcs {
		return nil, generr.Newf(generr.CodeUndersizedSideArcs, "side arc catalogue has %d arcs, %d needed", len(arcsSide), MinSideArcs).
			With("catalogue", "side arcs").With("ordinal", firstOnMap)
	}
	if len(names.Female) == 0 || len(names.Male) == 0 || len(names.Last) == 0 {
		return nil, generr.New(generr.CodeEmptyCandidateSet, "every name list needs at least one name").With("catalogue", "names")
	}
	if traits == nil {
		return nil, generr.InvalidArgument("trait picker is required")
	}

	side := slices.Clone(arcsSide)
	pool := &Pool{
		ID:         uuid.New(),
		Workers:    make([]ActorDraft, 0, WorkerCount),
		OnMap:      make([]ActorDraft, 0, OnMapCount),
		LevelOne:   make([]ActorDraft, 0, LevelOneCount),
		LevelTwo:   make([]ActorDraft, 0, LevelSize),
		LevelThree: make([]ActorDraft, 0, LevelSize),
		CreatedAt:  time.Now(),
	}

	for ordinal := range PoolSize {
		r, err := roleFor(ordinal)
		if err != nil {
			return nil, err
		}

		d := ActorDraft{Ordinal: ordinal, Status: r.status, Level: r.level}

		d.Sex = Female
		first := names.Female
		if src.Intn(2) == 1 {
			d.Sex = Male
			first = names.Male
		}
		d.FirstName = first[src.Intn(len(first))]
		d.LastName = names.Last[src.Intn(len(names.Last))]

		switch r.status {
		case StatusBoss, StatusUnderboss:
			d.Power = (cfg.HQSlotCount + 2 - ordinal) * cfg.PowerFactor
		case StatusWorker:
			d.Power = dice.Between(src, 1, 5)
		}

		switch r.arcs {
		case arcFullRandom:
			d.Arc = arcsFull[src.Intn(len(arcsFull))]
		case arcSideRandom:
			i := src.Intn(len(side))
			d.Arc = side[i]
			side = slices.Delete(side, i, i+1)
		case arcSideSequential:
			i := ordinal - firstLevelOne
			if i >= len(side) {
				return nil, generr.New(generr.CodeUndersizedSideArcs, "side arc catalogue ran out").
					With("catalogue", "side arcs").With("ordinal", ordinal)
			}
			d.Arc = side[i]
		case arcFullSequential:
			pass := (ordinal - firstLevelOneB) % LevelSize
			d.Arc = arcsFull[pass%len(arcsFull)]
		}

		trait, err := traits.Draw(src)
		if err != nil {
			return nil, fmt.Errorf("draw trait for ordinal %d: %w", ordinal, err)
		}
		d.Trait = trait

		pool.add(d)
	}

	return pool, nil
}

// Inputs is the read-only catalogue material pools are built from.
type Inputs struct {
	Arcs   []Arc
	Sides  map[string][]Arc
	Traits []Trait
	Names  NameSet
}

// NewPool builds a pool for side with fresh working copies, so concurrent
// runs over the same Inputs never share mutable state.
func (in *Inputs) NewPool(side string, cfg PoolConfig, src dice.Source) (*Pool, error) {
	arcsSide, ok := in.Sides[side]
	if !ok {
		return nil, generr.Newf(generr.CodeUnknownReference, "unknown side %q", side)
	}
	traits := picker.New("traits", in.Traits)
	pool, err := BuildPool(in.Arcs, arcsSide, traits, in.Names, cfg, src)
	if err != nil {
		return nil, err
	}
	pool.Side = side
	return pool, nil
}

// SideNames lists the sides in sorted order.
func (in *Inputs) SideNames() []string {
	out := make([]string, 0, len(in.Sides))
	for s := range in.Sides {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
