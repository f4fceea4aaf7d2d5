package plot

import (
	"fmt"
	"slices"

	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/picker"
)

// Character choices accepted by AssignCharacter besides an existing key.
const (
	ChoiceNew  = "new"
	ChoiceAuto = "auto"
)

// BeatResult reports what a builder step did. AwaitingCharacters counts
// the character slots still to be chosen; once it reaches zero the beat is
// placed in the turning point.
type BeatResult struct {
	Detail             PlotDetail `json:"detail"`
	AwaitingCharacters int        `json:"awaiting_characters"`
	Placed             bool       `json:"placed"`
}

// Builder advances a Story one step at a time. All progress lives on the
// Story, so a builder can be shared and a story can be persisted between
// any two steps.
type Builder struct {
	tables     *Tables
	selector   *BeatSelector
	characters *character.Generator
}

func NewBuilder(tables *Tables, characters *character.Generator) *Builder {
	return &Builder{
		tables:     tables,
		selector:   NewBeatSelector(tables),
		characters: characters,
	}
}

// OpenTurningPoint starts the next turning point. An empty plotLine opens a
// new plot line; otherwise the named plot line is developed.
func (b *Builder) OpenTurningPoint(s *Story, plotLine string) (*TurningPoint, error) {
	if len(s.TurningPoints) >= MaxTurningPoints {
		return nil, generr.New(generr.CodeStoryConcluded, "story already has every turning point").With("story", s.ID)
	}
	if s.Pending != nil {
		return nil, generr.New(generr.CodeAwaitingCharacter, "a beat is waiting for character choices").With("story", s.ID)
	}
	if cur := s.Current(); cur != nil && !cur.Frozen() {
		return nil, generr.New(generr.CodeTurningPointRemaining, "current turning point still has free slots").
			With("turning_point", cur.Index)
	}

	tp := TurningPoint{Index: len(s.TurningPoints), Details: []PlotDetail{}}
	if plotLine == "" {
		pl := PlotLine{Key: s.nextPlotLineKey()}
		s.AddPlotLine(pl)
		tp.PlotLine = pl.Key
		tp.Type = TypeNew
	} else {
		pl := s.PlotLine(plotLine)
		if pl == nil {
			return nil, generr.Newf(generr.CodeUnknownReference, "plot line %q is not in this story", plotLine)
		}
		if pl.Concluded {
			return nil, generr.Newf(generr.CodePlotLineConcluded, "plot line %q has concluded", plotLine)
		}
		tp.PlotLine = pl.Key
		tp.Type = TypeDevelopment
	}

	s.TurningPoints = append(s.TurningPoints, tp)
	s.touch()
	return s.Current(), nil
}

// NextBeatByTheme rolls the theme priority and picks a beat on that axis.
func (b *Builder) NextBeatByTheme(s *Story, src dice.Source) (*BeatResult, error) {
	if err := b.checkCanPick(s); err != nil {
		return nil, err
	}
	axis, flip := s.peekTheme(src)
	res, err := b.NextBeat(s, axis, src)
	if err != nil {
		return nil, err
	}
	if flip {
		s.LowThemeFlip = !s.LowThemeFlip
	}
	return res, nil
}

// NextBeat picks a beat on axis for the current turning point. Beats that
// need characters wait in s.Pending until AssignCharacter fills them.
func (b *Builder) NextBeat(s *Story, axis Axis, src dice.Source) (*BeatResult, error) {
	if err := b.checkCanPick(s); err != nil {
		return nil, err
	}
	tp := s.Current()

	pp, err := b.selector.PickBeat(axis, tp, src)
	if err != nil {
		return nil, err
	}

	detail := PlotDetail{
		PlotPoint: pp.ID,
		Name:      pp.Name,
		Category:  pp.Category,
		Axis:      axis,
	}
	need := pp.Characters

	if pp.Category == Meta {
		mp, err := b.tables.SampleMeta(src)
		if err != nil {
			return nil, fmt.Errorf("resolve meta plot point: %w", err)
		}
		detail.Meta = &MetaDetail{Key: mp.ID, Name: mp.Name, Action: mp.Action}
		need = 0
		if mp.Action.InvolvesCharacter() {
			need = 1
		}
	}

	if pp.Category == IntroducesCharacter {
		ref, err := b.newCharacter(s, src)
		if err != nil {
			return nil, err
		}
		detail.Characters = append(detail.Characters, ref.Key)
		need = max(need-1, 0)
	}

	if need > 0 {
		s.Pending = &PendingBeat{Detail: detail, Remaining: need}
		s.touch()
		return &BeatResult{Detail: detail, AwaitingCharacters: need}, nil
	}

	if err := b.place(s, detail); err != nil {
		return nil, err
	}
	return &BeatResult{Detail: detail, Placed: true}, nil
}

// AssignCharacter fills the next character slot of the pending beat.
// choice is an existing character key, ChoiceNew, or ChoiceAuto, which
// picks among the story's characters, preferring ones not already in the
// beat and generating a new character when the story has none.
func (b *Builder) AssignCharacter(s *Story, choice string, src dice.Source) (*BeatResult, error) {
	if s.Pending == nil {
		return nil, generr.New(generr.CodeNotAwaitingCharacter, "no beat is waiting for characters").With("story", s.ID)
	}
	p := s.Pending

	var key string
	switch choice {
	case ChoiceNew:
		ref, err := b.newCharacter(s, src)
		if err != nil {
			return nil, err
		}
		key = ref.Key
	case ChoiceAuto:
		k, err := b.mostLogical(s, p.Detail.Characters, src)
		if err != nil {
			return nil, err
		}
		key = k
	default:
		if s.Character(choice) == nil {
			return nil, generr.Newf(generr.CodeUnknownReference, "character %q is not in this story", choice)
		}
		key = choice
	}

	p.Detail.Characters = append(p.Detail.Characters, key)
	p.Remaining--
	if p.Remaining > 0 {
		s.touch()
		return &BeatResult{Detail: p.Detail, AwaitingCharacters: p.Remaining}, nil
	}

	detail := p.Detail
	s.Pending = nil
	if err := b.place(s, detail); err != nil {
		return nil, err
	}
	return &BeatResult{Detail: detail, Placed: true}, nil
}

func (b *Builder) checkCanPick(s *Story) error {
	if s.Concluded() {
		return generr.New(generr.CodeStoryConcluded, "story has concluded").With("story", s.ID)
	}
	if s.Pending != nil {
		return generr.New(generr.CodeAwaitingCharacter, "a beat is waiting for character choices").With("story", s.ID)
	}
	tp := s.Current()
	if tp == nil {
		return generr.New(generr.CodeNoTurningPoint, "open a turning point first").With("story", s.ID)
	}
	if tp.Frozen() {
		return generr.New(generr.CodeTurningPointFrozen, "turning point accepts no more beats").With("turning_point", tp.Index)
	}
	return nil
}

func (b *Builder) place(s *Story, d PlotDetail) error {
	tp := s.Current()
	if err := tp.Append(d); err != nil {
		return err
	}
	if d.Category == Concluding {
		if pl := s.PlotLine(tp.PlotLine); pl != nil {
			pl.Concluded = true
		}
	}
	s.touch()
	return nil
}

func (b *Builder) newCharacter(s *Story, src dice.Source) (*CharacterRef, error) {
	c, err := b.characters.Generate(src)
	if err != nil {
		return nil, fmt.Errorf("generate character: %w", err)
	}
	ref := CharacterRef{Key: s.nextCharacterKey(), Name: c.DisplayName(), Profile: c}
	s.AddCharacter(ref)
	return s.Character(ref.Key), nil
}

func (b *Builder) mostLogical(s *Story, taken []string, src dice.Source) (string, error) {
	if len(s.Characters) == 0 {
		ref, err := b.newCharacter(s, src)
		if err != nil {
			return "", err
		}
		return ref.Key, nil
	}

	// The beat's chosen characters are the picker's drawn set, so slots
	// repeat a character only once every one is in the beat.
	var fresh, all []string
	for _, c := range s.Characters {
		all = append(all, c.Key)
		if !slices.Contains(taken, c.Key) {
			fresh = append(fresh, c.Key)
		}
	}
	return picker.Resume("story characters", all, fresh).Draw(src)
}
