package plot

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// PlotLine is an entry of a story's plot line list.
type PlotLine struct {
	Key       string `json:"key"`
	Name      string `json:"name,omitempty"`
	Concluded bool   `json:"concluded"`
}

// CharacterRef is an entry of a story's character list.
type CharacterRef struct {
	Key     string               `json:"key"`
	Name    string               `json:"name"`
	Profile *character.Character `json:"profile,omitempty"`
}

// PendingBeat is a beat waiting for the author to choose characters.
type PendingBeat struct {
	Detail    PlotDetail `json:"detail"`
	Remaining int        `json:"remaining"`
}

// Story is the aggregate built beat by beat.
type Story struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title,omitempty"`
	Themes        [AxisCount]Axis `json:"themes"` // Themes[0] is priority 1
	TurningPoints []TurningPoint  `json:"turning_points"`
	PlotLines     []PlotLine      `json:"plot_lines"`
	Characters    []CharacterRef  `json:"characters"`
	Pending       *PendingBeat    `json:"pending,omitempty"`
	LowThemeFlip  bool            `json:"low_theme_flip,omitempty"` // next 10 on the theme roll picks priority 5
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewStory creates an empty story. themes must be a permutation of the
// five axes, highest priority first.
func NewStory(themes [AxisCount]Axis) (*Story, error) {
	var seen [AxisCount]bool
	for _, a := range themes {
		if !a.Valid() || seen[a] {
			return nil, generr.InvalidArgument("themes must list each axis exactly once, got %v", themes)
		}
		seen[a] = true
	}
	now := time.Now()
	return &Story{
		ID:            uuid.New(),
		Themes:        themes,
		TurningPoints: []TurningPoint{},
		PlotLines:     []PlotLine{},
		Characters:    []CharacterRef{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// RandomThemes shuffles the five axes into a priority order.
func RandomThemes(src dice.Source) [AxisCount]Axis {
	themes := Axes
	for i := AxisCount - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		themes[i], themes[j] = themes[j], themes[i]
	}
	return themes
}

// ThemeForPriority returns the axis assigned to priority p (1..5).
func (s *Story) ThemeForPriority(p int) (Axis, error) {
	if p < 1 || p > AxisCount {
		return 0, generr.InvalidArgument("theme priority %d outside 1..%d", p, AxisCount)
	}
	return s.Themes[p-1], nil
}

// RollTheme rolls a d10 for the theme of the next beat: 1-4 gives
// priority 1, 5-7 priority 2, 8-9 priority 3, and 10 alternates between
// priorities 4 and 5, starting with 4.
func (s *Story) RollTheme(src dice.Source) Axis {
	axis, flip := s.peekTheme(src)
	if flip {
		s.LowThemeFlip = !s.LowThemeFlip
	}
	return axis
}

// peekTheme rolls like RollTheme without touching the story. flip reports
// whether the roll used the alternating low priority.
func (s *Story) peekTheme(src dice.Source) (axis Axis, flip bool) {
	var p int
	switch r := dice.Roll(src, 10); {
	case r <= 4:
		p = 1
	case r <= 7:
		p = 2
	case r <= 9:
		p = 3
	default:
		p = 4
		if s.LowThemeFlip {
			p = 5
		}
		flip = true
	}
	return s.Themes[p-1], flip
}

// Current returns the latest turning point, or nil before the first one.
func (s *Story) Current() *TurningPoint {
	if len(s.TurningPoints) == 0 {
		return nil
	}
	return &s.TurningPoints[len(s.TurningPoints)-1]
}

// Concluded reports whether the story accepts no further beats: the last
// allowed turning point exists and is frozen.
func (s *Story) Concluded() bool {
	return len(s.TurningPoints) >= MaxTurningPoints && s.TurningPoints[MaxTurningPoints-1].Frozen()
}

// PlotLine returns the plot line with key, or nil.
func (s *Story) PlotLine(key string) *PlotLine {
	for i := range s.PlotLines {
		if s.PlotLines[i].Key == key {
			return &s.PlotLines[i]
		}
	}
	return nil
}

// Character returns the character with key, or nil.
func (s *Story) Character(key string) *CharacterRef {
	for i := range s.Characters {
		if s.Characters[i].Key == key {
			return &s.Characters[i]
		}
	}
	return nil
}

// AddPlotLine appends pl unless its key is already listed.
func (s *Story) AddPlotLine(pl PlotLine) bool {
	if s.PlotLine(pl.Key) != nil {
		return false
	}
	s.PlotLines = append(s.PlotLines, pl)
	return true
}

// AddCharacter appends c unless its key is already listed.
func (s *Story) AddCharacter(c CharacterRef) bool {
	if s.Character(c.Key) != nil {
		return false
	}
	s.Characters = append(s.Characters, c)
	return true
}

// Annotate sets the author's notes on a placed beat.
func (s *Story) Annotate(turningPoint, slot int, notes string) error {
	if turningPoint < 0 || turningPoint >= len(s.TurningPoints) {
		return generr.InvalidArgument("turning point %d does not exist", turningPoint)
	}
	tp := &s.TurningPoints[turningPoint]
	if slot < 0 || slot >= len(tp.Details) {
		return generr.InvalidArgument("turning point %d has no slot %d", turningPoint, slot)
	}
	tp.Details[slot].Notes = notes
	s.touch()
	return nil
}

func (s *Story) nextPlotLineKey() string {
	return fmt.Sprintf("plotline-%d", len(s.PlotLines)+1)
}

func (s *Story) nextCharacterKey() string {
	return fmt.Sprintf("character-%d", len(s.Characters)+1)
}

func (s *Story) touch() {
	s.UpdatedAt = time.Now()
}
