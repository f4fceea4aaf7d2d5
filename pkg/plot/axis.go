package plot

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// Fixed structure of every story.
const (
	AxisCount        = 5
	MaxTurningPoints = 5
	MaxPlotDetails   = 5

	// BlankCap is the most Blank beats a turning point may hold.
	BlankCap = 3
	// BlankCapConcluded applies once the turning point holds a Concluding beat.
	BlankCapConcluded = 2
	// ConcludingCap is the most Concluding beats a turning point may hold.
	ConcludingCap = 1
)

// Axis is one of the five theme dimensions.
type Axis int

const (
	Action Axis = iota
	Tension
	Mystery
	Social
	Personal
)

// Axes lists every axis in table order.
var Axes = [AxisCount]Axis{Action, Tension, Mystery, Social, Personal}

var axisNames = [AxisCount]string{"action", "tension", "mystery", "social", "personal"}

func (a Axis) Valid() bool {
	return a >= 0 && int(a) < AxisCount
}

func (a Axis) String() string {
	if !a.Valid() {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis accepts an axis name in any case.
func ParseAxis(s string) (Axis, error) {
	for i, n := range axisNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Axis(i), nil
		}
	}
	return 0, generr.InvalidArgument("unknown axis %q", s)
}

func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, generr.InvalidArgument("invalid axis %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Category classifies a plot point structurally.
type Category int

const (
	Normal Category = iota
	Blank
	Concluding
	IntroducesCharacter
	RemovesCharacter
	Meta
)

var categoryNames = []string{"normal", "blank", "concluding", "introduces_character", "removes_character", "meta"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Structural reports whether the category is neither Blank nor Concluding.
func (c Category) Structural() bool {
	return c != Blank && c != Concluding
}

func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Normal, nil
	}
	for i, n := range categoryNames {
		if strings.EqualFold(s, n) {
			return Category(i), nil
		}
	}
	return 0, generr.InvalidArgument("unknown plot point category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MetaAction is what a meta plot point does to the story's characters
// or plot lines.
type MetaAction int

const (
	CharacterExits MetaAction = iota
	CharacterReturns
	StepsUp
	StepsDown
	Downgrade
	Upgrade
	PlotlineCombo
)

var metaActionNames = []string{"character_exits", "character_returns", "steps_up", "steps_down", "downgrade", "upgrade", "plotline_combo"}

func (m MetaAction) String() string {
	if m < 0 || int(m) >= len(metaActionNames) {
		return fmt.Sprintf("meta(%d)", int(m))
	}
	return metaActionNames[m]
}

// InvolvesCharacter reports whether the action needs a character slot.
func (m MetaAction) InvolvesCharacter() bool {
	return m != PlotlineCombo
}

func ParseMetaAction(s string) (MetaAction, error) {
	for i, n := range metaActionNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return MetaAction(i), nil
		}
	}
	return 0, generr.InvalidArgument("unknown meta action %q", s)
}

func (m MetaAction) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MetaAction) UnmarshalText(b []byte) error {
	v, err := ParseMetaAction(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
