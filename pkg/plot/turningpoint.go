package plot

import (
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// TurningPointType says how a turning point relates to its plot line.
type TurningPointType string

const (
	TypeNone        TurningPointType = "none"
	TypeNew         TurningPointType = "new"
	TypeDevelopment TurningPointType = "development"
	TypeConclusion  TurningPointType = "conclusion"
)

// MetaDetail records the meta plot point a Meta beat resolved to.
type MetaDetail struct {
	Key    string     `json:"key"`
	Name   string     `json:"name"`
	Action MetaAction `json:"action"`
}

// PlotDetail is one filled beat slot.
type PlotDetail struct {
	PlotPoint  string      `json:"plot_point"`
	Name       string      `json:"name"`
	Category   Category    `json:"category"`
	Axis       Axis        `json:"axis"`
	Notes      string      `json:"notes,omitempty"`
	Characters []string    `json:"characters,omitempty"` // at most two character keys
	Meta       *MetaDetail `json:"meta,omitempty"`
}

// TurningPoint is one narrative segment of up to MaxPlotDetails beats.
type TurningPoint struct {
	Index     int              `json:"index"`
	Type      TurningPointType `json:"type"`
	PlotLine  string           `json:"plot_line,omitempty"`
	Details   []PlotDetail     `json:"details"`
	Concluded bool             `json:"concluded"`
}

// Counts returns how many Blank and Concluding beats are already placed.
func (tp *TurningPoint) Counts() (numBlank, numConcluding int) {
	for _, d := range tp.Details {
		switch d.Category {
		case Blank:
			numBlank++
		case Concluding:
			numConcluding++
		}
	}
	return numBlank, numConcluding
}

// Full reports whether every slot is filled.
func (tp *TurningPoint) Full() bool {
	return len(tp.Details) >= MaxPlotDetails
}

// Frozen reports whether the turning point accepts no further beats
// through the story builder.
func (tp *TurningPoint) Frozen() bool {
	return tp.Full() || tp.Concluded
}

// Append places a beat in the next free slot. Only slot capacity is
// enforced here; structural caps are the beat selector's job.
func (tp *TurningPoint) Append(d PlotDetail) error {
	if tp.Full() {
		return generr.New(generr.CodeTurningPointFrozen, "turning point has no free slot").With("turning_point", tp.Index)
	}
	if len(d.Characters) > 2 {
		return generr.InvalidArgument("plot detail references %d characters, at most 2 allowed", len(d.Characters))
	}
	tp.Details = append(tp.Details, d)
	if d.Category == Concluding {
		tp.Concluded = true
		tp.Type = TypeConclusion
	}
	return nil
}
