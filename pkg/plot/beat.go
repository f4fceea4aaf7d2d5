package plot

import (
	"fmt"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/sampler"
)

// BeatSelector picks plot points for a turning point while keeping Blank
// and Concluding beats within their caps.
type BeatSelector struct {
	tables *Tables
}

func NewBeatSelector(tables *Tables) *BeatSelector {
	return &BeatSelector{tables: tables}
}

// PickBeat samples a candidate on axis and repairs it against what tp
// already holds:
//
//   - a second Concluding beat is downgraded to the Blank sentinel while
//     fewer than two Blanks are placed, otherwise re-rolled;
//   - a Concluding beat is re-rolled when three Blanks are already placed,
//     since a concluded turning point may hold only two;
//   - a Blank beat is re-rolled at the Blank cap, or at two Blanks once a
//     Concluding beat is placed.
//
// Re-rolls draw until a structural beat comes up. tp is not modified.
func (s *BeatSelector) PickBeat(axis Axis, tp *TurningPoint, src dice.Source) (*PlotPoint, error) {
	if !axis.Valid() {
		return nil, generr.InvalidArgument("invalid axis %d", int(axis))
	}
	if tp == nil {
		return nil, generr.InvalidArgument("turning point is required")
	}

	cand, err := sampler.SampleAxis(s.tables.Plot, int(axis), src)
	if err != nil {
		return nil, fmt.Errorf("sample %s beat: %w", axis, err)
	}

	numBlank, numConcluding := tp.Counts()

	switch cand.Category {
	case Concluding:
		if numConcluding >= ConcludingCap {
			if numBlank < BlankCapConcluded {
				return s.tables.Blank, nil
			}
			return s.ReplaceUntilStructural(axis, src)
		}
		if numBlank > BlankCapConcluded {
			return s.ReplaceUntilStructural(axis, src)
		}
	case Blank:
		if numBlank >= BlankCap {
			return s.ReplaceUntilStructural(axis, src)
		}
		if numConcluding >= ConcludingCap && numBlank >= BlankCapConcluded {
			return s.ReplaceUntilStructural(axis, src)
		}
	}
	return cand, nil
}

// ReplaceUntilStructural draws on axis until a structural beat comes up.
func (s *BeatSelector) ReplaceUntilStructural(axis Axis, src dice.Source) (*PlotPoint, error) {
	p, err := sampler.SampleWhere(s.tables.Plot, int(axis), src, func(p *PlotPoint) bool {
		return p.Category.Structural()
	})
	if err != nil {
		return nil, fmt.Errorf("replace %s beat: %w", axis, err)
	}
	return p, nil
}
