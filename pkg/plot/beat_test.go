package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

func turningPointWith(categories ...Category) *TurningPoint {
	tp := &TurningPoint{}
	for _, c := range categories {
		tp.Details = append(tp.Details, PlotDetail{Category: c})
	}
	return tp
}

func TestPickBeat(t *testing.T) {
	tests := []struct {
		name      string
		tp        *TurningPoint
		rolls     []int
		want      string
		wantCalls int
	}{
		{"plain beat", turningPointWith(), []int{60}, "storm", 1},
		{"first concluding accepted", turningPointWith(Blank, Blank), []int{5}, "conclusion", 1},
		{"second concluding downgraded to blank", turningPointWith(Concluding), []int{5}, "none", 1},
		{"second concluding downgraded with one blank", turningPointWith(Blank, Concluding), []int{5}, "none", 1},
		{"second concluding rerolled at two blanks", turningPointWith(Blank, Blank, Concluding), []int{5, 15, 5, 60}, "storm", 4},
		{"concluding rerolled at three blanks", turningPointWith(Blank, Blank, Blank), []int{5, 45}, "duel", 2},
		{"blank accepted under cap", turningPointWith(Blank, Blank), []int{15}, "none", 1},
		{"blank rerolled at cap", turningPointWith(Blank, Blank, Blank), []int{15, 25}, "new-character", 2},
		{"blank rerolled at concluded cap", turningPointWith(Concluding, Blank, Blank), []int{15, 35}, "meta", 2},
		{"blank accepted after concluding", turningPointWith(Concluding, Blank), []int{15}, "none", 1},
	}

	selector := NewBeatSelector(testTables(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.tp.Details)
			src := dice.NewSequence(tt.rolls...)

			got, err := selector.PickBeat(Tension, tt.tp, src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
			assert.Equal(t, tt.wantCalls, src.Calls())
			assert.Len(t, tt.tp.Details, before, "turning point must not change")
		})
	}
}

func TestPickBeat_InvalidArguments(t *testing.T) {
	selector := NewBeatSelector(testTables(t))

	_, err := selector.PickBeat(Axis(7), &TurningPoint{}, dice.NewSequence(1))
	assert.True(t, generr.IsInvalidArgument(err))

	_, err = selector.PickBeat(Action, nil, dice.NewSequence(1))
	assert.True(t, generr.IsInvalidArgument(err))
}

func TestPickBeat_CapsHoldOverManyTurningPoints(t *testing.T) {
	// Heavy on structural beats so the repair paths run often.
	points := []*PlotPoint{
		{ID: "conclusion", Category: Concluding, Ranges: onEveryAxis(1, 30)},
		{ID: "none", Category: Blank, Ranges: onEveryAxis(31, 65)},
		{ID: "filler", Category: Normal, Ranges: onEveryAxis(66, 100)},
	}
	tables, err := NewTables(points, testMetas())
	require.NoError(t, err)
	selector := NewBeatSelector(tables)

	src, _, err := dice.NewSource(42)
	require.NoError(t, err)

	for run := range 10_000 {
		tp := &TurningPoint{}
		for !tp.Full() {
			axis := Axes[src.Intn(AxisCount)]
			pp, err := selector.PickBeat(axis, tp, src)
			require.NoError(t, err)
			require.NoError(t, tp.Append(PlotDetail{PlotPoint: pp.ID, Category: pp.Category, Axis: axis}))

			nb, nc := tp.Counts()
			require.LessOrEqual(t, nc, ConcludingCap, "run %d", run)
			require.LessOrEqual(t, nb, BlankCap, "run %d", run)
			if nc == ConcludingCap {
				require.LessOrEqual(t, nb, BlankCapConcluded, "run %d", run)
			}
		}
	}
}

func TestReplaceUntilStructural(t *testing.T) {
	selector := NewBeatSelector(testTables(t))
	src := dice.NewSequence(3, 12, 19, 8, 99)

	got, err := selector.ReplaceUntilStructural(Social, src)
	require.NoError(t, err)
	assert.Equal(t, "storm", got.ID)
	assert.Equal(t, 5, src.Calls())
}

func TestReplaceUntilStructural_Exhausted(t *testing.T) {
	selector := NewBeatSelector(testTables(t))

	_, err := selector.ReplaceUntilStructural(Action, dice.NewSequence(1, 11))
	assert.True(t, generr.IsCode(err, generr.CodeSamplerExhausted))
}
