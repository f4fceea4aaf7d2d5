package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

func newTestBuilder(t *testing.T) (*Builder, *Story) {
	t.Helper()
	s, err := NewStory(Axes)
	require.NoError(t, err)
	return NewBuilder(testTables(t), testGenerator(t)), s
}

func TestBuilder_OpenTurningPoint(t *testing.T) {
	b, s := newTestBuilder(t)

	_, err := b.NextBeat(s, Action, dice.NewSequence(60))
	assert.True(t, generr.IsCode(err, generr.CodeNoTurningPoint))

	tp, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)
	assert.Equal(t, 0, tp.Index)
	assert.Equal(t, TypeNew, tp.Type)
	assert.Equal(t, "plotline-1", tp.PlotLine)
	require.Len(t, s.PlotLines, 1)

	_, err = b.OpenTurningPoint(s, "")
	assert.True(t, generr.IsCode(err, generr.CodeTurningPointRemaining))
}

func TestBuilder_PlainBeatsFillTurningPoint(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	for i := range MaxPlotDetails {
		res, err := b.NextBeat(s, Mystery, dice.NewSequence(60))
		require.NoError(t, err)
		assert.True(t, res.Placed)
		assert.Equal(t, "storm", res.Detail.PlotPoint)
		assert.Equal(t, Mystery, res.Detail.Axis)
		assert.Len(t, s.Current().Details, i+1)
	}

	_, err = b.NextBeat(s, Mystery, dice.NewSequence(60))
	assert.True(t, generr.IsCode(err, generr.CodeTurningPointFrozen))

	tp, err := b.OpenTurningPoint(s, "plotline-1")
	require.NoError(t, err)
	assert.Equal(t, TypeDevelopment, tp.Type)
	assert.Equal(t, 1, tp.Index)
}

func TestBuilder_CharacterSlots(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	_, err = b.AssignCharacter(s, ChoiceAuto, dice.NewSequence(1))
	assert.True(t, generr.IsCode(err, generr.CodeNotAwaitingCharacter))

	// A two-character beat waits for both choices.
	res, err := b.NextBeat(s, Social, dice.NewSequence(45))
	require.NoError(t, err)
	assert.False(t, res.Placed)
	assert.Equal(t, 2, res.AwaitingCharacters)
	require.NotNil(t, s.Pending)
	assert.Empty(t, s.Current().Details)

	_, err = b.NextBeat(s, Social, dice.NewSequence(60))
	assert.True(t, generr.IsCode(err, generr.CodeAwaitingCharacter))
	_, err = b.OpenTurningPoint(s, "")
	assert.True(t, generr.IsCode(err, generr.CodeAwaitingCharacter))

	// With no characters yet, auto generates one.
	res, err = b.AssignCharacter(s, ChoiceAuto, dice.NewSequence(50))
	require.NoError(t, err)
	assert.Equal(t, 1, res.AwaitingCharacters)
	require.Len(t, s.Characters, 1)
	assert.Equal(t, "character-1", s.Characters[0].Key)
	require.NotNil(t, s.Characters[0].Profile)

	_, err = b.AssignCharacter(s, "character-9", dice.NewSequence(1))
	assert.True(t, generr.IsCode(err, generr.CodeUnknownReference))

	res, err = b.AssignCharacter(s, ChoiceNew, dice.NewSequence(50))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.Equal(t, []string{"character-1", "character-2"}, res.Detail.Characters)
	assert.Nil(t, s.Pending)
	require.Len(t, s.Current().Details, 1)
	assert.Equal(t, "duel", s.Current().Details[0].PlotPoint)

	// Reusing an existing character by key.
	_, err = b.NextBeat(s, Social, dice.NewSequence(45))
	require.NoError(t, err)
	_, err = b.AssignCharacter(s, "character-2", dice.NewSequence(1))
	require.NoError(t, err)
	res, err = b.AssignCharacter(s, ChoiceAuto, dice.NewSequence(1))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.Equal(t, []string{"character-2", "character-1"}, res.Detail.Characters, "auto prefers a character not yet in the beat")
	assert.Len(t, s.Characters, 2)
}

func TestBuilder_IntroducesCharacter(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	res, err := b.NextBeat(s, Personal, dice.NewSequence(25))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.Equal(t, []string{"character-1"}, res.Detail.Characters)
	assert.Len(t, s.Characters, 1)
	assert.NotEmpty(t, s.Characters[0].Name)
}

func TestBuilder_MetaBeat(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	// Roll 35 lands on meta, then on character-exits in the meta table.
	res, err := b.NextBeat(s, Action, dice.NewSequence(35))
	require.NoError(t, err)
	require.NotNil(t, res.Detail.Meta)
	assert.Equal(t, CharacterExits, res.Detail.Meta.Action)
	assert.Equal(t, 1, res.AwaitingCharacters)

	res, err = b.AssignCharacter(s, ChoiceNew, dice.NewSequence(50))
	require.NoError(t, err)
	assert.True(t, res.Placed)

	// Roll 35 then 80: a plotline combo needs no character.
	res, err = b.NextBeat(s, Action, dice.NewSequence(35, 80))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.Equal(t, PlotlineCombo, res.Detail.Meta.Action)
	assert.Empty(t, res.Detail.Characters)
}

func TestBuilder_ConclusionClosesPlotLine(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	res, err := b.NextBeat(s, Tension, dice.NewSequence(5))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.True(t, s.Current().Concluded)
	assert.Equal(t, TypeConclusion, s.Current().Type)
	assert.True(t, s.PlotLine("plotline-1").Concluded)

	_, err = b.NextBeat(s, Tension, dice.NewSequence(60))
	assert.True(t, generr.IsCode(err, generr.CodeTurningPointFrozen))

	_, err = b.OpenTurningPoint(s, "plotline-1")
	assert.True(t, generr.IsCode(err, generr.CodePlotLineConcluded))
	_, err = b.OpenTurningPoint(s, "plotline-7")
	assert.True(t, generr.IsCode(err, generr.CodeUnknownReference))

	tp, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)
	assert.Equal(t, "plotline-2", tp.PlotLine)
}

func TestBuilder_StoryConcludes(t *testing.T) {
	b, s := newTestBuilder(t)

	for range MaxTurningPoints {
		_, err := b.OpenTurningPoint(s, "")
		require.NoError(t, err)
		_, err = b.NextBeat(s, Action, dice.NewSequence(5))
		require.NoError(t, err)
	}

	assert.True(t, s.Concluded())
	_, err := b.NextBeat(s, Action, dice.NewSequence(60))
	assert.True(t, generr.IsCode(err, generr.CodeStoryConcluded))
	_, err = b.NextBeatByTheme(s, dice.NewSequence(1))
	assert.True(t, generr.IsCode(err, generr.CodeStoryConcluded))
	_, err = b.OpenTurningPoint(s, "")
	assert.True(t, generr.IsCode(err, generr.CodeStoryConcluded))
}

func TestBuilder_NextBeatByTheme(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	// d10 roll of 10 picks priority 4, then the d100 roll of 60 a plain beat.
	res, err := b.NextBeatByTheme(s, dice.NewSequence(10, 60))
	require.NoError(t, err)
	assert.Equal(t, Social, res.Detail.Axis)
	assert.Equal(t, "storm", res.Detail.PlotPoint)
	assert.True(t, s.LowThemeFlip)
}

func TestBuilder_AutoRepeatsOnlyWhenEveryoneIsInTheBeat(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)

	_, err = b.NextBeat(s, Social, dice.NewSequence(45))
	require.NoError(t, err)
	_, err = b.AssignCharacter(s, ChoiceNew, dice.NewSequence(50))
	require.NoError(t, err)

	res, err := b.AssignCharacter(s, ChoiceAuto, dice.NewSequence(1))
	require.NoError(t, err)
	assert.True(t, res.Placed)
	assert.Equal(t, []string{"character-1", "character-1"}, res.Detail.Characters)
	assert.Len(t, s.Characters, 1)

	// With a second character the pair differs whatever the roll.
	_, err = b.NextBeat(s, Social, dice.NewSequence(45))
	require.NoError(t, err)
	_, err = b.AssignCharacter(s, ChoiceNew, dice.NewSequence(50))
	require.NoError(t, err)
	for _, roll := range []int{1, 2, 7} {
		k, err := b.mostLogical(s, s.Pending.Detail.Characters, dice.NewSequence(roll))
		require.NoError(t, err)
		assert.Equal(t, "character-1", k, "roll %d", roll)
	}
}

func TestBuilder_NextBeatByTheme_FailureKeepsFlip(t *testing.T) {
	b, s := newTestBuilder(t)
	_, err := b.OpenTurningPoint(s, "")
	require.NoError(t, err)
	for range BlankCap {
		res, err := b.NextBeat(s, Mystery, dice.NewSequence(15))
		require.NoError(t, err)
		require.Equal(t, "none", res.Detail.PlotPoint)
	}

	// Roll 10 takes the alternating priority, then every d100 roll lands on
	// a Blank or Concluding beat, so the structural re-roll gives up.
	_, err = b.NextBeatByTheme(s, dice.NewSequence(10, 15))
	require.Error(t, err)
	assert.True(t, generr.IsCode(err, generr.CodeSamplerExhausted), err.Error())
	assert.False(t, s.LowThemeFlip)
	assert.Len(t, s.Current().Details, BlankCap)

	res, err := b.NextBeatByTheme(s, dice.NewSequence(10, 60))
	require.NoError(t, err)
	assert.Equal(t, Social, res.Detail.Axis)
	assert.True(t, s.LowThemeFlip)
}
