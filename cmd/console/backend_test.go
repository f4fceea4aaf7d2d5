package main

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-crafter/internal/handlers"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
	"github.com/jwebster45206/story-crafter/pkg/character"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

var consoleThemes = []string{"tension", "action", "social", "mystery", "personal"}

func testBuilder(t *testing.T) *plot.Builder {
	t.Helper()
	cat, err := catalogue.Default()
	require.NoError(t, err)
	return plot.NewBuilder(cat.Plot, character.NewGenerator(cat.Characters))
}

func TestLocalBackend(t *testing.T) {
	// Every roll is 27: tension 27 is a plain beat with no characters.
	b := newLocalBackend(testBuilder(t), dice.NewSequence(27))

	_, err := b.OpenTurningPoint("")
	assert.Error(t, err, "no story yet")

	s, err := b.Create("Harbour", consoleThemes)
	require.NoError(t, err)
	assert.Equal(t, plot.Tension, s.Themes[0])

	_, err = b.NextBeat(handlers.NextBeatRequest{})
	require.Error(t, err)
	assert.True(t, generr.IsCode(err, generr.CodeNoTurningPoint))

	resp, err := b.OpenTurningPoint("")
	require.NoError(t, err)
	assert.Equal(t, "plotline-1", resp.Opened.PlotLine)

	resp, err = b.NextBeat(handlers.NextBeatRequest{Axis: "tension"})
	require.NoError(t, err)
	assert.True(t, resp.Result.Placed)
	assert.Equal(t, "resource-runs-out", resp.Result.Detail.PlotPoint)

	resp, err = b.Annotate(handlers.AnnotateRequest{TurningPoint: 0, Slot: 0, Notes: "the last lamp"})
	require.NoError(t, err)
	assert.Equal(t, "the last lamp", resp.Story.TurningPoints[0].Details[0].Notes)

	// A rejected step keeps the previous story.
	_, err = b.Annotate(handlers.AnnotateRequest{TurningPoint: 3})
	require.Error(t, err)
	assert.Len(t, b.story.TurningPoints, 1)
	assert.Equal(t, "the last lamp", b.story.TurningPoints[0].Details[0].Notes)
}

func TestLocalBackend_BadThemes(t *testing.T) {
	b := newLocalBackend(testBuilder(t), dice.NewSequence(1))

	_, err := b.Create("", consoleThemes[:2])
	assert.ErrorIs(t, err, errThemeCount)

	_, err = b.Create("", []string{"tension", "action", "social", "mystery", "romance"})
	assert.Error(t, err)

	s, err := b.Create("", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, plot.Axes[:], s.Themes[:])
}

func TestAPIBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	stories := handlers.NewStoryHandler(storage.NewMockStorage(), testBuilder(t), handlers.SeededSources(3), logger)
	srv := httptest.NewServer(stories)
	t.Cleanup(srv.Close)

	b := newAPIBackend(srv.Client(), srv.URL)
	s, err := b.Create("Harbour", consoleThemes)
	require.NoError(t, err)
	assert.Equal(t, "Harbour", s.Title)

	_, err = b.NextBeat(handlers.NextBeatRequest{Axis: "tension"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(generr.CodeNoTurningPoint))

	resp, err := b.OpenTurningPoint("")
	require.NoError(t, err)
	assert.Equal(t, s.ID, resp.Story.ID)
	assert.Len(t, resp.Story.TurningPoints, 1)

	_, err = b.AssignCharacter("new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(generr.CodeNotAwaitingCharacter))
}
