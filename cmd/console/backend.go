package main

import (
	"github.com/jwebster45206/story-crafter/internal/handlers"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

// Backend runs story steps either in-process or against the API. Every
// step returns the updated story.
type Backend interface {
	Create(title string, themes []string) (*plot.Story, error)
	OpenTurningPoint(plotLine string) (*handlers.StepResponse, error)
	NextBeat(req handlers.NextBeatRequest) (*handlers.StepResponse, error)
	AssignCharacter(choice string) (*handlers.StepResponse, error)
	Annotate(req handlers.AnnotateRequest) (*handlers.StepResponse, error)
	Name() string
}

// localBackend drives the builder directly. A failed step leaves the
// story untouched.
type localBackend struct {
	builder *plot.Builder
	src     dice.Source
	story   *plot.Story
}

func newLocalBackend(builder *plot.Builder, src dice.Source) *localBackend {
	return &localBackend{builder: builder, src: src}
}

func (b *localBackend) Name() string { return "offline" }

func (b *localBackend) Create(title string, themes []string) (*plot.Story, error) {
	var order [plot.AxisCount]plot.Axis
	if len(themes) == 0 {
		order = plot.RandomThemes(b.src)
	} else {
		var err error
		if order, err = parseThemes(themes); err != nil {
			return nil, err
		}
	}
	s, err := plot.NewStory(order)
	if err != nil {
		return nil, err
	}
	s.Title = title
	b.story = s
	return s, nil
}

func (b *localBackend) OpenTurningPoint(plotLine string) (*handlers.StepResponse, error) {
	return b.step(func(s *plot.Story) (*handlers.StepResponse, error) {
		tp, err := b.builder.OpenTurningPoint(s, plotLine)
		if err != nil {
			return nil, err
		}
		return &handlers.StepResponse{Opened: tp}, nil
	})
}

func (b *localBackend) NextBeat(req handlers.NextBeatRequest) (*handlers.StepResponse, error) {
	return b.step(func(s *plot.Story) (*handlers.StepResponse, error) {
		var (
			res *plot.BeatResult
			err error
		)
		switch {
		case req.Axis != "":
			axis, perr := plot.ParseAxis(req.Axis)
			if perr != nil {
				return nil, perr
			}
			res, err = b.builder.NextBeat(s, axis, b.src)
		case req.Priority != 0:
			axis, perr := s.ThemeForPriority(req.Priority)
			if perr != nil {
				return nil, perr
			}
			res, err = b.builder.NextBeat(s, axis, b.src)
		default:
			res, err = b.builder.NextBeatByTheme(s, b.src)
		}
		if err != nil {
			return nil, err
		}
		return &handlers.StepResponse{Result: res}, nil
	})
}

func (b *localBackend) AssignCharacter(choice string) (*handlers.StepResponse, error) {
	return b.step(func(s *plot.Story) (*handlers.StepResponse, error) {
		res, err := b.builder.AssignCharacter(s, choice, b.src)
		if err != nil {
			return nil, err
		}
		return &handlers.StepResponse{Result: res}, nil
	})
}

func (b *localBackend) Annotate(req handlers.AnnotateRequest) (*handlers.StepResponse, error) {
	return b.step(func(s *plot.Story) (*handlers.StepResponse, error) {
		if err := s.Annotate(req.TurningPoint, req.Slot, req.Notes); err != nil {
			return nil, err
		}
		return &handlers.StepResponse{}, nil
	})
}

// step applies fn to a copy of the story and keeps the copy on success.
func (b *localBackend) step(fn func(*plot.Story) (*handlers.StepResponse, error)) (*handlers.StepResponse, error) {
	work, err := cloneStory(b.story)
	if err != nil {
		return nil, err
	}
	resp, err := fn(work)
	if err != nil {
		return nil, err
	}
	b.story = work
	resp.Story = work
	return resp, nil
}

func parseThemes(names []string) ([plot.AxisCount]plot.Axis, error) {
	var order [plot.AxisCount]plot.Axis
	if len(names) != plot.AxisCount {
		return order, errThemeCount
	}
	for i, n := range names {
		a, err := plot.ParseAxis(n)
		if err != nil {
			return order, err
		}
		order[i] = a
	}
	return order, nil
}
