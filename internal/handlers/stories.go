package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

var errStoryLocked = errors.New("story is locked by another request")

type StoryHandler struct {
	storage storage.Storage
	builder *plot.Builder
	sources SourceFunc
	logger  *slog.Logger
}

func NewStoryHandler(store storage.Storage, builder *plot.Builder, sources SourceFunc, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		storage: store,
		builder: builder,
		sources: sources,
		logger:  logger,
	}
}

// CreateStoryRequest defines the request body for creating a story.
// Themes, when given, list all five axes highest priority first.
type CreateStoryRequest struct {
	Title  string   `json:"title,omitempty"`
	Themes []string `json:"themes,omitempty"`
}

type OpenTurningPointRequest struct {
	PlotLine string `json:"plot_line,omitempty"` // empty opens a new plot line
}

// NextBeatRequest picks the axis of the next beat. Axis wins over
// Priority; with neither the theme is rolled.
type NextBeatRequest struct {
	Axis     string `json:"axis,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

type AssignCharacterRequest struct {
	Choice string `json:"choice"` // "new", "auto" or a character key
}

type AnnotateRequest struct {
	TurningPoint int    `json:"turning_point"`
	Slot         int    `json:"slot"`
	Notes        string `json:"notes"`
}

// StepResponse is returned by every story mutation.
type StepResponse struct {
	Result *plot.BeatResult   `json:"result,omitempty"`
	Opened *plot.TurningPoint `json:"turning_point,omitempty"`
	Story  *plot.Story        `json:"story"`
}

// ServeHTTP handles HTTP requests for stories
// Routes:
// POST   /v1/stories                      - Create a story
// GET    /v1/stories/{id}                 - Read a story
// DELETE /v1/stories/{id}                 - Delete a story
// POST   /v1/stories/{id}/turning-points  - Open the next turning point
// POST   /v1/stories/{id}/beats           - Pick the next beat
// POST   /v1/stories/{id}/characters      - Fill a pending character slot
// POST   /v1/stories/{id}/notes           - Annotate a placed beat
func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	storyID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid story ID", "id", idStr, "error", err)
		writeMessage(w, h.logger, http.StatusBadRequest, "Invalid story ID format")
		return
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, storyID)
		case http.MethodDelete:
			h.handleDelete(w, r, storyID)
		default:
			writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}
	switch action {
	case "turning-points":
		h.handleOpenTurningPoint(w, r, storyID)
	case "beats":
		h.handleNextBeat(w, r, storyID)
	case "characters":
		h.handleAssignCharacter(w, r, storyID)
	case "notes":
		h.handleAnnotate(w, r, storyID)
	default:
		writeMessage(w, h.logger, http.StatusNotFound, "Unknown story action")
	}
}

func (h *StoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	themes, err := h.themes(req.Themes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s, err := plot.NewStory(themes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	s.Title = strings.TrimSpace(req.Title)

	if err := h.storage.SaveStory(r.Context(), s); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("Story created", "story_id", s.ID, "themes", s.Themes)
	writeJSON(w, h.logger, http.StatusCreated, s)
}

func (h *StoryHandler) themes(names []string) ([plot.AxisCount]plot.Axis, error) {
	var themes [plot.AxisCount]plot.Axis
	if len(names) == 0 {
		src, err := h.sources()
		if err != nil {
			return themes, err
		}
		return plot.RandomThemes(src), nil
	}
	if len(names) != plot.AxisCount {
		return themes, generr.InvalidArgument("themes must list %d axes, got %d", plot.AxisCount, len(names))
	}
	for i, name := range names {
		a, err := plot.ParseAxis(name)
		if err != nil {
			return themes, err
		}
		themes[i] = a
	}
	return themes, nil
}

func (h *StoryHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.storage.LoadStory(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if s == nil {
		writeMessage(w, h.logger, http.StatusNotFound, "Story not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *StoryHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteStory(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("Story deleted", "story_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoryHandler) handleOpenTurningPoint(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req OpenTurningPointRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.mutate(w, r, id, func(s *plot.Story, _ dice.Source) (*StepResponse, error) {
		tp, err := h.builder.OpenTurningPoint(s, strings.TrimSpace(req.PlotLine))
		if err != nil {
			return nil, err
		}
		return &StepResponse{Opened: tp}, nil
	})
}

func (h *StoryHandler) handleNextBeat(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req NextBeatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.mutate(w, r, id, func(s *plot.Story, src dice.Source) (*StepResponse, error) {
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
			res, err = h.builder.NextBeat(s, axis, src)
		case req.Priority != 0:
			axis, perr := s.ThemeForPriority(req.Priority)
			if perr != nil {
				return nil, perr
			}
			res, err = h.builder.NextBeat(s, axis, src)
		default:
			res, err = h.builder.NextBeatByTheme(s, src)
		}
		if err != nil {
			return nil, err
		}
		return &StepResponse{Result: res}, nil
	})
}

func (h *StoryHandler) handleAssignCharacter(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req AssignCharacterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	choice := strings.TrimSpace(req.Choice)
	if choice == "" {
		writeError(w, h.logger, generr.InvalidArgument("choice is required"))
		return
	}
	h.mutate(w, r, id, func(s *plot.Story, src dice.Source) (*StepResponse, error) {
		res, err := h.builder.AssignCharacter(s, choice, src)
		if err != nil {
			return nil, err
		}
		return &StepResponse{Result: res}, nil
	})
}

func (h *StoryHandler) handleAnnotate(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req AnnotateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.mutate(w, r, id, func(s *plot.Story, _ dice.Source) (*StepResponse, error) {
		if err := s.Annotate(req.TurningPoint, req.Slot, req.Notes); err != nil {
			return nil, err
		}
		return &StepResponse{}, nil
	})
}

// mutate runs step against the stored story under the story lock and
// saves the result. Nothing is saved when step fails.
func (h *StoryHandler) mutate(w http.ResponseWriter, r *http.Request, id uuid.UUID, step func(*plot.Story, dice.Source) (*StepResponse, error)) {
	ctx := r.Context()
	log := h.logger.With("story_id", id)
	owner := uuid.NewString()

	locked, err := h.storage.LockStory(ctx, id, owner)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if !locked {
		log.Warn("Story mutation rejected, lock held")
		writeMessage(w, log, http.StatusConflict, errStoryLocked.Error())
		return
	}
	defer func() {
		if err := h.storage.UnlockStory(context.WithoutCancel(ctx), id, owner); err != nil {
			log.Error("Failed to release story lock", "error", err)
		}
	}()

	s, err := h.storage.LoadStory(ctx, id)
	if err != nil {
		writeError(w, log, err)
		return
	}
	if s == nil {
		writeMessage(w, log, http.StatusNotFound, "Story not found")
		return
	}

	src, err := h.sources()
	if err != nil {
		writeError(w, log, err)
		return
	}
	resp, err := step(s, src)
	if err != nil {
		if StatusFor(err) != http.StatusInternalServerError {
			log.Debug("Story step rejected", "error", err)
		}
		writeError(w, log, err)
		return
	}

	if err := h.storage.SaveStory(ctx, s); err != nil {
		writeError(w, log, err)
		return
	}
	resp.Story = s
	writeJSON(w, log, http.StatusOK, resp)
}
