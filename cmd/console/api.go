package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/story-crafter/internal/handlers"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// apiBackend runs every step through the HTTP API.
type apiBackend struct {
	client  *http.Client
	baseURL string
	storyID string
}

func newAPIBackend(client *http.Client, baseURL string) *apiBackend {
	return &apiBackend{client: client, baseURL: baseURL}
}

func (b *apiBackend) Name() string { return b.baseURL }

func (b *apiBackend) Create(title string, themes []string) (*plot.Story, error) {
	var s plot.Story
	req := handlers.CreateStoryRequest{Title: title, Themes: themes}
	if err := b.post("/v1/stories", req, http.StatusCreated, &s); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	b.storyID = s.ID.String()
	return &s, nil
}

func (b *apiBackend) OpenTurningPoint(plotLine string) (*handlers.StepResponse, error) {
	return b.step("turning-points", handlers.OpenTurningPointRequest{PlotLine: plotLine})
}

func (b *apiBackend) NextBeat(req handlers.NextBeatRequest) (*handlers.StepResponse, error) {
	return b.step("beats", req)
}

func (b *apiBackend) AssignCharacter(choice string) (*handlers.StepResponse, error) {
	return b.step("characters", handlers.AssignCharacterRequest{Choice: choice})
}

func (b *apiBackend) Annotate(req handlers.AnnotateRequest) (*handlers.StepResponse, error) {
	return b.step("notes", req)
}

func (b *apiBackend) step(action string, body any) (*handlers.StepResponse, error) {
	var resp handlers.StepResponse
	if err := b.post("/v1/stories/"+b.storyID+"/"+action, body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (b *apiBackend) post(path string, body any, wantStatus int, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := b.client.Post(b.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		if errorResp.Code != "" {
			return fmt.Errorf("%s: %s", errorResp.Code, errorResp.Error)
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
