package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SourceFunc returns the random source for one request.
type SourceFunc func() (dice.Source, error)

// SeededSources returns the random source for requests. A non-zero seed
// seeds one shared stream that every request draws from in turn; 0 gives
// each request its own fresh random seed.
func SeededSources(seed int64) SourceFunc {
	if seed != 0 {
		master, _, err := dice.NewSource(seed)
		if err != nil {
			return func() (dice.Source, error) { return nil, err }
		}
		shared := dice.NewLocked(master)
		return func() (dice.Source, error) { return shared, nil }
	}
	return func() (dice.Source, error) {
		src, _, err := dice.NewSource(seed)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case generr.IsCode(err, generr.CodeUnknownReference):
		return http.StatusNotFound
	case generr.IsInvalidArgument(err):
		return http.StatusBadRequest
	case generr.IsStateConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeError reports err with its mapped status. Server-side failures are
// logged and their details withheld.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error(), Code: string(generr.GetCode(err))}

	var ge *generr.Error
	if errors.As(err, &ge) {
		resp.Error = ge.Message
		resp.Metadata = ge.Metadata
	}
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		resp = ErrorResponse{Error: "Internal server error", Code: resp.Code}
	}
	writeJSON(w, logger, status, resp)
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return generr.InvalidArgument("invalid request body: %v", err)
	}
	return nil
}
