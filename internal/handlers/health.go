package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	storage   storage.Storage
	catalogue *catalogue.Catalogue
	logger    *slog.Logger
}

func NewHealthHandler(storage storage.Storage, cat *catalogue.Catalogue, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:   storage,
		catalogue: cat,
		logger:    logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if h.catalogue != nil {
		components["catalogue"] = map[string]int{
			"plot_points":      len(h.catalogue.PlotPoints),
			"meta_plot_points": len(h.catalogue.MetaPlotPoints),
			"sides":            len(h.catalogue.Actors.Sides),
		}
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "story-crafter",
		Components: components,
	})
}
