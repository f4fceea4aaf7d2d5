package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/internal/queue"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
)

// MaxJobsPerRequest caps a single batch enqueue.
const MaxJobsPerRequest = 100

type PoolHandler struct {
	storage     storage.Storage
	queue       *queue.PoolQueue // nil disables the job routes
	inputs      *actor.Inputs
	poolCfg     actor.PoolConfig
	defaultSide string
	seed        int64
	logger      *slog.Logger
}

// PoolOptions carries the pool settings taken from configuration.
type PoolOptions struct {
	Config      actor.PoolConfig
	DefaultSide string
	Seed        int64 // used when a request gives none; 0 draws a fresh seed
}

func NewPoolHandler(store storage.Storage, q *queue.PoolQueue, inputs *actor.Inputs, opts PoolOptions, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{
		storage:     store,
		queue:       q,
		inputs:      inputs,
		poolCfg:     opts.Config,
		defaultSide: opts.DefaultSide,
		seed:        opts.Seed,
		logger:      logger,
	}
}

type CreatePoolRequest struct {
	Side string `json:"side,omitempty"`
	Seed int64  `json:"seed,omitempty"`
}

type CreatePoolResponse struct {
	Seed int64       `json:"seed"`
	Pool *actor.Pool `json:"pool"`
}

// PoolRecordsResponse is the flat export of a pool.
type PoolRecordsResponse struct {
	ID     uuid.UUID           `json:"id"`
	Side   string              `json:"side"`
	Actors []actor.ActorRecord `json:"actors"`
}

// EnqueuePoolsRequest queues Count pool builds. A non-zero Seed seeds the
// i-th job with Seed+i.
type EnqueuePoolsRequest struct {
	Side  string `json:"side,omitempty"`
	Count int    `json:"count,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
}

type EnqueuePoolsResponse struct {
	JobIDs []string `json:"job_ids"`
}

// ServeHTTP handles HTTP requests for actor pools
// Routes:
// POST /v1/pools            - Build a pool now
// GET  /v1/pools/{id}       - Read a pool (?format=records for the flat export)
// POST /v1/pools/jobs       - Queue pool builds for the worker
// GET  /v1/pools/jobs/{id}  - Read a job's status
func (h *PoolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/pools"), "/")

	switch {
	case path == "":
		if r.Method != http.MethodPost {
			writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)

	case path == "jobs" || strings.HasPrefix(path, "jobs/"):
		if h.queue == nil {
			writeMessage(w, h.logger, http.StatusServiceUnavailable, "Job queue is not available")
			return
		}
		jobID := strings.TrimPrefix(strings.TrimPrefix(path, "jobs"), "/")
		switch {
		case jobID == "" && r.Method == http.MethodPost:
			h.handleEnqueue(w, r)
		case jobID != "" && r.Method == http.MethodGet:
			h.handleJobStatus(w, r, jobID)
		default:
			writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		}

	default:
		if r.Method != http.MethodGet {
			writeMessage(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		poolID, err := uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid pool ID", "id", path, "error", err)
			writeMessage(w, h.logger, http.StatusBadRequest, "Invalid pool ID format")
			return
		}
		h.handleRead(w, r, poolID)
	}
}

func (h *PoolHandler) side(requested string) string {
	if s := strings.TrimSpace(requested); s != "" {
		return s
	}
	return h.defaultSide
}

func (h *PoolHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePoolRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Seed == 0 {
		req.Seed = h.seed
	}

	src, seed, err := dice.NewSource(req.Seed)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	side := h.side(req.Side)
	pool, err := h.inputs.NewPool(side, h.poolCfg, src)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.storage.SavePool(r.Context(), pool); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Pool built", "pool_id", pool.ID, "side", side, "seed", seed)
	writeJSON(w, h.logger, http.StatusCreated, CreatePoolResponse{Seed: seed, Pool: pool})
}

func (h *PoolHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	pool, err := h.storage.LoadPool(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if pool == nil {
		writeMessage(w, h.logger, http.StatusNotFound, "Pool not found")
		return
	}

	if r.URL.Query().Get("format") == "records" {
		writeJSON(w, h.logger, http.StatusOK, PoolRecordsResponse{
			ID:     pool.ID,
			Side:   pool.Side,
			Actors: pool.Records(),
		})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, pool)
}

func (h *PoolHandler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueuePoolsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	if req.Count < 1 || req.Count > MaxJobsPerRequest {
		writeError(w, h.logger, generr.InvalidArgument("count must be between 1 and %d", MaxJobsPerRequest))
		return
	}
	side := h.side(req.Side)
	if _, ok := h.inputs.Sides[side]; !ok {
		writeError(w, h.logger, generr.Newf(generr.CodeUnknownReference, "unknown side %q", side))
		return
	}

	jobs := make([]*queue.PoolJob, req.Count)
	resp := EnqueuePoolsResponse{JobIDs: make([]string, req.Count)}
	for i := range jobs {
		var seed int64
		if req.Seed != 0 {
			seed = req.Seed + int64(i)
		}
		jobs[i] = queue.NewPoolJob(side, seed)
		resp.JobIDs[i] = jobs[i].JobID
	}
	if err := h.queue.Enqueue(r.Context(), jobs...); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("Pool jobs enqueued", "side", side, "count", req.Count)
	writeJSON(w, h.logger, http.StatusAccepted, resp)
}

func (h *PoolHandler) handleJobStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	res, err := h.queue.Result(r.Context(), jobID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if res == nil {
		writeMessage(w, h.logger, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}
