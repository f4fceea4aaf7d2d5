package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/story-crafter/internal/queue"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
)

func newTestPoolHandler(t *testing.T, withQueue bool) (*PoolHandler, *storage.MockStorage, *queue.PoolQueue) {
	t.Helper()
	cat, err := catalogue.Default()
	require.NoError(t, err)

	var q *queue.PoolQueue
	if withQueue {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		q = queue.NewPoolQueue(rdb)
	}

	store := storage.NewMockStorage()
	h := NewPoolHandler(store, q, cat.Actors, PoolOptions{
		Config:      actor.DefaultPoolConfig,
		DefaultSide: "order",
	}, testLogger())
	return h, store, q
}

func TestPoolHandler_Create(t *testing.T) {
	h, store, _ := newTestPoolHandler(t, false)

	w := do(t, h, http.MethodPost, "/v1/pools", CreatePoolRequest{Seed: 42})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[CreatePoolResponse](t, w)
	assert.Equal(t, int64(42), first.Seed)
	require.NotNil(t, first.Pool)
	assert.Equal(t, "order", first.Pool.Side)
	assert.Len(t, first.Pool.All(), actor.PoolSize)
	assert.Equal(t, 1, store.PoolCount())

	// Same seed, same roster.
	w = do(t, h, http.MethodPost, "/v1/pools", CreatePoolRequest{Side: "order", Seed: 42})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[CreatePoolResponse](t, w)
	assert.NotEqual(t, first.Pool.ID, second.Pool.ID)
	assert.Equal(t, first.Pool.Records(), second.Pool.Records())

	w = do(t, h, http.MethodPost, "/v1/pools", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotZero(t, decode[CreatePoolResponse](t, w).Seed)

	w = do(t, h, http.MethodPost, "/v1/pools", CreatePoolRequest{Side: "pirates"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 3, store.PoolCount())
}

func TestPoolHandler_Read(t *testing.T) {
	h, _, _ := newTestPoolHandler(t, false)

	w := do(t, h, http.MethodPost, "/v1/pools", CreatePoolRequest{Seed: 7})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[CreatePoolResponse](t, w)
	path := "/v1/pools/" + created.Pool.ID.String()

	w = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pool := decode[actor.Pool](t, w)
	assert.Equal(t, created.Pool.Records(), pool.Records())

	w = do(t, h, http.MethodGet, path+"?format=records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[PoolRecordsResponse](t, w)
	assert.Equal(t, created.Pool.ID, records.ID)
	require.Len(t, records.Actors, actor.PoolSize)
	assert.Equal(t, "boss", records.Actors[0].Status)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"missing pool", http.MethodGet, "/v1/pools/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/pools/abc", http.StatusBadRequest},
		{"delete not supported", http.MethodDelete, path, http.StatusMethodNotAllowed},
		{"list not supported", http.MethodGet, "/v1/pools", http.StatusMethodNotAllowed},
		{"jobs without queue", http.MethodPost, "/v1/pools/jobs", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestPoolHandler_Jobs(t *testing.T) {
	h, _, q := newTestPoolHandler(t, true)
	ctx := context.Background()

	w := do(t, h, http.MethodPost, "/v1/pools/jobs", EnqueuePoolsRequest{Side: "chaos", Count: 3, Seed: 10})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode[EnqueuePoolsResponse](t, w)
	require.Len(t, resp.JobIDs, 3)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	for i, id := range resp.JobIDs {
		job, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, id, job.JobID)
		assert.Equal(t, "chaos", job.Side)
		assert.Equal(t, int64(10+i), job.Seed)
	}

	w = do(t, h, http.MethodGet, "/v1/pools/jobs/"+resp.JobIDs[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, queue.JobQueued, decode[queue.JobResult](t, w).Status)

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		expectedStatus int
	}{
		{"default count and side", http.MethodPost, "/v1/pools/jobs", nil, http.StatusAccepted},
		{"count too large", http.MethodPost, "/v1/pools/jobs", EnqueuePoolsRequest{Count: MaxJobsPerRequest + 1}, http.StatusBadRequest},
		{"negative count", http.MethodPost, "/v1/pools/jobs", EnqueuePoolsRequest{Count: -1}, http.StatusBadRequest},
		{"unknown side", http.MethodPost, "/v1/pools/jobs", EnqueuePoolsRequest{Side: "pirates"}, http.StatusNotFound},
		{"unknown job", http.MethodGet, "/v1/pools/jobs/nope", nil, http.StatusNotFound},
		{"get job list", http.MethodGet, "/v1/pools/jobs", nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}
