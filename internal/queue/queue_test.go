package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestQueue(t *testing.T) (*PoolQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewPoolQueue(rdb), mr
}

func TestPoolQueue_FIFO(t *testing.T) {
	q, _ := setupTestQueue(t)
	ctx := context.Background()

	jobs := []*PoolJob{NewPoolJob("order", 1), NewPoolJob("chaos", 0), NewPoolJob("order", 7)}
	require.NoError(t, q.Enqueue(ctx, jobs...))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	for _, want := range jobs {
		got, err := q.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.JobID, got.JobID)
		assert.Equal(t, want.Side, got.Side)
		assert.Equal(t, want.Seed, got.Seed)
	}

	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestPoolQueue_DequeueEmptyTimesOut(t *testing.T) {
	q, _ := setupTestQueue(t)

	got, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPoolQueue_DequeueCorruptJob(t *testing.T) {
	q, mr := setupTestQueue(t)
	_, err := mr.Push(jobsKey, `{"side":"order"}`)
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background(), time.Second)
	assert.Error(t, err)
}

func TestPoolQueue_Results(t *testing.T) {
	q, mr := setupTestQueue(t)
	ctx := context.Background()

	job := NewPoolJob("order", 42)
	require.NoError(t, q.Enqueue(ctx, job))

	res, err := q.Result(ctx, job.JobID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, JobQueued, res.Status)
	assert.Equal(t, int64(42), res.Seed)

	require.NoError(t, q.SetResult(ctx, JobResult{JobID: job.JobID, Status: JobCompleted, PoolID: "p-1", Seed: 42}))
	res, err = q.Result(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, res.Status)
	assert.Equal(t, "p-1", res.PoolID)
	assert.Equal(t, ResultTTL, mr.TTL(resultKey(job.JobID)))

	res, err = q.Result(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestPoolQueue_EnqueueNothing(t *testing.T) {
	q, _ := setupTestQueue(t)
	require.NoError(t, q.Enqueue(context.Background()))
}
