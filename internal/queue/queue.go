package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jobsKey = "pool-jobs"
	// ResultTTL is how long job results stay readable.
	ResultTTL = 24 * time.Hour
)

func resultKey(jobID string) string {
	return "pool-job:" + jobID
}

// PoolQueue is a FIFO of pool jobs in a Redis list, plus a result record
// per job.
type PoolQueue struct {
	rdb *redis.Client
}

func NewPoolQueue(rdb *redis.Client) *PoolQueue {
	return &PoolQueue{rdb: rdb}
}

// Enqueue appends jobs to the queue and records them as queued.
func (q *PoolQueue) Enqueue(ctx context.Context, jobs ...*PoolJob) error {
	if len(jobs) == 0 {
		return nil
	}
	pipe := q.rdb.TxPipeline()
	for _, j := range jobs {
		data, err := j.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to serialize job: %w", err)
		}
		res, err := json.Marshal(JobResult{JobID: j.JobID, Status: JobQueued, Seed: j.Seed})
		if err != nil {
			return fmt.Errorf("failed to serialize job result: %w", err)
		}
		pipe.Set(ctx, resultKey(j.JobID), res, ResultTTL)
		pipe.RPush(ctx, jobsKey, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue pool jobs: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. It returns nil, nil when
// the wait times out or ctx is done.
func (q *PoolQueue) Dequeue(ctx context.Context, timeout time.Duration) (*PoolJob, error) {
	result, err := q.rdb.BLPop(ctx, timeout, jobsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue pool job: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return FromJSON([]byte(result[1]))
}

// Depth returns the number of jobs waiting.
func (q *PoolQueue) Depth(ctx context.Context) (int, error) {
	n, err := q.rdb.LLen(ctx, jobsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(n), nil
}

// SetResult records the latest state of a job.
func (q *PoolQueue) SetResult(ctx context.Context, r JobResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to serialize job result: %w", err)
	}
	if err := q.rdb.Set(ctx, resultKey(r.JobID), data, ResultTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job result: %w", err)
	}
	return nil
}

// Result returns the recorded state of a job, or nil when unknown.
func (q *PoolQueue) Result(ctx context.Context, jobID string) (*JobResult, error) {
	data, err := q.rdb.Get(ctx, resultKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job result: %w", err)
	}
	var r JobResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse job result: %w", err)
	}
	return &r, nil
}
