package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus tracks a pool job through the worker.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// PoolJob asks a worker to build one actor pool.
type PoolJob struct {
	JobID string `json:"job_id"`
	Side  string `json:"side"`
	// Seed fixes the pool's random source; 0 lets the worker pick one.
	Seed       int64     `json:"seed,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewPoolJob creates a job with a fresh ID.
func NewPoolJob(side string, seed int64) *PoolJob {
	return &PoolJob{
		JobID:      uuid.New().String(),
		Side:       side,
		Seed:       seed,
		EnqueuedAt: time.Now(),
	}
}

// JobResult is what a client can read back about a job.
type JobResult struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	PoolID string    `json:"pool_id,omitempty"`
	Seed   int64     `json:"seed,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// ToJSON converts the job to JSON bytes for Redis
func (j *PoolJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// FromJSON parses a job from JSON bytes
func FromJSON(data []byte) (*PoolJob, error) {
	var j PoolJob
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse pool job: %w", err)
	}
	if j.JobID == "" {
		return nil, fmt.Errorf("pool job has no id")
	}
	return &j, nil
}
