package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/internal/queue"
	"github.com/jwebster45206/story-crafter/internal/storage"
	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/dice"
)

const (
	workerTimeout = 5 * time.Second
)

// Worker builds actor pools for jobs pulled off the pool queue.
type Worker struct {
	id      string
	queue   *queue.PoolQueue
	storage storage.Storage
	inputs  *actor.Inputs
	poolCfg actor.PoolConfig
	log     *slog.Logger
}

// New creates a new worker instance
func New(q *queue.PoolQueue, store storage.Storage, inputs *actor.Inputs, poolCfg actor.PoolConfig, log *slog.Logger, workerID string) *Worker {
	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	return &Worker{
		id:      workerID,
		queue:   q,
		storage: store,
		inputs:  inputs,
		poolCfg: poolCfg,
		log:     log.With("worker_id", workerID),
	}
}

// ID returns the worker's identifier.
func (w *Worker) ID() string {
	return w.id
}

// Run processes jobs with n concurrent loops until ctx is cancelled.
// Every job gets its own random source and working copies, so the loops
// share nothing but the read-only inputs.
func (w *Worker) Run(ctx context.Context, n int) {
	n = max(n, 1)
	w.log.Info("Worker starting", "concurrency", n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, i)
		}()
	}
	wg.Wait()

	w.log.Info("Worker shutting down")
}

func (w *Worker) loop(ctx context.Context, slot int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := w.ProcessNext(ctx); err != nil {
			w.log.Error("Error processing job", "error", err, "slot", slot)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessNext waits for one job and handles it. It reports whether a job
// was taken.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Dequeue(ctx, workerTimeout)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.Process(ctx, job)
	return true, nil
}

// Process builds and saves the pool for job and records the outcome.
func (w *Worker) Process(ctx context.Context, job *queue.PoolJob) queue.JobResult {
	log := w.log.With("job_id", job.JobID, "side", job.Side)
	start := time.Now()

	result := queue.JobResult{JobID: job.JobID, Status: queue.JobProcessing}
	w.record(ctx, log, result)

	pool, seed, err := w.build(job)
	result.Seed = seed
	if err == nil {
		err = w.storage.SavePool(ctx, pool)
	}
	if err != nil {
		log.Error("Pool job failed", "error", err, "seed", seed)
		result.Status = queue.JobFailed
		result.Error = err.Error()
		w.record(ctx, log, result)
		return result
	}

	result.Status = queue.JobCompleted
	result.PoolID = pool.ID.String()
	w.record(ctx, log, result)
	log.Info("Pool job completed", "pool_id", pool.ID, "seed", seed, "duration", time.Since(start))
	return result
}

func (w *Worker) build(job *queue.PoolJob) (*actor.Pool, int64, error) {
	src, seed, err := dice.NewSource(job.Seed)
	if err != nil {
		return nil, 0, fmt.Errorf("seed random source: %w", err)
	}
	pool, err := w.inputs.NewPool(job.Side, w.poolCfg, src)
	if err != nil {
		return nil, seed, err
	}
	return pool, seed, nil
}

func (w *Worker) record(ctx context.Context, log *slog.Logger, r queue.JobResult) {
	if err := w.queue.SetResult(ctx, r); err != nil {
		log.Error("Failed to record job result", "error", err, "status", r.Status)
	}
}
