package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAnomalies = "jobs:anomalies"

	// maxJobAttempts bounds per-job retries before a job is dead-lettered.
	maxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. Enqueueing is best-effort: callers
// treat a dispatch error as non-fatal so a queue outage never fails the
// transaction that raised the warning.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAnomaly pushes a shift-anomaly job to Redis.
func (d *Dispatcher) EnqueueAnomaly(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueAnomalies, "anomaly", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers holds the concrete processor per queue, wired at the
// composition root so workers have full access to infrastructure deps.
type WorkerHandlers struct {
	Anomaly *AnomalyWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueAnomalies}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch queue {
	case QueueAnomalies:
		if handlers.Anomaly == nil {
			log.Warn().Str("queue", queue).Msg("no anomaly handler wired, dropping job")
			return
		}
		attempts := 0
		err := withRetry(ctx, maxJobAttempts, func(attempt int) error {
			attempts = attempt + 1
			return handlers.Anomaly.Process(ctx, job.Payload)
		})
		if err != nil {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), attempts)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("unknown queue")
	}
}

// withRetry runs fn up to maxAttempts times with exponential backoff
// (1s, 2s, 4s...). The first attempt runs immediately. Returns nil on the
// first success, the last error once attempts are exhausted, or ctx.Err()
// if the context is cancelled while waiting.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
