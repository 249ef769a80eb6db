package queue

import (
	"context"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobQueue")

// InMemoryJobQueue is the fallback when Redis is offline. Jobs do not
// survive a restart, which the reconciler repairs from document statuses.
type InMemoryJobQueue struct {
	jobs chan jobModel.Job
}

func InitInMemoryJobQueue() *InMemoryJobQueue {
	return &InMemoryJobQueue{
		jobs: make(chan jobModel.Job, config.QueueBufferLimit),
	}
}

func (q *InMemoryJobQueue) Enqueue(ctx context.Context, job jobModel.Job) error {
	select {
	case q.jobs <- job:
		inMemLogger.Debug("Enqueued job", "jobId", job.Id)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InMemoryJobQueue) Dequeue(ctx context.Context) (jobModel.Job, bool, error) {
	select {
	case job := <-q.jobs:
		return job, true, nil
	case <-time.After(config.QueuePollTimeout):
		return jobModel.Job{}, false, nil
	case <-ctx.Done():
		return jobModel.Job{}, false, ctx.Err()
	}
}

func (q *InMemoryJobQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}
