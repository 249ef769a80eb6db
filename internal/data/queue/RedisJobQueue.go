package queue

import (
	"context"
	"encoding/json"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/data/redisStore"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// RedisJobQueue is a FIFO queue on a Redis list. Delivery is at-least-once
// in combination with the reconciler: a job lost between BLPOP and
// completion leaves the document's status pending, and a later Reconcile
// re-enqueues it once the staleness threshold passes.
type RedisJobQueue struct {
	store  *redisStore.Store
	key    string
	logger *logger_i.Logger
}

func GetRedisJobQueue(ctx context.Context, key string) *RedisJobQueue {
	store := redisStore.GetRedisStore(ctx, config.RedisQueueDB)
	if store == nil {
		return nil
	}
	return &RedisJobQueue{
		store:  store,
		key:    key,
		logger: logger_i.NewLogger("JobQueue " + key),
	}
}

func (q *RedisJobQueue) Enqueue(ctx context.Context, job jobModel.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	err = q.store.ListPush(ctx, q.key, data)
	if err == nil {
		q.logger.Debug("Enqueued job", "jobId", job.Id, "documentId", job.DocumentId)
	}
	return err
}

func (q *RedisJobQueue) Dequeue(ctx context.Context) (jobModel.Job, bool, error) {
	var job jobModel.Job
	val, err := q.store.ListPopBlocking(ctx, q.key, config.QueuePollTimeout)
	if q.store.IsNil(err) {
		return job, false, nil
	} else if err != nil {
		return job, false, err
	}

	if err := json.Unmarshal([]byte(val), &job); err != nil {
		q.logger.Error("Dropping undecodable job payload", "error", err)
		return job, false, nil
	}
	return job, true, nil
}

func (q *RedisJobQueue) Len(ctx context.Context) (int64, error) {
	return q.store.ListLen(ctx, q.key)
}

// NewTestQueue wires a queue over an injected store, for miniredis tests.
func NewTestQueue(store *redisStore.Store, key string) *RedisJobQueue {
	return &RedisJobQueue{
		store:  store,
		key:    key,
		logger: logger_i.NewLogger("test queue"),
	}
}
