package jobModel

import (
	"context"
	"time"
)

type JobKind string

const (
	JobKindSummary   JobKind = "summary"
	JobKindEmbedding JobKind = "embedding"
)

// Job is one enrichment unit of work. Delivery is at-least-once: a job may
// be redelivered after a crash or re-enqueued by Reconcile, so execution
// must be idempotent with respect to final document state.
type Job struct {
	Id         string    `json:"id"`
	DocumentId string    `json:"document_id"`
	Kind       JobKind   `json:"kind"`
	Attempt    int       `json:"attempt"`
	TraceId    string    `json:"trace_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue is a FIFO job queue drained by a worker pool.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks up to the queue's poll timeout. ok is false when the
	// timeout elapsed with no job available.
	Dequeue(ctx context.Context) (job Job, ok bool, err error)
	Len(ctx context.Context) (int64, error)
}
