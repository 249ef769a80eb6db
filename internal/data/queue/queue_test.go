package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/data/queue"
	"github.com/akolanti/readstash/internal/data/redisStore"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisQueue(t *testing.T) *queue.RedisJobQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return queue.NewTestQueue(redisStore.NewTestStore(client), config.SummaryQueueKey)
}

func TestRedisJobQueue_Roundtrip(t *testing.T) {
	q := newMiniredisQueue(t)
	ctx := context.Background()

	testJob := jobModel.Job{
		Id:         "job-1",
		DocumentId: "doc-1",
		Kind:       jobModel.JobKindSummary,
		Attempt:    1,
		TraceId:    "trace-1",
		EnqueuedAt: time.Now().UTC(),
	}

	t.Run("Enqueue and Dequeue", func(t *testing.T) {
		if err := q.Enqueue(ctx, testJob); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}

		n, err := q.Len(ctx)
		if err != nil || n != 1 {
			t.Fatalf("Len = %d, err = %v; want 1", n, err)
		}

		got, ok, err := q.Dequeue(ctx)
		if err != nil || !ok {
			t.Fatalf("Dequeue failed: ok=%v err=%v", ok, err)
		}
		if got.Id != testJob.Id || got.DocumentId != testJob.DocumentId || got.Kind != testJob.Kind {
			t.Errorf("Dequeued job mismatch: got %+v", got)
		}
	})

	t.Run("FIFO ordering", func(t *testing.T) {
		for _, id := range []string{"a", "b", "c"} {
			if err := q.Enqueue(ctx, jobModel.Job{Id: id}); err != nil {
				t.Fatal(err)
			}
		}
		for _, want := range []string{"a", "b", "c"} {
			got, ok, err := q.Dequeue(ctx)
			if err != nil || !ok {
				t.Fatalf("Dequeue failed: ok=%v err=%v", ok, err)
			}
			if got.Id != want {
				t.Errorf("Dequeue order: got %s, want %s", got.Id, want)
			}
		}
	})

	t.Run("Empty queue times out with ok=false", func(t *testing.T) {
		start := time.Now()
		_, ok, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue on empty queue errored: %v", err)
		}
		if ok {
			t.Error("expected ok=false on empty queue")
		}
		if time.Since(start) > config.QueuePollTimeout+time.Second {
			t.Error("Dequeue blocked far past the poll timeout")
		}
	})
}

func TestInMemoryJobQueue_Roundtrip(t *testing.T) {
	q := queue.InitInMemoryJobQueue()
	ctx := context.Background()

	if err := q.Enqueue(ctx, jobModel.Job{Id: "mem-1"}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := q.Dequeue(ctx)
	if err != nil || !ok || got.Id != "mem-1" {
		t.Fatalf("Dequeue: got=%+v ok=%v err=%v", got, ok, err)
	}

	_, ok, err = q.Dequeue(ctx)
	if err != nil || ok {
		t.Errorf("empty queue should time out with ok=false, got ok=%v err=%v", ok, err)
	}
}
