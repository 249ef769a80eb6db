package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/internal/oracle/embedding"
	"github.com/akolanti/readstash/internal/oracle/llm"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// dequeueErrorBackoff throttles the poll loop when the queue itself fails,
// e.g. Redis refusing connections. BLPOP returns immediately in that case,
// so without the pause the loop would spin.
const dequeueErrorBackoff = 250 * time.Millisecond

// Pool drains the two enrichment queues with fixed worker counts. Workers
// poll with the queue's blocking timeout so a stop signal is observed
// within one poll interval.
type Pool struct {
	store          docModel.Store
	summaryQueue   jobModel.Queue
	embeddingQueue jobModel.Queue
	summarizer     llm.Summarizer
	embedder       embedding.Embedder
	vectorIndex    vectorDB.Index
	chunker        *ingest.TokenChunker
	pipeline       *ingest.Pipeline

	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	logger             *logger_i.Logger
}

func NewPool(store docModel.Store, summaryQueue, embeddingQueue jobModel.Queue,
	summarizer llm.Summarizer, embedder embedding.Embedder, index vectorDB.Index,
	chunker *ingest.TokenChunker, pipeline *ingest.Pipeline) *Pool {
	return &Pool{
		store:          store,
		summaryQueue:   summaryQueue,
		embeddingQueue: embeddingQueue,
		summarizer:     summarizer,
		embedder:       embedder,
		vectorIndex:    index,
		chunker:        chunker,
		pipeline:       pipeline,
		logger:         logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup, summaryWorkers, embeddingWorkers int) {
	p.stopWorkerChannel = stopWorkerChan
	p.workerWaitGroup = waitGroup
	p.logger.Info("Initializing worker pool", "summaryWorkers", summaryWorkers, "embeddingWorkers", embeddingWorkers)

	for i := 0; i < summaryWorkers; i++ {
		p.createWorker(p.summaryQueue, p.executeSummaryJob)
	}
	for i := 0; i < embeddingWorkers; i++ {
		p.createWorker(p.embeddingQueue, p.executeEmbeddingJob)
	}
}

func (p *Pool) createWorker(queue jobModel.Queue, execute func(jobModel.Job)) {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker(queue, execute)
}

func (p *Pool) worker(queue jobModel.Queue, execute func(jobModel.Job)) {
	for {
		select {
		case <-p.stopWorkerChannel:
			p.removeWorker("Stop worker signal received")
			return
		default:
		}

		job, ok, err := queue.Dequeue(context.Background())
		if err != nil {
			p.logger.Error("Queue dequeue failed", "error", err)
			time.Sleep(dequeueErrorBackoff)
			continue
		}
		if !ok {
			continue
		}
		metrics.DecrementJobsInQueue()
		execute(job)
	}
}

func (p *Pool) removeWorker(reason string) {
	p.workerWaitGroup.Done()
	count := atomic.AddInt64(&p.currentWorkerCount, -1)
	metrics.DecrementActiveWorkerCount()
	p.logger.Info("Removed worker", "reason", reason, "workerCount", count)
}
