package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/internal/vectorDB"
)

func (p *Pool) executeSummaryJob(job jobModel.Job) {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.CaptureJobMetrics(string(jobModel.JobKindSummary), outcome, time.Since(start))
	}()

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := p.logger.With("traceId", job.TraceId, "documentId", job.DocumentId, "attempt", job.Attempt)

	doc, err := p.store.GetDocument(ctx, job.DocumentId)
	if errors.Is(err, docModel.ErrNotFound) {
		// Deleted while the job sat in the queue.
		log.Debug("Skipping summary job for deleted document")
		outcome = "skipped"
		return
	}
	if err != nil {
		outcome = p.handleFailure(ctx, job, err)
		return
	}

	if err := p.store.SetSummaryStatus(ctx, doc.Id, docModel.SummaryGenerating); err != nil {
		if errors.Is(err, docModel.ErrNotFound) {
			outcome = "skipped"
			return
		}
		outcome = p.handleFailure(ctx, job, err)
		return
	}

	summary, err := p.summarize(ctx, doc)
	if err != nil {
		log.Warn("Summary oracle call failed", "error", err)
		outcome = p.handleFailure(ctx, job, err)
		return
	}

	if err := p.store.SetSummary(ctx, doc.Id, summary, docModel.SummaryDone); err != nil {
		if errors.Is(err, docModel.ErrNotFound) {
			// Deleted mid-flight; the result is discarded.
			outcome = "skipped"
			return
		}
		outcome = p.handleFailure(ctx, job, err)
		return
	}
	log.Info("Summary generated")
}

// summarize keeps the oracle input under its token limit. Oversized
// documents go through a two-level reduce: summarize each window, then
// summarize the concatenated partials.
func (p *Pool) summarize(ctx context.Context, doc docModel.Document) (string, error) {
	tokens, err := p.chunker.CountTokens(doc.Content)
	if err != nil {
		return "", err
	}
	if tokens <= config.SummaryInputMaxTokens {
		return p.callSummarizer(ctx, doc.Title, doc.Content)
	}

	windows, err := p.chunker.Split(doc.Content, config.SummaryInputMaxTokens, 0)
	if err != nil {
		return "", err
	}
	partials := make([]string, 0, len(windows))
	for _, window := range windows {
		partial, err := p.callSummarizer(ctx, doc.Title, window)
		if err != nil {
			return "", err
		}
		partials = append(partials, partial)
	}
	return p.callSummarizer(ctx, doc.Title, strings.Join(partials, "\n\n"))
}

func (p *Pool) callSummarizer(ctx context.Context, title, content string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.OracleCallTimeout)
	defer cancel()

	start := time.Now()
	summary, err := p.summarizer.Summarize(callCtx, title, content)
	metrics.CaptureExecutionMetrics("summary_oracle", time.Since(start))
	if err != nil {
		return "", &docModel.OracleError{Oracle: "summary", Err: err}
	}
	return summary, nil
}

func (p *Pool) executeEmbeddingJob(job jobModel.Job) {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.CaptureJobMetrics(string(jobModel.JobKindEmbedding), outcome, time.Since(start))
	}()

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	log := p.logger.With("traceId", job.TraceId, "documentId", job.DocumentId, "attempt", job.Attempt)

	doc, err := p.store.GetDocument(ctx, job.DocumentId)
	if errors.Is(err, docModel.ErrNotFound) {
		log.Debug("Skipping embedding job for deleted document")
		outcome = "skipped"
		return
	}
	if err != nil {
		outcome = p.handleFailure(ctx, job, err)
		return
	}
	if p.vectorIndex == nil {
		outcome = p.handleFailure(ctx, job, errors.New("vector index unavailable"))
		return
	}

	chunks, err := p.chunker.Split(doc.Content, config.ChunkMaxTokens, config.ChunkOverlapTokens)
	if err != nil {
		outcome = p.handleFailure(ctx, job, err)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, config.OracleCallTimeout)
	oracleStart := time.Now()
	vectors, err := p.embedder.BatchEmbedding(callCtx, chunks)
	cancel()
	metrics.CaptureExecutionMetrics("batch_embedding", time.Since(oracleStart))
	if err != nil {
		log.Warn("Embedding oracle call failed", "error", err)
		outcome = p.handleFailure(ctx, job, &docModel.OracleError{Oracle: "embedding", Err: err})
		return
	}

	records := make([]vectorDB.ChunkRecord, len(chunks))
	for i, text := range chunks {
		records[i] = vectorDB.ChunkRecord{
			DocumentId: doc.Id,
			ChunkIndex: i,
			Text:       text,
			Tags:       doc.Tags,
			CreatedAt:  doc.CreatedAt,
		}
	}

	// The write-back happens under the document lock and re-checks
	// existence so a concurrent delete cannot resurrect chunks.
	unlock := p.pipeline.Locks().Lock(doc.Id)
	defer unlock()

	if _, err := p.store.GetDocument(ctx, doc.Id); errors.Is(err, docModel.ErrNotFound) {
		log.Debug("Document deleted during embedding, discarding vectors")
		outcome = "skipped"
		return
	}

	if err := p.vectorIndex.DeleteDocumentChunks(ctx, doc.Id); err != nil {
		outcome = p.handleFailure(ctx, job, err)
		return
	}
	if err := p.vectorIndex.UpsertChunks(ctx, records, vectors); err != nil {
		outcome = p.handleFailure(ctx, job, err)
		return
	}
	if err := p.store.SetEmbeddingStatus(ctx, doc.Id, docModel.EmbeddingIndexed); err != nil && !errors.Is(err, docModel.ErrNotFound) {
		outcome = p.handleFailure(ctx, job, err)
		return
	}
	log.Info("Document chunks indexed", "chunks", len(records))
}

// handleFailure retries with exponential backoff until the attempt budget
// is spent, then records the terminal failure on the document itself.
func (p *Pool) handleFailure(ctx context.Context, job jobModel.Job, cause error) string {
	log := p.logger.With("traceId", job.TraceId, "documentId", job.DocumentId, "kind", job.Kind)

	if job.Attempt < config.JobMaxAttempts {
		backoff := config.JobRetryBaseBackoff << (job.Attempt - 1)
		log.Warn("Job failed, scheduling retry", "attempt", job.Attempt, "backoff", backoff, "error", cause)
		time.Sleep(backoff)
		p.pipeline.EnqueueEnrichment(ctx, job.DocumentId, job.Kind, job.Attempt+1)
		return "retried"
	}

	log.Error("Job failed terminally, attempts exhausted", "error", cause)
	var err error
	if job.Kind == jobModel.JobKindSummary {
		err = p.store.SetSummary(ctx, job.DocumentId, config.SummaryFailureNotice, docModel.SummaryFailed)
	} else {
		err = p.store.SetEmbeddingStatus(ctx, job.DocumentId, docModel.EmbeddingFailed)
	}
	if err != nil && !errors.Is(err, docModel.ErrNotFound) {
		log.Error("Failed to record terminal job failure", "error", err)
	}
	return "failed"
}
