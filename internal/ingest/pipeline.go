package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/internal/oracle/parser"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/pkg/logger_i"
	"github.com/google/uuid"
)

// Pipeline is the synchronous ingestion path: canonicalize, dedup under the
// advisory lock, parse, persist, enqueue enrichment. Enrichment itself never
// blocks a Save response.
type Pipeline struct {
	store          docModel.Store
	parser         parser.Parser
	vectorIndex    vectorDB.Index
	summaryQueue   jobModel.Queue
	embeddingQueue jobModel.Queue
	locks          *KeyedLock
	logger         *logger_i.Logger
}

type SaveRequest struct {
	URL         string
	Title       string
	HTMLContent string
	Tags        []string
	SourceType  docModel.SourceType
}

func NewPipeline(store docModel.Store, p parser.Parser, index vectorDB.Index,
	summaryQueue, embeddingQueue jobModel.Queue, locks *KeyedLock) *Pipeline {
	return &Pipeline{
		store:          store,
		parser:         p,
		vectorIndex:    index,
		summaryQueue:   summaryQueue,
		embeddingQueue: embeddingQueue,
		locks:          locks,
		logger:         logger_i.NewLogger("IngestionPipeline"),
	}
}

// Locks exposes the shared per-document advisory lock for the workers and
// the reconciler.
func (p *Pipeline) Locks() *KeyedLock {
	return p.locks
}

func (p *Pipeline) Save(ctx context.Context, req SaveRequest) (docModel.Document, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if strings.TrimSpace(req.HTMLContent) == "" {
		return docModel.Document{}, &docModel.ValidationError{Field: "html_content", Reason: "must not be empty"}
	}
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = docModel.SourceWebArticle
	}
	if !sourceType.Valid() {
		return docModel.Document{}, &docModel.ValidationError{Field: "source_type", Reason: "unknown value"}
	}

	canonical, err := CanonicalizeURL(req.URL)
	if err != nil {
		return docModel.Document{}, err
	}

	parsed, perr := p.parser.Parse(req.HTMLContent, canonical)
	if perr != nil {
		log.Warn("Parser could not extract the capture", "error", perr)
		return docModel.Document{}, &docModel.ValidationError{Field: "html_content", Reason: "could not be parsed"}
	}
	content := parsed.Content
	if strings.TrimSpace(content) == "" {
		return docModel.Document{}, &docModel.ValidationError{Field: "html_content", Reason: "no extractable text"}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = parsed.Title
	}
	if title == "" {
		title = canonical
	}

	doc := docModel.Document{
		Title:         title,
		Author:        parsed.Author,
		PublishedDate: parsed.PublishedDate,
		SourceType:    sourceType,
		Content:       content,
		Tags:          NormalizeTags(req.Tags),
	}
	return p.create(ctx, canonical, doc)
}

// SaveUpload ingests an already-extracted file capture (PDF/DOCX/TXT/MD).
// The synthetic upload:// URL keeps uploads inside the same dedup scheme.
func (p *Pipeline) SaveUpload(ctx context.Context, filename, text string, tags []string, sourceType docModel.SourceType) (docModel.Document, error) {
	if strings.TrimSpace(text) == "" {
		return docModel.Document{}, &docModel.ValidationError{Field: "document", Reason: "no extractable text"}
	}

	canonical, err := CanonicalizeURL("upload://" + strings.ToLower(filename))
	if err != nil {
		return docModel.Document{}, err
	}

	doc := docModel.Document{
		Title:      filename,
		SourceType: sourceType,
		Content:    text,
		Tags:       NormalizeTags(tags),
	}
	return p.create(ctx, canonical, doc)
}

// create runs the critical section: existence check and insert happen while
// holding the canonical-URL lock, so two concurrent saves of the same URL
// cannot both pass the check.
func (p *Pipeline) create(ctx context.Context, canonical string, doc docModel.Document) (docModel.Document, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "canonicalURL", canonical)

	unlock := p.locks.Lock(canonical)
	defer unlock()

	existing, err := p.store.GetDocumentByURL(ctx, canonical)
	if err == nil {
		return docModel.Document{}, &docModel.ConflictError{ExistingId: existing.Id, CanonicalURL: canonical}
	}
	if !errors.Is(err, docModel.ErrNotFound) {
		return docModel.Document{}, err
	}

	now := time.Now().UTC()
	doc.Id = uuid.New().String()
	doc.CanonicalURL = canonical
	doc.Summary = config.SummaryPlaceholder
	doc.SummaryStatus = docModel.SummaryPending
	doc.EmbeddingStatus = docModel.EmbeddingPending
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if err := p.store.CreateDocument(ctx, doc); err != nil {
		return docModel.Document{}, err
	}
	log.Info("Created document", "documentId", doc.Id)
	metrics.IncrementDocumentsCreated()

	p.EnqueueEnrichment(ctx, doc.Id, jobModel.JobKindSummary, 1)
	p.EnqueueEnrichment(ctx, doc.Id, jobModel.JobKindEmbedding, 1)

	return doc, nil
}

// EnqueueEnrichment pushes one job. Failures are logged, not surfaced: the
// document stays pending and the reconciler re-enqueues it later.
func (p *Pipeline) EnqueueEnrichment(ctx context.Context, documentId string, kind jobModel.JobKind, attempt int) {
	traceId, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	job := jobModel.Job{
		Id:         uuid.New().String(),
		DocumentId: documentId,
		Kind:       kind,
		Attempt:    attempt,
		TraceId:    traceId,
		EnqueuedAt: time.Now().UTC(),
	}

	q := p.summaryQueue
	if kind == jobModel.JobKindEmbedding {
		q = p.embeddingQueue
	}
	if err := q.Enqueue(ctx, job); err != nil {
		p.logger.Error("Failed to enqueue enrichment job", "kind", kind, "documentId", documentId, "error", err)
		return
	}
	metrics.IncrementJobsInQueue()
}

// Delete removes the structured row (source of truth) and then clears the
// document's chunks. A failed chunk cleanup leaves orphans for the next
// reconciliation pass rather than blocking the delete.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	unlock := p.locks.Lock(id)
	defer unlock()

	if err := p.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	if p.vectorIndex != nil {
		if err := p.vectorIndex.DeleteDocumentChunks(ctx, id); err != nil {
			p.logger.Error("Vector cleanup failed after delete; reconciler will collect the orphans",
				"documentId", id, "error", err)
		}
	}
	return nil
}
