package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/data/queue"
	"github.com/akolanti/readstash/internal/data/store"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	mu     sync.Mutex
	chunks map[string]int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{chunks: make(map[string]int)}
}

func (f *fakeIndex) UpsertChunks(ctx context.Context, chunks []vectorDB.ChunkRecord, vectors [][]float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.chunks[c.DocumentId]++
	}
	return nil
}

func (f *fakeIndex) DeleteDocumentChunks(ctx context.Context, documentId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chunks, documentId)
	return nil
}

func (f *fakeIndex) QuerySimilar(ctx context.Context, vector []float32, topN uint64, filterTags []string) ([]vectorDB.ChunkHit, error) {
	return nil, nil
}

func (f *fakeIndex) ListDocumentIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.chunks {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeIndex) Count(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n uint64
	for _, c := range f.chunks {
		n += uint64(c)
	}
	return n, nil
}

type rig struct {
	reconciler *Reconciler
	store      docModel.Store
	index      *fakeIndex
	summaryQ   *queue.InMemoryJobQueue
	embeddingQ *queue.InMemoryJobQueue
}

func newRig(t *testing.T) *rig {
	t.Helper()
	documentStore, err := store.NewMemoryDocumentStore()
	require.NoError(t, err)
	t.Cleanup(func() { documentStore.Close() })

	index := newFakeIndex()
	summaryQ := queue.InitInMemoryJobQueue()
	embeddingQ := queue.InitInMemoryJobQueue()
	pipeline := ingest.NewPipeline(documentStore, nil, index, summaryQ, embeddingQ, ingest.NewKeyedLock())

	return &rig{
		reconciler: NewReconciler(documentStore, index, pipeline),
		store:      documentStore,
		index:      index,
		summaryQ:   summaryQ,
		embeddingQ: embeddingQ,
	}
}

func (r *rig) createDocument(t *testing.T, age time.Duration, summaryStatus docModel.SummaryStatus, embeddingStatus docModel.EmbeddingStatus) docModel.Document {
	t.Helper()
	ts := time.Now().UTC().Add(-age)
	doc := docModel.Document{
		Id:              uuid.New().String(),
		CanonicalURL:    "https://example.com/" + uuid.New().String(),
		Title:           "Doc",
		SourceType:      docModel.SourceWebArticle,
		Content:         "content",
		Summary:         config.SummaryPlaceholder,
		SummaryStatus:   summaryStatus,
		EmbeddingStatus: embeddingStatus,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	require.NoError(t, r.store.CreateDocument(context.Background(), doc))
	return doc
}

func drain(q *queue.InMemoryJobQueue) []jobModel.Job {
	var jobs []jobModel.Job
	for {
		job, ok, err := q.Dequeue(context.Background())
		if err != nil || !ok {
			return jobs
		}
		jobs = append(jobs, job)
	}
}

func TestReconcile_RequeuesStaleAndFailed(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	stuck := r.createDocument(t, time.Hour, docModel.SummaryPending, docModel.EmbeddingPending)
	failed := r.createDocument(t, 0, docModel.SummaryFailed, docModel.EmbeddingIndexed)
	fresh := r.createDocument(t, 0, docModel.SummaryPending, docModel.EmbeddingPending)

	report, err := r.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RequeuedSummary, "stuck + failed summaries")
	assert.Equal(t, 1, report.RequeuedEmbedding, "stuck embedding only")

	summaryJobs := drain(r.summaryQ)
	require.Len(t, summaryJobs, 2)
	for _, job := range summaryJobs {
		assert.Equal(t, 1, job.Attempt, "requeues restart the attempt budget")
	}

	// The failed summary is reset to pending with the placeholder back.
	got, err := r.store.GetDocument(ctx, failed.Id)
	require.NoError(t, err)
	assert.Equal(t, docModel.SummaryPending, got.SummaryStatus)
	assert.Equal(t, config.SummaryPlaceholder, got.Summary)

	// Fresh pending documents are left alone.
	got, err = r.store.GetDocument(ctx, fresh.Id)
	require.NoError(t, err)
	assert.Equal(t, docModel.SummaryPending, got.SummaryStatus)
	_ = stuck
}

func TestReconcile_RemovesOrphanedChunks(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	live := r.createDocument(t, 0, docModel.SummaryDone, docModel.EmbeddingIndexed)
	r.index.chunks[live.Id] = 3
	r.index.chunks["deleted-doc-1"] = 2
	r.index.chunks["deleted-doc-2"] = 4

	report, err := r.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrphanedChunksRemoved)

	ids, err := r.index.ListDocumentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{live.Id}, ids)
}

func TestReconcile_SecondRunIsNoOp(t *testing.T) {
	r := newRig(t)
	ctx := context.Background()

	r.createDocument(t, time.Hour, docModel.SummaryPending, docModel.EmbeddingPending)
	r.index.chunks["orphan"] = 1

	first, err := r.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.NotZero(t, first.RequeuedSummary+first.RequeuedEmbedding+first.OrphanedChunksRemoved)

	second, err := r.reconciler.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.RequeuedSummary)
	assert.Zero(t, second.RequeuedEmbedding)
	assert.Zero(t, second.OrphanedChunksRemoved)
}

func TestReconcile_EmptySystem(t *testing.T) {
	r := newRig(t)
	report, err := r.reconciler.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
}
