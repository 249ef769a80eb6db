package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/data/queue"
	"github.com/akolanti/readstash/internal/data/store"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/oracle/parser"
)

type mockParser struct {
	parseFunc func(html string, sourceURL string) (parser.Parsed, error)
}

func (m *mockParser) Parse(html string, sourceURL string) (parser.Parsed, error) {
	if m.parseFunc != nil {
		return m.parseFunc(html, sourceURL)
	}
	return parser.Parsed{Title: "Parsed Title", Content: "Parsed content body."}, nil
}

func newTestPipeline(t *testing.T) (*Pipeline, docModel.Store, *queue.InMemoryJobQueue, *queue.InMemoryJobQueue) {
	t.Helper()
	documentStore, err := store.NewMemoryDocumentStore()
	if err != nil {
		t.Fatalf("could not open memory store: %v", err)
	}
	t.Cleanup(func() { documentStore.Close() })

	summaryQ := queue.InitInMemoryJobQueue()
	embeddingQ := queue.InitInMemoryJobQueue()
	p := NewPipeline(documentStore, &mockParser{}, nil, summaryQ, embeddingQ, NewKeyedLock())
	return p, documentStore, summaryQ, embeddingQ
}

func TestPipeline_SaveQueuesEnrichment(t *testing.T) {
	p, documentStore, summaryQ, embeddingQ := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.Save(ctx, SaveRequest{
		URL:         "https://example.com/article?utm_source=x",
		HTMLContent: "<html><body><p>hello</p></body></html>",
		Tags:        []string{"Go, testing"},
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if doc.CanonicalURL != "https://example.com/article" {
		t.Errorf("canonical URL = %q", doc.CanonicalURL)
	}
	if doc.SummaryStatus != docModel.SummaryPending || doc.EmbeddingStatus != docModel.EmbeddingPending {
		t.Errorf("expected pending statuses, got %s/%s", doc.SummaryStatus, doc.EmbeddingStatus)
	}
	if doc.Summary != config.SummaryPlaceholder {
		t.Errorf("expected placeholder summary, got %q", doc.Summary)
	}
	if len(doc.Tags) != 2 {
		t.Errorf("expected normalized tags, got %v", doc.Tags)
	}

	stored, err := documentStore.GetDocument(ctx, doc.Id)
	if err != nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if stored.Title != "Parsed Title" {
		t.Errorf("expected parsed title fallback, got %q", stored.Title)
	}

	if n, _ := summaryQ.Len(ctx); n != 1 {
		t.Errorf("summary queue depth = %d; want 1", n)
	}
	if n, _ := embeddingQ.Len(ctx); n != 1 {
		t.Errorf("embedding queue depth = %d; want 1", n)
	}
}

func TestPipeline_DuplicateURLConflicts(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	ctx := context.Background()

	first, err := p.Save(ctx, SaveRequest{
		URL:         "https://example.com/article",
		HTMLContent: "<p>one</p>",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same article through a different share channel.
	_, err = p.Save(ctx, SaveRequest{
		URL:         "https://Example.com/article/?utm_campaign=weekly",
		HTMLContent: "<p>two</p>",
	})
	var conflict *docModel.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ExistingId != first.Id {
		t.Errorf("conflict points at %s; want %s", conflict.ExistingId, first.Id)
	}
}

func TestPipeline_ConcurrentSavesOneWins(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	ctx := context.Background()

	const savers = 8
	var wg sync.WaitGroup
	errs := make([]error, savers)
	for i := 0; i < savers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = p.Save(ctx, SaveRequest{
				URL:         "https://example.com/contended",
				HTMLContent: "<p>body</p>",
			})
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, err := range errs {
		var conflict *docModel.ConflictError
		switch {
		case err == nil:
			created++
		case errors.As(err, &conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicts != savers-1 {
		t.Errorf("created=%d conflicts=%d; want 1 and %d", created, conflicts, savers-1)
	}
}

func TestPipeline_UnparseableCapture(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)
	p.parser = &mockParser{parseFunc: func(string, string) (parser.Parsed, error) {
		return parser.Parsed{}, errors.New("boom")
	}}

	_, err := p.Save(context.Background(), SaveRequest{
		URL:         "https://example.com/a",
		HTMLContent: "<p>x</p>",
	})
	var validation *docModel.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPipeline_DeleteRemovesDocument(t *testing.T) {
	p, documentStore, _, _ := newTestPipeline(t)
	ctx := context.Background()

	doc, err := p.Save(ctx, SaveRequest{URL: "https://example.com/a", HTMLContent: "<p>x</p>"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Delete(ctx, doc.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := documentStore.GetDocument(ctx, doc.Id); !errors.Is(err, docModel.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := p.Delete(ctx, doc.Id); !errors.Is(err, docModel.ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}

	// The URL is free again after the delete.
	if _, err := p.Save(ctx, SaveRequest{URL: "https://example.com/a", HTMLContent: "<p>x</p>"}); err != nil {
		t.Errorf("re-save after delete failed: %v", err)
	}
}
