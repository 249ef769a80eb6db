package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/readstash/internal/data/store"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/google/uuid"
)

// --- Mocks ---

type mockEmbedder struct {
	embedFunc func(ctx context.Context, query string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, query)
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

type stubIndex struct {
	hits []vectorDB.ChunkHit
	err  error
}

func (s *stubIndex) QuerySimilar(ctx context.Context, vector []float32, topN uint64, filterTags []string) ([]vectorDB.ChunkHit, error) {
	return s.hits, s.err
}

func (s *stubIndex) UpsertChunks(ctx context.Context, chunks []vectorDB.ChunkRecord, vectors [][]float32) error {
	return nil
}
func (s *stubIndex) DeleteDocumentChunks(ctx context.Context, documentId string) error { return nil }
func (s *stubIndex) ListDocumentIDs(ctx context.Context) ([]string, error)             { return nil, nil }
func (s *stubIndex) Count(ctx context.Context) (uint64, error)                         { return 0, nil }

// --- Fixtures ---

func seedDocument(t *testing.T, documentStore docModel.Store, title, content string, embeddingStatus docModel.EmbeddingStatus) docModel.Document {
	t.Helper()
	now := time.Now().UTC()
	doc := docModel.Document{
		Id:              uuid.New().String(),
		CanonicalURL:    "https://example.com/" + uuid.New().String(),
		Title:           title,
		SourceType:      docModel.SourceWebArticle,
		Content:         content,
		Summary:         "done summary",
		SummaryStatus:   docModel.SummaryDone,
		EmbeddingStatus: embeddingStatus,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := documentStore.CreateDocument(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func newTestEngine(t *testing.T, index *stubIndex) (*Engine, docModel.Store) {
	t.Helper()
	documentStore, err := store.NewMemoryDocumentStore()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { documentStore.Close() })
	return NewEngine(documentStore, index, &mockEmbedder{}), documentStore
}

// --- Tests ---

func TestSearch_EmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t, &stubIndex{})
	_, err := engine.Search(context.Background(), Query{Text: "  "})
	var validation *docModel.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearch_LexicalOnly(t *testing.T) {
	engine, documentStore := newTestEngine(t, &stubIndex{})
	match := seedDocument(t, documentStore, "Goroutine Patterns", "Fan-in and fan-out with goroutines.", docModel.EmbeddingPending)
	seedDocument(t, documentStore, "Sourdough", "Flour and water.", docModel.EmbeddingPending)

	hits, err := engine.Search(context.Background(), Query{Text: "goroutines"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits; want 1", len(hits))
	}
	if hits[0].Document.Id != match.Id {
		t.Errorf("hit = %s; want %s", hits[0].Document.Id, match.Id)
	}
	if hits[0].MatchedSignal != docModel.SignalLexical {
		t.Errorf("signal = %s; want lexical", hits[0].MatchedSignal)
	}
	if hits[0].Document.Content == "" {
		t.Error("lexical hit should carry the document")
	}
}

func TestSearch_SemanticSkipsUnindexedDocuments(t *testing.T) {
	index := &stubIndex{}
	engine, documentStore := newTestEngine(t, index)

	indexed := seedDocument(t, documentStore, "Vector Databases", "All about ANN search.", docModel.EmbeddingIndexed)
	pending := seedDocument(t, documentStore, "Pending Doc", "Also about ANN search.", docModel.EmbeddingPending)

	index.hits = []vectorDB.ChunkHit{
		{DocumentId: pending.Id, ChunkIndex: 0, Score: 0.99},
		{DocumentId: indexed.Id, ChunkIndex: 1, Score: 0.80},
		{DocumentId: indexed.Id, ChunkIndex: 0, Score: 0.70},
	}

	hits, err := engine.Search(context.Background(), Query{Text: "zzzz-no-lexical-match", Semantic: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits; want 1 (pending doc must be invisible semantically)", len(hits))
	}
	if hits[0].Document.Id != indexed.Id {
		t.Errorf("hit = %s; want %s", hits[0].Document.Id, indexed.Id)
	}
	if hits[0].MatchedSignal != docModel.SignalSemantic {
		t.Errorf("signal = %s; want semantic", hits[0].MatchedSignal)
	}
}

func TestSearch_FusionMarksBothSignals(t *testing.T) {
	index := &stubIndex{}
	engine, documentStore := newTestEngine(t, index)

	both := seedDocument(t, documentStore, "Channel Basics", "Buffered channels in Go.", docModel.EmbeddingIndexed)
	lexOnly := seedDocument(t, documentStore, "Channel Tuning", "More channels, no vectors.", docModel.EmbeddingPending)

	index.hits = []vectorDB.ChunkHit{
		{DocumentId: both.Id, ChunkIndex: 0, Score: 0.9},
	}

	hits, err := engine.Search(context.Background(), Query{Text: "channels", Semantic: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits; want 2", len(hits))
	}

	signals := map[string]docModel.Signal{}
	for _, h := range hits {
		signals[h.Document.Id] = h.MatchedSignal
	}
	if signals[both.Id] != docModel.SignalBoth {
		t.Errorf("signal for fused doc = %s; want both", signals[both.Id])
	}
	if signals[lexOnly.Id] != docModel.SignalLexical {
		t.Errorf("signal for lexical-only doc = %s; want lexical", signals[lexOnly.Id])
	}
	// Present in both rankings beats present in one.
	if hits[0].Document.Id != both.Id {
		t.Errorf("fused doc should rank first, got %s", hits[0].Document.Id)
	}
}

func TestSearch_SemanticOutageDegradesToLexical(t *testing.T) {
	index := &stubIndex{err: errors.New("qdrant offline")}
	engine, documentStore := newTestEngine(t, index)
	match := seedDocument(t, documentStore, "Resilience", "Graceful degradation of search.", docModel.EmbeddingIndexed)

	hits, err := engine.Search(context.Background(), Query{Text: "degradation", Semantic: true})
	if err != nil {
		t.Fatalf("semantic outage should not fail the query: %v", err)
	}
	if len(hits) != 1 || hits[0].Document.Id != match.Id {
		t.Fatalf("expected the lexical hit to survive, got %d hits", len(hits))
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	engine, documentStore := newTestEngine(t, &stubIndex{})
	for i := 0; i < 5; i++ {
		seedDocument(t, documentStore, "Indexing", "Inverted indexes and postings lists.", docModel.EmbeddingPending)
	}

	hits, err := engine.Search(context.Background(), Query{Text: "indexes", Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits; want 3", len(hits))
	}
}
