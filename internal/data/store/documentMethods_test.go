package store

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteDocumentStore {
	t.Helper()
	s, err := NewMemoryDocumentStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDocument(url string) docModel.Document {
	now := time.Now().UTC()
	return docModel.Document{
		Id:              uuid.New().String(),
		CanonicalURL:    url,
		Title:           "Understanding Goroutines",
		Author:          "Jordan Blake",
		SourceType:      docModel.SourceWebArticle,
		Content:         "Goroutines are lightweight threads managed by the Go runtime.",
		Summary:         "Summary is being generated.",
		SummaryStatus:   docModel.SummaryPending,
		EmbeddingStatus: docModel.EmbeddingPending,
		Tags:            []string{"concurrency", "golang"},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestDocumentStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("https://example.com/goroutines")
	require.NoError(t, s.CreateDocument(ctx, doc))

	got, err := s.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.CanonicalURL, got.CanonicalURL)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, []string{"concurrency", "golang"}, got.Tags)
	assert.Equal(t, docModel.SummaryPending, got.SummaryStatus)

	byURL, err := s.GetDocumentByURL(ctx, doc.CanonicalURL)
	require.NoError(t, err)
	assert.Equal(t, doc.Id, byURL.Id)

	_, err = s.GetDocument(ctx, "ghost-id")
	assert.ErrorIs(t, err, docModel.ErrNotFound)
}

func TestDocumentStore_DuplicateURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleDocument("https://example.com/dup")
	require.NoError(t, s.CreateDocument(ctx, first))

	second := sampleDocument("https://example.com/dup")
	err := s.CreateDocument(ctx, second)
	var conflict *docModel.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.Id, conflict.ExistingId)
}

func TestDocumentStore_ListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	read := sampleDocument("https://example.com/1")
	read.ReadStatus = true
	read.Tags = []string{"golang"}
	require.NoError(t, s.CreateDocument(ctx, read))

	unread := sampleDocument("https://example.com/2")
	unread.CreatedAt = unread.CreatedAt.Add(time.Second)
	unread.Tags = []string{"databases"}
	require.NoError(t, s.CreateDocument(ctx, unread))

	docs, total, err := s.ListDocuments(ctx, docModel.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, docs, 2)
	// Newest first.
	assert.Equal(t, unread.Id, docs[0].Id)

	isRead := true
	docs, total, err = s.ListDocuments(ctx, docModel.ListFilter{Limit: 10, ReadStatus: &isRead})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, read.Id, docs[0].Id)

	docs, total, err = s.ListDocuments(ctx, docModel.ListFilter{Limit: 10, Tags: []string{"databases"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, unread.Id, docs[0].Id)
}

func TestDocumentStore_UpdateDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("https://example.com/update")
	require.NoError(t, s.CreateDocument(ctx, doc))

	newTitle := "A Better Title"
	readStatus := true
	newTags := []string{"reading-list"}
	updated, err := s.UpdateDocument(ctx, doc.Id, docModel.DocumentUpdate{
		Title:      &newTitle,
		ReadStatus: &readStatus,
		Tags:       &newTags,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.True(t, updated.ReadStatus)
	assert.Equal(t, newTags, updated.Tags)
	// Content is immutable through updates.
	assert.Equal(t, doc.Content, updated.Content)

	_, err = s.UpdateDocument(ctx, "ghost-id", docModel.DocumentUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, docModel.ErrNotFound)
}

func TestDocumentStore_SearchFullText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	match := sampleDocument("https://example.com/goroutines")
	require.NoError(t, s.CreateDocument(ctx, match))

	other := sampleDocument("https://example.com/cooking")
	other.Title = "Sourdough Basics"
	other.Content = "Flour, water, salt, and patience."
	require.NoError(t, s.CreateDocument(ctx, other))

	hits, err := s.SearchFullText(ctx, "goroutines runtime", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, match.Id, hits[0].Id)
	assert.Greater(t, hits[0].Score, 0.0)

	// FTS5 syntax in user input must not break the query.
	_, err = s.SearchFullText(ctx, `"unbalanced ( NEAR`, 10)
	require.NoError(t, err)

	hits, err = s.SearchFullText(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDocumentStore_SearchReflectsUpdatesAndDeletes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("https://example.com/fts-sync")
	require.NoError(t, s.CreateDocument(ctx, doc))
	require.NoError(t, s.SetSummary(ctx, doc.Id, "All about xylophones.", docModel.SummaryDone))

	hits, err := s.SearchFullText(ctx, "xylophones", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "summary text should be searchable after update")

	require.NoError(t, s.DeleteDocument(ctx, doc.Id))
	hits, err = s.SearchFullText(ctx, "xylophones", 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "deleted documents must leave the lexical index")
}

func TestDocumentStore_ListTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := sampleDocument("https://example.com/a")
	a.Tags = []string{"golang", "concurrency"}
	require.NoError(t, s.CreateDocument(ctx, a))

	b := sampleDocument("https://example.com/b")
	b.Tags = []string{"golang"}
	require.NoError(t, s.CreateDocument(ctx, b))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, docModel.TagCount{Name: "golang", Count: 2}, tags[0])
	assert.Equal(t, docModel.TagCount{Name: "concurrency", Count: 1}, tags[1])

	// Tag counts follow live documents only.
	require.NoError(t, s.DeleteDocument(ctx, a.Id))
	tags, err = s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, docModel.TagCount{Name: "golang", Count: 1}, tags[0])
}

func TestDocumentStore_ListStaleEnrichment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stuck := sampleDocument("https://example.com/stuck")
	stuck.CreatedAt = time.Now().UTC().Add(-time.Hour)
	stuck.UpdatedAt = stuck.CreatedAt
	require.NoError(t, s.CreateDocument(ctx, stuck))

	failed := sampleDocument("https://example.com/failed")
	require.NoError(t, s.CreateDocument(ctx, failed))
	require.NoError(t, s.SetSummary(ctx, failed.Id, "Summary generation failed.", docModel.SummaryFailed))
	require.NoError(t, s.SetEmbeddingStatus(ctx, failed.Id, docModel.EmbeddingIndexed))

	fresh := sampleDocument("https://example.com/fresh")
	require.NoError(t, s.CreateDocument(ctx, fresh))

	cutoff := time.Now().UTC().Add(-10 * time.Minute)
	stale, err := s.ListStaleEnrichment(ctx, cutoff, 100)
	require.NoError(t, err)

	axes := map[string][]string{}
	for _, se := range stale {
		axes[se.DocumentId] = append(axes[se.DocumentId], se.Axis)
	}
	// The hour-old pending document is stale on both axes.
	assert.ElementsMatch(t, []string{"summary", "embedding"}, axes[stuck.Id])
	// The failed summary is always eligible, its indexed embedding is not.
	assert.ElementsMatch(t, []string{"summary"}, axes[failed.Id])
	// Recently created pending documents are not stale yet.
	assert.NotContains(t, axes, fresh.Id)
}
