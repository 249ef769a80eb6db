package vectorDB

import (
	"context"
	"time"
)

// ChunkRecord is one embedded span of a document. Chunks are owned by the
// vector index and are never addressed by clients directly.
type ChunkRecord struct {
	DocumentId string
	ChunkIndex int
	Text       string
	Tags       []string
	CreatedAt  time.Time
}

type ChunkHit struct {
	DocumentId string
	ChunkIndex int
	Score      float32
}

// Index is the chunk-level vector store. Upserts are keyed by
// (document_id, chunk_index) so a re-run replaces rather than appends.
type Index interface {
	UpsertChunks(ctx context.Context, chunks []ChunkRecord, vectors [][]float32) error
	DeleteDocumentChunks(ctx context.Context, documentId string) error
	QuerySimilar(ctx context.Context, vector []float32, topN uint64, filterTags []string) ([]ChunkHit, error)
	ListDocumentIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (uint64, error)
}
