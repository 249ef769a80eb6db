package docModel

import (
	"context"
	"time"
)

type SourceType string

const (
	SourceWebArticle SourceType = "web_article"
	SourcePDF        SourceType = "pdf"
	SourceDOCX       SourceType = "docx"
	SourceMarkdown   SourceType = "markdown"
	SourceUpload     SourceType = "upload"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceWebArticle, SourcePDF, SourceDOCX, SourceMarkdown, SourceUpload:
		return true
	}
	return false
}

type SummaryStatus string

const (
	SummaryPending    SummaryStatus = "pending"
	SummaryGenerating SummaryStatus = "generating"
	SummaryDone       SummaryStatus = "done"
	SummaryFailed     SummaryStatus = "failed"
)

type EmbeddingStatus string

const (
	EmbeddingPending EmbeddingStatus = "pending"
	EmbeddingIndexed EmbeddingStatus = "indexed"
	EmbeddingFailed  EmbeddingStatus = "failed"
)

type Document struct {
	Id              string          `json:"id"`
	CanonicalURL    string          `json:"canonical_url"`
	Title           string          `json:"title"`
	Author          string          `json:"author,omitempty"`
	PublishedDate   *time.Time      `json:"published_date,omitempty"`
	SourceType      SourceType      `json:"source_type"`
	Content         string          `json:"content"`
	Summary         string          `json:"summary"`
	SummaryStatus   SummaryStatus   `json:"summary_status"`
	EmbeddingStatus EmbeddingStatus `json:"embedding_status"`
	Tags            []string        `json:"tags"`
	ReadStatus      bool            `json:"read_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DocumentUpdate carries the PATCHable fields. Nil means "leave as is".
type DocumentUpdate struct {
	Title      *string
	Tags       *[]string
	ReadStatus *bool
}

type ListFilter struct {
	Limit      int
	Offset     int
	Tags       []string
	ReadStatus *bool
}

type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ScoredDocument is a document with its lexical full-text rank attached.
type ScoredDocument struct {
	Document
	Score float64
}

type Signal string

const (
	SignalLexical  Signal = "lexical"
	SignalSemantic Signal = "semantic"
	SignalBoth     Signal = "both"
)

type SearchHit struct {
	Document      Document `json:"document"`
	Score         float64  `json:"relevance_score"`
	MatchedSignal Signal   `json:"matched_signal"`
}

// StaleEnrichment points Reconcile at a document whose summary or embedding
// axis is stuck (stale pending) or terminally failed.
type StaleEnrichment struct {
	DocumentId string
	Axis       string // "summary" or "embedding"
}

// Store is the authoritative structured store: rows, lexical index, tags.
type Store interface {
	CreateDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	GetDocumentByURL(ctx context.Context, canonicalURL string) (Document, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]Document, int, error)
	ListDocumentIDs(ctx context.Context) ([]string, error)
	UpdateDocument(ctx context.Context, id string, update DocumentUpdate) (Document, error)
	DeleteDocument(ctx context.Context, id string) error

	SearchFullText(ctx context.Context, query string, limit int) ([]ScoredDocument, error)
	ListTags(ctx context.Context) ([]TagCount, error)

	SetSummary(ctx context.Context, id string, summary string, status SummaryStatus) error
	SetSummaryStatus(ctx context.Context, id string, status SummaryStatus) error
	SetEmbeddingStatus(ctx context.Context, id string, status EmbeddingStatus) error
	ListStaleEnrichment(ctx context.Context, olderThan time.Time, limit int) ([]StaleEnrichment, error)

	Close() error
}
