package api

import "time"

type DocumentResponse struct {
	Id              string     `json:"id" example:"c7a1e2f0-1b2d-4c3e-9f4a-5b6c7d8e9f0a"`
	CanonicalURL    string     `json:"canonical_url" example:"https://example.com/articles/go-concurrency"`
	Title           string     `json:"title"`
	Author          string     `json:"author,omitempty"`
	PublishedDate   *time.Time `json:"published_date,omitempty"`
	SourceType      string     `json:"source_type" example:"web_article"`
	Content         string     `json:"content,omitempty"`
	Summary         string     `json:"summary"`
	SummaryStatus   string     `json:"summary_status" example:"pending"`
	EmbeddingStatus string     `json:"embedding_status" example:"pending"`
	Tags            []string   `json:"tags"`
	ReadStatus      bool       `json:"read_status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type SearchResult struct {
	Document       DocumentResponse `json:"document"`
	RelevanceScore float64          `json:"relevance_score"`
	MatchedSignal  string           `json:"matched_signal" example:"lexical"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Query   string         `json:"query" example:"goroutines"`
}

type TagEntry struct {
	Name  string `json:"name" example:"golang"`
	Count int    `json:"count" example:"3"`
}

type TagsResponse struct {
	Tags []TagEntry `json:"tags"`
}

type HealthResponse struct {
	Status              string `json:"status" example:"ok"`
	OracleStatus        string `json:"oracle_status" example:"ok"`
	Documents           int    `json:"documents"`
	VectorStoreCount    uint64 `json:"vector_store_count"`
	SummaryQueueDepth   int64  `json:"summary_queue_depth"`
	EmbeddingQueueDepth int64  `json:"embedding_queue_depth"`
	VectorIndexOnline   bool   `json:"vector_index_online"`
}

type SyncResponse struct {
	RequeuedSummary       int `json:"requeued_summary"`
	RequeuedEmbedding     int `json:"requeued_embedding"`
	OrphanedChunksRemoved int `json:"orphaned_chunks_removed"`
}

type ServiceInfoResponse struct {
	Service string `json:"service" example:"readstash"`
	Version string `json:"version" example:"1.0"`
}

type ErrorResponse struct {
	Detail     string `json:"detail" example:"url must not be empty"`
	ExistingId string `json:"existing_id,omitempty"`
}

// requests---------------------

type CreateDocumentRequest struct {
	URL         string   `json:"url" validate:"required"`
	Title       string   `json:"title,omitempty"`
	HTMLContent string   `json:"html_content" validate:"required"`
	Tags        []string `json:"tags,omitempty"`
	SourceType  string   `json:"source_type,omitempty"`
}

type UpdateDocumentRequest struct {
	Title      *string   `json:"title,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	ReadStatus *bool     `json:"read_status,omitempty"`
}

type SearchRequest struct {
	Query    string `json:"query" validate:"required"`
	Semantic bool   `json:"semantic,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}
