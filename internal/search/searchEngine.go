package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/internal/oracle/embedding"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// Engine answers search queries over the document corpus. Lexical search
// runs against the full-text index in the structured store; semantic search
// embeds the query, fans out over chunk vectors, and folds chunk hits back
// to their parent documents. With semantic enabled the two rankings are
// fused with reciprocal rank fusion.
type Engine struct {
	store       docModel.Store
	vectorIndex vectorDB.Index
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

type Query struct {
	Text     string
	Semantic bool
	Limit    int
}

func NewEngine(store docModel.Store, index vectorDB.Index, embedder embedding.Embedder) *Engine {
	return &Engine{
		store:       store,
		vectorIndex: index,
		embedder:    embedder,
		logger:      logger_i.NewLogger("SearchEngine"),
	}
}

func (e *Engine) Search(ctx context.Context, q Query) ([]docModel.SearchHit, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, &docModel.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = config.SearchDefaultLimit
	}
	if limit > config.SearchMaxLimit {
		limit = config.SearchMaxLimit
	}

	lexical, err := e.lexicalRanking(ctx, text, limit)
	if err != nil {
		return nil, err
	}

	if !q.Semantic {
		hits := make([]docModel.SearchHit, 0, len(lexical))
		for _, scored := range lexical {
			hits = append(hits, docModel.SearchHit{
				Document:      scored.Document,
				Score:         scored.Score,
				MatchedSignal: docModel.SignalLexical,
			})
		}
		return hits, nil
	}

	semantic, err := e.semanticRanking(ctx, text, limit)
	if err != nil {
		// The lexical index is always available; a semantic outage
		// degrades the query instead of failing it.
		log.Warn("Semantic ranking unavailable, serving lexical results only", "error", err)
		semantic = nil
	}

	return e.fuse(lexical, semantic, limit), nil
}

func (e *Engine) lexicalRanking(ctx context.Context, text string, limit int) ([]docModel.ScoredDocument, error) {
	start := time.Now()
	scored, err := e.store.SearchFullText(ctx, text, limit)
	metrics.CaptureExecutionMetrics("fulltext_search", time.Since(start))
	return scored, err
}

// semanticRanking embeds the query and collapses chunk hits to documents,
// keeping each document's best chunk score. Documents whose embeddings are
// not in state indexed are dropped: their vectors are absent or stale.
func (e *Engine) semanticRanking(ctx context.Context, text string, limit int) ([]docModel.ScoredDocument, error) {
	if e.vectorIndex == nil || e.embedder == nil {
		return nil, &docModel.OracleError{Oracle: "embedding", Err: context.Canceled}
	}

	start := time.Now()
	vector, err := e.embedder.GetEmbedding(ctx, text)
	metrics.CaptureExecutionMetrics("query_embedding", time.Since(start))
	if err != nil {
		return nil, &docModel.OracleError{Oracle: "embedding", Err: err}
	}

	// Over-fetch chunks: several hits can fold into one document.
	topN := uint64(limit * config.SemanticChunkMultiplier)
	chunkHits, err := e.vectorIndex.QuerySimilar(ctx, vector, topN, nil)
	if err != nil {
		return nil, err
	}

	bestScore := make(map[string]float64)
	order := make([]string, 0, len(chunkHits))
	for _, hit := range chunkHits {
		score := float64(hit.Score)
		if prev, seen := bestScore[hit.DocumentId]; seen {
			if score > prev {
				bestScore[hit.DocumentId] = score
			}
			continue
		}
		bestScore[hit.DocumentId] = score
		order = append(order, hit.DocumentId)
	}

	var ranked []docModel.ScoredDocument
	for _, id := range order {
		doc, err := e.store.GetDocument(ctx, id)
		if err != nil {
			// Chunk outlived its document; the reconciler will remove it.
			continue
		}
		if doc.EmbeddingStatus != docModel.EmbeddingIndexed {
			continue
		}
		ranked = append(ranked, docModel.ScoredDocument{Document: doc, Score: bestScore[id]})
		if len(ranked) == limit {
			break
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// fuse merges the two rankings with reciprocal rank fusion:
// score(d) = sum over rankings of 1/(k + rank(d)), rank starting at 1.
func (e *Engine) fuse(lexical, semantic []docModel.ScoredDocument, limit int) []docModel.SearchHit {
	type fused struct {
		doc    docModel.Document
		score  float64
		signal docModel.Signal
	}

	merged := make(map[string]*fused)
	order := make([]string, 0, len(lexical)+len(semantic))

	for rank, scored := range lexical {
		merged[scored.Id] = &fused{
			doc:    scored.Document,
			score:  rrfContribution(rank),
			signal: docModel.SignalLexical,
		}
		order = append(order, scored.Id)
	}
	for rank, scored := range semantic {
		if entry, seen := merged[scored.Id]; seen {
			entry.score += rrfContribution(rank)
			entry.signal = docModel.SignalBoth
			continue
		}
		merged[scored.Id] = &fused{
			doc:    scored.Document,
			score:  rrfContribution(rank),
			signal: docModel.SignalSemantic,
		}
		order = append(order, scored.Id)
	}

	hits := make([]docModel.SearchHit, 0, len(order))
	for _, id := range order {
		entry := merged[id]
		hits = append(hits, docModel.SearchHit{
			Document:      entry.doc,
			Score:         entry.score,
			MatchedSignal: entry.signal,
		})
	}

	// Ties resolve to the newer document so the ordering is deterministic.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Document.CreatedAt.After(hits[j].Document.CreatedAt)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func rrfContribution(rank int) float64 {
	return 1.0 / float64(config.RRFRankConstant+rank+1)
}
