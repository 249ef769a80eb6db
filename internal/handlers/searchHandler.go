package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/readstash/internal/adapter"
	"github.com/akolanti/readstash/internal/api"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/search"
)

// GetHandler godoc
// @Summary      Service info
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.ServiceInfoResponse
// @Router       / [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.ServiceInfoResponse{
		Service: "readstash",
		Version: "1.0",
	})
}

// SearchHandler godoc
// @Summary      Search saved documents
// @Description  Lexical full-text search by default. With semantic=true the query is embedded and chunk-level vector hits are fused into the lexical ranking.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        request  body      api.SearchRequest  true  "Search query"
// @Success      200      {object}  api.SearchResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty query"
// @Router       /search [post]
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	hits, err := _engine.Search(r.Context(), search.Query{
		Text:     requestData.Query,
		Semantic: requestData.Semantic,
		Limit:    requestData.Limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSearchResponse(requestData.Query, hits))
}

// GetTagsHandler godoc
// @Summary      List tags
// @Description  All tags in use with their document counts, most used first.
// @Tags         Search
// @Produce      json
// @Success      200  {object}  api.TagsResponse
// @Router       /tags [get]
func GetTagsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	tags, err := _store.ListTags(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToTagsResponse(tags))
}

// GetHealthHandler godoc
// @Summary      Health and index stats
// @Description  Reports oracle availability, document and chunk counts, queue depths, and whether the vector index is reachable. Always 200 when the structured store answers.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func GetHealthHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	res := api.HealthResponse{Status: "ok", OracleStatus: "unavailable"}
	if _summarizer != nil {
		res.OracleStatus = "ok"
	}

	_, total, err := _store.ListDocuments(r.Context(), docModel.ListFilter{Limit: 1})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	res.Documents = total

	if _vectorIndex != nil {
		if count, err := _vectorIndex.Count(r.Context()); err == nil {
			res.VectorStoreCount = count
			res.VectorIndexOnline = true
		}
	}
	if _summaryQueue != nil {
		res.SummaryQueueDepth, _ = _summaryQueue.Len(r.Context())
	}
	if _embeddingQueue != nil {
		res.EmbeddingQueueDepth, _ = _embeddingQueue.Len(r.Context())
	}

	writeJsonResponse(w, http.StatusOK, res)
}

// PostSyncHandler godoc
// @Summary      Reconcile the indexes
// @Description  Re-enqueues stale or failed enrichment and removes vector chunks whose document was deleted. Safe to run repeatedly.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.SyncResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /sync [post]
func PostSyncHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	report, err := _reconciler.Reconcile(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSyncResponse(report))
}
