package adapter

import (
	"github.com/akolanti/readstash/internal/api"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/syncer"
)

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:              doc.Id,
		CanonicalURL:    doc.CanonicalURL,
		Title:           doc.Title,
		Author:          doc.Author,
		PublishedDate:   doc.PublishedDate,
		SourceType:      string(doc.SourceType),
		Content:         doc.Content,
		Summary:         doc.Summary,
		SummaryStatus:   string(doc.SummaryStatus),
		EmbeddingStatus: string(doc.EmbeddingStatus),
		Tags:            doc.Tags,
		ReadStatus:      doc.ReadStatus,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

// ToDocumentListResponse leaves content out of listings; the full text is
// available on the single-document endpoint.
func ToDocumentListResponse(docs []docModel.Document, total, limit, offset int) api.DocumentListResponse {
	out := make([]api.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res := ToDocumentResponse(doc)
		res.Content = ""
		out = append(out, res)
	}
	return api.DocumentListResponse{
		Documents: out,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
}

func ToSearchResponse(query string, hits []docModel.SearchHit) api.SearchResponse {
	results := make([]api.SearchResult, 0, len(hits))
	for _, hit := range hits {
		doc := ToDocumentResponse(hit.Document)
		doc.Content = ""
		results = append(results, api.SearchResult{
			Document:       doc,
			RelevanceScore: hit.Score,
			MatchedSignal:  string(hit.MatchedSignal),
		})
	}
	return api.SearchResponse{
		Results: results,
		Total:   len(results),
		Query:   query,
	}
}

func ToTagsResponse(tags []docModel.TagCount) api.TagsResponse {
	out := make([]api.TagEntry, 0, len(tags))
	for _, tag := range tags {
		out = append(out, api.TagEntry{Name: tag.Name, Count: tag.Count})
	}
	return api.TagsResponse{Tags: out}
}

func ToSyncResponse(report syncer.Report) api.SyncResponse {
	return api.SyncResponse{
		RequeuedSummary:       report.RequeuedSummary,
		RequeuedEmbedding:     report.RequeuedEmbedding,
		OrphanedChunksRemoved: report.OrphanedChunksRemoved,
	}
}

func ToUpdate(req api.UpdateDocumentRequest) docModel.DocumentUpdate {
	return docModel.DocumentUpdate{
		Title:      req.Title,
		Tags:       req.Tags,
		ReadStatus: req.ReadStatus,
	}
}

func BadRequest(detail string) api.ErrorResponse {
	return api.ErrorResponse{Detail: detail}
}

func Conflict(conflict *docModel.ConflictError) api.ErrorResponse {
	return api.ErrorResponse{
		Detail:     "document already saved: " + conflict.CanonicalURL,
		ExistingId: conflict.ExistingId,
	}
}
