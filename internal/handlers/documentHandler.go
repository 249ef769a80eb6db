package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/adapter"
	"github.com/akolanti/readstash/internal/adapter/utils"
	"github.com/akolanti/readstash/internal/api"
	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/oracle/parser"
)

// CreateDocumentHandler godoc
// @Summary      Save an article
// @Description  Canonicalizes the URL, extracts readable content from the captured HTML, stores the document, and queues summary and embedding enrichment.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateDocumentRequest  true  "Captured article"
// @Success      201      {object}  api.DocumentResponse       "Document stored, enrichment pending"
// @Failure      400      {object}  api.ErrorResponse          "Invalid URL or unparseable capture"
// @Failure      409      {object}  api.ErrorResponse          "Already saved (returns existing_id)"
// @Router       /documents [post]
func CreateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.CreateDocumentRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the create document reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad create document request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	doc, err := _pipeline.Save(r.Context(), ingest.SaveRequest{
		URL:         requestData.URL,
		Title:       requestData.Title,
		HTMLContent: requestData.HTMLContent,
		Tags:        requestData.Tags,
		SourceType:  docModel.SourceType(requestData.SourceType),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToDocumentResponse(doc))
}

// ListDocumentsHandler godoc
// @Summary      List saved documents
// @Description  Pages through documents, newest first, with optional tag and read-status filters. Content is omitted from listings.
// @Tags         Documents
// @Produce      json
// @Param        limit        query     int     false  "Page size (default 20, max 100)"
// @Param        offset       query     int     false  "Page offset"
// @Param        tags         query     string  false  "Comma-separated tags, any match"
// @Param        read_status  query     bool    false  "Filter by read flag"
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	filter := docModel.ListFilter{
		Limit:  config.SearchDefaultLimit,
		Offset: 0,
	}
	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if filter.Limit > config.SearchMaxLimit {
		filter.Limit = config.SearchMaxLimit
	}
	if v := query.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	if v := query.Get("tags"); v != "" {
		filter.Tags = ingest.NormalizeTags(strings.Split(v, ","))
	}
	if v := query.Get("read_status"); v != "" {
		read := v == "true" || v == "1"
		filter.ReadStatus = &read
	}

	docs, total, err := _store.ListDocuments(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs, total, filter.Limit, filter.Offset))
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Description  Returns the full document, including extracted content and the current summary. While the summary is still generating a placeholder is returned.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, err := _store.GetDocument(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// UpdateDocumentHandler godoc
// @Summary      Update document metadata
// @Description  Patches title, tags, or read status. Omitted fields are left unchanged; content and URL are immutable.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Document ID"
// @Param        request  body      api.UpdateDocumentRequest  true  "Fields to change"
// @Success      200      {object}  api.DocumentResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /documents/{id} [patch]
func UpdateDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if requestData.Title == nil && requestData.Tags == nil && requestData.ReadStatus == nil {
		WriteErrorResponse(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}
	if requestData.Title != nil && strings.TrimSpace(*requestData.Title) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "title must not be empty")
		return
	}
	if requestData.Tags != nil {
		normalized := ingest.NormalizeTags(*requestData.Tags)
		requestData.Tags = &normalized
	}

	id := utils.GetChiURLParam(r, "id")
	doc, err := _store.UpdateDocument(r.Context(), id, adapter.ToUpdate(requestData))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document and its search index entries. Chunk cleanup failures are repaired by the next reconciliation pass.
// @Tags         Documents
// @Param        id   path  string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := _pipeline.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadDocumentHandler godoc
// @Summary      Upload a document file
// @Description  Receives a PDF/DOCX/Markdown/text file via multipart/form-data, extracts its plaintext, and ingests it like a saved article.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file    true   "The file to ingest"
// @Param        tags      formData  string  false  "Comma-separated tags"
// @Success      201  {object}  api.DocumentResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing file, unsupported type, or no extractable text"
// @Failure      409  {object}  api.ErrorResponse  "Same filename already ingested"
// @Router       /documents/upload [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	tempFilename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	tempFilePath := filepath.Join(targetDir, tempFilename)
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer os.Remove(tempFilePath)
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}

	text, sourceType, err := parser.ExtractFile(tempFilePath)
	if err != nil {
		logRH.Warn("File extraction failed", "filename", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Could not extract text from file")
		return
	}

	var tags []string
	if v := r.FormValue("tags"); v != "" {
		tags = strings.Split(v, ",")
	}

	doc, err := _pipeline.SaveUpload(r.Context(), fileMetadata.Filename, text, tags, sourceType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToDocumentResponse(doc))
}
