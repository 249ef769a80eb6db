package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/readstash/internal/adapter"
	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/oracle/llm"
	"github.com/akolanti/readstash/internal/search"
	"github.com/akolanti/readstash/internal/syncer"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/pkg/logger_i"
)

var logRH *logger_i.Logger

var (
	_pipeline       *ingest.Pipeline
	_store          docModel.Store
	_engine         *search.Engine
	_reconciler     *syncer.Reconciler
	_vectorIndex    vectorDB.Index
	_summarizer     llm.Summarizer
	_summaryQueue   jobModel.Queue
	_embeddingQueue jobModel.Queue
)

type Services struct {
	Pipeline       *ingest.Pipeline
	Store          docModel.Store
	Engine         *search.Engine
	Reconciler     *syncer.Reconciler
	VectorIndex    vectorDB.Index
	Summarizer     llm.Summarizer
	SummaryQueue   jobModel.Queue
	EmbeddingQueue jobModel.Queue
}

func InitHandlers(s Services) {
	logRH = logger_i.NewLogger("Handlers")
	_pipeline = s.Pipeline
	_store = s.Store
	_engine = s.Engine
	_reconciler = s.Reconciler
	_vectorIndex = s.VectorIndex
	_summarizer = s.Summarizer
	_summaryQueue = s.SummaryQueue
	_embeddingQueue = s.EmbeddingQueue
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, detail string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(detail))
}

// writeDomainError maps domain failures onto the HTTP surface.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *docModel.ValidationError
	if errors.As(err, &validation) {
		WriteErrorResponse(w, http.StatusBadRequest, validation.Error())
		return
	}

	var conflict *docModel.ConflictError
	if errors.As(err, &conflict) {
		writeJsonResponse(w, http.StatusConflict, adapter.Conflict(conflict))
		return
	}

	if errors.Is(err, docModel.ErrNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, "document not found")
		return
	}

	logRH.Error("Request failed", "error", err)
	WriteErrorResponse(w, http.StatusInternalServerError, "internal error")
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY))
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
