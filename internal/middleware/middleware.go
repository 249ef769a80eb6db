package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/readstash/internal/handlers"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var CreateDocumentHandler = Wrap(handlers.CreateDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var GetDocumentHandler = Wrap(handlers.GetDocumentHandler)
var UpdateDocumentHandler = Wrap(handlers.UpdateDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var UploadDocumentHandler = Wrap(handlers.UploadDocumentHandler)

var SearchHandler = Wrap(handlers.SearchHandler)
var GetTagsHandler = Wrap(handlers.GetTagsHandler)
var GetHealthHandler = Wrap(handlers.GetHealthHandler)
var PostSyncHandler = Wrap(handlers.PostSyncHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")
	re = injectTrace(re)
	re = rateLimiter(re)
	return re
}
