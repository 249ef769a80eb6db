// @title           ReadStash API
// @version         1.0
// @description     Personal reading list with async summarization and hybrid search
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/data/queue"
	"github.com/akolanti/readstash/internal/data/store"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/handlers"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/oracle/embedding/googleEmbedding"
	"github.com/akolanti/readstash/internal/oracle/llm/gemini"
	"github.com/akolanti/readstash/internal/oracle/parser"
	"github.com/akolanti/readstash/internal/search"
	"github.com/akolanti/readstash/internal/server"
	"github.com/akolanti/readstash/internal/syncer"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/internal/vectorDB/qdrantDB"
	"github.com/akolanti/readstash/internal/worker"
	"github.com/akolanti/readstash/pkg/logger_i"
)

var (
	listenAddr        string
	dataDir           string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	config.Load()
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&dataDir, "data-dir", "", "data directory (default ~/.readstash)")
	flag.Parse()

	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	documentStore, err := store.NewSQLiteDocumentStore(dataDir)
	if err != nil {
		logger.Error("Could not open the document store. Shutting down.", "error", err)
		return
	}
	defer documentStore.Close()

	var summaryQueue jobModel.Queue
	var embeddingQueue jobModel.Queue
	redisSummary := queue.GetRedisJobQueue(serviceContext, config.SummaryQueueKey)
	redisEmbedding := queue.GetRedisJobQueue(serviceContext, config.EmbeddingQueueKey)
	if redisSummary == nil || redisEmbedding == nil {
		logger.Error("Redis is offline, enrichment queues fall back to memory")
		summaryQueue = queue.InitInMemoryJobQueue()
		embeddingQueue = queue.InitInMemoryJobQueue()
	} else {
		summaryQueue = redisSummary
		embeddingQueue = redisEmbedding
	}

	var vectorIndex vectorDB.Index
	if holder := qdrantDB.GetQdrantClient(serviceContext); holder != nil {
		vectorIndex = holder
	} else {
		logger.Error("Qdrant is offline, semantic indexing is disabled until reconnect")
	}

	apiKey := config.GoogleAPIKey()
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, apiKey)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, apiKey)
	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more oracles failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	chunker, err := ingest.NewTokenChunker()
	if err != nil {
		logger.Error("Could not load the tokenizer. Shutting down.", "error", err)
		return
	}

	htmlParser := parser.NewHTMLParser()
	locks := ingest.NewKeyedLock()

	pipeline := ingest.NewPipeline(documentStore, htmlParser, vectorIndex, summaryQueue, embeddingQueue, locks)
	engine := search.NewEngine(documentStore, vectorIndex, embeddingService)
	reconciler := syncer.NewReconciler(documentStore, vectorIndex, pipeline)

	handlers.InitHandlers(handlers.Services{
		Pipeline:       pipeline,
		Store:          documentStore,
		Engine:         engine,
		Reconciler:     reconciler,
		VectorIndex:    vectorIndex,
		Summarizer:     llmProvider,
		SummaryQueue:   summaryQueue,
		EmbeddingQueue: embeddingQueue,
	})

	//init worker pool
	pool := worker.NewPool(documentStore, summaryQueue, embeddingQueue, llmProvider, embeddingService, vectorIndex, chunker, pipeline)
	pool.InitWorkerPool(stopWorkerChannel, &workerWaitGroup, config.SummaryWorkerCount, config.EmbeddingWorkerCount)

	go reconciler.RunPeriodic(stopWorkerChannel)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
