package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 5
	BURST_RATE_LIMIT_PER_SECOND = 10

	//serverTimeouts
	ReadTimeout            = 10 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 15 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//sqlite document store
	DatabaseFileName = "readstash.db"

	//enrichment queues
	QueueBufferLimit      = 256
	SummaryQueueKey       = "queue:summary"
	EmbeddingQueueKey     = "queue:embedding"
	SummaryWorkerCount    = 2
	EmbeddingWorkerCount  = 2
	QueuePollTimeout      = 2 * time.Second
	JobMaxAttempts        = 3
	JobRetryBaseBackoff   = 1 * time.Second
	OracleCallTimeout     = 30 * time.Second
	EnrichmentStaleAfter  = 10 * time.Minute
	ReconcileScanPageSize = 500
	ReconcileInterval     = 15 * time.Minute

	//chunking policy: token windows with overlap (cl100k_base)
	ChunkMaxTokens               = 512
	ChunkOverlapTokens           = 64
	SummaryInputMaxTokens        = 6000
	SummaryMaxOutputTokens int32 = 300

	//placeholder shown while summary_status is pending/generating
	SummaryPlaceholder = "Summary is being generated."

	//shown after all summary attempts are exhausted
	SummaryFailureNotice = "Summary generation failed."

	//search
	SearchDefaultLimit      = 20
	SearchMaxLimit          = 100
	RRFRankConstant         = 60
	SemanticChunkMultiplier = 4

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	ChunkCollectionName     = "document-chunks"

	EmbeddingOutputDimensionality int32 = 1536

	//google genai oracles
	GeminiModelName              = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel         = "gemini-embedding-001"
	ModelTemperature     float32 = 0.3
	SummaryInstruction           = "You summarize saved web articles in 2-3 concise paragraphs. Focus on the key points, main arguments, and conclusions. Output only the summary."

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis queue database index
	RedisQueueDB = 0

	//upload endpoint
	MaxUploadSize = 32 << 20 //32mb
)

// Load reads an optional .env file so its values are visible through
// os.Getenv before any client is constructed.
func Load() {
	_ = godotenv.Load()
}

func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}
