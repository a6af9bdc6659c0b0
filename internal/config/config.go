package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	GenerationAuto   = "auto"
	GenerationHosted = "hosted"
	GenerationOllama = "ollama"
	GenerationOff    = "off"
)

var defaultProgramURLs = []string{
	"https://abit.itmo.ru/program/master/ai",
	"https://abit.itmo.ru/program/master/ai_product",
}

type Config struct {
	APIPort  string
	LogLevel string

	DataDir       string
	DocumentsPath string
	IndexPath     string
	RawDir        string
	ProcessedDir  string

	ProgramURLs  []string
	HTTPProxy    string
	ChunkSize    int
	ChunkOverlap int

	RAGTopK            int
	RecommendTopK      int
	RelevanceThreshold float64
	VocabularyPath     string

	GenerationMode string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	OllamaURL             string
	OllamaModel           string
	OllamaFallbackModels  []string
	OllamaMinFreeMemoryMB int
	OllamaPullTimeout     time.Duration
	OllamaPollInterval    time.Duration
	OllamaAnswerReserve   time.Duration
	ContextMaxCharsHosted int
	ContextMaxCharsLocal  int

	HTTPConnectTimeout time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	LLMRequestTimeout  time.Duration

	NATSURL           string
	NATSSubject       string
	NATSQueueGroup    string
	WorkerConcurrency int
	WorkerMetricsPort string
	QuestionTimeout   time.Duration

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

// Load reads .env from the working directory when present, then the process
// environment. Variables already set in the environment take precedence.
func Load() Config {
	_ = godotenv.Load()

	dataDir := mustEnv("DATA_DIR", "./data")
	processedDir := mustEnv("PROCESSED_DIR", filepath.Join(dataDir, "processed"))

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DataDir:       dataDir,
		DocumentsPath: mustEnv("DOCUMENTS_PATH", filepath.Join(processedDir, "documents.json")),
		IndexPath:     mustEnv("INDEX_PATH", filepath.Join(processedDir, "tfidf_index.bundle")),
		RawDir:        mustEnv("RAW_DIR", filepath.Join(dataDir, "raw")),
		ProcessedDir:  processedDir,

		ProgramURLs:  mustEnvList("PROGRAM_URLS", defaultProgramURLs),
		HTTPProxy:    strings.TrimSpace(mustEnv("HTTP_PROXY", "")),
		ChunkSize:    mustEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 120),

		RAGTopK:            mustEnvInt("RAG_TOP_K", 4),
		RecommendTopK:      mustEnvInt("RECOMMEND_TOP_K", 6),
		RelevanceThreshold: mustEnvFloat("RELEVANCE_THRESHOLD", 0.08),
		VocabularyPath:     mustEnv("VOCABULARY_PATH", ""),

		GenerationMode: strings.ToLower(mustEnv("GENERATION_MODE", GenerationAuto)),

		OpenAIAPIKey:  strings.TrimSpace(mustEnv("OPENAI_API_KEY", "")),
		OpenAIBaseURL: mustEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   mustEnv("OPENAI_MODEL", "gpt-4o-mini"),

		OllamaURL:             mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:           mustEnv("OLLAMA_MODEL", "llama3.1:8b"),
		OllamaFallbackModels:  mustEnvList("OLLAMA_FALLBACK_MODELS", []string{"llama3.2:3b", "qwen2.5:1.5b"}),
		OllamaMinFreeMemoryMB: mustEnvInt("OLLAMA_MIN_FREE_MEMORY_MB", 1024),
		OllamaPullTimeout:     mustEnvDuration("OLLAMA_PULL_TIMEOUT", 300*time.Second),
		OllamaPollInterval:    mustEnvDuration("OLLAMA_POLL_INTERVAL", 2*time.Second),
		OllamaAnswerReserve:   mustEnvDuration("OLLAMA_ANSWER_RESERVE", 60*time.Second),
		ContextMaxCharsHosted: mustEnvInt("CONTEXT_MAX_CHARS_HOSTED", 8000),
		ContextMaxCharsLocal:  mustEnvInt("CONTEXT_MAX_CHARS_LOCAL", 3000),

		HTTPConnectTimeout: mustEnvDuration("HTTP_CONNECT_TIMEOUT", 5*time.Second),
		HTTPReadTimeout:    mustEnvDuration("HTTP_READ_TIMEOUT", 60*time.Second),
		HTTPWriteTimeout:   mustEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		LLMRequestTimeout:  mustEnvDuration("LLM_REQUEST_TIMEOUT", 120*time.Second),

		NATSURL:           mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:       mustEnv("NATS_SUBJECT", "assistant.questions"),
		NATSQueueGroup:    mustEnv("NATS_QUEUE_GROUP", "assistant-workers"),
		WorkerConcurrency: mustEnvInt("WORKER_CONCURRENCY", 4),
		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
		QuestionTimeout:   mustEnvDuration("QUESTION_TIMEOUT", 150*time.Second),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
	}
}

// ResolvedGenerationMode turns "auto" into a concrete mode: hosted when an
// API key is configured, otherwise the local model. Unknown values are
// treated as auto.
func (c Config) ResolvedGenerationMode() string {
	switch c.GenerationMode {
	case GenerationHosted, GenerationOllama, GenerationOff:
		return c.GenerationMode
	}
	if c.OpenAIAPIKey != "" {
		return GenerationHosted
	}
	return GenerationOllama
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// mustEnvDuration accepts Go duration strings ("90s") or plain seconds ("90").
func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
