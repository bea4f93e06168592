// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the ByteDent assistant.
type Config struct {
	// HTTP
	Host string // HTTP_HOST — default: "0.0.0.0"
	Port int    // HTTP_PORT — default: 8000

	// LLM
	LLMProvider      string // LLM_PROVIDER — default: "ollama"
	OllamaBaseURL    string // OLLAMA_BASE_URL — default: "http://localhost:11434"
	OllamaEmbedModel string // OLLAMA_EMBED_MODEL — default: "bge-small-en" (384 dims)
	OllamaChatModel  string // OLLAMA_CHAT_MODEL — default: "qwen2.5:3b-instruct"

	// Retrieval
	IndexPath        string  // INDEX_PATH — default: "data/knowledge.db"
	RetrievalTopK    int     // RETRIEVAL_TOP_K — default: 5
	MinSimilarity    float64 // MIN_SIMILARITY_THRESHOLD — default: 0.25
	HandoffThreshold float64 // HANDOFF_SIMILARITY_THRESHOLD — default: 0.30

	// Generation
	GenerationTimeout time.Duration // GENERATION_TIMEOUT_SECONDS — default: 30s
	GenerationWorkers int           // GENERATION_WORKERS — default: 1
	Temperature       float64       // TEMPERATURE — default: 0.1
	MaxNewTokens      int           // MAX_NEW_TOKENS — default: 512
	MaxContextChars   int           // MAX_CONTEXT_CHARS — default: 6000

	// Response cache
	CacheCapacity int           // CACHE_CAPACITY — default: 100
	CacheTTL      time.Duration // CACHE_TTL_SECONDS — default: 1h

	// Conversation memory
	MaxTurns         int // MAX_TURNS — default: 10
	MaxConversations int // MAX_CONVERSATIONS — default: 1000

	// Requests
	MaxMessageChars int // MAX_MESSAGE_CHARS — default: 2000

	// Metrics
	LowConfidenceThreshold float64 // LOW_CONFIDENCE_THRESHOLD — default: 0.5

	// Security
	APIKey string // API_KEY — default: "" (auth disabled when empty)

	// CORS
	CORSOrigins          []string // CORS_ORIGINS — comma-separated, default: ["*"]
	CORSAllowCredentials bool     // CORS_ALLOW_CREDENTIALS — default: true
	CORSAllowMethods     []string // CORS_ALLOW_METHODS — comma-separated, default: ["*"]
	CORSAllowHeaders     []string // CORS_ALLOW_HEADERS — comma-separated, default: ["*"]

	// Logging
	LogLevel string // LOG_LEVEL — default: "info"
}

const (
	envKeyHost             = "HTTP_HOST"
	envKeyPort             = "HTTP_PORT"
	envKeyLLMProvider      = "LLM_PROVIDER"
	envKeyOllamaBaseURL    = "OLLAMA_BASE_URL"
	envKeyOllamaEmbedModel = "OLLAMA_EMBED_MODEL"
	envKeyOllamaChatModel  = "OLLAMA_CHAT_MODEL"
	envKeyIndexPath        = "INDEX_PATH"
	envKeyRetrievalTopK    = "RETRIEVAL_TOP_K"
	envKeyMinSimilarity    = "MIN_SIMILARITY_THRESHOLD"
	envKeyHandoffThreshold = "HANDOFF_SIMILARITY_THRESHOLD"
	envKeyGenTimeout       = "GENERATION_TIMEOUT_SECONDS"
	envKeyGenWorkers       = "GENERATION_WORKERS"
	envKeyTemperature      = "TEMPERATURE"
	envKeyMaxNewTokens     = "MAX_NEW_TOKENS"
	envKeyMaxContextChars  = "MAX_CONTEXT_CHARS"
	envKeyCacheCapacity    = "CACHE_CAPACITY"
	envKeyCacheTTL         = "CACHE_TTL_SECONDS"
	envKeyMaxTurns         = "MAX_TURNS"
	envKeyMaxConversations = "MAX_CONVERSATIONS"
	envKeyMaxMessageChars  = "MAX_MESSAGE_CHARS"
	envKeyLowConfidence    = "LOW_CONFIDENCE_THRESHOLD"
	envKeyAPIKey           = "API_KEY"
	envKeyCORSOrigins      = "CORS_ORIGINS"
	envKeyCORSCredentials  = "CORS_ALLOW_CREDENTIALS"
	envKeyCORSMethods      = "CORS_ALLOW_METHODS"
	envKeyCORSHeaders      = "CORS_ALLOW_HEADERS"
	envKeyLogLevel         = "LOG_LEVEL"
)

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return Config{
		Host:                   envOr(envKeyHost, "0.0.0.0"),
		Port:                   envIntOr(envKeyPort, 8000),
		LLMProvider:            envOr(envKeyLLMProvider, "ollama"),
		OllamaBaseURL:          envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
		OllamaEmbedModel:       envOr(envKeyOllamaEmbedModel, "bge-small-en"),
		OllamaChatModel:        envOr(envKeyOllamaChatModel, "qwen2.5:3b-instruct"),
		IndexPath:              envOr(envKeyIndexPath, "data/knowledge.db"),
		RetrievalTopK:          envIntOr(envKeyRetrievalTopK, 5),
		MinSimilarity:          envFloatOr(envKeyMinSimilarity, 0.25),
		HandoffThreshold:       envFloatOr(envKeyHandoffThreshold, 0.30),
		GenerationTimeout:      time.Duration(envIntOr(envKeyGenTimeout, 30)) * time.Second,
		GenerationWorkers:      envIntOr(envKeyGenWorkers, 1),
		Temperature:            envFloatOr(envKeyTemperature, 0.1),
		MaxNewTokens:           envIntOr(envKeyMaxNewTokens, 512),
		MaxContextChars:        envIntOr(envKeyMaxContextChars, 6000),
		CacheCapacity:          envIntOr(envKeyCacheCapacity, 100),
		CacheTTL:               time.Duration(envIntOr(envKeyCacheTTL, 3600)) * time.Second,
		MaxTurns:               envIntOr(envKeyMaxTurns, 10),
		MaxConversations:       envIntOr(envKeyMaxConversations, 1000),
		MaxMessageChars:        envIntOr(envKeyMaxMessageChars, 2000),
		LowConfidenceThreshold: envFloatOr(envKeyLowConfidence, 0.5),
		APIKey:                 envOr(envKeyAPIKey, ""),
		CORSOrigins:            envListOr(envKeyCORSOrigins, []string{"*"}),
		CORSAllowCredentials:   envBoolOr(envKeyCORSCredentials, true),
		CORSAllowMethods:       envListOr(envKeyCORSMethods, []string{"*"}),
		CORSAllowHeaders:       envListOr(envKeyCORSHeaders, []string{"*"}),
		LogLevel:               envOr(envKeyLogLevel, "info"),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses the environment variable key as an int, or returns fallback
// if unset or unparseable (graceful degradation, never fails startup).
func envIntOr(key string, fallback int) int {
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

// envBoolOr parses the environment variable key as a bool, or returns fallback.
func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envListOr splits the environment variable key on commas, trimming
// whitespace around each entry, or returns fallback when unset.
func envListOr(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// envFloatOr parses the environment variable key as a float64, or returns fallback.
func envFloatOr(key string, fallback float64) float64 {
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
