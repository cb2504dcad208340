// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds process identity and listener ports.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	GRPCPort    string
	MetricsPort string
}

// MongoConfig holds the memory datastore configuration.
type MongoConfig struct {
	URI         string
	Database    string
	Collection  string
	VectorIndex string
}

// GoogleConfig holds the Gemini API configuration shared by the embedding
// and classification clients.
type GoogleConfig struct {
	APIKey     string
	EmbedModel string
	GenModel   string
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider    string // "gemini" or "openai"
	OpenAIModel string
}

// DetectorConfig selects the question detection strategy.
type DetectorConfig struct {
	Mode      string // "keyword" or "llm"
	CacheSize int
}

// SearchConfig holds memory search tuning.
type SearchConfig struct {
	DefaultLimit  int
	NumCandidates int
	MinScore      float64
}

// STTConfig holds speech-to-text streaming configuration.
type STTConfig struct {
	Provider       string // "google" or "mock"
	LanguageCode   string
	SampleRateHz   int
	InterimResults bool
}

// KafkaConfig holds the event publisher configuration.
type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	TopicFragment   string
	TopicAnnotation string
	Principal       string
}

// ObservabilityConfig holds logging and metrics configuration.
type ObservabilityConfig struct {
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Mongo         MongoConfig
	Google        GoogleConfig
	Embedding     EmbeddingConfig
	Detector      DetectorConfig
	Search        SearchConfig
	STT           STTConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Errors for missing required configuration. Both are fatal at startup.
var (
	ErrMissingMongoURI     = errors.New("MONGODB_URI is required")
	ErrMissingGoogleAPIKey = errors.New("GOOGLE_API_KEY is required")
)

// Load reads configuration from the environment, applying defaults.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Principal:   envOrDefault("SERVICE_PRINCIPAL", "svc-interview-memory"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Mongo: MongoConfig{
			URI:         os.Getenv("MONGODB_URI"),
			Database:    envOrDefault("MONGODB_DATABASE", "interview_memory"),
			Collection:  envOrDefault("MONGODB_COLLECTION", "memories"),
			VectorIndex: envOrDefault("MONGODB_VECTOR_INDEX", "vector_index"),
		},
		Google: GoogleConfig{
			APIKey:     os.Getenv("GOOGLE_API_KEY"),
			EmbedModel: envOrDefault("GOOGLE_EMBED_MODEL", "text-embedding-004"),
			GenModel:   envOrDefault("GOOGLE_GEN_MODEL", "gemini-1.5-flash"),
		},
		Embedding: EmbeddingConfig{
			Provider:    envOrDefault("EMBEDDING_PROVIDER", "gemini"),
			OpenAIModel: envOrDefault("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		},
		Detector: DetectorConfig{
			Mode:      envOrDefault("DETECTOR_MODE", "keyword"),
			CacheSize: envIntOrDefault("DETECTOR_CACHE_SIZE", 100),
		},
		Search: SearchConfig{
			DefaultLimit:  envIntOrDefault("SEARCH_DEFAULT_LIMIT", 5),
			NumCandidates: envIntOrDefault("SEARCH_NUM_CANDIDATES", 50),
			MinScore:      envFloatOrDefault("SEARCH_MIN_SCORE", 0.5),
		},
		STT: STTConfig{
			Provider:       envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   envIntOrDefault("STT_SAMPLE_RATE_HZ", 8000),
			InterimResults: envBoolOrDefault("STT_INTERIM_RESULTS", true),
		},
		Kafka: KafkaConfig{
			Enabled:         envBoolOrDefault("KAFKA_ENABLED", false),
			Brokers:         envListOrDefault("KAFKA_BROKERS", nil),
			TopicFragment:   envOrDefault("KAFKA_TOPIC_FRAGMENT", "interview.transcript.fragment"),
			TopicAnnotation: envOrDefault("KAFKA_TOPIC_ANNOTATION", "interview.transcript.annotation"),
			Principal:       envOrDefault("SERVICE_PRINCIPAL", "svc-interview-memory"),
		},
		Observability: ObservabilityConfig{
			LogLevel:        envOrDefault("LOG_LEVEL", "info"),
			ShutdownTimeout: envDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate checks required credentials. Absence of either is a fatal
// startup error for processes that reach the datastore or the Gemini API.
func (c *Configuration) Validate() error {
	if c.Mongo.URI == "" {
		return ErrMissingMongoURI
	}
	if c.Google.APIKey == "" {
		return ErrMissingGoogleAPIKey
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloatOrDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envListOrDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return def
}
