package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes HTTP-layer configuration of the search backend.
type API struct {
	Common
	BindAddr        string
	Providers       []string
	SearchTimeout   time.Duration
	ScrapeTimeout   time.Duration
	UserAgent       string
	GoogleBaseURL   string
	BingBaseURL     string
	RSSBaseURL      string
	IndexMaxResults int
	EnableCORS      bool
}

// Worker holds configuration for the Kafka -> Elasticsearch ingest worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
	SnippetMaxLen  int
	MetricsAddr    string
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// Provider names accepted in SEARCH_PROVIDERS.
const (
	ProviderHTML  = "html"
	ProviderRSS   = "rss"
	ProviderIndex = "index"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.54 Safari/537.36"

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are ignored; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "news"),
	}
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:          loadCommon(),
		BindAddr:        getEnv("API_BIND_ADDR", "0.0.0.0:8000"),
		Providers:       splitAndTrim(strings.ToLower(getEnv("SEARCH_PROVIDERS", "html"))),
		SearchTimeout:   getDuration("SEARCH_TIMEOUT", "60s"),
		ScrapeTimeout:   getDuration("SCRAPE_TIMEOUT", "10s"),
		UserAgent:       getEnv("SCRAPE_USER_AGENT", defaultUserAgent),
		GoogleBaseURL:   getEnv("SCRAPE_GOOGLE_URL", "https://www.google.com"),
		BingBaseURL:     getEnv("SCRAPE_BING_URL", "https://www.bing.com"),
		RSSBaseURL:      getEnv("SCRAPE_RSS_URL", "https://news.google.com"),
		IndexMaxResults: getInt("INDEX_MAX_RESULTS", 50),
		EnableCORS:      getBool("API_ENABLE_CORS", true),
	}

	if len(c.Providers) == 0 {
		return nil, fmt.Errorf("SEARCH_PROVIDERS must name at least one provider")
	}
	for _, p := range c.Providers {
		switch p {
		case ProviderHTML, ProviderRSS, ProviderIndex:
		default:
			return nil, fmt.Errorf("SEARCH_PROVIDERS: unknown provider %q", p)
		}
	}
	if c.SearchTimeout <= 0 {
		return nil, fmt.Errorf("SEARCH_TIMEOUT must be positive")
	}
	if c.ScrapeTimeout <= 0 {
		return nil, fmt.Errorf("SCRAPE_TIMEOUT must be positive")
	}
	if c.IndexMaxResults <= 0 {
		return nil, fmt.Errorf("INDEX_MAX_RESULTS must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "news_raw"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "news-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		SnippetMaxLen:  getInt("WORKER_SNIPPET_MAX_LEN", 300),
		MetricsAddr:    getEnv("WORKER_METRICS_ADDR", ":9100"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.SnippetMaxLen <= 0 {
		return nil, fmt.Errorf("WORKER_SNIPPET_MAX_LEN must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_INTERVAL", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDuration falls back when the variable is unset or malformed.
func getDuration(key, fallback string) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, fallback)); err == nil {
		return d
	}
	d, err := time.ParseDuration(fallback)
	if err != nil {
		panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, err))
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
