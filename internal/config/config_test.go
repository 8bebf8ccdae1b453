package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("API_BIND_ADDR", "")
	t.Setenv("SEARCH_PROVIDERS", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "news", cfg.ElasticsearchIndex)
	require.Equal(t, "0.0.0.0:8000", cfg.BindAddr)
	require.Equal(t, []string{config.ProviderHTML}, cfg.Providers)
	require.Equal(t, 10*time.Second, cfg.ScrapeTimeout)
	require.True(t, cfg.EnableCORS)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("SEARCH_PROVIDERS", "HTML, rss ,index")
	t.Setenv("SEARCH_TIMEOUT", "5s")
	t.Setenv("SCRAPE_TIMEOUT", "not-a-duration")
	t.Setenv("INDEX_MAX_RESULTS", "7")
	t.Setenv("API_ENABLE_CORS", "false")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, []string{"html", "rss", "index"}, cfg.Providers)
	require.Equal(t, 5*time.Second, cfg.SearchTimeout)
	require.Equal(t, 10*time.Second, cfg.ScrapeTimeout)
	require.Equal(t, 7, cfg.IndexMaxResults)
	require.False(t, cfg.EnableCORS)
}

func TestLoadAPIRejectsUnknownProvider(t *testing.T) {
	t.Setenv("SEARCH_PROVIDERS", "html,altavista")

	_, err := config.LoadAPI()
	require.ErrorContains(t, err, "altavista")
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "news_raw", cfg.KafkaTopic)
	require.Equal(t, "news-worker", cfg.KafkaConsumer)
	require.Equal(t, 300, cfg.SnippetMaxLen)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadWorkerValidation(t *testing.T) {
	t.Setenv("WORKER_BATCH_SIZE", "0")

	_, err := config.LoadWorker()
	require.Error(t, err)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_INTERVAL", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NEWS_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("NEWS_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("NEWS_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	require.Equal(t, "from-file", os.Getenv("NEWS_TEST_DOTENV"))
}
