package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/news-scraper/internal/config"
	"github.com/DeafMist/news-scraper/internal/dedupe"
	"github.com/DeafMist/news-scraper/internal/elasticsearch"
	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/metrics"
	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/processing"
	"github.com/DeafMist/news-scraper/internal/timeline"
)

const maxTitleRunes = 120

var errDuplicate = errors.New("duplicate article")

type articleIndexer interface {
	IndexArticle(ctx context.Context, doc models.Article) error
}

func main() {
	log := logger.New("worker")
	if err := config.LoadDotEnv(); err != nil {
		log.Error("load .env", slog.Any("err", err))
		os.Exit(1)
	}
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, 0, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := esClient.EnsureIndex(initCtx); err != nil {
		log.Warn("ensure index failed, continuing", slog.Any("err", err))
	}
	cancel()

	m := metrics.New(prometheus.DefaultRegisterer)
	go serveMetrics(log, cfg.MetricsAddr)

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqWriter := &kafka.Writer{
		Addr:        kafka.TCP(cfg.KafkaBrokers...),
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	}
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", dlqWriter.Topic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		err = processMessage(ctx, log, esClient, cache, cfg, msg)
		switch {
		case err == nil:
			m.IncrementIngest("indexed")
		case errors.Is(err, errDuplicate):
			m.IncrementIngest("duplicate")
		default:
			m.IncrementIngest("failed")
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				// Leave uncommitted so the message is reprocessed on restart.
				if ctx.Err() != nil {
					return
				}
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// sendToDLQ retries the dead-letter write with exponential backoff and
// reports whether it succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) bool {
	dlqMsg := dlqMessage(msg, cause, time.Now())

	for attempt := range 5 {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
	}

	log.Error("DLQ write exhausted retries",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}

func dlqMessage(msg kafka.Message, cause error, at time.Time) kafka.Message {
	headers := append([]kafka.Header(nil), msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "dlq_id", Value: []byte(uuid.NewString())},
		kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(at.UTC().Format(time.RFC3339))},
	)
	return kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}

func serveMetrics(log *slog.Logger, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn("metrics server stopped", slog.Any("err", err))
	}
}

// processMessage decodes, cleans and indexes one article. Already indexed
// links return errDuplicate.
func processMessage(ctx context.Context, log *slog.Logger, indexer articleIndexer, cache *dedupe.Cache, cfg *config.Worker, msg kafka.Message) error {
	var payload models.RawArticle
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	doc, err := buildArticle(payload, cfg.SnippetMaxLen, time.Now().UTC())
	if err != nil {
		return err
	}

	if cache.Seen(doc.ID) {
		log.Debug("duplicate article", slog.String("id", doc.ID), slog.String("link", doc.Link))
		return errDuplicate
	}

	if err := indexer.IndexArticle(ctx, doc); err != nil {
		return err
	}

	cache.Mark(doc.ID)
	log.Info("indexed article", slog.String("id", doc.ID), slog.String("title", doc.Title))
	return nil
}

func buildArticle(raw models.RawArticle, snippetMaxLen int, now time.Time) (models.Article, error) {
	link := strings.TrimSpace(raw.Link)
	if link == "" {
		return models.Article{}, errors.New("article has no link")
	}

	title := processing.CleanText(raw.Title)
	snippet := processing.Truncate(processing.CleanText(raw.Snippet), snippetMaxLen)
	if title == "" && snippet == "" {
		return models.Article{}, errors.New("article has neither title nor snippet")
	}
	if title == "" {
		title = processing.Truncate(snippet, maxTitleRunes)
	}

	published, ok := timeline.ParseAbsolute(raw.Published, time.UTC)
	if !ok {
		published = now
	}

	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = processing.Host(link)
	}
	if source == "" {
		source = "Unknown"
	}

	return models.Article{
		ID:          processing.BuildDocumentID(link),
		Title:       title,
		Snippet:     snippet,
		Link:        link,
		Source:      source,
		PublishedAt: published.UTC(),
		IngestedAt:  now,
	}, nil
}
