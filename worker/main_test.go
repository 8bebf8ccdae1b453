package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/config"
	"github.com/DeafMist/news-scraper/internal/dedupe"
	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/processing"
)

type stubIndexer struct {
	docs []models.Article
	err  error
}

func (s *stubIndexer) IndexArticle(_ context.Context, doc models.Article) error {
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

type stubWriter struct {
	failures int
	calls    int
	msgs     []kafka.Message
}

func (s *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("broker unavailable")
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func workerConfig() *config.Worker {
	return &config.Worker{
		Common: config.Common{
			ElasticsearchAddr:  "http://test",
			ElasticsearchIndex: "news",
		},
		SnippetMaxLen: 300,
	}
}

func encode(t *testing.T, raw models.RawArticle) kafka.Message {
	t.Helper()
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestProcessMessageIndexesArticle(t *testing.T) {
	cache := dedupe.NewCache(100, time.Hour)
	idx := &stubIndexer{}

	msg := encode(t, models.RawArticle{
		Title:     "SBI &amp; HDFC   results",
		Snippet:   "Quarterly <b>numbers</b> beat estimates",
		Link:      "https://www.livemint.com/markets/sbi-results",
		Published: "2024-01-02T15:04:05Z",
	})

	require.NoError(t, processMessage(context.Background(), logger.Discard(), idx, cache, workerConfig(), msg))
	require.Len(t, idx.docs, 1)

	doc := idx.docs[0]
	require.Equal(t, "SBI & HDFC results", doc.Title)
	require.Equal(t, "livemint.com", doc.Source)
	require.Equal(t, processing.BuildDocumentID("https://www.livemint.com/markets/sbi-results"), doc.ID)
	require.Equal(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), doc.PublishedAt)
	require.False(t, doc.IngestedAt.IsZero())

	err := processMessage(context.Background(), logger.Discard(), idx, cache, workerConfig(), msg)
	require.ErrorIs(t, err, errDuplicate)
	require.Len(t, idx.docs, 1)
}

func TestProcessMessageRejectsBadPayloads(t *testing.T) {
	cases := map[string]kafka.Message{
		"not json":    {Value: []byte("{")},
		"no link":     encode(t, models.RawArticle{Title: "x"}),
		"no contents": encode(t, models.RawArticle{Link: "https://example.com/a"}),
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			idx := &stubIndexer{}
			err := processMessage(context.Background(), logger.Discard(), idx, dedupe.NewCache(10, time.Hour), workerConfig(), msg)
			require.Error(t, err)
			require.NotErrorIs(t, err, errDuplicate)
			require.Empty(t, idx.docs)
		})
	}
}

func TestProcessMessageDoesNotMarkFailedIndex(t *testing.T) {
	cache := dedupe.NewCache(10, time.Hour)
	idx := &stubIndexer{err: errors.New("index unavailable")}
	msg := encode(t, models.RawArticle{Title: "t", Link: "https://example.com/a"})

	require.Error(t, processMessage(context.Background(), logger.Discard(), idx, cache, workerConfig(), msg))
	require.Zero(t, cache.Len())

	idx.err = nil
	require.NoError(t, processMessage(context.Background(), logger.Discard(), idx, cache, workerConfig(), msg))
	require.Len(t, idx.docs, 1)
}

func TestBuildArticle(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("title from snippet", func(t *testing.T) {
		snippet := strings.Repeat("word ", 40)
		doc, err := buildArticle(models.RawArticle{Snippet: snippet, Link: "https://example.com/a"}, 300, now)
		require.NoError(t, err)
		require.Equal(t, maxTitleRunes, len([]rune(doc.Title)))
		require.True(t, strings.HasSuffix(doc.Title, "..."))
	})

	t.Run("snippet truncated", func(t *testing.T) {
		doc, err := buildArticle(models.RawArticle{Title: "t", Snippet: strings.Repeat("a", 50), Link: "https://example.com/a"}, 10, now)
		require.NoError(t, err)
		require.Equal(t, "aaaaaaa...", doc.Snippet)
	})

	t.Run("unparseable date falls back to now", func(t *testing.T) {
		doc, err := buildArticle(models.RawArticle{Title: "t", Link: "https://example.com/a", Published: "2 hours ago"}, 300, now)
		require.NoError(t, err)
		require.Equal(t, now, doc.PublishedAt)
		require.Equal(t, now, doc.IngestedAt)
	})

	t.Run("explicit source kept", func(t *testing.T) {
		doc, err := buildArticle(models.RawArticle{Title: "t", Link: "https://example.com/a", Source: "Mint"}, 300, now)
		require.NoError(t, err)
		require.Equal(t, "Mint", doc.Source)
	})

	t.Run("relative link has unknown source", func(t *testing.T) {
		doc, err := buildArticle(models.RawArticle{Title: "t", Link: "/local/path"}, 300, now)
		require.NoError(t, err)
		require.Equal(t, "Unknown", doc.Source)
	})
}

func TestSendToDLQRetriesThenSucceeds(t *testing.T) {
	w := &stubWriter{failures: 1}
	msg := kafka.Message{Key: []byte("k"), Value: []byte("v"), Partition: 2, Offset: 7}

	ok := sendToDLQ(context.Background(), logger.Discard(), w, msg, errors.New("boom"))
	require.True(t, ok)
	require.Equal(t, 2, w.calls)
	require.Len(t, w.msgs, 1)
	require.Equal(t, []byte("v"), w.msgs[0].Value)
}

func TestSendToDLQStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &stubWriter{failures: 100}

	require.False(t, sendToDLQ(ctx, logger.Discard(), w, kafka.Message{}, errors.New("boom")))
	require.Equal(t, 1, w.calls)
}

func TestDLQMessageHeaders(t *testing.T) {
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	msg := kafka.Message{
		Key:       []byte("k"),
		Value:     []byte("v"),
		Partition: 3,
		Offset:    42,
		Headers:   []kafka.Header{{Key: "trace", Value: []byte("abc")}},
	}

	out := dlqMessage(msg, errors.New("decode payload: bad"), at)

	headers := map[string]string{}
	for _, h := range out.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "abc", headers["trace"])
	require.Equal(t, "3", headers["original_partition"])
	require.Equal(t, "42", headers["original_offset"])
	require.Equal(t, "decode payload: bad", headers["error"])
	require.Equal(t, "2024-03-15T12:00:00Z", headers["timestamp"])
	require.NotEmpty(t, headers["dlq_id"])
	require.Len(t, msg.Headers, 1)
}
