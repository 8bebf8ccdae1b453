package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/processing"
	"github.com/DeafMist/news-scraper/internal/timeline"
)

// indexMapping keeps link and source as keywords so domain wildcards work.
const indexMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "title":        {"type": "text"},
      "snippet":      {"type": "text"},
      "link":         {"type": "keyword"},
      "source":       {"type": "keyword"},
      "published_at": {"type": "date"},
      "ingested_at":  {"type": "date"}
    }
  }
}`

// Client wraps go-elasticsearch with helpers for the article index.
type Client struct {
	es         *elasticsearch.Client
	index      string
	maxResults int
	now        func() time.Time
	log        *slog.Logger
}

// New instantiates the Elasticsearch client. maxResults bounds hits per keyword.
func New(addr, index string, maxResults int, log *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	return &Client{es: es, index: index, maxResults: maxResults, now: time.Now, log: log}, nil
}

// Name identifies the index as a search provider.
func (c *Client) Name() string { return "index" }

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// Health reports cluster health for the API health endpoint.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("cluster health bad: %s", readError(res.Body))
	}
	return nil
}

// EnsureIndex creates the article index with its mapping when it is missing.
func (c *Client) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index: %s", res.Status())
	}

	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index failed: %s", readError(res.Body))
	}
	c.log.Info("created index", slog.String("index", c.index))
	return nil
}

// IndexArticle writes an article into Elasticsearch.
func (c *Client) IndexArticle(ctx context.Context, doc models.Article) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index doc failed: %s", readError(res.Body))
	}
	return nil
}

// Search runs one query per keyword against indexed articles whose link
// contains an allowed domain. Dates are rendered relative to now.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]models.Result, error) {
	if len(NonEmpty(req.Domains)) == 0 {
		return nil, nil
	}

	now := c.now()
	var results []models.Result
	for _, keyword := range req.Keywords {
		docs, err := c.searchKeyword(ctx, keyword, req.Domains)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if !processing.AllowedLink(doc.Link, req.Domains) {
				continue
			}
			results = append(results, ArticleResult(doc, keyword, now))
		}
	}
	return results, nil
}

func (c *Client) searchKeyword(ctx context.Context, keyword string, domains []string) ([]models.Article, error) {
	payload, err := json.Marshal(BuildSearchBody(keyword, domains, c.maxResults))
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", readError(res.Body))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]models.Article, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

// BuildSearchBody matches keyword in title or snippet and keeps documents whose
// link contains at least one domain, newest first.
func BuildSearchBody(keyword string, domains []string, size int) map[string]any {
	should := make([]map[string]any, 0, len(domains))
	for _, d := range NonEmpty(domains) {
		should = append(should, map[string]any{
			"wildcard": map[string]any{
				"link": map[string]any{"value": "*" + d + "*"},
			},
		})
	}

	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{{
					"multi_match": map[string]any{
						"query":    keyword,
						"fields":   []string{"title^2", "snippet"},
						"operator": "and",
					},
				}},
				"filter": []map[string]any{{
					"bool": map[string]any{
						"should":               should,
						"minimum_should_match": 1,
					},
				}},
			},
		},
		"sort": []map[string]any{
			{"published_at": map[string]any{"order": "desc"}},
		},
	}
}

// ArticleResult converts an indexed article into a search result for keyword.
func ArticleResult(doc models.Article, keyword string, now time.Time) models.Result {
	date := "No Date"
	if !doc.PublishedAt.IsZero() {
		date = timeline.Humanize(doc.PublishedAt, now)
	}
	source := doc.Source
	if source == "" {
		source = "Unknown"
	}
	return models.Result{
		Keyword: keyword,
		Link:    doc.Link,
		Title:   doc.Title,
		Snippet: doc.Snippet,
		Date:    date,
		Source:  source,
	}
}

// NonEmpty drops empty strings.
func NonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DeleteOlderThan removes articles published before maxAge ago using batched
// delete-by-query, looping until a batch deletes fewer than batchSize documents.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := c.now().Add(-maxAge).UTC().Format(time.RFC3339)
	body := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"published_at": map[string]any{"lte": cutoff},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal delete body: %w", err)
	}

	total := int64(0)
	for {
		deleted, err := c.deleteBatch(ctx, payload, batchSize)
		total += deleted
		if err != nil {
			return total, err
		}
		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

func (c *Client) deleteBatch(ctx context.Context, payload []byte, batchSize int) (int64, error) {
	res, err := c.es.DeleteByQuery(
		[]string{c.index},
		bytes.NewReader(payload),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithWaitForCompletion(true),
		c.es.DeleteByQuery.WithConflicts("proceed"),
		c.es.DeleteByQuery.WithScrollSize(batchSize),
		c.es.DeleteByQuery.WithMaxDocs(batchSize),
	)
	if err != nil {
		return 0, fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("delete by query failed: %s", readError(res.Body))
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode delete response: %w", err)
	}
	return parsed.Deleted, nil
}

func readError(body io.Reader) string {
	data, _ := io.ReadAll(body)
	return strings.TrimSpace(string(data))
}
