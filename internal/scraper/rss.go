package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/processing"
)

const rssSnippetMaxLen = 300

// RSS searches a Google News compatible RSS endpoint, one feed per keyword and
// domain. Feed links point at the aggregator, so domain scoping is done with a
// site: query instead of link matching.
type RSS struct {
	parser *gofeed.Parser
	base   string
	log    *slog.Logger
}

// NewRSS builds an RSS provider against base (e.g. https://news.google.com).
func NewRSS(base string, timeout time.Duration, userAgent string, log *slog.Logger) *RSS {
	if log == nil {
		log = logger.Discard()
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent
	return &RSS{parser: parser, base: strings.TrimRight(base, "/"), log: log}
}

func (r *RSS) Name() string { return "rss" }

// FeedURL returns the search feed for keyword restricted to domain.
func (r *RSS) FeedURL(keyword, domain string) string {
	q := url.Values{
		"q":    {keyword + " site:" + domain},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}
	return r.base + "/rss/search?" + q.Encode()
}

// Search fetches every keyword/domain feed. Failing feeds are logged and
// skipped; an error is returned only when all of them failed.
func (r *RSS) Search(ctx context.Context, req models.SearchRequest) ([]models.Result, error) {
	var (
		results  []models.Result
		failures []error
		attempts int
	)

	for _, keyword := range req.Keywords {
		for _, domain := range req.Domains {
			if domain == "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}

			attempts++
			feed, err := r.parser.ParseURLWithContext(r.FeedURL(keyword, domain), ctx)
			if err != nil {
				r.log.Warn("feed fetch failed",
					slog.String("keyword", keyword),
					slog.String("domain", domain),
					slog.Any("err", err),
				)
				failures = append(failures, fmt.Errorf("feed %q/%s: %w", keyword, domain, err))
				continue
			}
			results = append(results, feedResults(feed, keyword, domain)...)
		}
	}

	if attempts > 0 && len(failures) == attempts {
		return nil, errors.Join(failures...)
	}
	return results, nil
}

func feedResults(feed *gofeed.Feed, keyword, domain string) []models.Result {
	out := make([]models.Result, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		date := firstNonEmpty(item.Published, item.Updated)
		if date == "" {
			date = "No Date"
		}
		title := processing.CleanText(item.Title)
		if title == "" {
			title = "No Title"
		}
		snippet := processing.Truncate(htmlText(firstNonEmpty(item.Description, item.Content)), rssSnippetMaxLen)
		if snippet == "" {
			snippet = "No Snippet"
		}

		out = append(out, models.Result{
			Keyword: keyword,
			Link:    strings.TrimSpace(item.Link),
			Title:   title,
			Snippet: snippet,
			Date:    date,
			Source:  domain,
		})
	}
	return out
}

// htmlText flattens an HTML fragment to its text.
func htmlText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return processing.CleanText(fragment)
	}
	return processing.CleanText(doc.Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
