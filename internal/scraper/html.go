// Package scraper implements live search providers that scrape news engines.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/processing"
)

const maxHTMLBodyBytes = 2 << 20 // 2 MiB

// Selectors of a news result card on the engine result page.
const (
	cardSelector    = "div.SoaBEf"
	titleSelector   = "div.MBeuO"
	snippetSelector = ".GI74Re"
	dateSelector    = ".LfVVr"
	sourceSelector  = ".NUnG9d span"
)

// Engine builds the result-page URL for a keyword.
type Engine struct {
	Name string
	URL  func(keyword string) string
}

// GoogleNews queries the news tab of a Google-compatible endpoint at base.
func GoogleNews(base string) Engine {
	base = strings.TrimRight(base, "/")
	return Engine{
		Name: "google",
		URL: func(keyword string) string {
			q := url.Values{"q": {keyword}, "gl": {"us"}, "tbm": {"nws"}, "num": {"20"}}
			return base + "/search?" + q.Encode()
		},
	}
}

// BingNews queries the Bing news search endpoint at base.
func BingNews(base string) Engine {
	base = strings.TrimRight(base, "/")
	return Engine{
		Name: "bing",
		URL: func(keyword string) string {
			return base + "/news/search?" + url.Values{"q": {keyword}}.Encode()
		},
	}
}

// HTML scrapes engine result pages and keeps cards linking to allowed domains.
type HTML struct {
	client    *resty.Client
	engines   []Engine
	userAgent string
	log       *slog.Logger
}

// NewHTML builds an HTML provider. Engines are queried in order for each keyword.
func NewHTML(timeout time.Duration, userAgent string, log *slog.Logger, engines ...Engine) *HTML {
	if log == nil {
		log = logger.Discard()
	}
	return &HTML{
		client:    resty.New().SetTimeout(timeout),
		engines:   engines,
		userAgent: userAgent,
		log:       log,
	}
}

// Name identifies the provider in logs and metrics.
func (h *HTML) Name() string { return "html" }

// Search scrapes every engine for every keyword. Pages that fail to load are
// logged and skipped; an error is returned only when every page failed.
func (h *HTML) Search(ctx context.Context, req models.SearchRequest) ([]models.Result, error) {
	var (
		results  []models.Result
		failures []error
		attempts int
	)

	for _, keyword := range req.Keywords {
		for _, engine := range h.engines {
			if err := ctx.Err(); err != nil {
				return results, err
			}

			attempts++
			pageURL := engine.URL(keyword)
			found, err := h.scrape(ctx, pageURL, keyword, req.Domains)
			if err != nil {
				h.log.Warn("scrape failed",
					slog.String("engine", engine.Name),
					slog.String("keyword", keyword),
					slog.Any("err", err),
				)
				failures = append(failures, fmt.Errorf("%s %q: %w", engine.Name, keyword, err))
				continue
			}
			h.log.Debug("scraped page",
				slog.String("engine", engine.Name),
				slog.String("keyword", keyword),
				slog.Int("results", len(found)),
			)
			results = append(results, found...)
		}
	}

	if attempts > 0 && len(failures) == attempts {
		return nil, errors.Join(failures...)
	}
	return results, nil
}

func (h *HTML) scrape(ctx context.Context, pageURL, keyword string, domains []string) ([]models.Result, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", h.userAgent).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	return ParseResultPage(body, keyword, domains)
}

// ParseResultPage extracts result cards from an engine page, keeping those
// whose link contains one of domains. Missing fields get placeholder text.
func ParseResultPage(body []byte, keyword string, domains []string) ([]models.Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var results []models.Result
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		link, ok := card.Find("a").First().Attr("href")
		if !ok || !processing.AllowedLink(link, domains) {
			return
		}

		results = append(results, models.Result{
			Keyword: keyword,
			Link:    link,
			Title:   textOr(card, titleSelector, "No Title"),
			Snippet: textOr(card, snippetSelector, "No Snippet"),
			Date:    textOr(card, dateSelector, "No Date"),
			Source:  textOr(card, sourceSelector, "Unknown"),
		})
	})
	return results, nil
}

func textOr(card *goquery.Selection, selector, fallback string) string {
	node := card.Find(selector).First()
	if node.Length() == 0 {
		return fallback
	}
	return processing.CleanText(node.Text())
}
