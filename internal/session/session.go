// Package session ties the domain allow-list and the result view to a search backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DeafMist/news-scraper/internal/aggregator"
	"github.com/DeafMist/news-scraper/internal/domains"
	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/models"
)

// ErrNoKeywords is returned when a search is started without any keyword.
var ErrNoKeywords = errors.New("no keywords given")

// Searcher performs the network search for a request.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// Session owns the client state: the domain allow-list and the current view.
// It is not safe for concurrent use; one goroutine drives it.
type Session struct {
	domains  *domains.Registry
	view     *aggregator.State
	agg      *aggregator.Aggregator
	searcher Searcher
	log      *slog.Logger
}

// Options configures a Session.
type Options struct {
	Domains  []string
	Searcher Searcher
	Clock    func() time.Time
	Logger   *slog.Logger
}

// New creates a session seeded with opts.Domains.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Session{
		domains:  domains.New(opts.Domains...),
		view:     aggregator.NewState(),
		agg:      aggregator.New(opts.Clock),
		searcher: opts.Searcher,
		log:      log,
	}
}

// ParseKeywords splits a comma-separated list, trimming blanks.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Search queries the backend for the comma-separated keywords scoped to the
// current domains. On failure the previous results stay in place.
func (s *Session) Search(ctx context.Context, rawKeywords string) error {
	keywords := ParseKeywords(rawKeywords)
	if len(keywords) == 0 {
		return ErrNoKeywords
	}
	if s.searcher == nil {
		return errors.New("session has no searcher")
	}

	req := models.SearchRequest{Keywords: keywords, Domains: s.domains.List()}
	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		s.log.Warn("search failed", slog.Any("keywords", keywords), slog.Any("err", err))
		return fmt.Errorf("search: %w", err)
	}

	var results []models.Result
	if resp != nil {
		results = resp.Results
	}
	s.agg.LoadBatch(s.view, results)
	s.log.Debug("search completed",
		slog.Int("results", len(results)),
		slog.Int("domains", len(req.Domains)),
	)
	return nil
}

// AddDomain allows domain; it reports false for empty values and duplicates.
func (s *Session) AddDomain(domain string) bool { return s.domains.Add(domain) }

// RemoveDomain drops domain and reports whether it was present.
func (s *Session) RemoveDomain(domain string) bool { return s.domains.Remove(domain) }

// Domains returns the allowed domains in insertion order.
func (s *Session) Domains() []string { return s.domains.List() }

// ToggleSort flips the date order of the current view.
func (s *Session) ToggleSort() { s.agg.ToggleSort(s.view) }

// SelectKeyword switches the keyword tab; unknown keywords are rejected.
func (s *Session) SelectKeyword(keyword string) bool { return s.agg.SelectKeyword(s.view, keyword) }

// View returns the sorted and filtered results.
func (s *Session) View() []models.Result { return s.agg.View(s.view) }

// Keywords returns the keyword tabs of the current batch, without All.
func (s *Session) Keywords() []string { return s.agg.Keywords(s.view) }

// ActiveKeyword returns the selected tab, All by default.
func (s *Session) ActiveKeyword() string { return s.view.ActiveKeyword }

// Order returns the current date order.
func (s *Session) Order() aggregator.SortOrder { return s.view.Order }

// HasResults reports whether the last successful search returned anything.
func (s *Session) HasResults() bool { return len(s.view.Batch) > 0 }
