// Package search fans a search request out over the configured providers.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/metrics"
	"github.com/DeafMist/news-scraper/internal/models"
)

// ErrAllProvidersFailed is returned when no provider produced a result set.
var ErrAllProvidersFailed = errors.New("all search providers failed")

// Provider answers a search request from one source.
type Provider interface {
	Name() string
	Search(ctx context.Context, req models.SearchRequest) ([]models.Result, error)
}

// Service runs providers concurrently and concatenates their results in
// provider order. Results are not deduplicated.
type Service struct {
	providers []Provider
	timeout   time.Duration
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewService builds a Service. A zero timeout disables the per-search deadline.
func NewService(providers []Provider, timeout time.Duration, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{providers: providers, timeout: timeout, metrics: m, log: log}
}

// Search queries every provider. A failing provider is logged and skipped;
// the search fails only when all providers failed.
func (s *Service) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if len(s.providers) == 0 {
		return nil, ErrAllProvidersFailed
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	batches := make([][]models.Result, len(s.providers))
	errs := make([]error, len(s.providers))

	// Providers never return an error to the group, so one failure does not
	// cancel the others.
	var g errgroup.Group
	for i, p := range s.providers {
		g.Go(func() error {
			start := time.Now()
			found, err := p.Search(ctx, req)
			s.metrics.ObserveProvider(p.Name(), time.Since(start), err)
			if err != nil {
				s.log.Warn("provider failed", slog.String("provider", p.Name()), slog.Any("err", err))
				errs[i] = fmt.Errorf("%s: %w", p.Name(), err)
				return nil
			}
			batches[i] = found
			return nil
		})
	}
	_ = g.Wait()

	results := make([]models.Result, 0)
	failed := 0
	for i := range s.providers {
		if errs[i] != nil {
			failed++
			continue
		}
		results = append(results, batches[i]...)
	}
	if failed == len(s.providers) {
		return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
	}

	s.metrics.ObserveResults(len(results))
	s.log.Info("search completed",
		slog.Int("keywords", len(req.Keywords)),
		slog.Int("domains", len(req.Domains)),
		slog.Int("results", len(results)),
		slog.Int("failed_providers", failed),
	)
	return &models.SearchResponse{Results: results}, nil
}
