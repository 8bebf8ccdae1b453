package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DeafMist/news-scraper/internal/config"
	"github.com/DeafMist/news-scraper/internal/elasticsearch"
	"github.com/DeafMist/news-scraper/internal/logger"
	"github.com/DeafMist/news-scraper/internal/metrics"
	"github.com/DeafMist/news-scraper/internal/scraper"
	"github.com/DeafMist/news-scraper/internal/search"
)

func main() {
	log := logger.New("api")
	if err := config.LoadDotEnv(); err != nil {
		log.Error("load .env", slog.Any("err", err))
		os.Exit(1)
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	srv := &server{log: log, gatherer: prometheus.DefaultGatherer, allowCORS: cfg.EnableCORS}

	providers, esClient, err := buildProviders(cfg, log)
	if err != nil {
		log.Error("init providers", slog.Any("err", err))
		os.Exit(1)
	}
	if esClient != nil {
		srv.health = esClient
	}
	srv.search = search.NewService(providers, cfg.SearchTimeout, m, log)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.SearchTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.Any("providers", cfg.Providers),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// buildProviders creates the providers named in cfg, in the configured order.
// The Elasticsearch client is returned separately for health checks.
func buildProviders(cfg *config.API, log *slog.Logger) ([]search.Provider, *elasticsearch.Client, error) {
	var (
		providers []search.Provider
		esClient  *elasticsearch.Client
	)

	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderHTML:
			providers = append(providers, scraper.NewHTML(
				cfg.ScrapeTimeout,
				cfg.UserAgent,
				log,
				scraper.GoogleNews(cfg.GoogleBaseURL),
				scraper.BingNews(cfg.BingBaseURL),
			))
		case config.ProviderRSS:
			providers = append(providers, scraper.NewRSS(cfg.RSSBaseURL, cfg.ScrapeTimeout, cfg.UserAgent, log))
		case config.ProviderIndex:
			if esClient == nil {
				c, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, cfg.IndexMaxResults, log)
				if err != nil {
					return nil, nil, err
				}
				esClient = c
				providers = append(providers, c)
			}
		}
	}
	return providers, esClient, nil
}
