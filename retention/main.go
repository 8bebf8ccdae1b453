package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/news-scraper/internal/config"
	"github.com/DeafMist/news-scraper/internal/elasticsearch"
	"github.com/DeafMist/news-scraper/internal/logger"
)

const (
	connectAttempts = 10
	maxRetryDelay   = 30 * time.Second
	runTimeout      = 2 * time.Minute
)

type pinger interface {
	Ping(ctx context.Context) error
}

type purger interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

func main() {
	log := logger.New("retention")
	if err := config.LoadDotEnv(); err != nil {
		log.Error("load .env", slog.Any("err", err))
		os.Exit(1)
	}
	cfg, err := config.LoadRetention()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, 0, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	if err := waitReady(ctx, log, esClient, connectAttempts, 2*time.Second); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("shutdown signal received during startup")
			return
		}
		log.Error("elasticsearch unreachable", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("connected to elasticsearch")

	log.Info("retention job running",
		slog.Duration("interval", cfg.Interval),
		slog.Duration("max_age", cfg.MaxAge),
	)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	run(ctx, log, esClient, cfg, ticker.C)
	log.Info("shutdown signal received")
}

// waitReady pings until the cluster answers, doubling the delay between
// attempts up to maxRetryDelay.
func waitReady(ctx context.Context, log *slog.Logger, p pinger, attempts int, delay time.Duration) error {
	var err error
	for i := range attempts {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		log.Warn("elasticsearch ping failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", attempts),
			slog.Duration("retry_in", delay),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, maxRetryDelay)
	}
	return err
}

// run purges once immediately and then on every tick until ctx is done.
func run(ctx context.Context, log *slog.Logger, p purger, cfg *config.Retention, tick <-chan time.Time) {
	runOnce(ctx, log, p, cfg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			runOnce(ctx, log, p, cfg)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, p purger, cfg *config.Retention) {
	subCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	deleted, err := p.DeleteOlderThan(subCtx, cfg.MaxAge, cfg.BatchSize)
	if err != nil {
		log.Warn("retention run failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	if deleted > 0 {
		log.Info("retention run completed", slog.Int64("deleted", deleted))
	} else {
		log.Debug("retention run completed, no old articles found")
	}
}
