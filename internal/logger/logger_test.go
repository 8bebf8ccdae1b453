package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/logger"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, logger.ParseLevel(" DEBUG "))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestNewWithWriterTagsService(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "api")

	log.Info("hidden")
	log.Warn("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "service=api")
	require.Contains(t, buf.String(), "shown")
}
