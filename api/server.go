package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/search"
)

const maxRequestBytes = 1 << 20

type searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

type healthChecker interface {
	Health(ctx context.Context) error
}

type server struct {
	log       *slog.Logger
	search    searcher
	health    healthChecker // nil when the index provider is disabled
	gatherer  prometheus.Gatherer
	allowCORS bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.allowCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Post("/api/search", s.handleSearch)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	req.Keywords = trimAll(req.Keywords)
	if len(req.Keywords) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "keywords must not be empty"})
		return
	}
	if req.Domains == nil {
		req.Domains = []string{}
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, search.ErrAllProvidersFailed) {
			status = http.StatusBadGateway
		}
		s.log.Error("search failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("err", err),
		)
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
