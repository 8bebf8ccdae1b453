package models

import "time"

// Result is one search hit as returned by POST /api/search.
type Result struct {
	Keyword string `json:"keyword"`
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

// SearchRequest scopes a search to keywords and allowed domains.
type SearchRequest struct {
	Keywords []string `json:"keywords"`
	Domains  []string `json:"domains"`
}

// SearchResponse is the backend reply for a search.
type SearchResponse struct {
	Results []Result `json:"results"`
}

// Article represents the canonical structure stored in Elasticsearch.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// RawArticle is the payload consumed from the ingest topic.
type RawArticle struct {
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
}
