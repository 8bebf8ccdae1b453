// Package aggregator orders and partitions a batch of search results.
package aggregator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/timeline"
)

// All is the keyword tab that shows every result.
const All = "All"

// SortOrder is the direction results are ordered by date.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Toggle returns the opposite direction.
func (o SortOrder) Toggle() SortOrder {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// ParseSortOrder accepts "asc" or "desc" in any case; empty means Descending.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(Descending):
		return Descending, nil
	case string(Ascending):
		return Ascending, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", raw)
	}
}

// Sort returns a copy of records ordered by normalized date. Records with equal
// timestamps keep their input order in either direction.
func Sort(records []models.Result, order SortOrder, now time.Time) []models.Result {
	type keyed struct {
		rec models.Result
		ts  int64
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		items[i] = keyed{rec: rec, ts: timeline.Normalize(rec.Date, now)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if order == Ascending {
			return items[i].ts < items[j].ts
		}
		return items[i].ts > items[j].ts
	})

	out := make([]models.Result, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

// DistinctKeywords lists each keyword once, in order of first appearance.
// Keywords differing only by case collapse into the first-seen spelling.
func DistinctKeywords(records []models.Result) []string {
	seen := make(map[string]struct{}, len(records))
	var keywords []string
	for _, rec := range records {
		key := strings.ToLower(rec.Keyword)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, rec.Keyword)
	}
	return keywords
}

// Filter returns the records under the active keyword tab. All returns every
// record; any other keyword matches case-insensitively.
func Filter(records []models.Result, active string) []models.Result {
	out := make([]models.Result, 0, len(records))
	if active == All {
		return append(out, records...)
	}
	for _, rec := range records {
		if strings.EqualFold(rec.Keyword, active) {
			out = append(out, rec)
		}
	}
	return out
}
