package aggregator

import (
	"strings"
	"time"

	"github.com/DeafMist/news-scraper/internal/models"
)

// State is the view over the current result batch. It is owned by the caller
// and handed to Aggregator transitions; the zero value is not ready, use NewState.
type State struct {
	Batch         []models.Result
	Sorted        []models.Result
	ActiveKeyword string
	Order         SortOrder
}

// NewState returns an empty view sorted newest first.
func NewState() *State {
	return &State{ActiveKeyword: All, Order: Descending}
}

// Aggregator applies the view transitions. Each sort samples the clock once.
type Aggregator struct {
	now func() time.Time
}

// New builds an Aggregator; a nil clock defaults to time.Now.
func New(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

// LoadBatch replaces the batch, sorts it with the current order and resets
// the keyword tab to All.
func (a *Aggregator) LoadBatch(st *State, batch []models.Result) {
	st.Batch = append([]models.Result(nil), batch...)
	st.Sorted = nil
	if len(st.Batch) > 0 {
		st.Sorted = Sort(st.Batch, st.Order, a.now())
	}
	st.ActiveKeyword = All
}

// ToggleSort flips the order and re-sorts the batch.
func (a *Aggregator) ToggleSort(st *State) {
	st.Order = st.Order.Toggle()
	if len(st.Batch) > 0 {
		st.Sorted = Sort(st.Batch, st.Order, a.now())
	}
}

// SelectKeyword switches the active tab. Only All and keywords of the current
// batch are accepted; the stored value uses the tab's first-seen casing.
func (a *Aggregator) SelectKeyword(st *State, keyword string) bool {
	if keyword == All {
		st.ActiveKeyword = All
		return true
	}
	for _, kw := range DistinctKeywords(st.Batch) {
		if strings.EqualFold(kw, keyword) {
			st.ActiveKeyword = kw
			return true
		}
	}
	return false
}

// View returns the sorted batch filtered by the active keyword.
func (a *Aggregator) View(st *State) []models.Result {
	return Filter(st.Sorted, st.ActiveKeyword)
}

// Keywords returns the tabs for the current batch, excluding All.
func (a *Aggregator) Keywords(st *State) []string {
	return DistinctKeywords(st.Batch)
}
