package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/models"
	"github.com/DeafMist/news-scraper/internal/scraper"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"sbi site:livemint.com" - Google News</title>
  <item>
    <title>SBI raises deposit rates - Mint</title>
    <link>https://news.google.com/rss/articles/abc</link>
    <pubDate>Fri, 15 Mar 2024 09:30:00 GMT</pubDate>
    <description>&lt;a href="https://www.livemint.com/x"&gt;SBI raises deposit rates&lt;/a&gt;&amp;nbsp;&lt;font&gt;Mint&lt;/font&gt;</description>
  </item>
  <item>
    <title></title>
    <link>https://news.google.com/rss/articles/def</link>
  </item>
</channel>
</rss>`

func TestRSSSearch(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rss/search", r.URL.Path)
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	rss := scraper.NewRSS(srv.URL, time.Second, "ua", nil)
	require.Equal(t, "rss", rss.Name())

	got, err := rss.Search(context.Background(), models.SearchRequest{
		Keywords: []string{"sbi"},
		Domains:  []string{"livemint.com", "", "moneycontrol.com"},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"sbi site:livemint.com", "sbi site:moneycontrol.com"}, queries)
	require.Len(t, got, 4)

	first := got[0]
	require.Equal(t, "sbi", first.Keyword)
	require.Equal(t, "https://news.google.com/rss/articles/abc", first.Link)
	require.Equal(t, "SBI raises deposit rates - Mint", first.Title)
	require.Equal(t, "Fri, 15 Mar 2024 09:30:00 GMT", first.Date)
	require.Equal(t, "livemint.com", first.Source)
	require.Contains(t, first.Snippet, "SBI raises deposit rates")
	require.NotContains(t, first.Snippet, "<a")

	second := got[1]
	require.Equal(t, "No Title", second.Title)
	require.Equal(t, "No Date", second.Date)
	require.Equal(t, "No Snippet", second.Snippet)

	require.Equal(t, "moneycontrol.com", got[2].Source)
}

func TestRSSSearchAllFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rss := scraper.NewRSS(srv.URL, time.Second, "ua", nil)
	_, err := rss.Search(context.Background(), models.SearchRequest{
		Keywords: []string{"sbi"},
		Domains:  []string{"livemint.com"},
	})
	require.Error(t, err)
}

func TestRSSFeedURL(t *testing.T) {
	rss := scraper.NewRSS("https://news.google.com/", time.Second, "ua", nil)
	require.Equal(t,
		"https://news.google.com/rss/search?ceid=US%3Aen&gl=US&hl=en-US&q=sbi+site%3Alivemint.com",
		rss.FeedURL("sbi", "livemint.com"),
	)
}
