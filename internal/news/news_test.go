package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Markets</title>
<item>
  <title>Infosys (INFY) raises guidance</title>
  <link>https://example.com/infy</link>
  <description>&lt;p&gt;Strong &amp;amp; steady&lt;/p&gt;</description>
  <pubDate>Mon, 02 Oct 2023 10:00:00 +0000</pubDate>
</item>
<item>
  <title>Tata Consultancy wins large deal</title>
  <link>https://example.com/tcs-deal</link>
  <description>NSE: TCS shares rose</description>
  <pubDate>Tue, 03 Oct 2023 10:00:00 +0000</pubDate>
</item>
<item>
  <title>TCS board meets</title>
  <link>https://example.com/tcs-board</link>
  <description>Quarterly review</description>
  <pubDate>Sun, 01 Oct 2023 10:00:00 +0000</pubDate>
</item>
</channel></rss>`

func TestFetchForCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := NewFetcher([]string{srv.URL, srv.URL + "/mirror"}, time.Second, 0, nil)
	got := f.FetchForCompany(context.Background(), "tcs")

	require.Len(t, got, 2, "duplicate URLs across feeds are collapsed")
	assert.Equal(t, "Tata Consultancy wins large deal", got[0].Title, "newest first")
	assert.Equal(t, []string{"TCS"}, got[0].RelatedSymbols)
	assert.Equal(t, "TCS board meets", got[1].Title)

	f.maxArticles = 1
	assert.Len(t, f.FetchForCompany(context.Background(), "TCS"), 1)
}

func TestFetchAllStripsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	articles := NewFetcher([]string{srv.URL}, time.Second, 0, nil).FetchAll(context.Background())
	require.Len(t, articles, 3)
	assert.Equal(t, "Strong & steady", articles[0].Description)
	assert.Equal(t, []string{"INFY"}, articles[0].RelatedSymbols)
}

func TestFilterByName(t *testing.T) {
	articles := []Article{
		{Title: "Infosys results", URL: "a"},
		{Title: "Something else", URL: "b"},
	}
	got := Filter(articles, "INFY", "Infosys")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Infosys results"}, Headlines(got))
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "MoneyControl", sourceName("https://www.moneycontrol.com/rss/latestnews.xml"))
	assert.Equal(t, "Unknown", sourceName("http://127.0.0.1:1234"))
}
