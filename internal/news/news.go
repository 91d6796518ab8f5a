// Package news fetches company headlines from RSS feeds.
package news

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// DefaultSources are Indian financial news feeds used when none are configured.
var DefaultSources = []string{
	"https://www.moneycontrol.com/rss/latestnews.xml",
	"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	"https://economictimes.indiatimes.com/markets/stocks/rssfeeds/2146842.cms",
	"https://www.livemint.com/rss/markets",
	"https://www.business-standard.com/rss/markets-106.rss",
}

// Fetcher reads RSS feeds.
type Fetcher struct {
	parser      *gofeed.Parser
	sources     []string
	maxArticles int
	log         *zap.Logger
}

// NewFetcher creates a fetcher over sources. Zero maxArticles keeps everything.
func NewFetcher(sources []string, timeout time.Duration, maxArticles int, log *zap.Logger) *Fetcher {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "Mozilla/5.0"

	return &Fetcher{
		parser:      parser,
		sources:     sources,
		maxArticles: maxArticles,
		log:         log,
	}
}

// Article is one headline.
type Article struct {
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	PublishedAt    time.Time `json:"published_at"`
	RelatedSymbols []string  `json:"related_symbols,omitempty"`
}

// FetchAll fetches every source. A failing feed is logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context) []Article {
	var all []Article
	for _, source := range f.sources {
		articles, err := f.fetchFromSource(ctx, source)
		if err != nil {
			f.log.Warn("failed to fetch feed", zap.String("source", source), zap.Error(err))
			continue
		}
		all = append(all, articles...)
	}
	return all
}

// FetchForCompany returns the newest articles that mention the symbol or
// any of the given names.
func (f *Fetcher) FetchForCompany(ctx context.Context, symbol string, names ...string) []Article {
	filtered := Filter(f.FetchAll(ctx), symbol, names...)
	if f.maxArticles > 0 && len(filtered) > f.maxArticles {
		filtered = filtered[:f.maxArticles]
	}
	return filtered
}

// fetchFromSource fetches news from a single RSS source.
func (f *Fetcher) fetchFromSource(ctx context.Context, url string) ([]Article, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		description := stripHTML(item.Description)
		articles = append(articles, Article{
			Title:          strings.TrimSpace(item.Title),
			Description:    description,
			URL:            item.Link,
			Source:         sourceName(url),
			PublishedAt:    publishedAt,
			RelatedSymbols: extractStockSymbols(item.Title + " " + description),
		})
	}

	return articles, nil
}

// Filter keeps articles that mention symbol or a name, newest first, with
// duplicate URLs removed.
func Filter(articles []Article, symbol string, names ...string) []Article {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	needles := []string{}
	if symbol != "" {
		needles = append(needles, symbol)
	}
	for _, n := range names {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			needles = append(needles, n)
		}
	}

	seen := make(map[string]bool)
	var out []Article
	for _, a := range articles {
		if seen[a.URL] || !mentions(a, symbol, needles) {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

func mentions(a Article, symbol string, needles []string) bool {
	for _, s := range a.RelatedSymbols {
		if s == symbol {
			return true
		}
	}
	text := strings.ToUpper(a.Title + " " + a.Description)
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// Headlines returns the article titles.
func Headlines(articles []Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

// sourceName extracts a friendly name from URL.
func sourceName(url string) string {
	switch {
	case strings.Contains(url, "moneycontrol"):
		return "MoneyControl"
	case strings.Contains(url, "economictimes"):
		return "Economic Times"
	case strings.Contains(url, "livemint"):
		return "LiveMint"
	case strings.Contains(url, "business-standard"):
		return "Business Standard"
	default:
		return "Unknown"
	}
}

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)

	symbolPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(([A-Z]{2,10})\)`),
		regexp.MustCompile(`(?:NSE|BSE):\s*([A-Z]{2,10})`),
	}

	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
	)
)

// stripHTML removes HTML tags from text.
func stripHTML(s string) string {
	return strings.TrimSpace(entityReplacer.Replace(tagRe.ReplaceAllString(s, "")))
}

// extractStockSymbols finds tickers written as "(TCS)" or "NSE: TCS".
func extractStockSymbols(text string) []string {
	seen := make(map[string]bool)
	var symbols []string
	for _, re := range symbolPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			if len(match) > 1 && !seen[match[1]] {
				seen[match[1]] = true
				symbols = append(symbols, match[1])
			}
		}
	}
	return symbols
}
