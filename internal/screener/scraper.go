// Package screener fetches live quotes from screener.in company pages.
package screener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotFound is returned when the company page does not exist.
var ErrNotFound = errors.New("company not found on screener")

// Scraper fetches quote data from screener.in
type Scraper struct {
	baseURL     string
	client      *http.Client
	scrapeDelay time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

// NewScraper creates a new screener scraper. Requests are spaced at least
// scrapeDelay apart.
func NewScraper(baseURL string, timeout, scrapeDelay time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		scrapeDelay: scrapeDelay,
	}
}

// Quote is the market snapshot shown beside a valuation.
type Quote struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector,omitempty"`
	Industry     string  `json:"industry,omitempty"`
	CurrentPrice float64 `json:"current_price"`
	MarketCap    float64 `json:"market_cap"`
	High52Week   float64 `json:"high_52_week"`
	Low52Week    float64 `json:"low_52_week"`
	StockPE      float64 `json:"stock_pe"`
	BookValue    float64 `json:"book_value"`
	FaceValue    float64 `json:"face_value"`
	ROCE         float64 `json:"roce"`
	ROE          float64 `json:"roe"`
	// SharesOutstanding is market cap over price, in crores.
	SharesOutstanding float64 `json:"shares_outstanding"`
	// NetProfit is the latest annual figure from the profit and loss table.
	NetProfit float64 `json:"net_profit"`
}

// FetchQuote fetches the company page for symbol and parses its ratios.
func (s *Scraper) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/company/%s/", s.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("screener returned status %d for symbol %s", resp.StatusCode, symbol)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return parseQuote(symbol, doc), nil
}

// wait spaces requests by scrapeDelay.
func (s *Scraper) wait(ctx context.Context) error {
	s.mu.Lock()
	elapsed := time.Since(s.lastRequest)
	if elapsed < s.scrapeDelay {
		sleepTime := s.scrapeDelay - elapsed
		s.mu.Unlock()
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	s.lastRequest = time.Now()
	s.mu.Unlock()
	return nil
}

func parseQuote(symbol string, doc *goquery.Document) *Quote {
	q := &Quote{Symbol: symbol}

	q.Name = strings.TrimSpace(doc.Find("h1").First().Text())

	doc.Find(".company-info a, .company-links a").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if strings.Contains(href, "/sector/") {
			q.Sector = text
		} else if strings.Contains(href, "/industry/") {
			q.Industry = text
		}
	})

	doc.Find("#top-ratios li").Each(func(i int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").Text())
		valueStr := strings.TrimSpace(sel.Find(".value").Text())
		value := parseNumber(valueStr)

		switch {
		case strings.Contains(name, "Market Cap"):
			q.MarketCap = value
		case strings.Contains(name, "Current Price"):
			q.CurrentPrice = value
		case strings.Contains(name, "High / Low"):
			parts := strings.Split(valueStr, "/")
			if len(parts) == 2 {
				q.High52Week = parseNumber(parts[0])
				q.Low52Week = parseNumber(parts[1])
			}
		case strings.Contains(name, "Stock P/E"):
			q.StockPE = value
		case strings.Contains(name, "Book Value"):
			q.BookValue = value
		case strings.Contains(name, "Face Value"):
			q.FaceValue = value
		case strings.Contains(name, "ROCE"):
			q.ROCE = value
		case strings.Contains(name, "ROE"):
			q.ROE = value
		}
	})

	// The last cell of the Net Profit row is the latest year.
	doc.Find("#profit-loss table tbody tr").Each(func(i int, sel *goquery.Selection) {
		cells := sel.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.First().Text())
		if strings.HasPrefix(label, "Net Profit") {
			q.NetProfit = parseNumber(cells.Last().Text())
		}
	})

	if q.CurrentPrice > 0 && q.MarketCap > 0 {
		q.SharesOutstanding = q.MarketCap / q.CurrentPrice
	}

	return q
}

// normalizeSymbol removes exchange suffixes from symbol.
func normalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	symbol = strings.TrimSuffix(symbol, ".NS")
	symbol = strings.TrimSuffix(symbol, ".BO")
	symbol = strings.TrimSuffix(symbol, ".NSE")
	symbol = strings.TrimSuffix(symbol, ".BSE")
	return symbol
}

var numberRe = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)

// parseNumber extracts a number from a display string such as "₹ 1,234 Cr.".
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "Cr.", "")
	s = strings.TrimSpace(s)

	match := numberRe.FindString(s)
	if match == "" {
		return 0
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}
