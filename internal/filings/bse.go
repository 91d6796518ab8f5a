// Package filings harvests document links from BSE corporate announcement
// pages.
package filings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnknownCompany is returned for a symbol with no known BSE code.
var ErrUnknownCompany = errors.New("company not recognized")

// Company identifies a listed company on BSE.
type Company struct {
	Symbol  string `json:"symbol"`
	BSECode string `json:"bse_code"`
	Name    string `json:"name"`
}

// KnownCompanies maps short symbols to BSE scrip codes.
var KnownCompanies = map[string]Company{
	"TCS":      {Symbol: "TCS", BSECode: "532540", Name: "Tata Consultancy Services"},
	"INFY":     {Symbol: "INFY", BSECode: "500209", Name: "Infosys Ltd"},
	"RELIANCE": {Symbol: "RELIANCE", BSECode: "500325", Name: "Reliance Industries"},
	"HDFCBANK": {Symbol: "HDFCBANK", BSECode: "500180", Name: "HDFC Bank"},
	"ITC":      {Symbol: "ITC", BSECode: "500875", Name: "ITC Ltd"},
}

// KnownSymbols returns the recognized symbols in alphabetical order.
func KnownSymbols() []string {
	out := make([]string, 0, len(KnownCompanies))
	for s := range KnownCompanies {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Category groups announcement links.
type Category string

const (
	AnnualReport         Category = "annual_report"
	EarningsCall         Category = "earnings_call"
	InvestorPresentation Category = "investor_presentation"
	FinancialResult      Category = "financial_result"
)

// categoryLimits caps how many links of each kind are kept.
var categoryLimits = map[Category]int{
	AnnualReport:         2,
	EarningsCall:         4,
	InvestorPresentation: 4,
	FinancialResult:      4,
}

// Link is one harvested document.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Filings are the categorized links for one company.
type Filings struct {
	Company Company             `json:"company"`
	Source  string              `json:"source"`
	Links   map[Category][]Link `json:"links"`
}

// Fetcher reads BSE announcement pages.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher creates a fetcher rooted at baseURL, e.g. https://www.bseindia.com.
func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the announcement page for symbol and categorizes its links.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (*Filings, error) {
	company, ok := KnownCompanies[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (try %s)", ErrUnknownCompany, symbol, strings.Join(KnownSymbols(), ", "))
	}

	url := fmt.Sprintf("%s/corporates/ann.aspx?scrip=%s&dur=A", f.baseURL, company.BSECode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch BSE announcements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("BSE returned status %d for %s", resp.StatusCode, company.Symbol)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Filings{
		Company: company,
		Source:  url,
		Links:   f.categorize(doc),
	}, nil
}

// categorize sorts anchors by their text. Annual reports must link a PDF.
func (f *Fetcher) categorize(doc *goquery.Document) map[Category][]Link {
	links := make(map[Category][]Link, len(categoryLimits))
	for c := range categoryLimits {
		links[c] = []Link{}
	}

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		text := strings.ToLower(title)

		var category Category
		switch {
		case strings.Contains(text, "annual report") && strings.HasSuffix(href, ".pdf"):
			category = AnnualReport
		case strings.Contains(text, "earning call") || strings.Contains(text, "conference call"):
			category = EarningsCall
		case strings.Contains(text, "investor presentation"):
			category = InvestorPresentation
		case strings.Contains(text, "financial result"):
			category = FinancialResult
		default:
			return
		}

		if len(links[category]) >= categoryLimits[category] {
			return
		}
		links[category] = append(links[category], Link{Title: title, URL: f.baseURL + href})
	})

	return links
}
