// Package dashboard provides the valuation engine behind the HTTP API and CLI.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/user/valuation-dashboard/internal/docs"
	"github.com/user/valuation-dashboard/internal/filings"
	"github.com/user/valuation-dashboard/internal/llm"
	"github.com/user/valuation-dashboard/internal/news"
	"github.com/user/valuation-dashboard/internal/report"
	"github.com/user/valuation-dashboard/internal/screener"
	"github.com/user/valuation-dashboard/internal/session"
	"github.com/user/valuation-dashboard/internal/sheet"
	"github.com/user/valuation-dashboard/internal/statements"
	"github.com/user/valuation-dashboard/internal/valuation"
	"github.com/user/valuation-dashboard/pkg/config"
)

// ErrUnknownTable is returned for a table name that is not a sheet section.
var ErrUnknownTable = errors.New("unknown table")

// Engine runs uploads through extraction and valuation and reaches out to
// the filings, quote and news collaborators.
type Engine struct {
	store         *session.Store
	llmProvider   llm.Provider
	newsFetcher   *news.Fetcher
	quotes        *screener.Scraper
	filingFetcher *filings.Fetcher
	config        *config.Config
	log           *zap.Logger
}

// NewEngine creates a new engine. llmProvider may be nil.
func NewEngine(cfg *config.Config, llmProvider llm.Provider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:         session.NewStore(),
		llmProvider:   llmProvider,
		newsFetcher:   news.NewFetcher(cfg.News.Sources, cfg.News.Timeout, cfg.News.MaxArticles, log),
		quotes:        screener.NewScraper(cfg.Screener.BaseURL, cfg.Screener.Timeout, cfg.Screener.ScrapeDelay),
		filingFetcher: filings.NewFetcher(cfg.Filings.BaseURL, cfg.Filings.Timeout),
		config:        cfg,
		log:           log,
	}
}

// UploadResult summarizes a freshly extracted workbook.
type UploadResult struct {
	Session     *session.Context      `json:"session"`
	Tables      []TableSummary        `json:"tables"`
	Assumptions valuation.Assumptions `json:"assumptions"`
	Warnings    []string              `json:"warnings,omitempty"`
}

// TableSummary describes one extracted table without its values.
type TableSummary struct {
	Name    statements.Section `json:"name"`
	Slug    string             `json:"slug"`
	Columns []string           `json:"columns"`
	Rows    int                `json:"rows"`
}

// Upload reads a workbook, extracts its statements, derives ratios and
// seeds default assumptions in a new session.
func (e *Engine) Upload(filename string, r io.Reader) (*UploadResult, error) {
	// 1. Read the grid
	raw, err := sheet.Load(filename, r)
	if err != nil {
		return nil, err
	}

	// 2. Extract every block
	st, err := sheet.ExtractStatements(raw, e.config.Valuation.MaxColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to extract statements from %s: %w", filename, err)
	}

	// 3. Derive ratios and default assumptions
	sess := session.New(filename, st)
	sess.Company = sheet.CompanyName(raw)
	sess.Ratios = valuation.DeriveRatios(st)
	sess.Assumptions = valuation.DefaultAssumptions(e.config.Valuation, sess.Ratios)
	snapshot := *sess
	e.store.Put(sess)

	e.log.Info("workbook uploaded",
		zap.String("session", sess.ID),
		zap.String("file", filename),
		zap.String("company", sess.Company),
		zap.Strings("warnings", sess.Ratios.Warnings),
	)

	result := &UploadResult{
		Session:     &snapshot,
		Assumptions: snapshot.Assumptions,
		Warnings:    append(append([]string{}, snapshot.Ratios.Warnings...), undeterminedWarnings(snapshot.Ratios)...),
	}
	for _, section := range statements.Sections {
		t := st.Table(section)
		if t == nil {
			continue
		}
		result.Tables = append(result.Tables, TableSummary{
			Name:    t.Name,
			Slug:    section.Slug(),
			Columns: t.Columns,
			Rows:    len(t.Rows),
		})
	}
	return result, nil
}

func undeterminedWarnings(r *valuation.Ratios) []string {
	out := make([]string, 0, len(r.Undetermined))
	for _, name := range r.Undetermined {
		out = append(out, fmt.Sprintf("%s could not be determined (zero denominator), using 0", name))
	}
	return out
}

// Session returns a snapshot of the context for id.
func (e *Engine) Session(id string) (*session.Context, error) {
	return e.store.Get(id)
}

// DeleteSession drops a session.
func (e *Engine) DeleteSession(id string) error {
	return e.store.Delete(id)
}

// Table returns one extracted table by slug or display name.
func (e *Engine) Table(id, name string) (*statements.FinancialTable, error) {
	sess, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	section, ok := statements.ParseSection(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	t := sess.Statements.Table(section)
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// UpdateAssumptions replaces the assumptions of a session.
func (e *Engine) UpdateAssumptions(id string, a valuation.Assumptions) (*session.Context, error) {
	return e.store.Update(id, func(sess *session.Context) error {
		if a.GrowthMode == "" {
			a.GrowthMode = valuation.GrowthTiered
		}
		sess.SetAssumptions(a)
		return nil
	})
}

// DCF projects free cash flow for the session. Assumption errors are
// returned together with the partial result.
func (e *Engine) DCF(id string) (*valuation.DCFResult, error) {
	var result *valuation.DCFResult
	var runErr error
	_, err := e.store.Update(id, func(sess *session.Context) error {
		result, runErr = valuation.ProjectDCF(sess.Ratios.BaseRevenue, sess.Assumptions)
		sess.DCF = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, runErr
}

// EPS projects earnings per share for the session.
func (e *Engine) EPS(id string) ([]valuation.EPSRow, error) {
	var rows []valuation.EPSRow
	var runErr error
	_, err := e.store.Update(id, func(sess *session.Context) error {
		rows, runErr = valuation.ProjectEPS(sess.Ratios.BaseRevenue, sess.Assumptions)
		sess.EPS = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, runErr
}

// Sensitivity reruns the DCF over the configured grids.
func (e *Engine) Sensitivity(id string) (*valuation.SensitivityResult, error) {
	sess, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	sets := valuation.SetsFromConfig(e.config.Valuation.Sensitivity)
	return valuation.Sensitivity(sess.Ratios.BaseRevenue, sess.Assumptions, sets), nil
}

// Verdict compares the DCF fair value with price. A nil price falls back to
// the Current Price of the Meta block.
func (e *Engine) Verdict(id string, price *float64) (*valuation.VerdictResult, error) {
	var verdict *valuation.VerdictResult
	_, err := e.store.Update(id, func(sess *session.Context) error {
		res, err := valuation.ProjectDCF(sess.Ratios.BaseRevenue, sess.Assumptions)
		sess.DCF = res
		if err != nil {
			return err
		}
		current := sess.Ratios.CurrentPrice
		if price != nil {
			current = *price
		}
		verdict, err = valuation.Classify(res.Valuation.FairValuePerShare, current, e.config.Valuation.VerdictThreshold)
		if err != nil {
			return err
		}
		sess.Verdict = verdict
		return nil
	})
	return verdict, err
}

// Evaluate runs every engine for the session and collects the results into
// a report. Assumption problems become report notes rather than errors.
func (e *Engine) Evaluate(id string, price *float64) (*report.Input, error) {
	sess, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	in := &report.Input{
		Company:     sess.Company,
		Filename:    sess.Filename,
		Ratios:      sess.Ratios,
		Assumptions: sess.Assumptions,
	}
	in.Notes = append(in.Notes, sess.Ratios.Warnings...)
	in.Notes = append(in.Notes, undeterminedWarnings(sess.Ratios)...)

	note := func(err error) error {
		if err == nil {
			return nil
		}
		if errors.Is(err, valuation.ErrInvalidAssumption) {
			for _, n := range in.Notes {
				if n == err.Error() {
					return nil
				}
			}
			in.Notes = append(in.Notes, err.Error())
			return nil
		}
		return err
	}

	if in.DCF, err = e.DCF(id); note(err) != nil {
		return nil, err
	}
	if in.EPS, err = e.EPS(id); note(err) != nil {
		return nil, err
	}
	if in.Sensitivity, err = e.Sensitivity(id); err != nil {
		return nil, err
	}
	if in.Verdict, err = e.Verdict(id, price); note(err) != nil {
		return nil, err
	}
	return in, nil
}

// Report renders the session as Markdown or HTML.
func (e *Engine) Report(id string, price *float64, format string) (string, error) {
	in, err := e.Evaluate(id, price)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(format) {
	case "", "html":
		return report.HTML(*in)
	case "markdown", "md":
		return report.Markdown(*in), nil
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
}

// Filings harvests BSE document links for a symbol.
func (e *Engine) Filings(ctx context.Context, symbol string) (*filings.Filings, error) {
	return e.filingFetcher.Fetch(ctx, symbol)
}

// Quote fetches the live screener.in quote for a symbol.
func (e *Engine) Quote(ctx context.Context, symbol string) (*screener.Quote, error) {
	return e.quotes.FetchQuote(ctx, symbol)
}

// NewsDigest is the company headlines with an optional LLM summary.
type NewsDigest struct {
	Symbol   string         `json:"symbol"`
	Articles []news.Article `json:"articles"`
	Summary  *llm.Summary   `json:"summary,omitempty"`
	Provider string         `json:"provider,omitempty"`
}

// sessionMetrics collects the figures of a session that an LLM summary is
// asked to weigh. An empty id yields no metrics.
func (e *Engine) sessionMetrics(id string) (map[string]float64, error) {
	if id == "" {
		return nil, nil
	}
	sess, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	metrics := map[string]float64{
		"EBIT margin %":     sess.Ratios.EBITMargin,
		"Tax rate %":        sess.Ratios.TaxRate,
		"Sales CAGR %":      sess.Ratios.SalesCAGR,
		"WACC %":            sess.Assumptions.WACC,
		"Terminal growth %": sess.Assumptions.Terminal(),
	}
	if sess.Ratios.CurrentPrice > 0 {
		metrics["Current price"] = sess.Ratios.CurrentPrice
	}
	if sess.DCF != nil && sess.DCF.Valuation != nil {
		metrics["Fair value per share"] = sess.DCF.Valuation.FairValuePerShare
	}
	if sess.Verdict != nil {
		metrics["Upside %"] = sess.Verdict.DiffPct
	}
	return metrics, nil
}

// News fetches headlines for a symbol and, when enabled, summarizes them.
// A non-empty sessionID puts that session's valuation figures into the
// summary request. A failed summary is logged and omitted.
func (e *Engine) News(ctx context.Context, symbol, sessionID string) (*NewsDigest, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	metrics, err := e.sessionMetrics(sessionID)
	if err != nil {
		return nil, err
	}

	var names []string
	if c, ok := filings.KnownCompanies[symbol]; ok {
		names = append(names, c.Name)
	}

	digest := &NewsDigest{
		Symbol:   symbol,
		Articles: e.newsFetcher.FetchForCompany(ctx, symbol, names...),
	}
	if digest.Articles == nil {
		digest.Articles = []news.Article{}
	}

	if e.config.News.Summarize && e.llmProvider != nil && len(digest.Articles) > 0 {
		summary, err := e.llmProvider.Summarize(ctx, llm.SummaryRequest{
			Company:   symbol,
			Headlines: news.Headlines(digest.Articles),
			Metrics:   metrics,
		})
		if err != nil {
			e.log.Warn("news summary failed", zap.String("symbol", symbol), zap.Error(err))
		} else {
			digest.Summary = summary
			digest.Provider = e.llmProvider.Name()
		}
	}

	return digest, nil
}

// DocumentText extracts the text of an uploaded filing PDF, optionally
// summarizing it alongside the figures of session sessionID.
func (e *Engine) DocumentText(ctx context.Context, r io.Reader, company, sessionID string, summarize bool) (*docs.Document, *llm.Summary, error) {
	metrics, err := e.sessionMetrics(sessionID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := docs.ReadAll(r, docs.DefaultMaxChars)
	if err != nil {
		return nil, nil, err
	}

	if !summarize || e.llmProvider == nil {
		return doc, nil, nil
	}

	summary, err := e.llmProvider.Summarize(ctx, llm.SummaryRequest{
		Company:  company,
		Document: doc.Text(),
		Metrics:  metrics,
	})
	if err != nil {
		e.log.Warn("document summary failed", zap.Error(err))
		return doc, nil, nil
	}
	return doc, summary, nil
}

// LLMProvider returns the configured provider, or nil.
func (e *Engine) LLMProvider() llm.Provider {
	return e.llmProvider
}
