package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/user/valuation-dashboard/internal/dashboard"
	"github.com/user/valuation-dashboard/internal/docs"
	"github.com/user/valuation-dashboard/internal/filings"
	"github.com/user/valuation-dashboard/internal/screener"
	"github.com/user/valuation-dashboard/internal/session"
	"github.com/user/valuation-dashboard/internal/sheet"
	"github.com/user/valuation-dashboard/internal/valuation"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	LLM       string `json:"llm,omitempty"`
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if p := s.engine.LLMProvider(); p != nil {
		resp.LLM = p.Name()
	}
	c.JSON(http.StatusOK, resp)
}

// errorStatus maps engine errors onto HTTP status codes.
func errorStatus(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrSourceFormat), errors.Is(err, docs.ErrInvalidPDF):
		return http.StatusBadRequest
	case errors.Is(err, sheet.ErrMissingSection), errors.Is(err, valuation.ErrInvalidAssumption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound), errors.Is(err, dashboard.ErrUnknownTable),
		errors.Is(err, filings.ErrUnknownCompany), errors.Is(err, screener.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Missing sections and the offending
// assumption field are spelled out so the client can point at them.
func (s *Server) respondError(c *gin.Context, err error, extra gin.H) {
	status := errorStatus(err)
	body := gin.H{"error": err.Error()}
	for k, v := range extra {
		body[k] = v
	}

	if missing := sheet.MissingSections(err); len(missing) > 0 {
		slugs := make([]string, 0, len(missing))
		for _, section := range missing {
			slugs = append(slugs, section.Slug())
		}
		body["missing_sections"] = slugs
	}

	var assumption *valuation.AssumptionError
	if errors.As(err, &assumption) {
		body["field"] = assumption.Field
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}

// handleUpload handles workbook uploads and opens a new session.
func (s *Server) handleUpload(c *gin.Context) {
	if limit := s.config.Server.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	result, err := s.engine.Upload(header.Filename, file)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// handleDeleteSession drops a session.
func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.engine.DeleteSession(c.Param("id")); err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetTable returns one extracted table.
func (s *Server) handleGetTable(c *gin.Context) {
	table, err := s.engine.Table(c.Param("id"), c.Param("table"))
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, table)
}

// handleGetAssumptions returns the current assumptions with the observed ratios.
func (s *Server) handleGetAssumptions(c *gin.Context) {
	sess, err := s.engine.Session(c.Param("id"))
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assumptions": sess.Assumptions,
		"ratios":      sess.Ratios,
	})
}

// handleUpdateAssumptions replaces the session assumptions.
func (s *Server) handleUpdateAssumptions(c *gin.Context) {
	var a valuation.Assumptions
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assumptions: " + err.Error()})
		return
	}

	sess, err := s.engine.UpdateAssumptions(c.Param("id"), a)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assumptions": sess.Assumptions})
}

// handleDCF runs the discounted cash flow projection. Degenerate
// assumptions still return the projected rows.
func (s *Server) handleDCF(c *gin.Context) {
	result, err := s.engine.DCF(c.Param("id"))
	if err != nil {
		extra := gin.H{}
		if result != nil {
			extra["rows"] = result.Rows
			extra["valuation"] = result.Valuation
		}
		s.respondError(c, err, extra)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleEPS runs the earnings per share projection.
func (s *Server) handleEPS(c *gin.Context) {
	rows, err := s.engine.EPS(c.Param("id"))
	if err != nil {
		extra := gin.H{}
		if rows != nil {
			extra["rows"] = rows
		}
		s.respondError(c, err, extra)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// handleSensitivity reruns the DCF across the sensitivity grids.
func (s *Server) handleSensitivity(c *gin.Context) {
	result, err := s.engine.Sensitivity(c.Param("id"))
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parsePrice reads the optional price query parameter.
func parsePrice(c *gin.Context) (*float64, bool) {
	raw := strings.TrimSpace(c.Query("price"))
	if raw == "" {
		return nil, true
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a number"})
		return nil, false
	}
	return &price, true
}

// handleVerdict classifies the fair value against the current price.
func (s *Server) handleVerdict(c *gin.Context) {
	price, ok := parsePrice(c)
	if !ok {
		return
	}

	verdict, err := s.engine.Verdict(c.Param("id"), price)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// handleReport renders the session report, HTML by default.
func (s *Server) handleReport(c *gin.Context) {
	price, ok := parsePrice(c)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "html"))
	var contentType string
	switch format {
	case "html":
		contentType = "text/html; charset=utf-8"
	case "markdown", "md":
		contentType = "text/markdown; charset=utf-8"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be html or markdown"})
		return
	}

	out, err := s.engine.Report(c.Param("id"), price, format)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.Data(http.StatusOK, contentType, []byte(out))
}

// handleFilings lists BSE document links for a symbol.
func (s *Server) handleFilings(c *gin.Context) {
	result, err := s.engine.Filings(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.respondError(c, err, gin.H{"known_symbols": filings.KnownSymbols()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleQuote returns the live screener.in quote.
func (s *Server) handleQuote(c *gin.Context) {
	quote, err := s.engine.Quote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// handleNews returns company headlines with an optional summary.
func (s *Server) handleNews(c *gin.Context) {
	digest, err := s.engine.News(c.Request.Context(), c.Param("symbol"), c.Query("session"))
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":   digest.Symbol,
		"articles": digest.Articles,
		"count":    len(digest.Articles),
		"summary":  digest.Summary,
		"provider": digest.Provider,
	})
}

// handleDocumentText extracts the text of an uploaded filing PDF.
func (s *Server) handleDocumentText(c *gin.Context) {
	if limit := s.config.Server.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	summarize := c.PostForm("summarize") == "true"
	doc, summary, err := s.engine.DocumentText(c.Request.Context(), file, c.PostForm("company"), c.PostForm("session"), summarize)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_pages": doc.TotalPages,
		"pages":       doc.Pages,
		"truncated":   doc.Truncated,
		"summary":     summary,
	})
}
