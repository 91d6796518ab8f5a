// Package llm provides LLM provider interfaces and implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/user/valuation-dashboard/pkg/config"
)

// systemPrompt frames every request.
const systemPrompt = "You are a professional Indian equity research analyst. Always respond with valid JSON only."

// maxDocumentChars bounds the document excerpt placed in a prompt.
const maxDocumentChars = 8000

// SummaryRequest is the material to summarize for one company.
type SummaryRequest struct {
	Company   string             `json:"company"`
	Headlines []string           `json:"headlines,omitempty"`
	Document  string             `json:"document,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Summary is the LLM's digest of the material.
type Summary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Tone      string   `json:"tone"` // positive, negative, neutral
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Summarize condenses news, filings text and valuation metrics.
	Summarize(ctx context.Context, req SummaryRequest) (*Summary, error)

	// IsAvailable checks if the provider is available.
	IsAvailable(ctx context.Context) bool
}

// NewProvider creates a new LLM provider based on configuration. The "none"
// provider returns nil without error.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "ollama":
		return NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// buildSummaryPrompt creates the prompt for a company digest.
func buildSummaryPrompt(req SummaryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the latest information about %s for an investor reviewing a valuation.\n", req.Company)

	if len(req.Metrics) > 0 {
		b.WriteString("\nValuation metrics:\n")
		keys := make([]string, 0, len(req.Metrics))
		for k := range req.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %.2f\n", k, req.Metrics[k])
		}
	}

	if len(req.Headlines) > 0 {
		b.WriteString("\nRecent News Headlines:\n")
		for _, h := range req.Headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	if doc := strings.TrimSpace(req.Document); doc != "" {
		fmt.Fprintf(&b, "\nDocument excerpt:\n%s\n", excerpt(doc, maxDocumentChars))
	}

	b.WriteString(`
Provide your analysis in the following JSON format:
{
  "summary": "<three to five sentences>",
  "key_points": ["point1", "point2", ...],
  "tone": "positive" or "negative" or "neutral"
}

Respond ONLY with the JSON, no additional text.`)

	return b.String()
}

// excerpt cuts s to at most n bytes on a rune boundary.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// parseSummary decodes a provider reply into a Summary.
func parseSummary(response string) (*Summary, error) {
	var s Summary
	if err := parseJSONResponse(response, &s); err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}
	return &s, nil
}

// parseJSONResponse extracts and parses JSON from the LLM response.
func parseJSONResponse(response string, v interface{}) error {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON found in response: %s", response)
	}

	jsonStr := response[start : end+1]
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w (json: %s)", err, jsonStr)
	}
	return nil
}
