package valuation

import (
	"math"
)

// Verdict classifies fair value against the market price.
type Verdict string

const (
	Undervalued  Verdict = "Undervalued"
	Overvalued   Verdict = "Overvalued"
	FairlyValued Verdict = "Fairly Valued"
)

// Color is the badge colour the dashboard shows for the verdict.
func (v Verdict) Color() string {
	switch v {
	case Undervalued:
		return "green"
	case Overvalued:
		return "red"
	default:
		return "gray"
	}
}

// VerdictResult is the outcome of Classify.
type VerdictResult struct {
	Verdict      Verdict `json:"verdict"`
	Color        string  `json:"color"`
	FairValue    float64 `json:"fair_value"`
	CurrentPrice float64 `json:"current_price"`
	DiffPct      float64 `json:"diff_pct"`
	Threshold    float64 `json:"threshold"`
}

// Classify compares fair value with the current price. The difference is a
// percentage of the current price; only a move strictly beyond the threshold
// in either direction leaves Fairly Valued.
func Classify(fairValue, currentPrice, threshold float64) (*VerdictResult, error) {
	if currentPrice <= 0 || math.IsNaN(currentPrice) {
		return nil, assumptionErr("current_price", currentPrice, "must be positive")
	}
	if threshold < 0 {
		return nil, assumptionErr("verdict_threshold", threshold, "must not be negative")
	}

	diff := (fairValue - currentPrice) * 100 / currentPrice

	verdict := FairlyValued
	switch {
	case diff > threshold:
		verdict = Undervalued
	case diff < -threshold:
		verdict = Overvalued
	}

	return &VerdictResult{
		Verdict:      verdict,
		Color:        verdict.Color(),
		FairValue:    fairValue,
		CurrentPrice: currentPrice,
		DiffPct:      diff,
		Threshold:    threshold,
	}, nil
}
