package sheet

import (
	"fmt"
	"strings"
)

// NormalizeHeaders turns a raw header row into unique labels of the same
// length and order. Dates become "Mon-YYYY", blanks become Unnamed_k with k
// counting blanks only, and repeats get _1, _2, ... after the first.
func NormalizeHeaders(cells []Cell) []string {
	labels := make([]string, len(cells))
	blanks := 0
	for i, c := range cells {
		text := strings.TrimSpace(c.String())
		switch {
		case c.Kind == Date:
			labels[i] = c.Time.Format("Jan-2006")
		case text == "":
			blanks++
			labels[i] = fmt.Sprintf("Unnamed_%d", blanks)
		default:
			labels[i] = text
		}
	}

	// Repeats are suffixed in order of appearance. A suffixed candidate that
	// is already taken (a literal "Sales_1" next to two "Sales") moves on to
	// the next free number so the output stays unique.
	used := make(map[string]bool, len(labels))
	next := make(map[string]int, len(labels))
	for i, label := range labels {
		candidate := label
		for used[candidate] {
			next[label]++
			candidate = fmt.Sprintf("%s_%d", label, next[label])
		}
		used[candidate] = true
		labels[i] = candidate
	}
	return labels
}
