// Package valuation derives ratios from extracted statements and projects
// them into DCF and EPS valuations.
package valuation

import (
	"errors"
	"fmt"
)

// ErrInvalidAssumption is matched by every AssumptionError.
var ErrInvalidAssumption = errors.New("invalid assumption")

// AssumptionError reports a parameter that makes a calculation degenerate.
// Callers still receive whatever partial results could be computed.
type AssumptionError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *AssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %s=%g: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidAssumption) match.
func (e *AssumptionError) Is(target error) bool {
	return target == ErrInvalidAssumption
}

func assumptionErr(field string, value float64, format string, args ...interface{}) error {
	return &AssumptionError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
