package shared

import (
	"fmt"
	"time"
)

// TimeRange is the query window for analytics and security aggregations.
type TimeRange string

// Supported time ranges.
const (
	TimeRange1h  TimeRange = "1h"
	TimeRange24h TimeRange = "24h"
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
)

// ParseTimeRange parses a time range from its query-parameter form.
// Unknown values are rejected, never silently defaulted.
func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(s)
	if !tr.IsValid() {
		return "", fmt.Errorf("%w: unsupported time range %q", ErrValidation, s)
	}
	return tr, nil
}

// IsValid reports whether the time range is one of the supported values.
func (tr TimeRange) IsValid() bool {
	switch tr {
	case TimeRange1h, TimeRange24h, TimeRange7d, TimeRange30d:
		return true
	default:
		return false
	}
}

// Duration returns the window width. Unknown values fall back to 24h so
// internal callers stay robust; boundary validation happens in ParseTimeRange.
func (tr TimeRange) Duration() time.Duration {
	switch tr {
	case TimeRange1h:
		return time.Hour
	case TimeRange7d:
		return 7 * 24 * time.Hour
	case TimeRange30d:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Since returns the inclusive lower bound of the window ending now.
func (tr TimeRange) Since(now time.Time) time.Time {
	return now.Add(-tr.Duration())
}

// String implements fmt.Stringer.
func (tr TimeRange) String() string {
	return string(tr)
}
