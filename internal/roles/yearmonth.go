package roles

import (
	"fmt"
	"strconv"
	"strings"
)

// YearMonth is a calendar month with optional month precision.
// The zero value means "unknown". Month 0 with a non-zero Year means
// the document only gave a year.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// IsZero reports whether the value carries no date at all.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0
}

// String renders YYYY-MM, or YYYY for year-only values, or "" when unknown.
func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	if ym.Month == 0 {
		return fmt.Sprintf("%04d", ym.Year)
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// ParseYearMonth accepts "YYYY", "YYYY-MM" or "" and returns the parsed value.
func ParseYearMonth(raw string) (YearMonth, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return YearMonth{}, nil
	}
	parts := strings.SplitN(trimmed, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("invalid year in %q", raw)
	}
	ym := YearMonth{Year: year}
	if len(parts) == 2 {
		month, err := strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return YearMonth{}, fmt.Errorf("invalid month in %q", raw)
		}
		ym.Month = month
	}
	return ym, nil
}

// StartIndex converts a start bound to a month index since year 0.
// Year-only dates resolve to January.
func (ym YearMonth) StartIndex() int {
	if ym.IsZero() {
		return 0
	}
	month := ym.Month
	if month == 0 {
		month = 1
	}
	return ym.Year*12 + month - 1
}

// EndIndex converts an end bound to a month index since year 0.
// Year-only dates resolve to December.
func (ym YearMonth) EndIndex() int {
	if ym.IsZero() {
		return 0
	}
	month := ym.Month
	if month == 0 {
		month = 12
	}
	return ym.Year*12 + month - 1
}
