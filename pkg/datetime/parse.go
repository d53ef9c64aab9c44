// Package datetime provides year-month utility functions.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/nisa-forecast/pkg/constants"
)

const (
	// YearMonthLayout is the format expected in scenarios and is also the
	// output month format.
	YearMonthLayout = constants.YearMonthLayout
)

// ParseYearMonth splits a "YYYY-MM" string into its year and month. Anything
// after a second dash is ignored, so "2025-04-01" reads as April 2025. The
// month is not range checked.
func ParseYearMonth(ym string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(ym), "-")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid year-month %q", ym)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in %q: %w", ym, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in %q: %w", ym, err)
	}
	return year, month, nil
}

// MonthsBetween returns the number of months from fromYm to toYm. Unparsable
// input yields 0.
func MonthsBetween(fromYm, toYm string) int {
	fromYear, fromMonth, err := ParseYearMonth(fromYm)
	if err != nil {
		return 0
	}
	toYear, toMonth, err := ParseYearMonth(toYm)
	if err != nil {
		return 0
	}
	return (toYear-fromYear)*constants.MonthsPerYear + (toMonth - fromMonth)
}

// AddMonths returns ym offset by the given number of months formatted as
// "YYYY-MM".
func AddMonths(ym string, months int) (string, error) {
	year, month, err := ParseYearMonth(ym)
	if err != nil {
		return "", err
	}
	total := year*constants.MonthsPerYear + (month - 1) + months
	newYear := floorDiv(total, constants.MonthsPerYear)
	newMonth := total - newYear*constants.MonthsPerYear + 1
	return fmt.Sprintf("%04d-%02d", newYear, newMonth), nil
}

// CurrentYearMonth formats the given time as "YYYY-MM".
func CurrentYearMonth(now time.Time) string {
	return now.Format(YearMonthLayout)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
