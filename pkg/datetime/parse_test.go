package datetime

import (
	"testing"
	"time"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth int
		wantErr   bool
	}{
		{"Plain year-month", "2025-04", 2025, 4, false},
		{"Surrounding whitespace", " 2030-12 ", 2030, 12, false},
		{"Trailing day ignored", "2025-04-01", 2025, 4, false},
		{"Single digit month", "2025-4", 2025, 4, false},
		{"Missing dash", "202504", 0, 0, true},
		{"Empty string", "", 0, 0, true},
		{"Non-numeric year", "abcd-04", 0, 0, true},
		{"Non-numeric month", "2025-xx", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := ParseYearMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseYearMonth(%q) expected error but got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYearMonth(%q) error = %v", tt.input, err)
			}
			if year != tt.wantYear || month != tt.wantMonth {
				t.Errorf("ParseYearMonth(%q) = %d-%d, expected %d-%d", tt.input, year, month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected int
	}{
		{"Same month", "2025-01", "2025-01", 0},
		{"Within a year", "2025-01", "2025-07", 6},
		{"Across years", "2025-10", "2027-02", 16},
		{"Backwards", "2025-06", "2025-01", -5},
		{"Unparsable start", "soon", "2025-01", 0},
		{"Unparsable end", "2025-01", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthsBetween(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("MonthsBetween(%q, %q) = %d, expected %d", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		ym       string
		months   int
		expected string
		wantErr  bool
	}{
		{"Zero offset", "2025-01", 0, "2025-01", false},
		{"End of first year", "2025-01", 11, "2025-12", false},
		{"Cross year boundary", "2025-11", 3, "2026-02", false},
		{"Multiple years", "2025-04", 360, "2055-04", false},
		{"Negative offset", "2025-01", -1, "2024-12", false},
		{"Invalid input", "bad", 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := AddMonths(tt.ym, tt.months)
			if tt.wantErr {
				if err == nil {
					t.Errorf("AddMonths(%q, %d) expected error but got none", tt.ym, tt.months)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddMonths(%q, %d) error = %v", tt.ym, tt.months, err)
			}
			if result != tt.expected {
				t.Errorf("AddMonths(%q, %d) = %s, expected %s", tt.ym, tt.months, result, tt.expected)
			}
		})
	}
}

func TestCurrentYearMonth(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	if got := CurrentYearMonth(now); got != "2026-03" {
		t.Errorf("CurrentYearMonth() = %s, expected 2026-03", got)
	}
}
