// Package schedule compiles the three cash-flow input modes (simple, builder
// and the text DSL) into one canonical monthly flow sequence.
package schedule

// Period is a constant net monthly flow sustained for Months consecutive
// months. Positive flows are contributions, negative flows withdrawals.
type Period struct {
	Months int   `json:"months" yaml:"months"`
	Flow   int64 `json:"flow" yaml:"flow"`
}

// PeriodBlock is a pattern of periods replayed end to end for RepeatYears
// years.
type PeriodBlock struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	RepeatYears int      `json:"repeatYears" yaml:"repeatYears"`
	Pattern     []Period `json:"pattern" yaml:"pattern"`
}

// PatternMonths returns the number of months covered by one pass of the pattern.
func (b PeriodBlock) PatternMonths() int {
	total := 0
	for _, p := range b.Pattern {
		if p.Months > 0 {
			total += p.Months
		}
	}
	return total
}

// TotalMonths returns the number of months a block expands to.
func TotalMonths(periods []Period) int {
	total := 0
	for _, p := range periods {
		total += p.Months
	}
	return total
}
