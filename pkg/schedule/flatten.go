package schedule

import "github.com/iwvelando/nisa-forecast/pkg/constants"

// Flatten expands each block into repeatYears*12 months of periods by
// replaying its pattern cyclically; the last pass is cut at the month
// boundary when the pattern does not divide the target evenly. Blocks are
// concatenated in order. Blocks whose pattern covers no months are skipped.
// Expansion stops once maxMonths months have been produced.
func Flatten(blocks []PeriodBlock, maxMonths int) []Period {
	var periods []Period
	total := 0
	for _, block := range blocks {
		if total >= maxMonths {
			break
		}
		if block.PatternMonths() == 0 {
			continue
		}
		remaining := min(block.RepeatYears*constants.MonthsPerYear, maxMonths-total)
		for remaining > 0 {
			for _, item := range block.Pattern {
				if remaining <= 0 {
					break
				}
				if item.Months <= 0 {
					continue
				}
				months := min(item.Months, remaining)
				periods = append(periods, Period{Months: months, Flow: item.Flow})
				remaining -= months
				total += months
			}
		}
	}
	return periods
}

// BlockMonths returns the number of months blocks would expand to without a
// limit. Blocks whose pattern covers no months count for nothing.
func BlockMonths(blocks []PeriodBlock) int64 {
	var total int64
	for _, block := range blocks {
		if block.PatternMonths() == 0 || block.RepeatYears <= 0 {
			continue
		}
		total += int64(block.RepeatYears) * constants.MonthsPerYear
	}
	return total
}

// ApplyDuration fits periods to exactly durationMonths months. Periods are
// consumed in order and the one crossing the boundary is truncated. When the
// periods run short the last flow is held for the remaining months (zero if
// there is none). Adjacent periods with equal flow are merged.
func ApplyDuration(periods []Period, durationMonths int) []Period {
	var result []Period
	total := 0
	for _, period := range periods {
		if total >= durationMonths {
			break
		}
		if period.Months <= 0 {
			continue
		}
		remaining := durationMonths - total
		months := min(period.Months, remaining)
		result = append(result, Period{Months: months, Flow: period.Flow})
		total += months
	}

	if total < durationMonths {
		var lastFlow int64
		if len(result) > 0 {
			lastFlow = result[len(result)-1].Flow
		}
		result = append(result, Period{Months: durationMonths - total, Flow: lastFlow})
	}

	return MergeConsecutive(result)
}

// MergeConsecutive joins neighbouring periods that share a flow.
func MergeConsecutive(periods []Period) []Period {
	if len(periods) == 0 {
		return nil
	}
	result := []Period{periods[0]}
	for _, curr := range periods[1:] {
		prev := &result[len(result)-1]
		if prev.Flow == curr.Flow {
			prev.Months += curr.Months
			continue
		}
		result = append(result, curr)
	}
	return result
}

// MonthlySequence expands periods into one flow per month. If the periods
// cover fewer than durationMonths months the last flow is held.
func MonthlySequence(periods []Period, durationMonths int) []int64 {
	if durationMonths <= 0 {
		return []int64{}
	}
	result := make([]int64, durationMonths)
	index := 0
	for _, period := range periods {
		for i := 0; i < period.Months && index < durationMonths; i++ {
			result[index] = period.Flow
			index++
		}
	}
	if index < durationMonths && len(periods) > 0 {
		lastFlow := periods[len(periods)-1].Flow
		for ; index < durationMonths; index++ {
			result[index] = lastFlow
		}
	}
	return result
}
