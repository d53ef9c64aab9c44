package schedule

import (
	"math"
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name      string
		blocks    []PeriodBlock
		maxMonths int
		expected  []Period
	}{
		{
			name:     "Pattern divides evenly",
			blocks:   []PeriodBlock{{RepeatYears: 2, Pattern: []Period{{Months: 12, Flow: 100}}}},
			expected: []Period{{Months: 12, Flow: 100}, {Months: 12, Flow: 100}},
		},
		{
			name:   "Last cycle split at the boundary",
			blocks: []PeriodBlock{{RepeatYears: 1, Pattern: []Period{{Months: 5, Flow: 100}, {Months: 3, Flow: -50}}}},
			expected: []Period{
				{Months: 5, Flow: 100}, {Months: 3, Flow: -50}, {Months: 4, Flow: 100},
			},
		},
		{
			name: "Blocks concatenate in order",
			blocks: []PeriodBlock{
				{RepeatYears: 1, Pattern: []Period{{Months: 12, Flow: 1}}},
				{RepeatYears: 1, Pattern: []Period{{Months: 24, Flow: 2}}},
			},
			expected: []Period{{Months: 12, Flow: 1}, {Months: 12, Flow: 2}},
		},
		{
			name:     "Empty pattern is skipped",
			blocks:   []PeriodBlock{{RepeatYears: 3}},
			expected: nil,
		},
		{
			name: "Stops at the month limit",
			blocks: []PeriodBlock{
				{RepeatYears: 100, Pattern: []Period{{Months: 12, Flow: 1}}},
				{RepeatYears: 1, Pattern: []Period{{Months: 12, Flow: 2}}},
			},
			maxMonths: 18,
			expected:  []Period{{Months: 12, Flow: 1}, {Months: 6, Flow: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxMonths := tt.maxMonths
			if maxMonths == 0 {
				maxMonths = 1200
			}
			result := Flatten(tt.blocks, maxMonths)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Flatten() = %+v, expected %+v", result, tt.expected)
			}
		})
	}
}

func TestFlattenHugeRepeatIsBounded(t *testing.T) {
	blocks := []PeriodBlock{{RepeatYears: math.MaxInt32, Pattern: []Period{{Months: 1, Flow: 1}}}}

	result := Flatten(blocks, 24)
	if len(result) != 24 || TotalMonths(result) != 24 {
		t.Errorf("Flatten() returned %d periods covering %d months, expected 24", len(result), TotalMonths(result))
	}
	if got := BlockMonths(blocks); got != int64(math.MaxInt32)*12 {
		t.Errorf("BlockMonths() = %d, expected %d", got, int64(math.MaxInt32)*12)
	}
}

func TestApplyDuration(t *testing.T) {
	tests := []struct {
		name           string
		periods        []Period
		durationMonths int
		expected       []Period
	}{
		{
			name:           "Truncates the crossing period",
			periods:        []Period{{Months: 10, Flow: 1}, {Months: 10, Flow: 2}},
			durationMonths: 12,
			expected:       []Period{{Months: 10, Flow: 1}, {Months: 2, Flow: 2}},
		},
		{
			name:           "Pads with the last flow",
			periods:        []Period{{Months: 3, Flow: 1}, {Months: 3, Flow: -5}},
			durationMonths: 12,
			expected:       []Period{{Months: 3, Flow: 1}, {Months: 9, Flow: -5}},
		},
		{
			name:           "Pads with zero when empty",
			periods:        nil,
			durationMonths: 24,
			expected:       []Period{{Months: 24, Flow: 0}},
		},
		{
			name:           "Merges equal neighbours",
			periods:        []Period{{Months: 12, Flow: 7}, {Months: 12, Flow: 7}, {Months: 1, Flow: 8}},
			durationMonths: 25,
			expected:       []Period{{Months: 24, Flow: 7}, {Months: 1, Flow: 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyDuration(tt.periods, tt.durationMonths)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ApplyDuration() = %+v, expected %+v", result, tt.expected)
			}
			if TotalMonths(result) != tt.durationMonths {
				t.Errorf("ApplyDuration() covers %d months, expected %d", TotalMonths(result), tt.durationMonths)
			}
		})
	}
}

func TestApplyDurationDoesNotMutateInput(t *testing.T) {
	periods := []Period{{Months: 6, Flow: 1}, {Months: 6, Flow: 1}}
	ApplyDuration(periods, 12)
	if periods[0].Months != 6 {
		t.Errorf("input period changed to %+v", periods[0])
	}
}

func TestMonthlySequence(t *testing.T) {
	periods := []Period{{Months: 2, Flow: 10}, {Months: 1, Flow: -5}}

	result := MonthlySequence(periods, 5)
	expected := []int64{10, 10, -5, -5, -5}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("MonthlySequence() = %v, expected %v", result, expected)
	}

	if got := MonthlySequence(periods, 0); len(got) != 0 {
		t.Errorf("MonthlySequence() with zero duration = %v, expected empty", got)
	}
}
