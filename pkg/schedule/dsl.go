package schedule

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineSplit  = regexp.MustCompile(`\r?\n`)
	namePrefix = regexp.MustCompile(`^([^:]+):(.*)$`)
	pairToken  = regexp.MustCompile(`\([^)]+\)`)
)

// Errors reported for DSL lines that fail to parse.
var (
	errMissingRepeat  = errors.New("repeat count must be given as xN")
	errInvalidRepeat  = errors.New("repeat count must be a positive integer")
	errMissingPattern = errors.New("pattern must be given as (months, flow)")
	errInvalidMonths  = errors.New("months must be an integer of 1 or more")
	errInvalidFlow    = errors.New("flow must be a number")
)

// ParseDSL parses one PeriodBlock per non-blank line of text. Lines are
// independent: a line that fails contributes an error of the form
// "line N: message" and parsing carries on with the next line.
func ParseDSL(text string) ([]PeriodBlock, []string) {
	var blocks []PeriodBlock
	var errs []string

	for i, raw := range lineSplit.Split(text, -1) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		block, err := parseLine(line)
		if err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", i+1, err))
			continue
		}
		blocks = append(blocks, block)
	}

	return blocks, errs
}

func parseLine(line string) (PeriodBlock, error) {
	var block PeriodBlock
	working := line

	// A leading "label:" is only a name if the rest still holds a pattern.
	if m := namePrefix.FindStringSubmatch(working); m != nil && strings.Contains(m[2], "(") {
		block.Name = strings.TrimSpace(m[1])
		working = strings.TrimSpace(m[2])
	}

	idx := strings.LastIndexAny(working, "xX")
	if idx < 0 {
		return block, errMissingRepeat
	}
	patternPart := strings.TrimSpace(working[:idx])
	repeatPart := strings.TrimSpace(working[idx+1:])
	if patternPart == "" || repeatPart == "" {
		return block, errMissingRepeat
	}

	repeat, ok := parseWholeNumber(repeatPart)
	if !ok || repeat <= 0 {
		return block, errInvalidRepeat
	}
	block.RepeatYears = repeat

	tokens := pairToken.FindAllString(patternPart, -1)
	if len(tokens) == 0 {
		return block, errMissingPattern
	}
	for _, token := range tokens {
		period, err := parsePair(token)
		if err != nil {
			return block, err
		}
		block.Pattern = append(block.Pattern, period)
	}

	return block, nil
}

func parsePair(token string) (Period, error) {
	clean := strings.Trim(token, "()")
	fields := strings.Split(clean, ",")

	months, ok := parseWholeNumber(strings.TrimSpace(fields[0]))
	if !ok || months <= 0 {
		return Period{}, errInvalidMonths
	}
	if len(fields) < 2 {
		return Period{}, errInvalidFlow
	}

	flowText := strings.TrimSpace(strings.ReplaceAll(fields[1], "+", ""))
	flow := 0.0
	if flowText != "" {
		v, err := strconv.ParseFloat(flowText, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return Period{}, errInvalidFlow
		}
		flow = math.Trunc(v)
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if flow >= math.MaxInt64 || flow < math.MinInt64 {
			return Period{}, errInvalidFlow
		}
	}

	return Period{Months: months, Flow: int64(flow)}, nil
}

// parseWholeNumber accepts any finite number without a fractional part, so
// "12" and "12.0" both read as 12.
func parseWholeNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// FormatDSL renders blocks in the canonical text form, one block per line:
// "name: (m1, f1), (m2, f2) xN".
func FormatDSL(blocks []PeriodBlock) string {
	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var sb strings.Builder
		if block.Name != "" {
			sb.WriteString(block.Name)
			sb.WriteString(": ")
		}
		for i, p := range block.Pattern {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "(%d, %d)", p.Months, p.Flow)
		}
		fmt.Fprintf(&sb, " x%d", block.RepeatYears)
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
