package forecast

import (
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/datetime"
	"github.com/iwvelando/nisa-forecast/pkg/finance"
)

// Run identifies one simulation: the scenario fields the engine reads plus a
// single annual rate in either percent or fraction form.
type Run struct {
	StartYm     string
	InitialLump int64
	AnnualRate  float64
}

// Simulation is the full output of one run.
type Simulation struct {
	Rate         float64
	RatePercent  int
	Timeline     []TimelinePoint
	Years        []YearRow
	KPI          KPI
	Principal    int64
	CapUsed      int64
	FinalExempt  int64
	FinalTaxable int64
}

// FinalTotal is the combined balance after the last month.
func (s Simulation) FinalTotal() int64 {
	return s.FinalExempt + s.FinalTaxable
}

// Row converts the simulation into its sweep row.
func (s Simulation) Row() RateRow {
	return RateRow{
		Rate:         s.Rate,
		RatePercent:  s.RatePercent,
		FinalTotal:   s.FinalTotal(),
		FinalExempt:  s.FinalExempt,
		FinalTaxable: s.FinalTaxable,
		Principal:    s.Principal,
		Profit:       s.FinalTotal() - s.Principal,
		Timeline:     s.Timeline,
	}
}

// Detail converts the simulation into its year-by-year view.
func (s Simulation) Detail() RateDetail {
	return RateDetail{
		Rate:        s.Rate,
		RatePercent: s.RatePercent,
		KPI:         s.KPI,
		Years:       s.Years,
	}
}

// Simulate runs the month-by-month dual-account projection over flows, the
// compiled monthly net flows. Each month grows the exempt account, then the
// taxable account, then applies that month's flow. The function is pure:
// flows is only read and identical input gives identical output. params is
// used as given.
func Simulate(flows []int64, run Run, params finance.Params) Simulation {
	rate := finance.NormalizeRate(run.AnnualRate)
	monthlyRate := finance.MonthlyRate(rate)
	ledger := finance.NewLedger(params)

	sim := Simulation{
		Rate:        rate,
		RatePercent: finance.RatePercent(rate),
		Timeline:    make([]TimelinePoint, 0, len(flows)+1),
		Years:       make([]YearRow, 0, len(flows)/constants.MonthsPerYear),
	}

	var principal, yearContributed, yearWithdrawn int64
	var capReached, depleted bool

	markCap := func(year int) {
		if !capReached && ledger.CapUsed >= params.CapLimit {
			capReached = true
			y := year
			sim.KPI.CapReachedYear = &y
		}
	}

	if run.InitialLump > 0 {
		ledger.Allocate(run.InitialLump)
		principal += run.InitialLump
		yearContributed += run.InitialLump
		markCap(0)
	}
	sim.Timeline = append(sim.Timeline, point(0, principal, ledger.Total()))

	prevTotal := ledger.Total()
	for m, flow := range flows {
		year := m/constants.MonthsPerYear + 1

		ledger.Grow(monthlyRate)
		contributed, withdrawn := ledger.Apply(flow)
		principal += contributed
		yearContributed += contributed
		yearWithdrawn += withdrawn
		if contributed > 0 {
			markCap(year)
		}

		total := ledger.Total()
		if !depleted && prevTotal > 0 && total <= 0 {
			depleted = true
			y := year
			sim.KPI.DepletionYear = &y
		}
		prevTotal = total

		sim.Timeline = append(sim.Timeline, point(m+1, principal, total))

		if (m+1)%constants.MonthsPerYear == 0 {
			endYm, err := datetime.AddMonths(run.StartYm, m)
			if err != nil {
				endYm = ""
			}
			sim.Years = append(sim.Years, YearRow{
				Year:               year,
				EndYm:              endYm,
				PrincipalCum:       principal,
				PrincipalYear:      yearContributed,
				WithdrawYear:       yearWithdrawn,
				ExemptValue:        ledger.Exempt,
				TaxableValue:       ledger.Taxable,
				TotalValue:         total,
				ExemptPrincipalCum: ledger.CapUsed,
				CapRemaining:       ledger.CapRemaining(),
			})
			yearContributed = 0
			yearWithdrawn = 0
		}
	}

	sim.KPI.MaxYear, sim.KPI.MaxValue = peak(sim.Years, sim.Timeline[0].Total)
	sim.Principal = principal
	sim.CapUsed = ledger.CapUsed
	sim.FinalExempt = ledger.Exempt
	sim.FinalTaxable = ledger.Taxable
	return sim
}

func point(month int, principal, total int64) TimelinePoint {
	return TimelinePoint{
		MonthIndex: month,
		Principal:  principal,
		Profit:     total - principal,
		Total:      total,
	}
}

// peak returns the earliest year with the highest year-end total. Without
// any year rows the opening balance at year 0 is reported.
func peak(years []YearRow, opening int64) (int, int64) {
	if len(years) == 0 {
		return 0, opening
	}
	maxYear, maxValue := years[0].Year, years[0].TotalValue
	for _, row := range years[1:] {
		if row.TotalValue > maxValue {
			maxYear, maxValue = row.Year, row.TotalValue
		}
	}
	return maxYear, maxValue
}
