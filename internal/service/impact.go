package service

import (
	"time"

	"github.com/hospitalops/cftflow/internal/domain/request"
)

// avgUnitsPerMonth is the fixed dispensing factor used for budget estimates:
// on average 1.33 units of a drug are consumed per treatment month.
const avgUnitsPerMonth = 1.33

// ComputeImpact derives the financial impact of a therapy from the catalog
// unit price and the expected duration in months. Deterministic and
// side-effect free; "now" decides how many months remain in the calendar
// year for the year-end projection.
func ComputeImpact(unitPrice float64, months int, now time.Time) (request.FinancialImpact, error) {
	if months < 1 {
		return request.FinancialImpact{}, ErrInvalidDuration
	}

	monthly := unitPrice * avgUnitsPerMonth
	remaining := monthsRemainingInYear(now)
	toYearEnd := months
	if remaining < toYearEnd {
		toYearEnd = remaining
	}

	return request.FinancialImpact{
		MonthlyCost:   monthly,
		TotalCost:     monthly * float64(months),
		CostToYearEnd: monthly * float64(toYearEnd),
	}, nil
}

// monthsRemainingInYear excludes the month already underway: a January
// request has eleven billable months before year end, a December one none.
func monthsRemainingInYear(now time.Time) int {
	return 12 - int(now.Month())
}
