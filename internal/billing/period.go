// Package billing holds the pure recurring-billing engine: period
// partitioning, due-date derivation and the duplicate-period guard. Nothing
// in this package touches the database.
package billing

import (
	"github.com/suitedesk/suitedesk/internal/civil"
)

// Period is one billing period. Both bounds are inclusive calendar dates.
type Period struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Key is the canonical serialization used for duplicate detection.
func (p Period) Key() string {
	return p.Start.String() + "|" + p.End.String()
}

// Partition splits [start, endExclusive) into ordered, contiguous,
// non-overlapping periods of the given month width. The final period is
// truncated to end the day before endExclusive. A range where
// start >= endExclusive produces no periods; a range shorter than one width
// produces exactly one truncated period.
func Partition(start, endExclusive civil.Date, months int) []Period {
	if months < 1 {
		months = 1
	}

	var periods []Period
	lastDay := endExclusive.AddDays(-1)

	cursor := start
	for cursor.Before(endExclusive) {
		periodEnd := cursor.AddMonths(months).AddDays(-1)
		actualEnd := periodEnd
		if lastDay.Before(actualEnd) {
			actualEnd = lastDay
		}

		periods = append(periods, Period{Start: cursor, End: actualEnd})
		cursor = periodEnd.AddDays(1)
	}

	return periods
}

// DueDate maps a period start to its payment due date, a fixed offset of
// days before the period begins.
func DueDate(periodStart civil.Date, offsetDays int) civil.Date {
	return periodStart.AddDays(-offsetDays)
}

// FilterNew returns the candidates not already invoiced, preserving order.
// Unless includeFuture is set, candidates starting after upTo are also
// dropped, so a generation run only materializes periods due so far.
// Repeated runs over the same range are therefore idempotent: re-filtering
// against existing ∪ FilterNew(candidates, existing) yields nothing.
func FilterNew(candidates, existing []Period, upTo civil.Date, includeFuture bool) []Period {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p.Key()] = struct{}{}
	}

	var fresh []Period
	for _, p := range candidates {
		if _, ok := seen[p.Key()]; ok {
			continue
		}
		if !includeFuture && upTo.Before(p.Start) {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh
}
