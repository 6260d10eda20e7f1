// Package policy enforces the spending-cap and audit-retention rules.
// Checks are pure functions over a storage snapshot; the caller fetches
// the snapshot and persists afterwards, so under concurrent writes the
// cap is best-effort, not a hard guarantee.
package policy

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/model/customerr"
)

const retentionYears = 1

// monthlyCaps holds the static per-category caps. Categories outside
// this set are uncapped.
var monthlyCaps = map[string]decimal.Decimal{
	"Food":           decimal.New(1000, 0),
	"Transportation": decimal.New(500, 0),
	"Entertainment":  decimal.New(300, 0),
	"Shopping":       decimal.New(800, 0),
}

// MonthBounds returns the first and last day of the calendar month
// containing date, both at UTC midnight.
func MonthBounds(date time.Time) (start, end time.Time) {
	month := now.New(expense.DateOnly(date))
	return expense.DateOnly(month.BeginningOfMonth()), expense.DateOnly(month.EndOfMonth())
}

// CheckMonthlyLimit fails when the month's spending in category plus
// newAmount would exceed the cap. Spending exactly up to the cap passes.
// monthRecords is the snapshot of the month containing the new expense;
// records from other categories are ignored.
func CheckMonthlyLimit(category string, newAmount decimal.Decimal, monthRecords []expense.Record) error {
	limit, capped := monthlyCaps[category]
	if !capped {
		return nil
	}

	current := decimal.Zero
	for _, rec := range monthRecords {
		if rec.Category == category {
			current = current.Add(rec.Amount)
		}
	}

	if current.Add(newAmount).GreaterThan(limit) {
		return &customerr.BusinessRuleError{Err: fmt.Sprintf(
			"Monthly spending limit exceeded for %s. Limit: $%s, Current: $%s, New expense: $%s",
			category, limit, current, newAmount)}
	}
	return nil
}

// CheckDeleteRetention blocks deletion of records dated strictly before
// one year ago.
func CheckDeleteRetention(rec expense.Record) error {
	cutoff := expense.DateOnly(time.Now()).AddDate(-retentionYears, 0, 0)
	if expense.DateOnly(rec.Date).Before(cutoff) {
		return &customerr.BusinessRuleError{Err: "Cannot delete expenses older than 1 year for audit purposes"}
	}
	return nil
}
