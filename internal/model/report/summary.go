// Package report computes spending aggregates over expense snapshots.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/entity/expense"
)

var hundred = decimal.New(100, 0)

// CategorySpending is one category's share of the summary. Percentage is
// nil when the grand total is zero and no shares can be computed.
type CategorySpending struct {
	Category   string
	Amount     decimal.Decimal
	Percentage *float64
}

// Summary is the transient aggregation result. It is never persisted.
type Summary struct {
	Categories    []CategorySpending
	TotalAmount   decimal.Decimal
	CategoryCount int
	TopCategory   *CategorySpending
}

// Summarize groups records by their stored category, sums amounts with
// exact decimal addition and computes each group's percentage of the
// total, rounded half-up to 4 decimal places before scaling to 100.
//
// Categories are ordered by total descending; equal totals order by name
// ascending, which also makes TopCategory deterministic on ties.
func Summarize(records []expense.Record) Summary {
	totals := make(map[string]decimal.Decimal)
	for _, rec := range records {
		totals[rec.Category] = totals[rec.Category].Add(rec.Amount)
	}

	categories := make([]CategorySpending, 0, len(totals))
	total := decimal.Zero
	for category, sum := range totals {
		categories = append(categories, CategorySpending{Category: category, Amount: sum})
		total = total.Add(sum)
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Amount.Equal(categories[j].Amount) {
			return categories[i].Amount.GreaterThan(categories[j].Amount)
		}
		return categories[i].Category < categories[j].Category
	})

	if total.IsPositive() {
		for i := range categories {
			pct := categories[i].Amount.Div(total).Round(4).Mul(hundred).InexactFloat64()
			categories[i].Percentage = &pct
		}
	}

	summary := Summary{
		Categories:    categories,
		TotalAmount:   total,
		CategoryCount: len(categories),
	}
	if len(categories) > 0 {
		top := categories[0]
		summary.TopCategory = &top
	}
	return summary
}

// SumAmounts adds up the amounts of records with exact decimal addition.
func SumAmounts(records []expense.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}
