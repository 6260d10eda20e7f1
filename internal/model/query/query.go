// Package query filters, searches and sorts in-memory expense snapshots.
// It never touches storage; callers hand it the records to work on.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/model/normalize"
)

const (
	defaultSortBy        = "date"
	defaultSortDirection = "desc"
)

// Filter describes one query. Every field is optional; the provided ones
// combine with logical AND. Zero SortBy and SortDirection fall back to
// date descending.
type Filter struct {
	SearchTerm    string
	Category      string
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortDirection string
}

// Apply returns the records matching f, ordered by f's sort settings.
// The input slice is never modified.
func Apply(all []expense.Record, f Filter) []expense.Record {
	matched := make([]expense.Record, 0, len(all))
	for _, rec := range all {
		if matches(rec, f) {
			matched = append(matched, rec)
		}
	}
	return Sort(matched, f.SortBy, f.SortDirection)
}

func matches(rec expense.Record, f Filter) bool {
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		if !strings.Contains(strings.ToLower(rec.Description), strings.ToLower(term)) {
			return false
		}
	}
	if f.Category != "" {
		if rec.Category != normalize.Category(f.Category) {
			return false
		}
	}
	if f.MinAmount != nil && rec.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && rec.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.StartDate != nil && rec.Date.Before(expense.DateOnly(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && rec.Date.After(expense.DateOnly(*f.EndDate)) {
		return false
	}
	return true
}

// Sort orders records by the requested key and direction. Unrecognized
// keys fall back to date; any direction except "asc" means descending.
// Description and category compare case-insensitively.
func Sort(records []expense.Record, sortBy, direction string) []expense.Record {
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	if direction == "" {
		direction = defaultSortDirection
	}
	ascending := strings.EqualFold(direction, "asc")

	res := copyRecords(records)
	sort.SliceStable(res, func(i, j int) bool {
		cmp := compareBy(res[i], res[j], strings.ToLower(sortBy))
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return res
}

func compareBy(a, b expense.Record, key string) int {
	switch key {
	case "amount":
		return a.Amount.Cmp(b.Amount)
	case "description":
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case "category":
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	case "createdat":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return a.Date.Compare(b.Date)
	}
}

// BusinessOrder is the fixed default for unfiltered listings: date
// descending, ties broken by amount descending. It is a separate policy
// from the generic sort defaults and must stay that way.
func BusinessOrder(records []expense.Record) []expense.Record {
	res := copyRecords(records)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].Amount.GreaterThan(res[j].Amount)
	})
	return res
}

// ByDateDesc orders records newest first.
func ByDateDesc(records []expense.Record) []expense.Record {
	res := copyRecords(records)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})
	return res
}

// TopByAmount returns up to limit records with the highest amounts.
func TopByAmount(records []expense.Record, limit int) []expense.Record {
	res := copyRecords(records)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Amount.GreaterThan(res[j].Amount)
	})
	if limit < 0 {
		limit = 0
	}
	if limit > len(res) {
		limit = len(res)
	}
	return res[:limit]
}

func copyRecords(records []expense.Record) []expense.Record {
	res := make([]expense.Record, len(records))
	copy(res, records)
	return res
}
