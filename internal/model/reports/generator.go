// Package reports builds the monthly spending report served through the
// report cache. Generation runs in the reporter binary, off the request
// path; a generated report reflects the storage snapshot at generation
// time.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/customerr"
	"expense-tracker/internal/model/policy"
	"expense-tracker/internal/model/report"
)

// Request asks for one calendar month's report. Serialized as JSON on
// the reports topic.
type Request struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CacheKey is where a month's generated report lives in the cache.
func CacheKey(year, month int) string {
	return fmt.Sprintf("report:%04d-%02d", year, month)
}

// CategoryLine is one category row of a monthly report.
type CategoryLine struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage *float64        `json:"percentage,omitempty"`
}

// Monthly is a rendered month report.
type Monthly struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CategoryCount int             `json:"categoryCount"`
	TopCategory   string          `json:"topCategory,omitempty"`
	Categories    []CategoryLine  `json:"categories"`
	GeneratedAt   time.Time       `json:"generatedAt"`
}

type expensesStorage interface {
	FindByDateRange(ctx context.Context, start, end time.Time) ([]expense.Record, error)
}

type Generator struct {
	storage expensesStorage
}

func NewGenerator(storage expensesStorage) *Generator {
	return &Generator{storage: storage}
}

// Generate aggregates the month's expenses into a report.
func (g *Generator) Generate(ctx context.Context, year, month int) (Monthly, error) {
	logger.Info("Generate report - start", zap.Int("year", year), zap.Int("month", month))
	defer logger.Info("Generate report - end")

	if month < 1 || month > 12 {
		return Monthly{}, &customerr.ValidationError{Err: fmt.Sprintf("Invalid month: %d", month)}
	}

	from, to := policy.MonthBounds(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	recs, err := g.storage.FindByDateRange(ctx, from, to)
	if err != nil {
		return Monthly{}, errors.Wrap(err, "generate report")
	}

	summary := report.Summarize(recs)

	res := Monthly{
		Year:          year,
		Month:         month,
		TotalAmount:   summary.TotalAmount,
		CategoryCount: summary.CategoryCount,
		Categories:    make([]CategoryLine, 0, len(summary.Categories)),
		GeneratedAt:   time.Now().UTC(),
	}
	if summary.TopCategory != nil {
		res.TopCategory = summary.TopCategory.Category
	}
	for _, cat := range summary.Categories {
		res.Categories = append(res.Categories, CategoryLine{
			Category:   cat.Category,
			Amount:     cat.Amount,
			Percentage: cat.Percentage,
		})
	}
	return res, nil
}
