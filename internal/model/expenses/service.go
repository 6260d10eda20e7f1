// Package expenses is the orchestrator around the expense business rules:
// it pulls snapshots from storage, runs normalization, validation and the
// spending-limit policy, and persists the outcome. Every operation works
// on a value snapshot and holds no lock across its read-then-decide-then-
// write sequence, so the monthly cap is best-effort under concurrent
// writes; correctness is bounded by the storage's own consistency.
package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/customerr"
	"expense-tracker/internal/model/normalize"
	"expense-tracker/internal/model/policy"
	"expense-tracker/internal/model/query"
	"expense-tracker/internal/model/report"
	"expense-tracker/internal/model/validate"
)

// frequentCategoryThreshold is where a category listing gets logged as
// frequently used.
const frequentCategoryThreshold = 10

type expenseStorage interface {
	FindAll(ctx context.Context) ([]expense.Record, error)
	FindByID(ctx context.Context, id int64) (expense.Record, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]expense.Record, error)
	FindByCategory(ctx context.Context, category string) ([]expense.Record, error)
	Save(ctx context.Context, rec expense.Record) (expense.Record, error)
	DeleteByID(ctx context.Context, id int64) error
}

type Service struct {
	storage expenseStorage
}

func NewService(storage expenseStorage) *Service {
	return &Service{storage: storage}
}

// finishOp closes the operation span and records its latency metric.
func finishOp(span opentracing.Span, operation string, start time.Time, err error) {
	observeOperation(operation, time.Since(start), err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	span.Finish()
}

// Create validates and normalizes the input, checks the monthly spending
// cap against the current month snapshot and persists the new record.
func (s *Service) Create(ctx context.Context, amount decimal.Decimal, description, category string, date time.Time) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "createExpense")
	start := time.Now()
	defer func() { finishOp(span, "create", start, err) }()

	if err = validate.Create(amount, description, category, date); err != nil {
		return expense.Record{}, err
	}

	rec = expense.NewRecord(amount, normalize.Description(description), normalize.Category(category), date)

	if err = s.checkMonthlyLimit(ctx, rec.Category, rec.Amount, rec.Date); err != nil {
		return expense.Record{}, err
	}

	rec, err = s.storage.Save(ctx, rec)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "create expense")
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id int64) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "getExpense")
	start := time.Now()
	defer func() { finishOp(span, "get", start, err) }()

	if id <= 0 {
		return expense.Record{}, &customerr.ValidationError{Err: fmt.Sprintf("Invalid expense ID: %d", id)}
	}
	rec, err = s.storage.FindByID(ctx, id)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "get expense")
	}
	return rec, nil
}

// Update applies the supplied fields to an existing record. Touched
// fields are re-validated and re-normalized; the monthly cap is
// re-checked only when category, amount or date changed. The cap check
// runs against the storage snapshot, which still holds the record's
// prior values at that point.
func (s *Service) Update(ctx context.Context, id int64, upd expense.Update) (rec expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "updateExpense")
	start := time.Now()
	defer func() { finishOp(span, "update", start, err) }()

	if err = validate.Update(upd); err != nil {
		return expense.Record{}, err
	}

	rec, err = s.storage.FindByID(ctx, id)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "update expense")
	}

	changed := limitFieldsChanged(rec, upd)

	if upd.Amount != nil {
		rec.Amount = *upd.Amount
	}
	if upd.Description != nil {
		rec.Description = normalize.Description(*upd.Description)
	}
	if upd.Category != nil {
		rec.Category = normalize.Category(*upd.Category)
	}
	if upd.Date != nil {
		rec.Date = expense.DateOnly(*upd.Date)
	}

	if changed {
		if err = s.checkMonthlyLimit(ctx, rec.Category, rec.Amount, rec.Date); err != nil {
			return expense.Record{}, err
		}
	}

	rec, err = s.storage.Save(ctx, rec)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "update expense")
	}
	return rec, nil
}

// limitFieldsChanged compares the supplied raw values against the stored
// record to decide whether the cap needs re-checking.
func limitFieldsChanged(rec expense.Record, upd expense.Update) bool {
	if upd.Category != nil && *upd.Category != rec.Category {
		return true
	}
	if upd.Amount != nil && !upd.Amount.Equal(rec.Amount) {
		return true
	}
	if upd.Date != nil && !expense.DateOnly(*upd.Date).Equal(rec.Date) {
		return true
	}
	return false
}

// Delete removes a record unless the audit-retention rule blocks it.
func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "deleteExpense")
	start := time.Now()
	defer func() { finishOp(span, "delete", start, err) }()

	rec, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if err = policy.CheckDeleteRetention(rec); err != nil {
		return err
	}
	if err = s.storage.DeleteByID(ctx, id); err != nil {
		return errors.Wrap(err, "delete expense")
	}
	return nil
}

// List returns expenses matching filter. A nil filter lists everything
// in the business ordering: date descending, ties by amount descending.
func (s *Service) List(ctx context.Context, filter *query.Filter) (res []expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "listExpenses")
	start := time.Now()
	defer func() { finishOp(span, "list", start, err) }()

	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	if filter == nil {
		return query.BusinessOrder(all), nil
	}
	return query.Apply(all, *filter), nil
}

// Search matches the term against descriptions, case-insensitively.
func (s *Service) Search(ctx context.Context, term string) (res []expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "searchExpenses")
	start := time.Now()
	defer func() { finishOp(span, "search", start, err) }()

	if strings.TrimSpace(term) == "" {
		return nil, &customerr.ValidationError{Err: "Search term cannot be empty"}
	}
	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "search expenses")
	}
	return query.Apply(all, query.Filter{SearchTerm: term}), nil
}

// ListByCategory returns the category's expenses newest first. The
// supplied category is normalized before matching.
func (s *Service) ListByCategory(ctx context.Context, category string) (res []expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "listByCategory")
	start := time.Now()
	defer func() { finishOp(span, "list_by_category", start, err) }()

	normalized := normalize.Category(category)
	recs, err := s.storage.FindByCategory(ctx, normalized)
	if err != nil {
		return nil, errors.Wrap(err, "list by category")
	}
	if len(recs) > frequentCategoryThreshold {
		logger.Info("category is frequently used",
			zap.String("category", normalized), zap.Int("expenses", len(recs)))
	}
	return query.ByDateDesc(recs), nil
}

// CategorySummary aggregates all expenses into per-category totals and
// percentages.
func (s *Service) CategorySummary(ctx context.Context) (summary report.Summary, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "categorySummary")
	start := time.Now()
	defer func() { finishOp(span, "category_summary", start, err) }()

	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return report.Summary{}, errors.Wrap(err, "category summary")
	}
	return report.Summarize(all), nil
}

// MonthlyTotal sums the amounts of the given calendar month.
func (s *Service) MonthlyTotal(ctx context.Context, year, month int) (total decimal.Decimal, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "monthlyTotal")
	start := time.Now()
	defer func() { finishOp(span, "monthly_total", start, err) }()

	if month < 1 || month > 12 {
		return decimal.Zero, &customerr.ValidationError{Err: fmt.Sprintf("Invalid month: %d", month)}
	}
	from, to := policy.MonthBounds(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	recs, err := s.storage.FindByDateRange(ctx, from, to)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "monthly total")
	}
	return report.SumAmounts(recs), nil
}

// CurrentMonthTotal sums the amounts of the month containing today.
func (s *Service) CurrentMonthTotal(ctx context.Context) (decimal.Decimal, error) {
	now := time.Now()
	return s.MonthlyTotal(ctx, now.Year(), int(now.Month()))
}

// TotalSpending sums every stored expense.
func (s *Service) TotalSpending(ctx context.Context) (total decimal.Decimal, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "totalSpending")
	start := time.Now()
	defer func() { finishOp(span, "total_spending", start, err) }()

	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "total spending")
	}
	return report.SumAmounts(all), nil
}

// CategoryTotal sums the expenses of one category, normalized first.
func (s *Service) CategoryTotal(ctx context.Context, category string) (total decimal.Decimal, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "categoryTotal")
	start := time.Now()
	defer func() { finishOp(span, "category_total", start, err) }()

	recs, err := s.storage.FindByCategory(ctx, normalize.Category(category))
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "category total")
	}
	return report.SumAmounts(recs), nil
}

// Count reports how many expenses are stored.
func (s *Service) Count(ctx context.Context) (count int64, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "countExpenses")
	start := time.Now()
	defer func() { finishOp(span, "count", start, err) }()

	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count expenses")
	}
	return int64(len(all)), nil
}

// TopExpensive returns up to limit expenses with the highest amounts.
func (s *Service) TopExpensive(ctx context.Context, limit int) (res []expense.Record, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "topExpensive")
	start := time.Now()
	defer func() { finishOp(span, "top_expensive", start, err) }()

	if limit <= 0 {
		return nil, &customerr.ValidationError{Err: fmt.Sprintf("Invalid limit: %d", limit)}
	}
	all, err := s.storage.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "top expensive")
	}
	return query.TopByAmount(all, limit), nil
}

// checkMonthlyLimit fetches the month snapshot around date and runs the
// cap policy over it.
func (s *Service) checkMonthlyLimit(ctx context.Context, category string, amount decimal.Decimal, date time.Time) error {
	from, to := policy.MonthBounds(date)
	month, err := s.storage.FindByDateRange(ctx, from, to)
	if err != nil {
		return errors.Wrap(err, "check monthly limit")
	}
	return policy.CheckMonthlyLimit(category, amount, month)
}
