package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/customerr"
	"expense-tracker/internal/model/query"
	"expense-tracker/internal/model/reports"
)

const dateLayout = "2006-01-02"

type createExpenseReq struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        string           `json:"date"`
}

type updateExpenseReq struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Date        *string          `json:"date"`
}

type expenseResp struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	CreatedAt   string          `json:"createdAt"`
}

func toResp(rec expense.Record) expenseResp {
	return expenseResp{
		ID:          rec.ID,
		Amount:      rec.Amount,
		Description: rec.Description,
		Category:    rec.Category,
		Date:        rec.Date.Format(dateLayout),
		CreatedAt:   rec.CreatedAt.Format(dateLayout),
	}
}

func toRespList(recs []expense.Record) []expenseResp {
	res := make([]expenseResp, 0, len(recs))
	for _, rec := range recs {
		res = append(res, toResp(rec))
	}
	return res
}

func (s *Server) createExpense(c *gin.Context) {
	var req createExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Amount == nil {
		badRequest(c, "Amount is required")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	rec, err := s.service.Create(c.Request.Context(), *req.Amount, req.Description, req.Category, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toResp(rec)})
}

func (s *Server) getExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toResp(rec)})
}

func (s *Server) updateExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	upd := expense.Update{
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		date, ok := parseDate(c, *req.Date)
		if !ok {
			return
		}
		upd.Date = &date
	}

	rec, err := s.service.Update(c.Request.Context(), id, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toResp(rec)})
}

func (s *Server) deleteExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": id}})
}

func (s *Server) listExpenses(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	recs, err := s.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRespList(recs), "count": len(recs)})
}

func (s *Server) searchExpenses(c *gin.Context) {
	recs, err := s.service.Search(c.Request.Context(), c.Query("term"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRespList(recs), "count": len(recs)})
}

func (s *Server) listByCategory(c *gin.Context) {
	recs, err := s.service.ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRespList(recs), "count": len(recs)})
}

func (s *Server) categorySummary(c *gin.Context) {
	summary, err := s.service.CategorySummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	categories := make([]gin.H, 0, len(summary.Categories))
	for _, cat := range summary.Categories {
		entry := gin.H{"category": cat.Category, "amount": cat.Amount}
		if cat.Percentage != nil {
			entry["percentage"] = *cat.Percentage
		}
		categories = append(categories, entry)
	}
	resp := gin.H{
		"categories":    categories,
		"totalAmount":   summary.TotalAmount,
		"categoryCount": summary.CategoryCount,
	}
	if summary.TopCategory != nil {
		resp["topCategory"] = summary.TopCategory.Category
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) categoryTotal(c *gin.Context) {
	total, err := s.service.CategoryTotal(c.Request.Context(), c.Param("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total}})
}

func (s *Server) totalSpending(c *gin.Context) {
	total, err := s.service.TotalSpending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total}})
}

func (s *Server) countExpenses(c *gin.Context) {
	count, err := s.service.Count(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"count": count}})
}

func (s *Server) topExpensive(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}
	recs, err := s.service.TopExpensive(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toRespList(recs), "count": len(recs)})
}

func (s *Server) monthlyTotal(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		badRequest(c, "invalid month")
		return
	}
	total, svcErr := s.service.MonthlyTotal(c.Request.Context(), year, month)
	if svcErr != nil {
		writeError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total}})
}

func (s *Server) currentMonthTotal(c *gin.Context) {
	total, err := s.service.CurrentMonthTotal(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total}})
}

func (s *Server) requestMonthlyReport(c *gin.Context) {
	if s.producer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report pipeline not available"})
		return
	}
	var req reports.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Month < 1 || req.Month > 12 {
		badRequest(c, "invalid month")
		return
	}
	if err := s.producer.RequestReport(req); err != nil {
		logger.Error("failed to enqueue report request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue report request"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": gin.H{"key": reports.CacheKey(req.Year, req.Month)}})
}

func (s *Server) monthlyReport(c *gin.Context) {
	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report cache not available"})
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		badRequest(c, "invalid month")
		return
	}

	payload, found, err := s.cache.GetReport(reports.CacheKey(year, month))
	if err != nil {
		logger.Error("failed to read report cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report cache"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not generated yet"})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// ---------- helpers ----------

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid expense id")
		return 0, false
	}
	return id, true
}

func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	if raw == "" {
		badRequest(c, "Date is required")
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		badRequest(c, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// parseFilter builds a query filter from the URL parameters. A request
// with no recognized parameters means the unfiltered business listing.
func parseFilter(c *gin.Context) (*query.Filter, bool) {
	params := c.Request.URL.Query()
	recognized := []string{"searchTerm", "category", "minAmount", "maxAmount", "startDate", "endDate", "sortBy", "sortDirection"}
	present := false
	for _, key := range recognized {
		if params.Has(key) {
			present = true
			break
		}
	}
	if !present {
		return nil, true
	}

	filter := &query.Filter{
		SearchTerm:    c.Query("searchTerm"),
		Category:      c.Query("category"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
	}
	if raw := c.Query("minAmount"); raw != "" {
		min, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, "invalid minAmount")
			return nil, false
		}
		filter.MinAmount = &min
	}
	if raw := c.Query("maxAmount"); raw != "" {
		max, err := decimal.NewFromString(raw)
		if err != nil {
			badRequest(c, "invalid maxAmount")
			return nil, false
		}
		filter.MaxAmount = &max
	}
	if raw := c.Query("startDate"); raw != "" {
		start, ok := parseDate(c, raw)
		if !ok {
			return nil, false
		}
		filter.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, ok := parseDate(c, raw)
		if !ok {
			return nil, false
		}
		filter.EndDate = &end
	}
	return filter, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps the model's error kinds onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var vErr *customerr.ValidationError
	var brErr *customerr.BusinessRuleError
	var nfErr *customerr.NotFoundError

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Err})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, gin.H{"error": nfErr.Error()})
	case errors.As(err, &brErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": brErr.Err})
	default:
		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
