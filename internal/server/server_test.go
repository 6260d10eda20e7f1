package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/model/expenses"
	"expense-tracker/internal/model/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	return New(expenses.NewService(storage.NewInMemStorage()), nil, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func createBody(amount, description, category string) string {
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`{"amount": %s, "description": %q, "category": %q, "date": %q}`,
		amount, description, category, date)
}

func Test_OnCreate_ShouldReturnNormalizedExpense(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("12.50", "  lunch   downtown ", "food"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data struct {
			ID          int64  `json:"id"`
			Description string `json:"description"`
			Category    string `json:"category"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.ID)
	assert.Equal(t, "lunch downtown", resp.Data.Description)
	assert.Equal(t, "Food", resp.Data.Category)
}

func Test_OnCreateInvalidAmount_ShouldReturn400(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("-5", "lunch", "food"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Amount must be positive")
}

func Test_OnCreateOverMonthlyCap_ShouldReturn422(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("950.00", "groceries", "food"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/expenses", createBody("51.00", "more groceries", "food"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Monthly spending limit exceeded for Food")
}

func Test_OnGetMissing_ShouldReturn404(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/expenses/42", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "expense not found with ID: 42")
}

func Test_OnGetBadID_ShouldReturn400(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/expenses/abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_OnUpdate_ShouldApplyFields(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("10.00", "bus ticket", "transport"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/api/expenses/1", `{"description": "train ticket"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "train ticket")
	assert.Contains(t, rec.Body.String(), "Transportation")
}

func Test_OnUpdateNoFields_ShouldReturn400(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("10.00", "bus ticket", "transport"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/api/expenses/1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No fields provided for update")
}

func Test_OnDelete_ShouldRemoveExpense(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", createBody("10.00", "snack", "food"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/expenses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/expenses/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_OnListWithCategoryFilter_ShouldReturnMatching(t *testing.T) {
	s := newTestServer()

	require.Equal(t, http.StatusCreated,
		doRequest(t, s, http.MethodPost, "/api/expenses", createBody("10.00", "lunch", "food")).Code)
	require.Equal(t, http.StatusCreated,
		doRequest(t, s, http.MethodPost, "/api/expenses", createBody("20.00", "taxi", "transport")).Code)

	rec := doRequest(t, s, http.MethodGet, "/api/expenses?category=food", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func Test_OnSearchBlankTerm_ShouldReturn400(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/search?term=%20", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Search term cannot be empty")
}

func Test_OnSummary_ShouldReportCategories(t *testing.T) {
	s := newTestServer()

	require.Equal(t, http.StatusCreated,
		doRequest(t, s, http.MethodPost, "/api/expenses", createBody("30.00", "lunch", "food")).Code)
	require.Equal(t, http.StatusCreated,
		doRequest(t, s, http.MethodPost, "/api/expenses", createBody("10.00", "taxi", "transport")).Code)

	rec := doRequest(t, s, http.MethodGet, "/api/summary", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			CategoryCount int    `json:"categoryCount"`
			TopCategory   string `json:"topCategory"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.CategoryCount)
	assert.Equal(t, "Food", resp.Data.TopCategory)
}

func Test_OnRequestReportWithoutProducer_ShouldReturn503(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/api/reports/monthly", `{"year": 2026, "month": 8}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func Test_OnMonthlyReportWithoutCache_ShouldReturn503(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/api/reports/monthly/2026/8", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
