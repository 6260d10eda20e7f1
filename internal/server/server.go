// Package server is the HTTP transport. It deserializes caller input
// into expense model operations and serializes results back; no business
// decisions live here.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"expense-tracker/internal/logger"
	"expense-tracker/internal/model/expenses"
	"expense-tracker/internal/model/reports"
)

type reportProducer interface {
	RequestReport(req reports.Request) error
}

type reportCache interface {
	GetReport(key string) ([]byte, bool, error)
}

type Server struct {
	service  *expenses.Service
	producer reportProducer
	cache    reportCache
	engine   *gin.Engine
}

// New wires the routes. producer and cache may be nil, in which case the
// async report endpoints answer 503.
func New(service *expenses.Service, producer reportProducer, cache reportCache) *Server {
	s := &Server{
		service:  service,
		producer: producer,
		cache:    cache,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	api := engine.Group("/api")
	{
		api.POST("/expenses", s.createExpense)
		api.GET("/expenses", s.listExpenses)
		api.GET("/expenses/:id", s.getExpense)
		api.PUT("/expenses/:id", s.updateExpense)
		api.DELETE("/expenses/:id", s.deleteExpense)

		api.GET("/search", s.searchExpenses)
		api.GET("/summary", s.categorySummary)

		api.GET("/categories/:category/expenses", s.listByCategory)
		api.GET("/categories/:category/total", s.categoryTotal)

		api.GET("/reports/total", s.totalSpending)
		api.GET("/reports/count", s.countExpenses)
		api.GET("/reports/top", s.topExpensive)
		api.GET("/reports/monthly/:year/:month", s.monthlyReport)
		api.GET("/reports/monthly/:year/:month/total", s.monthlyTotal)
		api.GET("/reports/current-month", s.currentMonthTotal)
		api.POST("/reports/monthly", s.requestMonthlyReport)
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine = engine
	return s
}

func (s *Server) Run(addr string) error {
	logger.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
