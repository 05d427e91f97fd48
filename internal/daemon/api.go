package daemon

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/export"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

func (s *Service) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok\n") })

	v1 := r.Group("/v1")
	v1.GET("/status", func(c *gin.Context) { c.JSON(http.StatusOK, s.snapshotStatus()) })
	v1.GET("/events", func(c *gin.Context) { c.JSON(http.StatusOK, s.recentEvents()) })
	v1.GET("/stream", s.handleStream)

	v1.GET("/transactions", s.listTransactions)
	v1.POST("/transactions", s.createTransaction)
	v1.GET("/transactions/:id", s.getTransaction)
	v1.PUT("/transactions/:id", s.updateTransaction)
	v1.DELETE("/transactions/:id", s.deleteTransaction)

	v1.GET("/budgets", s.listBudgets)
	v1.PUT("/budgets/:category", s.putBudget)
	v1.DELETE("/budgets/:category", s.deleteBudget)

	v1.GET("/goals", s.listGoals)
	v1.POST("/goals", s.createGoal)
	v1.PUT("/goals/:id", s.updateGoal)
	v1.DELETE("/goals/:id", s.deleteGoal)
	v1.POST("/goals/:id/contribute", s.contribute)

	v1.GET("/categories", s.listCategories)
	v1.GET("/summary", s.summary)
	v1.GET("/by-category", s.byCategory)
	v1.GET("/monthly", s.monthly)
	v1.GET("/trends", s.trends)
	v1.GET("/notifications", s.notifications)
	v1.POST("/notifications/read", s.markRead)
	v1.GET("/convert", s.convert)

	v1.GET("/export.csv", s.exportCSV)
	v1.GET("/export.xlsx", s.exportXLSX)
}

// ---------- transactions ----------

func (s *Service) listTransactions(c *gin.Context) {
	filter, err := model.ParseTypeFilter(c.Query("type"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	txs := pipeline.FilterTransactions(s.ledger.Transactions(), c.Query("q"), filter)
	c.JSON(http.StatusOK, txs)
}

func (s *Service) createTransaction(c *gin.Context) {
	var tx model.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.ledger.AddTransaction(c.Request.Context(), tx)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Service) getTransaction(c *gin.Context) {
	tx, err := s.ledger.Transaction(c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (s *Service) updateTransaction(c *gin.Context) {
	var tx model.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	tx.ID = c.Param("id")
	updated, err := s.ledger.UpdateTransaction(c.Request.Context(), tx)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Service) deleteTransaction(c *gin.Context) {
	if err := s.ledger.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- budgets ----------

func (s *Service) listBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.BudgetStatuses(s.budgets(s.ledger.Snapshot())))
}

type budgetRequest struct {
	Limit decimal.Decimal `json:"limit"`
	Spent decimal.Decimal `json:"spent"`
	Emoji string          `json:"emoji"`
	Month int             `json:"month"`
	Year  int             `json:"year"`
}

func (s *Service) putBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.ledger.SetBudget(c.Request.Context(), model.Budget{
		Category: c.Param("category"),
		Limit:    req.Limit,
		Spent:    req.Spent,
		Emoji:    req.Emoji,
		Month:    req.Month,
		Year:     req.Year,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pipeline.BudgetStatus(b))
}

func (s *Service) deleteBudget(c *gin.Context) {
	if err := s.ledger.DeleteBudget(c.Request.Context(), c.Param("category")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- goals ----------

func (s *Service) listGoals(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.GoalProgresses(s.ledger.Snapshot().Goals))
}

func (s *Service) createGoal(c *gin.Context) {
	var g model.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.ledger.AddGoal(c.Request.Context(), g)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, pipeline.GoalProgress(created))
}

func (s *Service) updateGoal(c *gin.Context) {
	var g model.Goal
	if err := c.ShouldBindJSON(&g); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	g.ID = c.Param("id")
	updated, err := s.ledger.UpdateGoal(c.Request.Context(), g)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pipeline.GoalProgress(updated))
}

func (s *Service) deleteGoal(c *gin.Context) {
	if err := s.ledger.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) contribute(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.ledger.Contribute(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pipeline.GoalProgress(g))
}

// ---------- read-only views ----------

func (s *Service) listCategories(c *gin.Context) {
	var typ model.TxType
	if q := c.Query("type"); q != "" {
		t, err := model.ParseTxType(q)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		typ = t
	}
	c.JSON(http.StatusOK, model.Categories(typ))
}

func (s *Service) summary(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.Totals(s.ledger.Transactions()))
}

func (s *Service) byCategory(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.ExpenseByCategory(s.ledger.Transactions()))
}

func (s *Service) monthly(c *gin.Context) {
	n := s.cfg.TrendMonths
	if q := c.Query("months"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 120 {
			fail(c, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and 120, got %q", q))
			return
		}
		n = v
	}
	c.JSON(http.StatusOK, pipeline.MonthlySeries(s.ledger.Transactions(), n, s.now()))
}

func (s *Service) trends(c *gin.Context) {
	c.JSON(http.StatusOK, pipeline.CategoryTrends(s.ledger.Transactions(), s.now()))
}

func (s *Service) notifications(c *gin.Context) {
	ns, err := s.ledger.Notifications(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": pipeline.Unread(ns), "notifications": ns})
}

func (s *Service) markRead(c *gin.Context) {
	if err := s.ledger.MarkNotificationsRead(c.Request.Context()); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.DefaultQuery("amount", "1"))
	if err != nil {
		fail(c, http.StatusBadRequest, "amount must be a number")
		return
	}
	from, to := c.DefaultQuery("from", "USD"), c.DefaultQuery("to", "INR")
	out, err := s.cfg.Converter.Convert(amount, from, to)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount, "from": from, "to": to, "result": out})
}

// ---------- exports ----------

func (s *Service) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, s.ledger.Transactions()); err != nil {
		failErr(c, err)
		return
	}
	s.attachment(c, "csv", "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Service) exportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, s.ledger.Transactions()); err != nil {
		failErr(c, err)
		return
	}
	s.attachment(c, "xlsx", export.ContentTypeXLSX, buf.Bytes())
}

func (s *Service) attachment(c *gin.Context, ext, contentType string, body []byte) {
	name := fmt.Sprintf("transactions_%s.%s", s.now().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, body)
}
