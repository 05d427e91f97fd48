package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestService(t, false)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s, _ := newTestService(t, false)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/v1/transactions",
		`{"type":"expense","amount":"25.5","category":"Food","description":"Pizza","date":"2025-11-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var created model.Transaction
	decode(t, rec, &created)
	if created.ID == "" || created.Emoji != "🍕" || created.Date.String() != "2025-11-02" {
		t.Errorf("created = %+v", created)
	}

	rec = do(t, h, http.MethodPut, "/v1/transactions/"+created.ID,
		`{"type":"expense","amount":30,"category":"Food","description":"Pizza Hut","date":"2025-11-02"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/transactions/"+created.ID, "")
	var got model.Transaction
	decode(t, rec, &got)
	if got.Description != "Pizza Hut" || !got.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("after update = %+v", got)
	}

	if rec = do(t, h, http.MethodDelete, "/v1/transactions/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/v1/transactions/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d", rec.Code)
	}
}

func TestCreateTransactionRejectsBadType(t *testing.T) {
	s, _ := newTestService(t, false)
	rec := do(t, s.Handler(), http.MethodPost, "/v1/transactions",
		`{"type":"transfer","amount":"5","category":"Food"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if !strings.Contains(body["error"], "transfer") {
		t.Errorf("error = %q", body["error"])
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s, _ := newTestService(t, true)
	h := s.Handler()

	var txs []model.Transaction
	decode(t, do(t, h, http.MethodGet, "/v1/transactions?type=income", ""), &txs)
	if len(txs) != 6 {
		t.Errorf("income rows = %d, want 6", len(txs))
	}

	decode(t, do(t, h, http.MethodGet, "/v1/transactions?q=pizza", ""), &txs)
	if len(txs) != 1 || txs[0].ID != "1" {
		t.Errorf("search = %+v", txs)
	}

	if rec := do(t, h, http.MethodGet, "/v1/transactions?type=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter = %d", rec.Code)
	}
}

func TestBudgetsAndGoals(t *testing.T) {
	s, _ := newTestService(t, true)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/v1/budgets/Food", `{"limit":"1000","spent":"900"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put budget = %d %s", rec.Code, rec.Body.String())
	}
	var st model.BudgetStatus
	decode(t, rec, &st)
	if st.Severity != model.SeverityWarning || st.Percentage != 90 {
		t.Errorf("status = %+v", st)
	}

	var list []model.BudgetStatus
	decode(t, do(t, h, http.MethodGet, "/v1/budgets", ""), &list)
	if len(list) != 5 || list[3].Severity != model.SeverityDanger {
		t.Errorf("budgets = %+v", list)
	}

	if rec := do(t, h, http.MethodDelete, "/v1/budgets/nothing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing budget = %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/v1/goals/101/contribute", `{"amount":1760}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("contribute = %d %s", rec.Code, rec.Body.String())
	}
	var gp model.GoalProgress
	decode(t, rec, &gp)
	if !gp.Achieved || gp.Percentage != 100 {
		t.Errorf("goal = %+v", gp)
	}

	rec = do(t, h, http.MethodPost, "/v1/goals", `{"name":"Car","target":"8000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal = %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &gp)
	if gp.Goal.Emoji != model.DefaultGoalEmoji {
		t.Errorf("goal emoji = %q", gp.Goal.Emoji)
	}
}

func TestSummaryAndSeries(t *testing.T) {
	s, _ := newTestService(t, true)
	h := s.Handler()

	var totals model.Totals
	decode(t, do(t, h, http.MethodGet, "/v1/summary", ""), &totals)
	if !totals.Income.Equal(decimal.NewFromInt(14200)) {
		t.Errorf("income = %s, want 14200", totals.Income)
	}

	var series []model.MonthPoint
	decode(t, do(t, h, http.MethodGet, "/v1/monthly?months=3", ""), &series)
	if len(series) != 3 || series[2].Month != "Nov" || !series[0].Income.Equal(decimal.NewFromInt(3300)) {
		t.Errorf("series = %+v", series)
	}
	if rec := do(t, h, http.MethodGet, "/v1/monthly?months=0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("months=0 = %d", rec.Code)
	}

	var byCat []model.CategoryTotal
	decode(t, do(t, h, http.MethodGet, "/v1/by-category", ""), &byCat)
	if len(byCat) == 0 || byCat[0].Name != "Food" {
		t.Errorf("by-category = %+v", byCat)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	s, _ := newTestService(t, true)
	h := s.Handler()

	var body struct {
		Unread        int                  `json:"unread"`
		Notifications []model.Notification `json:"notifications"`
	}
	decode(t, do(t, h, http.MethodGet, "/v1/notifications", ""), &body)
	if body.Unread != 3 || len(body.Notifications) != 4 {
		t.Errorf("notifications = %+v", body)
	}

	if rec := do(t, h, http.MethodPost, "/v1/notifications/read", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("mark read = %d", rec.Code)
	}
	decode(t, do(t, h, http.MethodGet, "/v1/notifications", ""), &body)
	if body.Unread != 0 {
		t.Errorf("unread after mark = %d", body.Unread)
	}
}

func TestConvertAndExport(t *testing.T) {
	s, _ := newTestService(t, true)
	h := s.Handler()

	var conv struct {
		Result decimal.Decimal `json:"result"`
	}
	decode(t, do(t, h, http.MethodGet, "/v1/convert?amount=100&from=USD&to=INR", ""), &conv)
	if !conv.Result.Equal(decimal.NewFromInt(8300)) {
		t.Errorf("convert = %s", conv.Result)
	}
	if rec := do(t, h, http.MethodGet, "/v1/convert?from=XYZ&to=INR", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown currency = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/export.csv", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "Date,Type,Category,Description,Amount\n") {
		t.Errorf("csv = %d %q", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions_20251115.csv") {
		t.Errorf("disposition = %q", cd)
	}

	rec = do(t, h, http.MethodGet, "/v1/export.xlsx", "")
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 || !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Errorf("xlsx = %d, %d bytes", rec.Code, rec.Body.Len())
	}
}
