package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.NewStore()
	logger := log.New(log.DefaultConfig())
	txSvc := services.NewTransactionService(store, nil, logger)
	budgetSvc := services.NewBudgetService(store, store, nil, logger)
	reportSvc := services.NewReportService(txSvc,
		cache.NewLRUCache[services.Dashboard](8, time.Minute),
		cache.NewLRUCache[services.Report](8, time.Minute),
		logger)

	s := NewServer(":0", txSvc, budgetSvc, reportSvc, logger)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options %q", got)
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t)

	body := `{"amount": 42.50, "type": "expense", "category": "food", "description": "Lunch", "date": "2025-01-15"}`
	rec := doRequest(t, s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	created := decode[core.Transaction](t, rec)
	if created.ID == "" {
		t.Error("created transaction should carry an ID")
	}
	if created.Amount.Cents != 4250 {
		t.Errorf("amount cents %d", created.Amount.Cents)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"zero amount", `{"amount": 0, "type": "expense", "category": "food", "description": "x", "date": "2025-01-15"}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"amount": 10, "type": "expense", "category": "lottery", "description": "x", "date": "2025-01-15"}`, http.StatusUnprocessableEntity},
		{"category type mismatch", `{"amount": 10, "type": "income", "category": "food", "description": "x", "date": "2025-01-15"}`, http.StatusUnprocessableEntity},
		{"missing date", `{"amount": 10, "type": "expense", "category": "food", "description": "x"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"amount": 100, "type": "expense", "category": "food", "description": "Groceries", "date": "2025-01-10"}`,
		`{"amount": 200, "type": "expense", "category": "housing", "description": "Rent", "date": "2025-02-01"}`,
		`{"amount": 3000, "type": "income", "category": "salary", "description": "Pay", "date": "2025-01-25"}`,
	} {
		if rec := doRequest(t, s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doRequest(t, s, http.MethodGet, "/api/transactions", "")
	if got := len(decode[[]core.Transaction](t, rec)); got != 3 {
		t.Errorf("unfiltered count %d", got)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions?type=income", "")
	if got := len(decode[[]core.Transaction](t, rec)); got != 1 {
		t.Errorf("income count %d", got)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions?start=2025-01-01&end=2025-01-31", "")
	if got := len(decode[[]core.Transaction](t, rec)); got != 2 {
		t.Errorf("january count %d", got)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions?start=2025-01-01", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("lone start should be rejected, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/transactions?type=transfer", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type should be rejected, got %d", rec.Code)
	}
}

func TestListTransactionsEmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/transactions", "")
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty list should encode as [], got %s", body)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	s := newTestServer(t)

	body := `{"amount": 10, "type": "expense", "category": "food", "description": "Coffee", "date": "2025-01-15"}`
	created := decode[core.Transaction](t, doRequest(t, s, http.MethodPost, "/api/transactions", body))

	update := `{"amount": 12.50, "type": "expense", "category": "food", "description": "Coffee and cake", "date": "2025-01-15"}`
	rec := doRequest(t, s, http.MethodPut, "/api/transactions/"+created.ID, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.Transaction](t, rec); got.Amount.Cents != 1250 {
		t.Errorf("updated amount %d", got.Amount.Cents)
	}

	if rec := doRequest(t, s, http.MethodPut, "/api/transactions/nope", update); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: %d", rec.Code)
	}

	if rec := doRequest(t, s, http.MethodDelete, "/api/transactions/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodDelete, "/api/transactions/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status %d", rec.Code)
	}
}

func TestListCategories(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/categories?type=income", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	opts := decode[[]core.CategoryOption](t, rec)
	if len(opts) != 4 {
		t.Errorf("income categories %d", len(opts))
	}
	if opts[0].Category != core.CategorySalary || opts[0].Label != "Salary" {
		t.Errorf("first option %+v", opts[0])
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/categories", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("missing type should be rejected, got %d", rec.Code)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	s := newTestServer(t)

	spend := `{"amount": 40, "type": "expense", "category": "food", "description": "Groceries", "date": "2025-01-10"}`
	if rec := doRequest(t, s, http.MethodPost, "/api/transactions", spend); rec.Code != http.StatusCreated {
		t.Fatalf("seed spend: %d", rec.Code)
	}

	budget := `{"month": "2025-01", "categories": [{"category": "food", "budgeted": 50}]}`
	rec := doRequest(t, s, http.MethodPost, "/api/budgets", budget)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[core.Budget](t, rec)
	if created.TotalSpent.Cents != 4000 {
		t.Errorf("budget should be reconciled on create, spent %d", created.TotalSpent.Cents)
	}

	// posting the same month again replaces the definition in place
	replaced := `{"month": "2025-01", "categories": [{"category": "food", "budgeted": 60}]}`
	rec = doRequest(t, s, http.MethodPost, "/api/budgets", replaced)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create for existing month: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.Budget](t, rec); got.ID != created.ID || got.TotalBudgeted.Cents != 6000 {
		t.Errorf("month re-create should keep the ID and replace the plan: %+v", got)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budgets/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get budget: %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/budgets?month=2025-01", "")
	if got := decode[[]core.Budget](t, rec); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("month lookup %+v", got)
	}

	update := `{"month": "2025-01", "categories": [{"category": "food", "budgeted": 80}]}`
	rec = doRequest(t, s, http.MethodPut, "/api/budgets/"+created.ID, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update budget: %d %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.Budget](t, rec); got.TotalBudgeted.Cents != 8000 {
		t.Errorf("updated total budgeted %d", got.TotalBudgeted.Cents)
	}

	if rec := doRequest(t, s, http.MethodDelete, "/api/budgets/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete budget: %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/api/budgets/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted budget: %d", rec.Code)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	d := decode[services.Dashboard](t, rec)
	if d.Month != time.Now().Format("2006-01") {
		t.Errorf("dashboard month %q", d.Month)
	}
	if len(d.MonthlyTrend) != 6 {
		t.Errorf("trend months %d", len(d.MonthlyTrend))
	}
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"preset month", "/api/reports?preset=month", http.StatusOK},
		{"preset year", "/api/reports?preset=year", http.StatusOK},
		{"preset 30d", "/api/reports?preset=30d", http.StatusOK},
		{"explicit range", "/api/reports?start=2025-01-01&end=2025-03-31", http.StatusOK},
		{"unknown preset", "/api/reports?preset=week", http.StatusBadRequest},
		{"preset with dates", "/api/reports?preset=month&start=2025-01-01", http.StatusBadRequest},
		{"no parameters", "/api/reports", http.StatusBadRequest},
		{"inverted range", "/api/reports?start=2025-03-01&end=2025-01-01", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.target, "")
			if rec.Code != tt.want {
				t.Errorf("status %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	s := newTestServer(t)

	csvBody := "Date,Type,Category,Description,Amount,Recurring\n" +
		"1/15/2025,Expense,Food & Dining,Lunch,12.50,No\n" +
		"2025-01-25,Income,Salary,Pay,3000.00,No\n"

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[importResponse](t, rec)
	if resp.Imported != 2 || resp.Skipped != 0 {
		t.Fatalf("import result %+v", resp)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("export lines %d: %q", len(lines), rec.Body.String())
	}
	if lines[0] != "Date,Type,Category,Description,Amount,Recurring,Frequency" {
		t.Errorf("header %q", lines[0])
	}
}

func TestImportStrictRejectsBadRow(t *testing.T) {
	s := newTestServer(t)

	csvBody := "Date,Type,Category,Description,Amount,Recurring\n" +
		"1/15/2025,Expense,Food & Dining,Lunch,12.50,No\n" +
		"1/16/2025,Expense,Lottery,Oops,5.00,No\n"

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/transactions", ""); strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Error("strict import should commit nothing")
	}
}

func TestImportUnknownMode(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import?mode=lenient", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}
}
