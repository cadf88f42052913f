package reportinghttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/reporting"
	"github.com/usman-global/usman-books/internal/store"
)

func testDate(s string) time.Time {
	t, err := accounting.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st := store.New()
	ledger := accounting.NewService(st.Ledger(), nil)
	_, err := ledger.PostJournal(context.Background(), accounting.JournalInput{
		Date:        testDate("2024-03-01"),
		Description: "Owner investment",
		Lines: []accounting.VoucherLine{
			{Account: accounting.AccountCash, Debit: 1000},
			{Account: accounting.AccountCapital, Credit: 1000},
		},
	})
	require.NoError(t, err)
	_, err = ledger.PostExpense(context.Background(), accounting.ExpenseInput{
		Date:             testDate("2024-03-05"),
		CashAccountID:    accounting.AccountCash,
		ExpenseAccountID: accounting.AccountGeneralExpense,
		Amount:           200,
		Description:      "Loom oil",
	})
	require.NoError(t, err)

	now := func() time.Time { return testDate("2024-03-31") }
	svc := reporting.NewService(st, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.WithNow(now)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	h.WithNow(now)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, st
}

func TestCashBookJSON(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/reports/cash-book?account=CASH-001&from=2024-03-01&to=2024-03-31", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var ledger reports.Ledger
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ledger))
	require.Len(t, ledger.Rows, 2)
	require.Equal(t, 800.0, ledger.Closing)
	require.Equal(t, "EV-001", ledger.Rows[1].VoucherID)
}

func TestCashBookCSV(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/reports/cash-book?from=2024-03-01&format=csv", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	require.Contains(t, rr.Header().Get("Content-Disposition"), "cash-book-20240331.csv")
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "Date,Voucher,Type,Description,Debit,Credit,Balance,Side"))
	require.Equal(t, ",,,Opening balance,,,0,Dr,,,", lines[1])
	require.True(t, strings.HasPrefix(lines[3], "2024-03-05,EV-001,Expense,Loom oil,0,200,800,Dr"))
}

func TestLedgerRequiresSubject(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/ledger", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestInvalidRangeIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, target := range []string{
		"/reports/trial-balance?from=2024-04-01&to=2024-03-01",
		"/reports/pl?from=03/01/2024",
		"/reports/summary?entityType=Wizard",
		"/reports/cash-book?account=CAP-001",
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
}

func TestOverviewCombinesReports(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/overview", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var overview Overview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &overview))
	require.True(t, overview.BalanceSheet.Balanced)
	require.Equal(t, 800.0, overview.BalanceSheet.Assets.Total)
	require.Equal(t, -200.0, overview.Month.NetIncome)
	require.Empty(t, overview.Imbalances)
}

func TestIntegrityReportsBalanced(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/integrity", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Balanced bool `json:"balanced"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, body.Balanced)
}
