package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/store"
	_ "github.com/usman-global/usman-books/testing"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	cfg := &Config{AppEnv: "test", ReportCacheTTL: time.Minute, IdempotencyTTL: time.Hour, DepreciationRate: 10}
	c, err := NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "clerk")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouterPostsAndReports(t *testing.T) {
	c := newTestContainer(t)
	router := c.Router()

	rec := do(t, router, http.MethodPost, "/masterdata/entities", `{"id":"C1","name":"Karim Textiles","type":"customer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/vouchers/receipts", `{"date":"2024-03-01","cashAccountId":"CASH-001","entityId":"C1","amount":500}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var voucher struct {
		VoucherID string `json:"voucherId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &voucher))
	require.Equal(t, "RV-001", voucher.VoucherID)

	rec = do(t, router, http.MethodGet, "/reports/trial-balance?from=2024-03-01&to=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tb reports.TrialBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
	require.Equal(t, 500.0, tb.TotalDebit)
	require.Equal(t, 500.0, tb.TotalCredit)

	rec = do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health["status"])
	require.EqualValues(t, c.Store.Version(), health["stateVersion"])
	require.Empty(t, accounting.CheckVoucherBalances(c.Store.Snapshot().JournalEntries))
}

func TestRouterRejectsUnbalancedJournal(t *testing.T) {
	c := newTestContainer(t)
	rec := do(t, c.Router(), http.MethodPost, "/vouchers/journals",
		`{"date":"2024-03-01","lines":[{"account":"CASH-001","debit":100},{"account":"CAP-001","credit":90}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	require.Zero(t, c.Store.Version())
}

func TestRouterServesMetrics(t *testing.T) {
	c := newTestContainer(t)
	router := c.Router()
	do(t, router, http.MethodGet, "/healthz", "")
	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	if !strings.Contains(rec.Body.String(), "usman_state_version") {
		t.Fatalf("expected state version gauge in metrics output")
	}
}

func writeSeed(t *testing.T, amount float64) string {
	t.Helper()
	st := store.New()
	_, err := accounting.NewService(st.Ledger(), nil).PostJournal(context.Background(), accounting.JournalInput{
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Lines: []accounting.VoucherLine{
			{Account: accounting.AccountCash, Debit: amount},
			{Account: accounting.AccountCapital, Credit: amount},
		},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, store.WriteFile(path, st.Snapshot()))
	return path
}

func TestMemoryStateDropsReportsCachedByEarlierRun(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	totalDebit := func(c *Container) float64 {
		rec := do(t, c.Router(), http.MethodGet, "/reports/trial-balance?from=2024-03-01&to=2024-03-31", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var tb reports.TrialBalance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
		return tb.TotalDebit
	}
	open := func(seed string) *Container {
		cfg := &Config{AppEnv: "test", RedisAddr: mr.Addr(), SeedFile: seed, ReportCacheTTL: time.Minute, IdempotencyTTL: time.Hour}
		c, err := NewContainer(context.Background(), cfg, logger)
		require.NoError(t, err)
		return c
	}

	first := open(writeSeed(t, 700))
	require.Equal(t, 700.0, totalDebit(first))
	firstVersion := first.Store.Version()
	first.Close()

	second := open(writeSeed(t, 300))
	t.Cleanup(second.Close)
	require.Equal(t, firstVersion, second.Store.Version())
	require.Equal(t, 300.0, totalDebit(second))
}
