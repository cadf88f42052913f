package accounting

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *memoryLedger) {
	t.Helper()
	ledger := newMemoryLedger()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(ledger, nil), nil)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, ledger
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor", "clerk")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerPostsReceipt(t *testing.T) {
	h, ledger := newTestHandler(t)
	rr := doJSON(t, h, http.MethodPost, "/vouchers/receipts",
		`{"date":"2024-03-01","cashAccountId":"CASH-1","entityId":"C1","amount":500,"originalAmount":{"amount":450,"currency":"EUR"}}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp voucherResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "RV-001", resp.VoucherID)
	require.Len(t, resp.Entries, 2)
	require.Equal(t, "clerk", ledger.entries[0].CreatedBy)
	require.Equal(t, "EUR", ledger.entries[1].OriginalAmount.Currency)

	rr = doJSON(t, h, http.MethodGet, "/vouchers/RV-001", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerMapsLedgerErrors(t *testing.T) {
	h, _ := newTestHandler(t)
	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"missing counterparty", http.MethodPost, "/vouchers/payments", `{"date":"2024-03-01","cashAccountId":"CASH-1","amount":5}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/vouchers/expenses", `{"date":"01/03/2024","cashAccountId":"CASH-1","expenseAccountId":"EXP-001","amount":5}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/vouchers/expenses", `{"date":"2024-03-01","cashAccountId":"CASH-1","expenseAccountId":"EXP-001","amount":5,"memo":"x"}`, http.StatusBadRequest},
		{"unbalanced", http.MethodPost, "/vouchers/journals", `{"date":"2024-03-01","lines":[{"account":"CASH-001","debit":100},{"account":"CAP-001","credit":90}]}`, http.StatusBadRequest},
		{"missing voucher", http.MethodGet, "/vouchers/JV-404", "", http.StatusNotFound},
		{"reverse missing", http.MethodPost, "/vouchers/JV-404/reverse", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, h, tc.method, tc.target, tc.body)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandlerReverseConflict(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := doJSON(t, h, http.MethodPost, "/vouchers/journals",
		`{"date":"2024-03-01","description":"Opening","lines":[{"account":"CASH-001","debit":100},{"account":"CAP-001","credit":100}]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, h, http.MethodPost, "/vouchers/JV-001/reverse", `{"date":"2024-03-02"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = doJSON(t, h, http.MethodPost, "/vouchers/JV-001/reverse", "")
	require.Equal(t, http.StatusConflict, rr.Code)
}
