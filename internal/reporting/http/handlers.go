package reportinghttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/export"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/platform/httpx"
	"github.com/usman-global/usman-books/internal/reporting"
)

const requestTimeout = 5 * time.Second

// ReportService defines the report contract used by the handler.
type ReportService interface {
	Ledger(ctx context.Context, q reporting.LedgerQuery) (reports.Ledger, error)
	CashBook(ctx context.Context, accountID string, rng reporting.Range) (reports.Ledger, error)
	Summary(ctx context.Context, q reporting.SummaryQuery) ([]reports.SummaryRow, error)
	TrialBalance(ctx context.Context, rng reporting.Range) (reports.TrialBalance, error)
	ProfitAndLoss(ctx context.Context, rng reporting.Range) (reports.ProfitAndLoss, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (reports.BalanceSheet, error)
	Stock(ctx context.Context, rng reporting.Range) (inventory.StockReport, error)
	RawMaterial(ctx context.Context, asOf time.Time) (inventory.RawMaterialReport, error)
	Packing(ctx context.Context, asOf time.Time) ([]inventory.PackingPosition, error)
	Production(ctx context.Context, rng reporting.Range) ([]inventory.ProductionRow, error)
	Integrity(ctx context.Context) ([]accounting.Imbalance, error)
}

// Handler serves report endpoints as JSON or CSV.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the reports HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{logger: logger, service: service, now: time.Now}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	q := r.URL.Query()
	query := reporting.LedgerQuery{
		AccountID: strings.TrimSpace(q.Get("account")),
		EntityID:  strings.TrimSpace(q.Get("entity")),
		Currency:  strings.ToUpper(strings.TrimSpace(q.Get("currency"))),
		Range:     rng,
	}
	if query.AccountID == "" && query.EntityID == "" {
		h.respondError(w, fmt.Errorf("%w: account or entity required", httpx.ErrValidation))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ledger, err := h.service.Ledger(ctx, query)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "ledger", ledger, ledgerColumns, ledgerRows(ledger))
}

func (h *Handler) handleCashBook(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	account := strings.TrimSpace(r.URL.Query().Get("account"))
	if account == "" {
		account = accounting.AccountCash
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ledger, err := h.service.CashBook(ctx, account, rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "cash-book", ledger, ledgerColumns, ledgerRows(ledger))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	q := r.URL.Query()
	query := reporting.SummaryQuery{
		EntityType: accounting.EntityType(strings.TrimSpace(q.Get("entityType"))),
		Category:   accounting.Category(strings.TrimSpace(q.Get("category"))),
		Range:      rng,
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rows, err := h.service.Summary(ctx, query)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "summary", rows, summaryColumns, summaryRows(rows))
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	tb, err := h.service.TrialBalance(ctx, rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "trial-balance", tb, trialBalanceColumns, trialBalanceRows(tb))
}

func (h *Handler) handleProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	pl, err := h.service.ProfitAndLoss(ctx, rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "profit-and-loss", pl, statementColumns, profitAndLossRows(pl))
}

func (h *Handler) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	bs, err := h.service.BalanceSheet(ctx, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "balance-sheet", bs, statementColumns, balanceSheetRows(bs))
}

func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.Stock(ctx, rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "stock", report, stockColumns, stockRows(report))
}

func (h *Handler) handleRawMaterial(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	report, err := h.service.RawMaterial(ctx, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "raw-material", report, rawMaterialColumns, rawMaterialRows(report))
}

func (h *Handler) handlePacking(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	positions, err := h.service.Packing(ctx, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "packing", positions, packingColumns, packingRows(positions))
}

func (h *Handler) handleProduction(w http.ResponseWriter, r *http.Request) {
	rng, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	rows, err := h.service.Production(ctx, rng)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, r, "production", rows, productionColumns, productionRows(rows))
}

func (h *Handler) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	imbalances, err := h.service.Integrity(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balanced": len(imbalances) == 0, "imbalances": imbalances})
}

// Overview is the month-to-date dashboard payload.
type Overview struct {
	AsOf         time.Time              `json:"asOf"`
	BalanceSheet reports.BalanceSheet   `json:"balanceSheet"`
	Month        reports.ProfitAndLoss  `json:"month"`
	Stock        inventory.StockReport  `json:"stock"`
	Imbalances   []accounting.Imbalance `json:"imbalances"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	overview, err := h.loadOverview(ctx, asOf)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) loadOverview(ctx context.Context, asOf time.Time) (Overview, error) {
	if asOf.IsZero() {
		asOf = accounting.Day(h.now())
	}
	month := reporting.Range{From: time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC), To: asOf}
	out := Overview{AsOf: asOf}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bs, err := h.service.BalanceSheet(ctx, asOf)
		out.BalanceSheet = bs
		return err
	})
	g.Go(func() error {
		pl, err := h.service.ProfitAndLoss(ctx, month)
		out.Month = pl
		return err
	})
	g.Go(func() error {
		stock, err := h.service.Stock(ctx, month)
		out.Stock = stock
		return err
	})
	g.Go(func() error {
		imbalances, err := h.service.Integrity(ctx)
		out.Imbalances = imbalances
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (h *Handler) parseRange(r *http.Request) (reporting.Range, error) {
	q := r.URL.Query()
	from, err := httpx.ParseDay("from", q.Get("from"))
	if err != nil {
		return reporting.Range{}, err
	}
	to, err := httpx.ParseDay("to", q.Get("to"))
	if err != nil {
		return reporting.Range{}, err
	}
	if from.IsZero() {
		now := h.now().UTC()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return reporting.Range{From: from, To: to}, nil
}

func (h *Handler) parseAsOf(r *http.Request) (time.Time, error) {
	return httpx.ParseDay("asOf", r.URL.Query().Get("asOf"))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, name string, payload any, columns []export.Column, rows []export.Row) {
	if !strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.WriteCSV(buf, columns, rows); err != nil {
		h.respondError(w, fmt.Errorf("write %s csv: %w", name, err))
		return
	}
	filename := fmt.Sprintf("%s-%s.csv", name, h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("stream csv", slog.String("report", name), slog.Any("error", err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	err = httpx.Classify(err,
		httpx.Rule{Err: reporting.ErrInvalidRange, Kind: httpx.ErrValidation},
		httpx.Rule{Err: reporting.ErrInvalidFilter, Kind: httpx.ErrValidation},
	)
	if !httpx.IsClientError(err) {
		h.logger.Error("report request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
