package accounting

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/platform/httpx"
	"github.com/usman-global/usman-books/internal/shared"
)

// Handler wires voucher endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	keys    shared.IdempotencyKeys
}

// NewHandler builds a Handler instance. keys may be nil to disable
// Idempotency-Key checks.
func NewHandler(logger *slog.Logger, service *Service, keys shared.IdempotencyKeys) *Handler {
	return &Handler{logger: logger, service: service, keys: keys}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/{id}", h.handleGetVoucher)
		r.Group(func(r chi.Router) {
			r.Use(shared.Idempotent(h.keys, "vouchers"))
			r.Post("/receipts", h.handleCash(EntryTypeReceipt))
			r.Post("/payments", h.handleCash(EntryTypePayment))
			r.Post("/expenses", h.handleExpense)
			r.Post("/journals", h.handleJournal)
			r.Post("/{id}/reverse", h.handleReverse)
		})
	})
}

type moneyRequest struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"required,len=3"`
}

func (m *moneyRequest) money() *Money {
	if m == nil {
		return nil
	}
	return &Money{Amount: m.Amount, Currency: m.Currency}
}

type cashRequest struct {
	Date           string        `json:"date" validate:"required,datetime=2006-01-02"`
	CashAccountID  string        `json:"cashAccountId" validate:"required"`
	EntityID       string        `json:"entityId" validate:"required_without=AccountID"`
	AccountID      string        `json:"accountId"`
	Amount         float64       `json:"amount" validate:"gt=0"`
	Description    string        `json:"description" validate:"max=240"`
	OriginalAmount *moneyRequest `json:"originalAmount"`
}

type expenseRequest struct {
	Date             string  `json:"date" validate:"required,datetime=2006-01-02"`
	CashAccountID    string  `json:"cashAccountId" validate:"required"`
	ExpenseAccountID string  `json:"expenseAccountId" validate:"required"`
	Amount           float64 `json:"amount" validate:"gt=0"`
	Description      string  `json:"description" validate:"max=240"`
}

type journalLineRequest struct {
	Account        string        `json:"account" validate:"required_without=EntityID"`
	EntityID       string        `json:"entityId"`
	Debit          float64       `json:"debit" validate:"gte=0"`
	Credit         float64       `json:"credit" validate:"gte=0"`
	Description    string        `json:"description" validate:"max=240"`
	OriginalAmount *moneyRequest `json:"originalAmount"`
}

type journalRequest struct {
	Date        string               `json:"date" validate:"required,datetime=2006-01-02"`
	Description string               `json:"description" validate:"max=240"`
	Lines       []journalLineRequest `json:"lines" validate:"min=2,dive"`
}

type reverseRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type voucherResponse struct {
	VoucherID string         `json:"voucherId"`
	Entries   []JournalEntry `json:"entries"`
}

func newVoucherResponse(entries []JournalEntry) voucherResponse {
	resp := voucherResponse{Entries: entries}
	if len(entries) > 0 {
		resp.VoucherID = entries[0].VoucherID
	}
	return resp
}

func (h *Handler) handleCash(kind EntryType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cashRequest
		if err := httpx.Bind(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
		date, err := httpx.ParseDay("date", req.Date)
		if err != nil {
			h.respondError(w, err)
			return
		}
		in := CashInput{
			Date:           date,
			CashAccountID:  req.CashAccountID,
			EntityID:       req.EntityID,
			AccountID:      req.AccountID,
			Amount:         req.Amount,
			Description:    req.Description,
			OriginalAmount: req.OriginalAmount.money(),
			CreatedBy:      httpx.Actor(r),
		}
		var entries []JournalEntry
		if kind == EntryTypeReceipt {
			entries, err = h.service.PostReceipt(r.Context(), in)
		} else {
			entries, err = h.service.PostPayment(r.Context(), in)
		}
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, newVoucherResponse(entries))
	}
}

func (h *Handler) handleExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", req.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	entries, err := h.service.PostExpense(r.Context(), ExpenseInput{
		Date:             date,
		CashAccountID:    req.CashAccountID,
		ExpenseAccountID: req.ExpenseAccountID,
		Amount:           req.Amount,
		Description:      req.Description,
		CreatedBy:        httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newVoucherResponse(entries))
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", req.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	lines := make([]VoucherLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, VoucherLine{
			Account:        l.Account,
			EntityID:       l.EntityID,
			Debit:          l.Debit,
			Credit:         l.Credit,
			Description:    l.Description,
			OriginalAmount: l.OriginalAmount.money(),
		})
	}
	entries, err := h.service.PostJournal(r.Context(), JournalInput{
		Date:        date,
		Description: req.Description,
		Lines:       lines,
		CreatedBy:   httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newVoucherResponse(entries))
}

func (h *Handler) handleReverse(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if r.ContentLength != 0 {
		if err := httpx.Bind(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}
	var date time.Time
	if req.Date != "" {
		parsed, err := httpx.ParseDay("date", req.Date)
		if err != nil {
			h.respondError(w, err)
			return
		}
		date = parsed
	}
	entries, err := h.service.ReverseVoucher(r.Context(), ReverseInput{
		VoucherID: chi.URLParam(r, "id"),
		Date:      date,
		ActorID:   httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newVoucherResponse(entries))
}

func (h *Handler) handleGetVoucher(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetVoucher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newVoucherResponse(entries))
}

// errorRules maps ledger errors to HTTP error kinds.
var errorRules = []httpx.Rule{
	{Err: ErrVoucherNotFound, Kind: httpx.ErrNotFound},
	{Err: ErrAlreadyReversed, Kind: httpx.ErrConflict},
	{Err: ErrOwnedVoucher, Kind: httpx.ErrConflict},
	{Err: ErrDuplicateVoucher, Kind: httpx.ErrConflict},
	{Err: ErrUnbalanced, Kind: httpx.ErrValidation},
	{Err: ErrTooFewLines, Kind: httpx.ErrValidation},
	{Err: ErrInvalidAmount, Kind: httpx.ErrValidation},
	{Err: ErrUnknownAccount, Kind: httpx.ErrValidation},
	{Err: ErrUnknownEntity, Kind: httpx.ErrValidation},
	{Err: ErrInvalidCashAccount, Kind: httpx.ErrValidation},
	{Err: ErrInvalidExpenseAccount, Kind: httpx.ErrValidation},
	{Err: ErrInvalidEntryType, Kind: httpx.ErrValidation},
	{Err: ErrDateRequired, Kind: httpx.ErrValidation},
	{Err: ErrCounterpartyRequired, Kind: httpx.ErrValidation},
}

// HTTPErrorRules exposes the ledger error mapping to other modules' handlers.
func HTTPErrorRules() []httpx.Rule {
	return errorRules
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	err = httpx.Classify(err, errorRules...)
	if !httpx.IsClientError(err) {
		h.logger.Error("voucher request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
