package planner

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/platform/httpx"
)

// Handler exposes the planner over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the planner handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers planner routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/planner", func(r chi.Router) {
		r.Post("/members", h.handleMembers)
		r.Get("/{period}", h.handleView)
		r.Put("/{period}/plans/{entityID}", h.handleSetPlan)
		r.Post("/{period}/start-new", h.handleResolve(true))
		r.Post("/{period}/continue", h.handleResolve(false))
	})
}

type planRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
}

type membersRequest struct {
	CustomerIDs       []string `json:"customerIds"`
	SupplierIDs       []string `json:"supplierIds"`
	ExpenseAccountIDs []string `json:"expenseAccountIds"`
}

func period(r *http.Request) Period {
	return Period(chi.URLParam(r, "period"))
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), period(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleSetPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	p := period(r)
	if err := h.service.SetPlan(r.Context(), p, chi.URLParam(r, "entityID"), req.Amount, httpx.Actor(r)); err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.service.View(r.Context(), p)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleResolve(startNew bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			view View
			err  error
		)
		if startNew {
			view, err = h.service.StartNew(r.Context(), period(r), httpx.Actor(r))
		} else {
			view, err = h.service.Continue(r.Context(), period(r), httpx.Actor(r))
		}
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, view)
	}
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	var req membersRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	err := h.service.SetMembers(r.Context(), MembersInput{
		CustomerIDs:       req.CustomerIDs,
		SupplierIDs:       req.SupplierIDs,
		ExpenseAccountIDs: req.ExpenseAccountIDs,
		ActorID:           httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	err = httpx.Classify(err,
		httpx.Rule{Err: ErrInvalidPeriod, Kind: httpx.ErrNotFound},
		httpx.Rule{Err: ErrPromptPending, Kind: httpx.ErrConflict},
		httpx.Rule{Err: ErrNoPrompt, Kind: httpx.ErrConflict},
		httpx.Rule{Err: ErrNotMember, Kind: httpx.ErrValidation},
		httpx.Rule{Err: accounting.ErrUnknownEntity, Kind: httpx.ErrValidation},
		httpx.Rule{Err: accounting.ErrInvalidExpenseAccount, Kind: httpx.ErrValidation},
		httpx.Rule{Err: accounting.ErrInvalidAmount, Kind: httpx.ErrValidation},
	)
	if !httpx.IsClientError(err) {
		h.logger.Error("planner request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
