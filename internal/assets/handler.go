package assets

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/platform/httpx"
)

// Handler exposes the fixed-asset register over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the assets handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers asset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleRegister)
		r.Patch("/{id}", h.handleRename)
		r.Post("/depreciation", h.handleDepreciate)
	})
}

type registerRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	AssetTypeID     string  `json:"assetTypeId" validate:"required"`
	PurchaseDate    string  `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	PurchaseValue   float64 `json:"purchaseValue" validate:"gt=0"`
	CreditAccountID string  `json:"creditAccountId"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type depreciationRequest struct {
	Rate     float64  `json:"rate" validate:"gt=0,lte=100"`
	AssetIDs []string `json:"assetIds"`
	Date     string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListAssets(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("purchaseDate", req.PurchaseDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	asset, err := h.service.RegisterAsset(r.Context(), RegisterInput{
		Name:            req.Name,
		AssetTypeID:     req.AssetTypeID,
		PurchaseDate:    date,
		PurchaseValue:   req.PurchaseValue,
		CreditAccountID: req.CreditAccountID,
		ActorID:         httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, asset)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	asset, err := h.service.RenameAsset(r.Context(), chi.URLParam(r, "id"), req.Name, httpx.Actor(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, asset)
}

func (h *Handler) handleDepreciate(w http.ResponseWriter, r *http.Request) {
	var req depreciationRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", req.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	result, err := h.service.PostDepreciation(r.Context(), DepreciationInput{
		Rate:     req.Rate,
		AssetIDs: req.AssetIDs,
		Date:     date,
		ActorID:  httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	rules := append([]httpx.Rule{
		{Err: ErrAssetNotFound, Kind: httpx.ErrNotFound},
		{Err: ErrAssetTypeNotFound, Kind: httpx.ErrValidation},
		{Err: ErrInvalidRate, Kind: httpx.ErrValidation},
		{Err: ErrInvalidValue, Kind: httpx.ErrValidation},
		{Err: ErrNameRequired, Kind: httpx.ErrValidation},
		{Err: ErrNothingToDepreciate, Kind: httpx.ErrConflict},
	}, accounting.HTTPErrorRules()...)
	err = httpx.Classify(err, rules...)
	if !httpx.IsClientError(err) {
		h.logger.Error("asset request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
