package masterdata

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/platform/httpx"
)

// Handler exposes master data over HTTP.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// NewHandler constructs the master data handler.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/masterdata", func(r chi.Router) {
		r.Get("/accounts", h.listAccounts)
		r.Post("/accounts", h.createAccount)
		r.Get("/entities", h.listEntities)
		r.Post("/entities", h.createEntity)
		r.Patch("/entities/{id}", h.updateEntity)
		r.Get("/items", h.listItems)
		r.Post("/items", h.createItem)
		r.Get("/asset-types", h.listAssetTypes)
		r.Post("/asset-types", h.createAssetType)
		r.Get("/original-types", h.listOriginalTypes)
		r.Post("/original-types", h.createOriginalType)
	})
}

type accountForm struct {
	ID       string `json:"id" validate:"required,max=20"`
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type entityForm struct {
	ID       string `json:"id" validate:"max=40"`
	Name     string `json:"name" validate:"required,max=120"`
	Type     string `json:"type" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type entityUpdateForm struct {
	Name     string `json:"name" validate:"max=120"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type itemForm struct {
	ID                 string  `json:"id" validate:"max=40"`
	Name               string  `json:"name" validate:"required,max=120"`
	Category           string  `json:"category" validate:"max=60"`
	PackingType        string  `json:"packingType" validate:"required,oneof=Kg Bale Box Sack Bag"`
	BaleSize           float64 `json:"baleSize" validate:"gte=0"`
	OpeningStock       float64 `json:"openingStock"`
	AvgProductionPrice float64 `json:"avgProductionPrice" validate:"gte=0"`
}

type assetTypeForm struct {
	ID   string `json:"id" validate:"max=40"`
	Name string `json:"name" validate:"required,max=120"`
}

type originalTypeForm struct {
	ID              string  `json:"id" validate:"max=40"`
	Name            string  `json:"name" validate:"required,max=120"`
	OpeningKg       float64 `json:"openingKg" validate:"gte=0"`
	OpeningValueUSD float64 `json:"openingValueUsd" validate:"gte=0"`
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAccounts(r.Context(), accounting.Category(r.URL.Query().Get("category")))
	h.respond(w, http.StatusOK, list, err)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var form accountForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	acc, err := h.service.CreateAccount(r.Context(), accounting.Account{
		ID:       form.ID,
		Name:     form.Name,
		Category: accounting.Category(form.Category),
		Currency: form.Currency,
	})
	h.respond(w, http.StatusCreated, acc, err)
}

func (h *Handler) listEntities(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListEntities(r.Context(), accounting.EntityType(r.URL.Query().Get("type")))
	h.respond(w, http.StatusOK, list, err)
}

func (h *Handler) createEntity(w http.ResponseWriter, r *http.Request) {
	var form entityForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	ent, err := h.service.CreateEntity(r.Context(), accounting.Entity{
		ID:       form.ID,
		Name:     form.Name,
		Type:     accounting.EntityType(form.Type),
		Currency: form.Currency,
	})
	h.respond(w, http.StatusCreated, ent, err)
}

func (h *Handler) updateEntity(w http.ResponseWriter, r *http.Request) {
	var form entityUpdateForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	ent, err := h.service.UpdateEntity(r.Context(), chi.URLParam(r, "id"), EntityUpdate(form))
	h.respond(w, http.StatusOK, ent, err)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListItems(r.Context())
	h.respond(w, http.StatusOK, list, err)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var form itemForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	item, err := h.service.CreateItem(r.Context(), inventory.Item{
		ID:                 form.ID,
		Name:               form.Name,
		Category:           form.Category,
		PackingType:        inventory.PackingType(form.PackingType),
		BaleSize:           form.BaleSize,
		OpeningStock:       form.OpeningStock,
		AvgProductionPrice: form.AvgProductionPrice,
	})
	h.respond(w, http.StatusCreated, item, err)
}

func (h *Handler) listAssetTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAssetTypes(r.Context())
	h.respond(w, http.StatusOK, list, err)
}

func (h *Handler) createAssetType(w http.ResponseWriter, r *http.Request) {
	var form assetTypeForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	t, err := h.service.CreateAssetType(r.Context(), assets.AssetType(form))
	h.respond(w, http.StatusCreated, t, err)
}

func (h *Handler) listOriginalTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListOriginalTypes(r.Context())
	h.respond(w, http.StatusOK, list, err)
}

func (h *Handler) createOriginalType(w http.ResponseWriter, r *http.Request) {
	var form originalTypeForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	t, err := h.service.CreateOriginalType(r.Context(), inventory.OriginalType(form))
	h.respond(w, http.StatusCreated, t, err)
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload any, err error) {
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, status, payload)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	err = httpx.Classify(err,
		httpx.Rule{Err: ErrNotFound, Kind: httpx.ErrNotFound},
		httpx.Rule{Err: ErrDuplicate, Kind: httpx.ErrConflict},
		httpx.Rule{Err: ErrInvalid, Kind: httpx.ErrValidation},
	)
	if !httpx.IsClientError(err) {
		h.logger.Error("masterdata request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
