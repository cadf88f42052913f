package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/platform/httpx"
)

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Post("/production", h.handleProduction)
		r.Post("/sales", h.handleCreateSale)
		r.Get("/sales/{id}", h.handleGetSale)
		r.Post("/sales/{id}/post", h.handlePostSale)
		r.Post("/raw/purchases", h.handleRawPurchase)
		r.Post("/raw/issues", h.handleRawIssue)
		r.Post("/packing/items", h.handleCreatePackingItem)
		r.Patch("/packing/items/{id}", h.handleUpdatePackingItem)
		r.Post("/packing/purchases", h.handlePackingPurchase)
	})
}

type productionForm struct {
	ItemID   string  `json:"itemId" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type saleLineForm struct {
	ItemID   string  `json:"itemId" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Rate     float64 `json:"rate" validate:"gte=0"`
}

type salesForm struct {
	InvoiceNo   string         `json:"invoiceNo" validate:"max=40"`
	CustomerID  string         `json:"customerId" validate:"required"`
	Date        string         `json:"date" validate:"required,datetime=2006-01-02"`
	Lines       []saleLineForm `json:"lines" validate:"min=1,dive"`
	Description string         `json:"description" validate:"max=240"`
	Post        bool           `json:"post"`
}

type chargeForm struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency" validate:"omitempty,len=3"`
	ConversionRate float64 `json:"conversionRate" validate:"gte=0"`
	PayeeID        string  `json:"payeeId"`
}

func (c chargeForm) charge() Charge {
	return Charge{Amount: c.Amount, Currency: c.Currency, ConversionRate: c.ConversionRate, PayeeID: c.PayeeID}
}

type rawPurchaseForm struct {
	OriginalTypeID    string     `json:"originalTypeId" validate:"required"`
	SupplierID        string     `json:"supplierId" validate:"required"`
	Date              string     `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg          float64    `json:"weightKg" validate:"gt=0"`
	ItemValue         chargeForm `json:"itemValue"`
	Freight           chargeForm `json:"freight"`
	Clearing          chargeForm `json:"clearing"`
	Commission        chargeForm `json:"commission"`
	DiscountSurcharge chargeForm `json:"discountSurcharge"`
}

type rawIssueForm struct {
	OriginalTypeID string  `json:"originalTypeId" validate:"required"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg       float64 `json:"weightKg" validate:"gt=0"`
}

type packingItemForm struct {
	Name         string  `json:"name" validate:"max=120"`
	Unit         string  `json:"unit" validate:"max=20"`
	OpeningStock float64 `json:"openingStock" validate:"gte=0"`
}

type packingPurchaseForm struct {
	ItemID        string  `json:"itemId" validate:"required"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Quantity      float64 `json:"quantity" validate:"gt=0"`
	UnitPrice     float64 `json:"unitPrice" validate:"gte=0"`
	SupplierID    string  `json:"supplierId" validate:"required_without=CashAccountID"`
	CashAccountID string  `json:"cashAccountId"`
}

func (h *Handler) handleProduction(w http.ResponseWriter, r *http.Request) {
	var form productionForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", form.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	p, err := h.service.RecordProduction(r.Context(), ProductionInput{
		ItemID:   form.ItemID,
		Date:     date,
		Quantity: form.Quantity,
		ActorID:  httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var form salesForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", form.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	lines := make([]SaleLine, 0, len(form.Lines))
	for _, l := range form.Lines {
		lines = append(lines, SaleLine(l))
	}
	inv, err := h.service.CreateSalesInvoice(r.Context(), SalesInput{
		InvoiceNo:   form.InvoiceNo,
		CustomerID:  form.CustomerID,
		Date:        date,
		Lines:       lines,
		Description: form.Description,
		Post:        form.Post,
		ActorID:     httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetSalesInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) handlePostSale(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.PostSalesInvoice(r.Context(), chi.URLParam(r, "id"), httpx.Actor(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) handleRawPurchase(w http.ResponseWriter, r *http.Request) {
	var form rawPurchaseForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", form.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	p, err := h.service.RecordRawPurchase(r.Context(), RawPurchaseInput{
		OriginalTypeID:    form.OriginalTypeID,
		SupplierID:        form.SupplierID,
		Date:              date,
		WeightKg:          form.WeightKg,
		ItemValue:         form.ItemValue.charge(),
		Freight:           form.Freight.charge(),
		Clearing:          form.Clearing.charge(),
		Commission:        form.Commission.charge(),
		DiscountSurcharge: form.DiscountSurcharge.charge(),
		ActorID:           httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleRawIssue(w http.ResponseWriter, r *http.Request) {
	var form rawIssueForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", form.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	is, err := h.service.RecordRawIssue(r.Context(), RawIssueInput{
		OriginalTypeID: form.OriginalTypeID,
		Date:           date,
		WeightKg:       form.WeightKg,
		ActorID:        httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, is)
}

func (h *Handler) handleCreatePackingItem(w http.ResponseWriter, r *http.Request) {
	var form packingItemForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	item, err := h.service.CreatePackingItem(r.Context(), PackingItemInput{
		Name:         form.Name,
		Unit:         form.Unit,
		OpeningStock: form.OpeningStock,
		ActorID:      httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdatePackingItem(w http.ResponseWriter, r *http.Request) {
	var form packingItemForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	item, err := h.service.UpdatePackingItem(r.Context(), chi.URLParam(r, "id"), PackingItemInput{
		Name:    form.Name,
		Unit:    form.Unit,
		ActorID: httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handlePackingPurchase(w http.ResponseWriter, r *http.Request) {
	var form packingPurchaseForm
	if err := httpx.Bind(r, &form); err != nil {
		h.respondError(w, err)
		return
	}
	date, err := httpx.ParseDay("date", form.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	p, err := h.service.RecordPackingPurchase(r.Context(), PackingPurchaseInput{
		ItemID:        form.ItemID,
		Date:          date,
		Quantity:      form.Quantity,
		UnitPrice:     form.UnitPrice,
		SupplierID:    form.SupplierID,
		CashAccountID: form.CashAccountID,
		ActorID:       httpx.Actor(r),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	rules := append([]httpx.Rule{
		{Err: ErrInvoiceNotFound, Kind: httpx.ErrNotFound},
		{Err: ErrPackingItemNotFound, Kind: httpx.ErrNotFound},
		{Err: ErrInvoicePosted, Kind: httpx.ErrConflict},
		{Err: ErrItemNotFound, Kind: httpx.ErrValidation},
		{Err: ErrOriginalTypeNotFound, Kind: httpx.ErrValidation},
		{Err: ErrInvalidQuantity, Kind: httpx.ErrValidation},
		{Err: ErrInvalidRate, Kind: httpx.ErrValidation},
		{Err: ErrCustomerRequired, Kind: httpx.ErrValidation},
		{Err: ErrSupplierRequired, Kind: httpx.ErrValidation},
		{Err: ErrNameRequired, Kind: httpx.ErrValidation},
	}, accounting.HTTPErrorRules()...)
	err = httpx.Classify(err, rules...)
	if !httpx.IsClientError(err) {
		h.logger.Error("inventory request failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
