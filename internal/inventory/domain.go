package inventory

import (
	"errors"
	"strings"
	"time"
)

// PackingType is the native unit an item is stocked in.
type PackingType string

const (
	PackingKg   PackingType = "Kg"
	PackingBale PackingType = "Bale"
	PackingBox  PackingType = "Box"
	PackingSack PackingType = "Sack"
	PackingBag  PackingType = "Bag"
)

// Valid reports whether the packing type is known.
func (p PackingType) Valid() bool {
	switch p {
	case PackingKg, PackingBale, PackingBox, PackingSack, PackingBag:
		return true
	}
	return false
}

// Item is a finished goods catalog entry.
type Item struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Category           string      `json:"category,omitempty"`
	PackingType        PackingType `json:"packingType"`
	BaleSize           float64     `json:"baleSize"`
	OpeningStock       float64     `json:"openingStock"`
	AvgProductionPrice float64     `json:"avgProductionPrice"`
}

// Production records finished goods produced on a day.
type Production struct {
	ID       string    `json:"id"`
	ItemID   string    `json:"itemId"`
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// InvoiceStatus tracks whether a sales invoice reached the ledger.
type InvoiceStatus string

const (
	InvoiceUnposted InvoiceStatus = "Unposted"
	InvoicePosted   InvoiceStatus = "Posted"
)

// SaleLine is one item sold on an invoice.
type SaleLine struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
}

// Amount returns quantity times rate.
func (l SaleLine) Amount() float64 {
	return l.Quantity * l.Rate
}

// SalesInvoice is a customer invoice for finished goods.
type SalesInvoice struct {
	ID          string        `json:"id"`
	InvoiceNo   string        `json:"invoiceNo,omitempty"`
	CustomerID  string        `json:"customerId"`
	Date        time.Time     `json:"date"`
	Status      InvoiceStatus `json:"status"`
	Lines       []SaleLine    `json:"lines"`
	VoucherID   string        `json:"voucherId,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Counts reports whether the invoice moves stock.
func (inv SalesInvoice) Counts() bool {
	return inv.Status != InvoiceUnposted
}

// Total returns the invoice value.
func (inv SalesInvoice) Total() float64 {
	var total float64
	for _, l := range inv.Lines {
		total += l.Amount()
	}
	return total
}

// OriginalType is a raw material grade purchased by weight.
type OriginalType struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	OpeningKg       float64 `json:"openingKg"`
	OpeningValueUSD float64 `json:"openingValueUsd"`
}

// Charge is one cost component of a raw material purchase in its own currency.
type Charge struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	// ConversionRate is USD per unit of Currency.
	ConversionRate float64 `json:"conversionRate"`
	PayeeID        string  `json:"payeeId,omitempty"`
}

// IsBase reports whether the charge is already in USD.
func (c Charge) IsBase() bool {
	return c.Currency == "" || strings.EqualFold(c.Currency, "USD")
}

// USD converts the charge into the base currency.
func (c Charge) USD() float64 {
	if c.ConversionRate == 0 && c.IsBase() {
		return c.Amount
	}
	return c.Amount * c.ConversionRate
}

// RawMaterialPurchase is a landed raw material lot.
type RawMaterialPurchase struct {
	ID                string    `json:"id"`
	OriginalTypeID    string    `json:"originalTypeId"`
	SupplierID        string    `json:"supplierId"`
	Date              time.Time `json:"date"`
	WeightKg          float64   `json:"weightKg"`
	ItemValue         Charge    `json:"itemValue"`
	Freight           Charge    `json:"freight"`
	Clearing          Charge    `json:"clearing"`
	Commission        Charge    `json:"commission"`
	DiscountSurcharge Charge    `json:"discountSurcharge"`
	VoucherID         string    `json:"voucherId,omitempty"`
}

// Charges lists every cost component in a fixed order.
func (p RawMaterialPurchase) Charges() []Charge {
	return []Charge{p.ItemValue, p.Freight, p.Clearing, p.Commission, p.DiscountSurcharge}
}

// CostUSD sums all cost components converted to USD.
func (p RawMaterialPurchase) CostUSD() float64 {
	var total float64
	for _, c := range p.Charges() {
		total += c.USD()
	}
	return total
}

// RawMaterialIssue moves raw material into production.
type RawMaterialIssue struct {
	ID             string    `json:"id"`
	OriginalTypeID string    `json:"originalTypeId"`
	Date           time.Time `json:"date"`
	WeightKg       float64   `json:"weightKg"`
}

// PackingMaterialItem is a consumable used to pack finished goods.
type PackingMaterialItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	OpeningStock float64 `json:"openingStock"`
}

// PackingMaterialPurchase records packing material bought.
type PackingMaterialPurchase struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	Date       time.Time `json:"date"`
	Quantity   float64   `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	Total      float64   `json:"total"`
	SupplierID string    `json:"supplierId,omitempty"`
	VoucherID  string    `json:"voucherId,omitempty"`
}

var (
	// ErrInvalidQuantity indicates zero or negative quantity.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrInvalidRate indicates a negative price or conversion rate.
	ErrInvalidRate = errors.New("inventory: invalid rate")
	// ErrItemNotFound indicates an unknown catalog item.
	ErrItemNotFound = errors.New("inventory: item not found")
	// ErrOriginalTypeNotFound indicates an unknown raw material grade.
	ErrOriginalTypeNotFound = errors.New("inventory: original type not found")
	// ErrPackingItemNotFound indicates an unknown packing material item.
	ErrPackingItemNotFound = errors.New("inventory: packing material item not found")
	// ErrInvoiceNotFound indicates an unknown sales invoice.
	ErrInvoiceNotFound = errors.New("inventory: sales invoice not found")
	// ErrInvoicePosted indicates the invoice already reached the ledger.
	ErrInvoicePosted = errors.New("inventory: sales invoice already posted")
	// ErrCustomerRequired indicates an invoice without a customer.
	ErrCustomerRequired = errors.New("inventory: customer required")
	// ErrSupplierRequired indicates a raw material purchase without supplier.
	ErrSupplierRequired = errors.New("inventory: supplier required")
	// ErrNameRequired indicates a packing material item without a name.
	ErrNameRequired = errors.New("inventory: packing item name required")
)
