package accounting

import (
	"errors"
	"strings"
	"time"
)

// BaseCurrency is the reporting currency every journal amount is booked in.
const BaseCurrency = "USD"

// ReversedPrefix marks entries that reverse an earlier voucher.
const ReversedPrefix = "[REVERSED] "

// EntryType enumerates voucher kinds.
type EntryType string

const (
	EntryTypeReceipt EntryType = "Receipt"
	EntryTypePayment EntryType = "Payment"
	EntryTypeExpense EntryType = "Expense"
	EntryTypeJournal EntryType = "Journal"
)

// Valid reports whether the entry type is known.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeReceipt, EntryTypePayment, EntryTypeExpense, EntryTypeJournal:
		return true
	}
	return false
}

// Category classifies chart of accounts nodes.
type Category string

const (
	CategoryCash                    Category = "cash"
	CategoryBank                    Category = "bank"
	CategoryReceivable              Category = "receivable"
	CategoryPayable                 Category = "payable"
	CategoryRevenue                 Category = "revenue"
	CategoryExpense                 Category = "expense"
	CategoryInventory               Category = "inventory"
	CategoryPackingMaterial         Category = "packingMaterial"
	CategoryFixedAsset              Category = "fixedAsset"
	CategoryAccumulatedDepreciation Category = "accumulatedDepreciation"
	CategoryCapital                 Category = "capital"
	CategoryOpeningEquity           Category = "openingEquity"
	CategoryLoan                    Category = "loan"
	CategoryInvestment              Category = "investment"
	// CategoryUnclassified is assigned to accounts missing from the chart.
	CategoryUnclassified Category = "unclassified"
)

// Categories lists every chart category in presentation order.
var Categories = []Category{
	CategoryCash,
	CategoryBank,
	CategoryReceivable,
	CategoryInventory,
	CategoryPackingMaterial,
	CategoryInvestment,
	CategoryFixedAsset,
	CategoryAccumulatedDepreciation,
	CategoryPayable,
	CategoryLoan,
	CategoryCapital,
	CategoryOpeningEquity,
	CategoryRevenue,
	CategoryExpense,
	CategoryUnclassified,
}

// Valid reports whether the category is part of the chart vocabulary.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalSide is the side on which an account category increases.
type NormalSide string

const (
	NormalSideDebit  NormalSide = "Debit"
	NormalSideCredit NormalSide = "Credit"
)

// NormalSide returns the natural balance side of the category.
func (c Category) NormalSide() NormalSide {
	switch c {
	case CategoryPayable, CategoryRevenue, CategoryCapital, CategoryOpeningEquity,
		CategoryLoan, CategoryAccumulatedDepreciation:
		return NormalSideCredit
	}
	return NormalSideDebit
}

// DisplayBalance converts a raw debit-minus-credit balance into the sign
// users expect for the category.
func DisplayBalance(c Category, raw float64) float64 {
	if c.NormalSide() == NormalSideDebit {
		return raw
	}
	return -raw
}

// EntityType enumerates business entities that own sub-ledgers.
type EntityType string

const (
	EntityCustomer         EntityType = "customer"
	EntitySupplier         EntityType = "supplier"
	EntityVendor           EntityType = "vendor"
	EntityCommissionAgent  EntityType = "commissionAgent"
	EntityFreightForwarder EntityType = "freightForwarder"
	EntityClearingAgent    EntityType = "clearingAgent"
	EntityEmployee         EntityType = "employee"
)

// Valid reports whether the entity type is known.
func (t EntityType) Valid() bool {
	_, ok := DefaultEntityAccounts()[t]
	return ok
}

// Well-known account codes of the default chart.
const (
	AccountCash                    = "CASH-001"
	AccountBank                    = "BANK-001"
	AccountReceivable              = "AR-001"
	AccountPayableSuppliers        = "AP-001"
	AccountPayableVendors          = "AP-002"
	AccountPayableCommission       = "AP-003"
	AccountPayableFreight          = "AP-004"
	AccountPayableClearing         = "AP-005"
	AccountEmployees               = "EMP-001"
	AccountSalesRevenue            = "REV-001"
	AccountGeneralExpense          = "EXP-001"
	AccountDepreciationExpense     = "EXP-DEP"
	AccountRawMaterialInventory    = "INV-RM"
	AccountFinishedGoodsInventory  = "INV-FG"
	AccountPackingMaterial         = "INV-PM"
	AccountFixedAssets             = "FA-001"
	AccountAccumulatedDepreciation = "ACC-DEP"
	AccountCapital                 = "CAP-001"
	AccountOpeningEquity           = "OBE-001"
	AccountLoans                   = "LOAN-001"
	AccountInvestments             = "INVST-001"
)

// DefaultEntityAccounts maps each entity type to its shared general account.
func DefaultEntityAccounts() map[EntityType]string {
	return map[EntityType]string{
		EntityCustomer:         AccountReceivable,
		EntitySupplier:         AccountPayableSuppliers,
		EntityVendor:           AccountPayableVendors,
		EntityCommissionAgent:  AccountPayableCommission,
		EntityFreightForwarder: AccountPayableFreight,
		EntityClearingAgent:    AccountPayableClearing,
		EntityEmployee:         AccountEmployees,
	}
}

// DefaultChart returns the chart of accounts seeded on first start.
func DefaultChart() []Account {
	return []Account{
		{ID: AccountCash, Name: "Cash in Hand", Category: CategoryCash},
		{ID: AccountBank, Name: "Bank", Category: CategoryBank},
		{ID: AccountReceivable, Name: "Accounts Receivable", Category: CategoryReceivable},
		{ID: AccountPayableSuppliers, Name: "Accounts Payable - Suppliers", Category: CategoryPayable},
		{ID: AccountPayableVendors, Name: "Accounts Payable - Vendors", Category: CategoryPayable},
		{ID: AccountPayableCommission, Name: "Commission Agents", Category: CategoryPayable},
		{ID: AccountPayableFreight, Name: "Freight Forwarders", Category: CategoryPayable},
		{ID: AccountPayableClearing, Name: "Clearing Agents", Category: CategoryPayable},
		{ID: AccountEmployees, Name: "Employee Accounts", Category: CategoryPayable},
		{ID: AccountSalesRevenue, Name: "Sales Revenue", Category: CategoryRevenue},
		{ID: AccountGeneralExpense, Name: "General Expenses", Category: CategoryExpense},
		{ID: AccountDepreciationExpense, Name: "Depreciation Expense", Category: CategoryExpense},
		{ID: AccountRawMaterialInventory, Name: "Raw Material Inventory", Category: CategoryInventory},
		{ID: AccountFinishedGoodsInventory, Name: "Finished Goods Inventory", Category: CategoryInventory},
		{ID: AccountPackingMaterial, Name: "Packing Material", Category: CategoryPackingMaterial},
		{ID: AccountFixedAssets, Name: "Fixed Assets", Category: CategoryFixedAsset},
		{ID: AccountAccumulatedDepreciation, Name: "Accumulated Depreciation", Category: CategoryAccumulatedDepreciation},
		{ID: AccountCapital, Name: "Owner's Capital", Category: CategoryCapital},
		{ID: AccountOpeningEquity, Name: "Opening Balance Equity", Category: CategoryOpeningEquity},
		{ID: AccountLoans, Name: "Loans", Category: CategoryLoan},
		{ID: AccountInvestments, Name: "Investments", Category: CategoryInvestment},
	}
}

// Account models a chart of accounts node.
type Account struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Currency string   `json:"currency,omitempty"`
}

// Entity is a business counterpart owning a sub-ledger on a shared account.
type Entity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     EntityType `json:"type"`
	Currency string     `json:"currency,omitempty"`
}

// EntityKey addresses a sub-ledger inside a shared general account.
type EntityKey struct {
	GeneralAccountID string
	EntityID         string
}

// Money is an amount in a specific currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// JournalEntry is one debit or credit leg of a voucher.
type JournalEntry struct {
	ID             string     `json:"id"`
	VoucherID      string     `json:"voucherId"`
	Date           time.Time  `json:"date"`
	EntryType      EntryType  `json:"entryType"`
	Account        string     `json:"account"`
	Debit          float64    `json:"debit"`
	Credit         float64    `json:"credit"`
	Description    string     `json:"description"`
	EntityID       string     `json:"entityId,omitempty"`
	EntityType     EntityType `json:"entityType,omitempty"`
	OriginalAmount *Money     `json:"originalAmount,omitempty"`
	CreatedBy      string     `json:"createdBy,omitempty"`
	// Source names the module that owns the voucher; empty for vouchers
	// posted directly through the ledger.
	Source Source `json:"source,omitempty"`
}

// Source identifies the module that posted a voucher.
type Source string

const (
	SourceLedger          Source = ""
	SourceAsset           Source = "asset"
	SourceDepreciation    Source = "depreciation"
	SourceSalesInvoice    Source = "salesInvoice"
	SourceRawPurchase     Source = "rawPurchase"
	SourcePackingPurchase Source = "packingPurchase"
)

// Owned reports whether the voucher belongs to another module's records and
// so cannot be reversed through the ledger alone. Entries saved before
// sources were recorded are recognised by their voucher id.
func (e JournalEntry) Owned() bool {
	if e.Source != SourceLedger {
		return true
	}
	return strings.HasPrefix(e.VoucherID, assetVoucherPrefix) || strings.HasPrefix(e.VoucherID, depreciationVoucherPrefix)
}

// Net returns debit minus credit.
func (e JournalEntry) Net() float64 {
	return e.Debit - e.Credit
}

// IsReversal reports whether the entry was produced by a reversal.
func (e JournalEntry) IsReversal() bool {
	return strings.HasPrefix(e.Description, ReversedPrefix)
}

// Key returns the sub-ledger key of the entry.
func (e JournalEntry) Key() EntityKey {
	return EntityKey{GeneralAccountID: e.Account, EntityID: e.EntityID}
}

// VoucherLine describes one leg of a voucher before posting.
type VoucherLine struct {
	Account        string
	EntityID       string
	Debit          float64
	Credit         float64
	Description    string
	OriginalAmount *Money
}

// Voucher groups balanced lines posted together.
type Voucher struct {
	// ID overrides the generated number (asset and depreciation vouchers).
	ID        string
	Type      EntryType
	Date      time.Time
	CreatedBy string
	Source    Source
	Lines     []VoucherLine
}

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: voucher lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: voucher requires at least two lines")
	// ErrInvalidAmount indicates a negative, zero or double-sided line.
	ErrInvalidAmount = errors.New("accounting: invalid line amount")
	// ErrUnknownAccount indicates an account missing from the chart.
	ErrUnknownAccount = errors.New("accounting: unknown account")
	// ErrUnknownEntity indicates a business entity that does not exist.
	ErrUnknownEntity = errors.New("accounting: unknown entity")
	// ErrInvalidCashAccount indicates a receipt/payment against a non cash or bank account.
	ErrInvalidCashAccount = errors.New("accounting: account is not a cash or bank account")
	// ErrInvalidExpenseAccount indicates an expense voucher against a non expense account.
	ErrInvalidExpenseAccount = errors.New("accounting: account is not an expense account")
	// ErrInvalidEntryType indicates an unsupported voucher kind.
	ErrInvalidEntryType = errors.New("accounting: invalid entry type")
	// ErrDateRequired indicates a missing voucher date.
	ErrDateRequired = errors.New("accounting: date required")
	// ErrVoucherNotFound indicates missing voucher.
	ErrVoucherNotFound = errors.New("accounting: voucher not found")
	// ErrAlreadyReversed indicates a voucher that already carries a reversal.
	ErrAlreadyReversed = errors.New("accounting: voucher already reversed")
	// ErrOwnedVoucher indicates a voucher that is managed by the asset or inventory records.
	ErrOwnedVoucher = errors.New("accounting: voucher belongs to asset or inventory records")
	// ErrDuplicateVoucher indicates a voucher id that is already in use.
	ErrDuplicateVoucher = errors.New("accounting: voucher id already used")
)

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
