// Package store holds the application state aggregate and serialises every
// mutation through copy-on-write transactions.
package store

import (
	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/planner"
)

// Counters are the running voucher numbers; each holds the next number to issue.
type Counters struct {
	NextReceiptVoucherNumber int `json:"nextReceiptVoucherNumber"`
	NextPaymentVoucherNumber int `json:"nextPaymentVoucherNumber"`
	NextExpenseVoucherNumber int `json:"nextExpenseVoucherNumber"`
	NextJournalVoucherNumber int `json:"nextJournalVoucherNumber"`
}

func (c *Counters) slot(kind accounting.EntryType) *int {
	switch kind {
	case accounting.EntryTypeReceipt:
		return &c.NextReceiptVoucherNumber
	case accounting.EntryTypePayment:
		return &c.NextPaymentVoucherNumber
	case accounting.EntryTypeExpense:
		return &c.NextExpenseVoucherNumber
	default:
		return &c.NextJournalVoucherNumber
	}
}

// State is the persisted aggregate. A State returned by Store.Snapshot is
// shared and must be treated as read-only.
type State struct {
	Version int64 `json:"version"`

	Accounts       []accounting.Account             `json:"accounts"`
	Entities       []accounting.Entity              `json:"entities"`
	EntityAccounts map[accounting.EntityType]string `json:"entityAccounts"`
	JournalEntries []accounting.JournalEntry        `json:"journalEntries"`
	Counters       Counters                         `json:"counters"`

	AssetTypes          []assets.AssetType         `json:"assetTypes"`
	FixedAssets         []assets.FixedAsset        `json:"fixedAssets"`
	DepreciationEntries []assets.DepreciationEntry `json:"depreciationEntries"`

	Items                    []inventory.Item                    `json:"items"`
	Productions              []inventory.Production              `json:"productions"`
	SalesInvoices            []inventory.SalesInvoice            `json:"salesInvoices"`
	OriginalTypes            []inventory.OriginalType            `json:"originalTypes"`
	RawMaterialPurchases     []inventory.RawMaterialPurchase     `json:"rawMaterialPurchases"`
	RawMaterialIssues        []inventory.RawMaterialIssue        `json:"rawMaterialIssues"`
	PackingMaterialItems     []inventory.PackingMaterialItem     `json:"packingMaterialItems"`
	PackingMaterialPurchases []inventory.PackingMaterialPurchase `json:"packingMaterialPurchases"`

	Planner planner.Data `json:"planner"`
}

// NewState returns an empty state seeded with the default chart.
func NewState() *State {
	st := &State{
		Accounts:       accounting.DefaultChart(),
		EntityAccounts: accounting.DefaultEntityAccounts(),
		Counters:       Counters{1, 1, 1, 1},
		Planner:        planner.Data{Plans: map[string]planner.Plan{}},
	}
	return st
}

// normalize fills defaults missing from older or hand-written states.
func (st *State) normalize() {
	if st.EntityAccounts == nil {
		st.EntityAccounts = map[accounting.EntityType]string{}
	}
	for t, acc := range accounting.DefaultEntityAccounts() {
		if st.EntityAccounts[t] == "" {
			st.EntityAccounts[t] = acc
		}
	}
	known := make(map[string]bool, len(st.Accounts))
	for _, acc := range st.Accounts {
		known[acc.ID] = true
	}
	for _, acc := range accounting.DefaultChart() {
		if !known[acc.ID] {
			st.Accounts = append(st.Accounts, acc)
		}
	}
	for _, kind := range []accounting.EntryType{accounting.EntryTypeReceipt, accounting.EntryTypePayment, accounting.EntryTypeExpense, accounting.EntryTypeJournal} {
		if slot := st.Counters.slot(kind); *slot < 1 {
			*slot = 1
		}
	}
	if st.Planner.Plans == nil {
		st.Planner.Plans = map[string]planner.Plan{}
	}
}

// Clone returns a copy safe to mutate without affecting st.
func (st *State) Clone() *State {
	out := *st
	out.Accounts = cloneSlice(st.Accounts)
	out.Entities = cloneSlice(st.Entities)
	out.EntityAccounts = make(map[accounting.EntityType]string, len(st.EntityAccounts))
	for k, v := range st.EntityAccounts {
		out.EntityAccounts[k] = v
	}
	out.JournalEntries = cloneSlice(st.JournalEntries)
	out.AssetTypes = cloneSlice(st.AssetTypes)
	out.FixedAssets = cloneSlice(st.FixedAssets)
	out.DepreciationEntries = cloneSlice(st.DepreciationEntries)
	out.Items = cloneSlice(st.Items)
	out.Productions = cloneSlice(st.Productions)
	out.SalesInvoices = make([]inventory.SalesInvoice, len(st.SalesInvoices))
	for i, inv := range st.SalesInvoices {
		inv.Lines = cloneSlice(inv.Lines)
		out.SalesInvoices[i] = inv
	}
	out.OriginalTypes = cloneSlice(st.OriginalTypes)
	out.RawMaterialPurchases = cloneSlice(st.RawMaterialPurchases)
	out.RawMaterialIssues = cloneSlice(st.RawMaterialIssues)
	out.PackingMaterialItems = cloneSlice(st.PackingMaterialItems)
	out.PackingMaterialPurchases = cloneSlice(st.PackingMaterialPurchases)
	out.Planner = st.Planner.Clone()
	return &out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
