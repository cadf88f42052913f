package store

import (
	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/planner"
)

// stateTx is the working copy handed to domain services. It implements the
// transactional repository of every domain package.
type stateTx struct {
	st    *State
	newID func() string
	dirty bool
}

func (tx *stateTx) stamp(id string) string {
	if id != "" {
		return id
	}
	return tx.newID()
}

// ledger

func (tx *stateTx) Account(id string) (accounting.Account, bool) {
	for _, acc := range tx.st.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return accounting.Account{}, false
}

func (tx *stateTx) Accounts() []accounting.Account {
	return tx.st.Accounts
}

func (tx *stateTx) SaveAccount(acc accounting.Account) (accounting.Account, error) {
	acc.ID = tx.stamp(acc.ID)
	tx.st.Accounts = upsert(tx.st.Accounts, acc, func(a accounting.Account) string { return a.ID })
	tx.dirty = true
	return acc, nil
}

func (tx *stateTx) Entity(id string) (accounting.Entity, bool) {
	for _, ent := range tx.st.Entities {
		if ent.ID == id {
			return ent, true
		}
	}
	return accounting.Entity{}, false
}

func (tx *stateTx) Entities() []accounting.Entity {
	return tx.st.Entities
}

func (tx *stateTx) SaveEntity(ent accounting.Entity) (accounting.Entity, error) {
	ent.ID = tx.stamp(ent.ID)
	tx.st.Entities = upsert(tx.st.Entities, ent, func(e accounting.Entity) string { return e.ID })
	tx.dirty = true
	return ent, nil
}

func (tx *stateTx) GeneralAccountFor(t accounting.EntityType) string {
	if acc, ok := tx.st.EntityAccounts[t]; ok {
		return acc
	}
	return accounting.DefaultEntityAccounts()[t]
}

func (tx *stateTx) Entries() []accounting.JournalEntry {
	return tx.st.JournalEntries
}

func (tx *stateTx) VoucherEntries(voucherID string) []accounting.JournalEntry {
	legs, _ := accounting.FindVoucher(tx.st.JournalEntries, voucherID)
	return legs
}

func (tx *stateTx) NextVoucherNumber(kind accounting.EntryType) int {
	slot := tx.st.Counters.slot(kind)
	if *slot < 1 {
		*slot = 1
	}
	n := *slot
	*slot = n + 1
	tx.dirty = true
	return n
}

// AppendEntries stamps ids and appends all entries together.
func (tx *stateTx) AppendEntries(entries []accounting.JournalEntry) ([]accounting.JournalEntry, error) {
	out := make([]accounting.JournalEntry, len(entries))
	for i, e := range entries {
		e.ID = tx.stamp(e.ID)
		out[i] = e
	}
	tx.st.JournalEntries = append(tx.st.JournalEntries, out...)
	tx.dirty = true
	return out, nil
}

// fixed assets

func (tx *stateTx) AssetType(id string) (assets.AssetType, bool) {
	for _, t := range tx.st.AssetTypes {
		if t.ID == id {
			return t, true
		}
	}
	return assets.AssetType{}, false
}

func (tx *stateTx) AssetTypes() []assets.AssetType {
	return tx.st.AssetTypes
}

func (tx *stateTx) SaveAssetType(t assets.AssetType) (assets.AssetType, error) {
	t.ID = tx.stamp(t.ID)
	tx.st.AssetTypes = upsert(tx.st.AssetTypes, t, func(a assets.AssetType) string { return a.ID })
	tx.dirty = true
	return t, nil
}

func (tx *stateTx) Asset(id string) (assets.FixedAsset, bool) {
	for _, a := range tx.st.FixedAssets {
		if a.ID == id {
			return a, true
		}
	}
	return assets.FixedAsset{}, false
}

func (tx *stateTx) Assets() []assets.FixedAsset {
	return tx.st.FixedAssets
}

func (tx *stateTx) Depreciation() []assets.DepreciationEntry {
	return tx.st.DepreciationEntries
}

func (tx *stateTx) SaveAsset(asset assets.FixedAsset) (assets.FixedAsset, error) {
	asset.ID = tx.stamp(asset.ID)
	tx.st.FixedAssets = upsert(tx.st.FixedAssets, asset, func(a assets.FixedAsset) string { return a.ID })
	tx.dirty = true
	return asset, nil
}

func (tx *stateTx) AppendDepreciation(entries []assets.DepreciationEntry) ([]assets.DepreciationEntry, error) {
	out := make([]assets.DepreciationEntry, len(entries))
	for i, e := range entries {
		e.ID = tx.stamp(e.ID)
		out[i] = e
	}
	tx.st.DepreciationEntries = append(tx.st.DepreciationEntries, out...)
	tx.dirty = true
	return out, nil
}

// inventory

func (tx *stateTx) Item(id string) (inventory.Item, bool) {
	for _, it := range tx.st.Items {
		if it.ID == id {
			return it, true
		}
	}
	return inventory.Item{}, false
}

func (tx *stateTx) Items() []inventory.Item {
	return tx.st.Items
}

func (tx *stateTx) SaveItem(item inventory.Item) (inventory.Item, error) {
	item.ID = tx.stamp(item.ID)
	tx.st.Items = upsert(tx.st.Items, item, func(i inventory.Item) string { return i.ID })
	tx.dirty = true
	return item, nil
}

func (tx *stateTx) OriginalType(id string) (inventory.OriginalType, bool) {
	for _, t := range tx.st.OriginalTypes {
		if t.ID == id {
			return t, true
		}
	}
	return inventory.OriginalType{}, false
}

func (tx *stateTx) OriginalTypes() []inventory.OriginalType {
	return tx.st.OriginalTypes
}

func (tx *stateTx) SaveOriginalType(t inventory.OriginalType) (inventory.OriginalType, error) {
	t.ID = tx.stamp(t.ID)
	tx.st.OriginalTypes = upsert(tx.st.OriginalTypes, t, func(o inventory.OriginalType) string { return o.ID })
	tx.dirty = true
	return t, nil
}

func (tx *stateTx) PackingItem(id string) (inventory.PackingMaterialItem, bool) {
	for _, it := range tx.st.PackingMaterialItems {
		if it.ID == id {
			return it, true
		}
	}
	return inventory.PackingMaterialItem{}, false
}

func (tx *stateTx) SavePackingItem(item inventory.PackingMaterialItem) (inventory.PackingMaterialItem, error) {
	item.ID = tx.stamp(item.ID)
	tx.st.PackingMaterialItems = upsert(tx.st.PackingMaterialItems, item, func(i inventory.PackingMaterialItem) string { return i.ID })
	tx.dirty = true
	return item, nil
}

func (tx *stateTx) SalesInvoice(id string) (inventory.SalesInvoice, bool) {
	for _, inv := range tx.st.SalesInvoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return inventory.SalesInvoice{}, false
}

func (tx *stateTx) SaveSalesInvoice(inv inventory.SalesInvoice) (inventory.SalesInvoice, error) {
	inv.ID = tx.stamp(inv.ID)
	tx.st.SalesInvoices = upsert(tx.st.SalesInvoices, inv, func(i inventory.SalesInvoice) string { return i.ID })
	tx.dirty = true
	return inv, nil
}

func (tx *stateTx) AppendProduction(p inventory.Production) (inventory.Production, error) {
	p.ID = tx.stamp(p.ID)
	tx.st.Productions = append(tx.st.Productions, p)
	tx.dirty = true
	return p, nil
}

func (tx *stateTx) AppendRawPurchase(p inventory.RawMaterialPurchase) (inventory.RawMaterialPurchase, error) {
	p.ID = tx.stamp(p.ID)
	tx.st.RawMaterialPurchases = append(tx.st.RawMaterialPurchases, p)
	tx.dirty = true
	return p, nil
}

func (tx *stateTx) AppendRawIssue(is inventory.RawMaterialIssue) (inventory.RawMaterialIssue, error) {
	is.ID = tx.stamp(is.ID)
	tx.st.RawMaterialIssues = append(tx.st.RawMaterialIssues, is)
	tx.dirty = true
	return is, nil
}

func (tx *stateTx) AppendPackingPurchase(p inventory.PackingMaterialPurchase) (inventory.PackingMaterialPurchase, error) {
	p.ID = tx.stamp(p.ID)
	tx.st.PackingMaterialPurchases = append(tx.st.PackingMaterialPurchases, p)
	tx.dirty = true
	return p, nil
}

// planner

func (tx *stateTx) Planner() planner.Data {
	return tx.st.Planner
}

func (tx *stateTx) SavePlanner(d planner.Data) error {
	tx.st.Planner = d.Clone()
	tx.dirty = true
	return nil
}

func upsert[T any](list []T, item T, key func(T) string) []T {
	id := key(item)
	for i := range list {
		if key(list[i]) == id {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}
