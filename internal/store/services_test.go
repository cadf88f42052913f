package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/masterdata"
	"github.com/usman-global/usman-books/internal/planner"
	"github.com/usman-global/usman-books/internal/store"
)

func day(s string) time.Time {
	t, err := accounting.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDepreciationScenario(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	svc := assets.NewService(s.Assets(), nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC) })

	machinery, err := md.CreateAssetType(ctx, assets.AssetType{Name: "Machinery"})
	require.NoError(t, err)
	loom, err := svc.RegisterAsset(ctx, assets.RegisterInput{Name: "Loom", AssetTypeID: machinery.ID, PurchaseDate: day("2024-01-10"), PurchaseValue: 1000})
	require.NoError(t, err)
	spinner, err := svc.RegisterAsset(ctx, assets.RegisterInput{Name: "Spinner", AssetTypeID: machinery.ID, PurchaseDate: day("2024-02-10"), PurchaseValue: 2000})
	require.NoError(t, err)

	legs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, accounting.AssetVoucherID(loom.ID))
	require.NoError(t, err)
	require.Equal(t, accounting.AccountFixedAssets, legs[0].Account)
	require.Equal(t, accounting.AccountCapital, legs[1].Account)

	res, err := svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 10, AssetIDs: []string{loom.ID, spinner.ID}, Date: day("2024-12-31")})
	require.NoError(t, err)
	require.Equal(t, "JV-DEP-1735646400000", res.VoucherID)
	require.Len(t, res.Entries, 2)
	require.Equal(t, 100.0, res.Entries[0].Amount)
	require.Equal(t, 200.0, res.Entries[1].Amount)
	require.Equal(t, 300.0, res.Total)

	depLegs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, res.VoucherID)
	require.NoError(t, err)
	require.Len(t, depLegs, 2)
	require.Equal(t, accounting.AccountDepreciationExpense, depLegs[0].Account)
	require.Equal(t, 300.0, depLegs[0].Debit)
	require.Equal(t, accounting.AccountAccumulatedDepreciation, depLegs[1].Account)
	require.Equal(t, 300.0, depLegs[1].Credit)

	list, err := svc.ListAssets(ctx)
	require.NoError(t, err)
	require.Equal(t, "Loom", list[0].Name)
	require.Equal(t, 900.0, list[0].CurrentValue)
	require.Equal(t, 1800.0, list[1].CurrentValue)
	require.Equal(t, "Machinery", list[1].TypeName)
	require.Empty(t, accounting.CheckVoucherBalances(s.Snapshot().JournalEntries))
}

func TestDepreciationRejectsInvalidRate(t *testing.T) {
	svc := assets.NewService(store.New().Assets(), nil)
	for _, rate := range []float64{0, -5, 100.5} {
		_, err := svc.PostDepreciation(context.Background(), assets.DepreciationInput{Rate: rate})
		require.ErrorIs(t, err, assets.ErrInvalidRate)
	}
}

func TestDepreciationCapsAtRemainingValue(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	svc := assets.NewService(s.Assets(), nil)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { clock = clock.Add(time.Second); return clock })

	typ, err := md.CreateAssetType(ctx, assets.AssetType{Name: "Vehicles"})
	require.NoError(t, err)
	van, err := svc.RegisterAsset(ctx, assets.RegisterInput{Name: "Van", AssetTypeID: typ.ID, PurchaseDate: day("2024-01-01"), PurchaseValue: 500})
	require.NoError(t, err)

	_, err = svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 60})
	require.NoError(t, err)
	res, err := svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 60})
	require.NoError(t, err)
	require.Equal(t, 200.0, res.Total)

	_, err = svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 60, AssetIDs: []string{van.ID}})
	require.ErrorIs(t, err, assets.ErrNothingToDepreciate)

	list, err := svc.ListAssets(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.0, list[0].CurrentValue)
	require.Equal(t, assets.StatusFullyDepreciated, list[0].Status)
}

func TestDepreciationChargesRepeatedAssetOnce(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	svc := assets.NewService(s.Assets(), nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) })

	typ, err := md.CreateAssetType(ctx, assets.AssetType{Name: "Machinery"})
	require.NoError(t, err)
	loom, err := svc.RegisterAsset(ctx, assets.RegisterInput{Name: "Loom", AssetTypeID: typ.ID, PurchaseDate: day("2024-01-01"), PurchaseValue: 1000})
	require.NoError(t, err)

	res, err := svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 100, AssetIDs: []string{loom.ID, loom.ID}})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	require.Equal(t, 1000.0, res.Total)

	list, err := svc.ListAssets(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.0, list[0].CurrentValue)
	require.Equal(t, assets.StatusFullyDepreciated, list[0].Status)

	legs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, res.VoucherID)
	require.NoError(t, err)
	require.Equal(t, 1000.0, legs[1].Credit)
}

func TestOwnedVouchersCannotBeReversed(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	ledger := accounting.NewService(s.Ledger(), nil)
	svc := assets.NewService(s.Assets(), nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC) })
	inv := inventory.NewService(s.Inventory(), nil)

	typ, err := md.CreateAssetType(ctx, assets.AssetType{Name: "Machinery"})
	require.NoError(t, err)
	loom, err := svc.RegisterAsset(ctx, assets.RegisterInput{Name: "Loom", AssetTypeID: typ.ID, PurchaseDate: day("2024-01-01"), PurchaseValue: 1000})
	require.NoError(t, err)
	dep, err := svc.PostDepreciation(ctx, assets.DepreciationInput{Rate: 10})
	require.NoError(t, err)

	customer, err := md.CreateEntity(ctx, accounting.Entity{Name: "Karim Textiles", Type: accounting.EntityCustomer})
	require.NoError(t, err)
	item, err := md.CreateItem(ctx, inventory.Item{Name: "Yarn 20s", PackingType: inventory.PackingKg, OpeningStock: 50, AvgProductionPrice: 2})
	require.NoError(t, err)
	invoice, err := inv.CreateSalesInvoice(ctx, inventory.SalesInput{CustomerID: customer.ID, Date: day("2024-03-05"), Lines: []inventory.SaleLine{{ItemID: item.ID, Quantity: 5, Rate: 3}}})
	require.NoError(t, err)
	invoice, err = inv.PostSalesInvoice(ctx, invoice.ID, "clerk")
	require.NoError(t, err)

	for _, id := range []string{accounting.AssetVoucherID(loom.ID), dep.VoucherID, invoice.VoucherID} {
		_, err := ledger.ReverseVoucher(ctx, accounting.ReverseInput{VoucherID: id, Date: day("2024-12-31")})
		require.ErrorIs(t, err, accounting.ErrOwnedVoucher, id)
	}

	snap := s.Snapshot()
	acc := reports.ComputeLedger(snap.JournalEntries, reports.AccountFilter{AccountID: accounting.AccountAccumulatedDepreciation}, day("2024-01-01"), day("2024-12-31"), "")
	require.Equal(t, -100.0, acc.Closing)
	list, err := svc.ListAssets(ctx)
	require.NoError(t, err)
	require.Equal(t, 900.0, list[0].CurrentValue)

	receipt, err := ledger.PostJournal(ctx, accounting.JournalInput{
		Date:  day("2024-03-06"),
		Lines: []accounting.VoucherLine{{Account: accounting.AccountCash, Debit: 15}, {EntityID: customer.ID, Credit: 15}},
	})
	require.NoError(t, err)
	_, err = ledger.ReverseVoucher(ctx, accounting.ReverseInput{VoucherID: receipt[0].VoucherID, Date: day("2024-03-07")})
	require.NoError(t, err)
}

func TestSalesInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	inv := inventory.NewService(s.Inventory(), nil)

	customer, err := md.CreateEntity(ctx, accounting.Entity{Name: "Karim Textiles", Type: accounting.EntityCustomer})
	require.NoError(t, err)
	item, err := md.CreateItem(ctx, inventory.Item{Name: "Yarn 20s", PackingType: inventory.PackingBale, BaleSize: 100, OpeningStock: 10, AvgProductionPrice: 2})
	require.NoError(t, err)

	invoice, err := inv.CreateSalesInvoice(ctx, inventory.SalesInput{
		CustomerID: customer.ID,
		Date:       day("2024-03-05"),
		Lines:      []inventory.SaleLine{{ItemID: item.ID, Quantity: 4, Rate: 250}},
	})
	require.NoError(t, err)
	require.Equal(t, inventory.InvoiceUnposted, invoice.Status)

	snap := s.Snapshot()
	m := inventory.ClosingStock(snap.Items[0], snap.Productions, snap.SalesInvoices, day("2024-03-01"), day("2024-03-31"))
	require.Equal(t, 10.0, m.Closing, "unposted sales do not move stock")

	posted, err := inv.PostSalesInvoice(ctx, invoice.ID, "clerk")
	require.NoError(t, err)
	require.Equal(t, inventory.InvoicePosted, posted.Status)
	require.Equal(t, "JV-001", posted.VoucherID)

	_, err = inv.PostSalesInvoice(ctx, invoice.ID, "clerk")
	require.ErrorIs(t, err, inventory.ErrInvoicePosted)
	_, err = inv.GetSalesInvoice(ctx, "missing")
	require.ErrorIs(t, err, inventory.ErrInvoiceNotFound)

	snap = s.Snapshot()
	m = inventory.ClosingStock(snap.Items[0], snap.Productions, snap.SalesInvoices, day("2024-03-01"), day("2024-03-31"))
	require.Equal(t, 6.0, m.Closing)

	ledger := reports.ComputeLedger(snap.JournalEntries, reports.AccountFilter{AccountID: accounting.AccountReceivable, EntityID: customer.ID}, day("2024-03-01"), day("2024-03-31"), "")
	require.Equal(t, 1000.0, ledger.Closing)
}

func TestRawPurchaseCreditsEachPayee(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	inv := inventory.NewService(s.Inventory(), nil)

	supplier, err := md.CreateEntity(ctx, accounting.Entity{Name: "Lahore Cotton", Type: accounting.EntitySupplier, Currency: "eur"})
	require.NoError(t, err)
	require.Equal(t, "EUR", supplier.Currency)
	forwarder, err := md.CreateEntity(ctx, accounting.Entity{Name: "Karachi Freight", Type: accounting.EntityFreightForwarder})
	require.NoError(t, err)
	grade, err := md.CreateOriginalType(ctx, inventory.OriginalType{Name: "Pima"})
	require.NoError(t, err)

	purchase, err := inv.RecordRawPurchase(ctx, inventory.RawPurchaseInput{
		OriginalTypeID: grade.ID,
		SupplierID:     supplier.ID,
		Date:           day("2024-04-01"),
		WeightKg:       1000,
		ItemValue:      inventory.Charge{Amount: 2000, Currency: "EUR", ConversionRate: 1.1},
		Freight:        inventory.Charge{Amount: 150, Currency: "USD", ConversionRate: 1, PayeeID: forwarder.ID},
	})
	require.NoError(t, err)

	legs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, purchase.VoucherID)
	require.NoError(t, err)
	require.Len(t, legs, 3)
	require.Equal(t, accounting.AccountRawMaterialInventory, legs[0].Account)
	require.Equal(t, 2350.0, legs[0].Debit)
	byEntity := map[string]accounting.JournalEntry{legs[1].EntityID: legs[1], legs[2].EntityID: legs[2]}
	require.Equal(t, 2200.0, byEntity[supplier.ID].Credit)
	require.Equal(t, accounting.AccountPayableSuppliers, byEntity[supplier.ID].Account)
	require.Equal(t, 150.0, byEntity[forwarder.ID].Credit)
	require.Equal(t, accounting.AccountPayableFreight, byEntity[forwarder.ID].Account)

	_, err = inv.RecordRawIssue(ctx, inventory.RawIssueInput{OriginalTypeID: grade.ID, Date: day("2024-04-02"), WeightKg: 400})
	require.NoError(t, err)
	snap := s.Snapshot()
	rm := inventory.ValueRawMaterial(snap.OriginalTypes, snap.RawMaterialPurchases, snap.RawMaterialIssues, day("2024-04-30"))
	require.Equal(t, 600.0, rm.Positions[0].StockKg)
	require.Equal(t, 1410.0, rm.TotalValue)

	bs := reports.BuildBalanceSheet(snap.JournalEntries, snap.Accounts, day("2024-04-30"), reports.InventoryValues{RawMaterial: rm.TotalValue})
	require.True(t, bs.Balanced)
	require.Equal(t, -940.0, bs.InventoryAdjustment)
}

func TestRawPurchaseRequiresRateForForeignCharges(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	inv := inventory.NewService(s.Inventory(), nil)

	supplier, err := md.CreateEntity(ctx, accounting.Entity{Name: "Lahore Cotton", Type: accounting.EntitySupplier})
	require.NoError(t, err)
	grade, err := md.CreateOriginalType(ctx, inventory.OriginalType{Name: "Pima"})
	require.NoError(t, err)

	in := inventory.RawPurchaseInput{
		OriginalTypeID: grade.ID,
		SupplierID:     supplier.ID,
		Date:           day("2024-04-01"),
		WeightKg:       1000,
		ItemValue:      inventory.Charge{Amount: 2000, Currency: "USD"},
		Freight:        inventory.Charge{Amount: 50000, Currency: "PKR"},
	}
	_, err = inv.RecordRawPurchase(ctx, in)
	require.ErrorIs(t, err, inventory.ErrInvalidRate)
	require.Empty(t, s.Snapshot().JournalEntries)
	require.Empty(t, s.Snapshot().RawMaterialPurchases)

	in.Freight.ConversionRate = 0.0036
	purchase, err := inv.RecordRawPurchase(ctx, in)
	require.NoError(t, err)
	legs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, purchase.VoucherID)
	require.NoError(t, err)
	require.Equal(t, 2180.0, legs[0].Debit)
}

func TestPackingPurchasePostsAgainstCash(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	inv := inventory.NewService(s.Inventory(), nil)
	inv.WithNow(func() time.Time { return time.UnixMilli(1709251200000) })

	item, err := inv.CreatePackingItem(ctx, inventory.PackingItemInput{Name: "Poly bag", Unit: "pcs", OpeningStock: 100})
	require.NoError(t, err)
	purchase, err := inv.RecordPackingPurchase(ctx, inventory.PackingPurchaseInput{ItemID: item.ID, Date: day("2024-03-01"), Quantity: 200, UnitPrice: 0.25})
	require.NoError(t, err)
	require.Regexp(t, `^PMP-lt7w16o0-[0-9a-f]{4}$`, purchase.ID)
	require.Equal(t, 50.0, purchase.Total)

	legs, err := accounting.FindVoucher(s.Snapshot().JournalEntries, purchase.VoucherID)
	require.NoError(t, err)
	require.Equal(t, accounting.AccountPackingMaterial, legs[0].Account)
	require.Equal(t, accounting.AccountCash, legs[1].Account)

	renamed, err := inv.UpdatePackingItem(ctx, item.ID, inventory.PackingItemInput{Name: "LDPE bag"})
	require.NoError(t, err)
	require.Equal(t, "pcs", renamed.Unit)

	snap := s.Snapshot()
	pos := inventory.PackingStock(snap.PackingMaterialItems, snap.PackingMaterialPurchases, day("2024-03-31"))
	require.Equal(t, 300.0, pos[0].InHand)
	require.Equal(t, "LDPE bag", pos[0].Name)
}

func TestPlannerPromptBlocksEdits(t *testing.T) {
	ctx := context.Background()
	s := store.New()
	md := masterdata.NewService(s.MasterData())
	ledger := accounting.NewService(s.Ledger(), nil)
	svc := planner.NewService(s.Planner(), nil)
	now := day("2024-03-06")
	svc.WithNow(func() time.Time { return now })

	customer, err := md.CreateEntity(ctx, accounting.Entity{Name: "Karim Textiles", Type: accounting.EntityCustomer})
	require.NoError(t, err)
	require.NoError(t, svc.SetMembers(ctx, planner.MembersInput{CustomerIDs: []string{customer.ID}, ExpenseAccountIDs: []string{accounting.AccountGeneralExpense}}))

	view, err := svc.View(ctx, planner.Weekly)
	require.NoError(t, err)
	require.Equal(t, planner.StatusIdle, view.Status)
	require.Equal(t, day("2024-03-04"), view.LastReset)

	require.NoError(t, svc.SetPlan(ctx, planner.Weekly, customer.ID, 900, "owner"))
	require.ErrorIs(t, svc.SetPlan(ctx, planner.Weekly, "ghost", 1, "owner"), planner.ErrNotMember)

	_, err = ledger.PostReceipt(ctx, accounting.CashInput{Date: day("2024-03-07"), CashAccountID: accounting.AccountCash, EntityID: customer.ID, Amount: 650})
	require.NoError(t, err)

	now = day("2024-03-12")
	view, err = svc.View(ctx, planner.Weekly)
	require.NoError(t, err)
	require.Equal(t, planner.StatusPromptPending, view.Status)
	require.ErrorIs(t, svc.SetPlan(ctx, planner.Weekly, customer.ID, 5, "owner"), planner.ErrPromptPending)

	view, err = svc.StartNew(ctx, planner.Weekly, "owner")
	require.NoError(t, err)
	require.Equal(t, planner.StatusIdle, view.Status)
	require.Equal(t, planner.Row{ID: customer.ID, Name: "Karim Textiles", Kind: planner.MemberCustomer, LastPlan: 900, LastActual: 650}, view.Rows[0])

	_, err = svc.Continue(ctx, planner.Weekly, "owner")
	require.ErrorIs(t, err, planner.ErrNoPrompt)

	now = day("2024-03-19")
	rolled, err := svc.AutoRollover(ctx, planner.Weekly)
	require.NoError(t, err)
	require.True(t, rolled)
	rolled, err = svc.AutoRollover(ctx, planner.Weekly)
	require.NoError(t, err)
	require.False(t, rolled)
}

func TestMasterDataRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	md := masterdata.NewService(store.New().MasterData())

	_, err := md.CreateAccount(ctx, accounting.Account{ID: "cash-001", Name: "Cash", Category: accounting.CategoryCash})
	require.ErrorIs(t, err, masterdata.ErrDuplicate)
	acc, err := md.CreateAccount(ctx, accounting.Account{ID: "bank-002", Name: "Meezan Bank", Category: accounting.CategoryBank})
	require.NoError(t, err)
	require.Equal(t, "BANK-002", acc.ID)
	_, err = md.CreateAccount(ctx, accounting.Account{ID: "X", Name: "X", Category: "weird"})
	require.ErrorIs(t, err, masterdata.ErrInvalid)

	_, err = md.CreateItem(ctx, inventory.Item{Name: "Yarn", PackingType: inventory.PackingBale})
	require.ErrorIs(t, err, masterdata.ErrInvalid)

	banks, err := md.ListAccounts(ctx, accounting.CategoryBank)
	require.NoError(t, err)
	require.Len(t, banks, 2)
}
