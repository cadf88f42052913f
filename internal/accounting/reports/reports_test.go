package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
	_ "github.com/usman-global/usman-books/testing"
)

func day(s string) time.Time {
	t, err := accounting.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(voucher, date, account string, debit, credit float64) accounting.JournalEntry {
	return accounting.JournalEntry{
		ID:        voucher + "-" + account,
		VoucherID: voucher,
		Date:      day(date),
		EntryType: accounting.EntryTypeJournal,
		Account:   account,
		Debit:     debit,
		Credit:    credit,
	}
}

func sampleChart() []accounting.Account {
	chart := accounting.DefaultChart()
	return append(chart, accounting.Account{ID: "CASH-1", Name: "Cash", Category: accounting.CategoryCash})
}

func sampleEntries() []accounting.JournalEntry {
	return []accounting.JournalEntry{
		entry("JV-001", "2024-01-01", accounting.AccountCash, 10000, 0),
		entry("JV-001", "2024-01-01", accounting.AccountCapital, 0, 10000),
		entry("JV-002", "2024-01-10", accounting.AccountRawMaterialInventory, 4000, 0),
		entry("JV-002", "2024-01-10", accounting.AccountPayableSuppliers, 0, 4000),
		entry("JV-003", "2024-02-01", accounting.AccountReceivable, 3000, 0),
		entry("JV-003", "2024-02-01", accounting.AccountSalesRevenue, 0, 3000),
		entry("EV-001", "2024-02-15", accounting.AccountGeneralExpense, 700, 0),
		entry("EV-001", "2024-02-15", accounting.AccountCash, 0, 700),
		entry("JV-004", "2024-03-01", accounting.AccountFixedAssets, 2000, 0),
		entry("JV-004", "2024-03-01", accounting.AccountLoans, 0, 2000),
		entry("JV-005", "2024-03-31", accounting.AccountDepreciationExpense, 200, 0),
		entry("JV-005", "2024-03-31", accounting.AccountAccumulatedDepreciation, 0, 200),
		entry("JV-006", "2024-04-02", "LEGACY-9", 150, 0),
		entry("JV-006", "2024-04-02", accounting.AccountCash, 0, 150),
	}
}

func TestBuildTrialBalance(t *testing.T) {
	accounts := []AccountBalance{
		{Code: "CASH-001", Name: "Cash", Category: accounting.CategoryCash, Opening: 1000, Debit: 200, Credit: 150},
		{Code: "BANK-001", Name: "Bank", Category: accounting.CategoryBank, Opening: 500, Debit: 100, Credit: 50},
		{Code: "AP-001", Name: "Accounts Payable", Category: accounting.CategoryPayable, Opening: 0, Debit: 10, Credit: 400},
	}

	tb := BuildTrialBalance(accounts)
	if len(tb.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(tb.Groups))
	}
	if tb.Groups[0].Key != accounting.CategoryCash || tb.Groups[2].Key != accounting.CategoryPayable {
		t.Fatalf("groups not in chart order: %+v", tb.Groups)
	}
	if tb.TotalDebit != 310 {
		t.Fatalf("unexpected total debit: %v", tb.TotalDebit)
	}
	if tb.TotalCredit != 600 {
		t.Fatalf("unexpected total credit: %v", tb.TotalCredit)
	}
	if tb.TotalOpening != 1500 {
		t.Fatalf("unexpected total opening: %v", tb.TotalOpening)
	}
	if tb.TotalClosing != 1210 {
		t.Fatalf("unexpected closing total: %v", tb.TotalClosing)
	}
}

func TestTrialBalanceOfBalancedLedgerNetsToZero(t *testing.T) {
	balances := AccountBalances(sampleEntries(), sampleChart(), day("2024-02-01"), day("2024-12-31"))
	tb := BuildTrialBalance(balances)
	require.InDelta(t, 0, tb.TotalOpening, 0.001)
	require.InDelta(t, 0, tb.TotalClosing, 0.001)
	require.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.001)
	last := tb.Groups[len(tb.Groups)-1]
	require.Equal(t, accounting.CategoryUnclassified, last.Key)
	require.Equal(t, "LEGACY-9", last.Accounts[0].Code)
}

func TestBuildProfitAndLoss(t *testing.T) {
	pl := BuildProfitAndLoss(sampleEntries(), sampleChart(), day("2024-01-01"), day("2024-03-31"))
	if pl.Revenue.Total != 3000 {
		t.Fatalf("expected revenue total 3000 got %v", pl.Revenue.Total)
	}
	if pl.Expense.Total != 900 {
		t.Fatalf("expected expense total 900 got %v", pl.Expense.Total)
	}
	if pl.NetIncome != 2100 {
		t.Fatalf("expected net income 2100 got %v", pl.NetIncome)
	}

	feb := BuildProfitAndLoss(sampleEntries(), sampleChart(), day("2024-02-10"), day("2024-02-28"))
	require.Equal(t, 0.0, feb.Revenue.Total)
	require.Equal(t, 700.0, feb.Expense.Total)
	require.Equal(t, -700.0, feb.NetIncome)
}

func TestBalanceSheetBalancesOnEveryDate(t *testing.T) {
	entries := sampleEntries()
	chart := sampleChart()
	dates := []string{"2023-12-31", "2024-01-01", "2024-01-15", "2024-02-14", "2024-03-01", "2024-03-31", "2024-04-02", "2025-01-01"}
	stock := []InventoryValues{{}, {RawMaterial: 3500, FinishedGoods: 1200}, {RawMaterial: 4000}}

	for _, d := range dates {
		for _, inv := range stock {
			bs := BuildBalanceSheet(entries, chart, day(d), inv)
			if !bs.Balanced {
				t.Fatalf("balance sheet at %s with %+v not balanced: assets %v vs %v", d, inv, bs.Assets.Total, bs.TotalLiabilitiesAndEquity)
			}
			require.InDelta(t, 0, bs.Difference, 0.001)
		}
	}
}

func TestBalanceSheetSections(t *testing.T) {
	bs := BuildBalanceSheet(sampleEntries(), sampleChart(), day("2024-03-31"), InventoryValues{RawMaterial: 3500, FinishedGoods: 1200})

	require.Equal(t, 6000.0, bs.Liabilities.Total)
	require.Equal(t, 2100.0, bs.NetIncome)
	require.Equal(t, 700.0, bs.InventoryAdjustment)
	// cash 9300 + AR 3000 + FA 2000 - dep 200 + RM 3500 + FG 1200
	require.Equal(t, 18800.0, bs.Assets.Total)
	require.Equal(t, 10000+2100+700.0, bs.Equity.Total)
	for _, line := range bs.Assets.Accounts {
		require.NotEqual(t, accounting.AccountRawMaterialInventory, line.Code)
		if line.Code == accounting.AccountAccumulatedDepreciation {
			require.Equal(t, -200.0, line.Balance)
		}
	}
}

func TestBalanceSheetShowsUnclassifiedAccounts(t *testing.T) {
	bs := BuildBalanceSheet(sampleEntries(), sampleChart(), day("2024-04-30"), InventoryValues{})
	var found bool
	for _, line := range bs.Assets.Accounts {
		if line.Code == "LEGACY-9" {
			found = true
			require.Equal(t, accounting.CategoryUnclassified, line.Category)
			require.Equal(t, 150.0, line.Balance)
		}
	}
	require.True(t, found)
	require.True(t, bs.Balanced)
}

func TestFormatBalance(t *testing.T) {
	require.Equal(t, "1,234.56", FormatAmount(1234.56))
	require.Equal(t, "1,234.50 Cr", FormatBalance(-1234.5))
	require.Equal(t, "0.00 Dr", FormatBalance(0))
}
