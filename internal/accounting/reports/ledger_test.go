package reports

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
)

func receiptScenario() []accounting.JournalEntry {
	return []accounting.JournalEntry{
		{ID: "E1", VoucherID: "RV-001", Date: day("2024-03-01"), EntryType: accounting.EntryTypeReceipt, Account: "CASH-1", Debit: 500, Description: "Receipt from C1"},
		{ID: "E2", VoucherID: "RV-001", Date: day("2024-03-01"), EntryType: accounting.EntryTypeReceipt, Account: accounting.AccountReceivable, Credit: 500, EntityID: "C1", EntityType: accounting.EntityCustomer, Description: "Receipt from C1"},
	}
}

func TestLedgerForReceiptScenario(t *testing.T) {
	entries := receiptScenario()

	cash := ComputeLedger(entries, AccountFilter{AccountID: "CASH-1"}, day("2024-03-01"), day("2024-03-31"), "")
	require.Equal(t, 0.0, cash.Opening)
	require.Len(t, cash.Rows, 1)
	require.Equal(t, 500.0, cash.Rows[0].Balance)
	require.Equal(t, "Dr", cash.Rows[0].Side)
	require.Equal(t, 500.0, cash.Closing)

	customer := ComputeLedger(entries, AccountFilter{AccountID: accounting.AccountReceivable, EntityID: "C1"}, day("2024-03-01"), day("2024-03-31"), "")
	require.Len(t, customer.Rows, 1)
	require.Equal(t, -500.0, customer.Closing)
	require.Equal(t, "Cr", customer.Rows[0].Side)

	other := ComputeLedger(entries, AccountFilter{AccountID: accounting.AccountReceivable, EntityID: "C2"}, day("2024-03-01"), day("2024-03-31"), "")
	require.Empty(t, other.Rows)
	require.Equal(t, 0.0, other.Closing)
}

func TestLedgerContinuity(t *testing.T) {
	entries := sampleEntries()
	filter := AccountFilter{AccountID: accounting.AccountCash}

	full := ComputeLedger(entries, filter, day("2024-01-01"), day("2024-04-30"), "")
	first := ComputeLedger(entries, filter, day("2024-01-01"), day("2024-02-14"), "")
	second := ComputeLedger(entries, filter, day("2024-02-15"), day("2024-04-30"), "")

	if first.Closing != second.Opening {
		t.Fatalf("closing %v of first range should open second range, got %v", first.Closing, second.Opening)
	}
	if second.Closing != full.Closing {
		t.Fatalf("expected closing %v got %v", full.Closing, second.Closing)
	}
	require.Equal(t, 9150.0, full.Closing)
	require.Equal(t, full.Opening+full.TotalDebit-full.TotalCredit, full.Closing)
}

func TestLedgerIsIdempotent(t *testing.T) {
	entries := sampleEntries()
	filter := AccountFilter{AccountID: accounting.AccountCash}
	a := ComputeLedger(entries, filter, day("2024-01-01"), day("2024-12-31"), "")
	b := ComputeLedger(entries, filter, day("2024-01-01"), day("2024-12-31"), "")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("ledger computation is not deterministic")
	}
}

func TestLedgerUnknownAccountIsEmpty(t *testing.T) {
	l := ComputeLedger(sampleEntries(), AccountFilter{AccountID: "NOPE"}, day("2024-01-01"), day("2024-12-31"), "")
	require.Empty(t, l.Rows)
	require.Zero(t, l.Opening)
	require.Zero(t, l.Closing)
}

func TestLedgerForeignCurrencyCarriesRate(t *testing.T) {
	entries := []accounting.JournalEntry{
		{ID: "1", VoucherID: "JV-001", Date: day("2024-01-05"), Account: accounting.AccountPayableSuppliers, EntityID: "S1", Credit: 1100, OriginalAmount: &accounting.Money{Amount: 1000, Currency: "EUR"}},
		{ID: "2", VoucherID: "PV-001", Date: day("2024-01-20"), Account: accounting.AccountPayableSuppliers, EntityID: "S1", Debit: 550},
		{ID: "3", VoucherID: "PV-002", Date: day("2024-02-10"), Account: accounting.AccountPayableSuppliers, EntityID: "S1", Debit: 240, OriginalAmount: &accounting.Money{Amount: 200, Currency: "EUR"}},
	}
	filter := AccountFilter{AccountID: accounting.AccountPayableSuppliers, EntityID: "S1"}

	l := ComputeLedger(entries, filter, day("2024-01-01"), day("2024-12-31"), "eur")
	require.Equal(t, "EUR", l.Currency)
	require.Len(t, l.Rows, 3)

	require.Equal(t, 1000.0, l.Rows[0].FCY.Credit)
	require.False(t, l.Rows[0].FCY.Estimated)
	require.InDelta(t, 1.1, l.Rows[0].FCY.Rate, 1e-9)

	require.Equal(t, 500.0, l.Rows[1].FCY.Debit)
	require.True(t, l.Rows[1].FCY.Estimated)
	require.Equal(t, -500.0, l.Rows[1].FCY.Balance)

	require.Equal(t, 200.0, l.Rows[2].FCY.Debit)
	require.InDelta(t, 1.2, l.Rows[2].FCY.Rate, 1e-9)
	require.Equal(t, -300.0, l.ClosingFCY)

	feb := ComputeLedger(entries, filter, day("2024-02-01"), day("2024-12-31"), "EUR")
	require.Equal(t, -500.0, feb.OpeningFCY)
	require.Equal(t, -550.0, feb.Opening)
}

func TestSummarizeByEntity(t *testing.T) {
	entries := append(receiptScenario(),
		accounting.JournalEntry{VoucherID: "JV-001", Date: day("2024-02-01"), Account: accounting.AccountReceivable, EntityID: "C1", Debit: 800},
		accounting.JournalEntry{VoucherID: "JV-001", Date: day("2024-02-01"), Account: accounting.AccountSalesRevenue, Credit: 800},
		accounting.JournalEntry{VoucherID: "JV-002", Date: day("2024-03-02"), Account: accounting.AccountReceivable, EntityID: "C2", Debit: 50},
		accounting.JournalEntry{VoucherID: "JV-002", Date: day("2024-03-02"), Account: accounting.AccountSalesRevenue, Credit: 50},
	)
	rows := SummarizeByType(entries, []Subject{{ID: "C1", Name: "Karim"}, {ID: "C2", Name: "Noor"}, {ID: "C3", Name: "Idle"}}, accounting.AccountReceivable, day("2024-03-01"), day("2024-03-31"))
	require.Len(t, rows, 3)
	require.Equal(t, SummaryRow{ID: "C1", Name: "Karim", Opening: 800, Credit: 500, Closing: 300}, rows[0])
	require.Equal(t, SummaryRow{ID: "C2", Name: "Noor", Debit: 50, Closing: 50}, rows[1])
	require.Equal(t, SummaryRow{ID: "C3", Name: "Idle"}, rows[2])
}
