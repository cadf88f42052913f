package accounting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLedger struct {
	accounts map[string]Account
	entities map[string]Entity
	entries  []JournalEntry
	counters map[EntryType]int
	nextID   int
}

func newMemoryLedger() *memoryLedger {
	l := &memoryLedger{
		accounts: make(map[string]Account),
		entities: make(map[string]Entity),
		counters: make(map[EntryType]int),
	}
	for _, acc := range DefaultChart() {
		l.accounts[acc.ID] = acc
	}
	l.accounts["CASH-1"] = Account{ID: "CASH-1", Name: "Cash", Category: CategoryCash}
	l.entities["C1"] = Entity{ID: "C1", Name: "Karim Textiles", Type: EntityCustomer}
	l.entities["S1"] = Entity{ID: "S1", Name: "Lahore Cotton", Type: EntitySupplier}
	return l
}

// WithTx applies fn to a scratch copy and keeps it only on success.
func (l *memoryLedger) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	scratch := &memoryTx{ledger: l, entries: append([]JournalEntry(nil), l.entries...), counters: make(map[EntryType]int)}
	for k, v := range l.counters {
		scratch.counters[k] = v
	}
	if err := fn(ctx, scratch); err != nil {
		return err
	}
	l.entries = scratch.entries
	l.counters = scratch.counters
	return nil
}

type memoryTx struct {
	ledger   *memoryLedger
	entries  []JournalEntry
	counters map[EntryType]int
}

func (tx *memoryTx) Account(id string) (Account, bool) {
	acc, ok := tx.ledger.accounts[id]
	return acc, ok
}

func (tx *memoryTx) Entity(id string) (Entity, bool) {
	ent, ok := tx.ledger.entities[id]
	return ent, ok
}

func (tx *memoryTx) GeneralAccountFor(t EntityType) string {
	return DefaultEntityAccounts()[t]
}

func (tx *memoryTx) Entries() []JournalEntry { return tx.entries }

func (tx *memoryTx) VoucherEntries(voucherID string) []JournalEntry {
	legs, _ := FindVoucher(tx.entries, voucherID)
	return legs
}

func (tx *memoryTx) NextVoucherNumber(kind EntryType) int {
	tx.counters[kind]++
	return tx.counters[kind]
}

func (tx *memoryTx) AppendEntries(entries []JournalEntry) ([]JournalEntry, error) {
	out := make([]JournalEntry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			tx.ledger.nextID++
			e.ID = fmt.Sprintf("E%d", tx.ledger.nextID)
		}
		out[i] = e
	}
	tx.entries = append(tx.entries, out...)
	return out, nil
}

type countingMetrics map[string]int

func (m countingMetrics) ObserveVoucher(kind string) { m[kind]++ }

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPostReceiptBuildsBalancedPair(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	metrics := countingMetrics{}
	svc.WithMetrics(metrics)

	entries, err := svc.PostReceipt(context.Background(), CashInput{
		Date:          date("2024-03-01"),
		CashAccountID: "CASH-1",
		EntityID:      "C1",
		Amount:        500,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "RV-001", entries[0].VoucherID)
	require.Equal(t, "CASH-1", entries[0].Account)
	require.Equal(t, 500.0, entries[0].Debit)
	require.Equal(t, AccountReceivable, entries[1].Account)
	require.Equal(t, "C1", entries[1].EntityID)
	require.Equal(t, EntityCustomer, entries[1].EntityType)
	require.Equal(t, 500.0, entries[1].Credit)
	require.Equal(t, "Receipt from Karim Textiles", entries[1].Description)
	require.Equal(t, 1, metrics["Receipt"])
	require.Empty(t, CheckVoucherBalances(ledger.entries))
}

func TestVoucherNumbersRunPerKind(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, CashInput{Date: date("2024-03-01"), CashAccountID: "CASH-1", EntityID: "C1", Amount: 10})
	require.NoError(t, err)
	_, err = svc.PostReceipt(ctx, CashInput{Date: date("2024-03-02"), CashAccountID: "CASH-1", EntityID: "C1", Amount: 20})
	require.NoError(t, err)
	paid, err := svc.PostPayment(ctx, CashInput{Date: date("2024-03-02"), CashAccountID: "CASH-1", EntityID: "S1", Amount: 5})
	require.NoError(t, err)
	exp, err := svc.PostExpense(ctx, ExpenseInput{Date: date("2024-03-03"), CashAccountID: "CASH-1", ExpenseAccountID: AccountGeneralExpense, Amount: 3})
	require.NoError(t, err)

	require.Equal(t, "PV-001", paid[0].VoucherID)
	require.Equal(t, AccountPayableSuppliers, paid[0].Account)
	require.Equal(t, 5.0, paid[0].Debit)
	require.Equal(t, "EV-001", exp[0].VoucherID)
	legs, err := FindVoucher(ledger.entries, "RV-002")
	require.NoError(t, err)
	require.Len(t, legs, 2)
}

func TestPostJournalRejectsUnbalanced(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)

	_, err := svc.PostJournal(context.Background(), JournalInput{
		Date: date("2024-03-01"),
		Lines: []VoucherLine{
			{Account: AccountCash, Debit: 100},
			{Account: AccountCapital, Credit: 90},
		},
	})
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Empty(t, ledger.entries)
	require.Zero(t, ledger.counters[EntryTypeJournal])
}

func TestPostJournalValidation(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input JournalInput
		want  error
	}{
		{"too few lines", JournalInput{Date: date("2024-01-01"), Lines: []VoucherLine{{Account: AccountCash, Debit: 1}}}, ErrTooFewLines},
		{"missing date", JournalInput{Lines: []VoucherLine{{Account: AccountCash, Debit: 1}, {Account: AccountCapital, Credit: 1}}}, ErrDateRequired},
		{"negative", JournalInput{Date: date("2024-01-01"), Lines: []VoucherLine{{Account: AccountCash, Debit: -1}, {Account: AccountCapital, Credit: -1}}}, ErrInvalidAmount},
		{"both sides", JournalInput{Date: date("2024-01-01"), Lines: []VoucherLine{{Account: AccountCash, Debit: 1, Credit: 1}, {Account: AccountCapital, Credit: 0.0}}}, ErrInvalidAmount},
		{"unknown account", JournalInput{Date: date("2024-01-01"), Lines: []VoucherLine{{Account: "NOPE", Debit: 1}, {Account: AccountCapital, Credit: 1}}}, ErrUnknownAccount},
		{"unknown entity", JournalInput{Date: date("2024-01-01"), Lines: []VoucherLine{{EntityID: "ghost", Debit: 1}, {Account: AccountCapital, Credit: 1}}}, ErrUnknownEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PostJournal(ctx, tc.input)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Empty(t, ledger.entries)
}

func TestPostReceiptRejectsNonCashAccount(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	_, err := svc.PostReceipt(context.Background(), CashInput{Date: date("2024-03-01"), CashAccountID: AccountCapital, EntityID: "C1", Amount: 1})
	require.ErrorIs(t, err, ErrInvalidCashAccount)

	_, err = svc.PostReceipt(context.Background(), CashInput{Date: date("2024-03-01"), CashAccountID: "CASH-1", Amount: 1})
	require.ErrorIs(t, err, ErrCounterpartyRequired)
}

func TestReverseVoucherMirrorsLegs(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, CashInput{Date: date("2024-03-01"), CashAccountID: "CASH-1", EntityID: "C1", Amount: 250})
	require.NoError(t, err)

	reversed, err := svc.ReverseVoucher(ctx, ReverseInput{VoucherID: "RV-001", Date: date("2024-03-05"), ActorID: "auditor"})
	require.NoError(t, err)
	require.Len(t, reversed, 2)
	require.Equal(t, "RV-001", reversed[0].VoucherID)
	require.Equal(t, 250.0, reversed[0].Credit)
	require.True(t, reversed[0].IsReversal())
	require.Equal(t, EntryTypeReceipt, reversed[1].EntryType)

	var net float64
	for _, e := range ledger.entries {
		if e.Account == "CASH-1" {
			net += e.Net()
		}
	}
	require.InDelta(t, 0, net, 0.001)
	require.Empty(t, CheckVoucherBalances(ledger.entries))

	_, err = svc.ReverseVoucher(ctx, ReverseInput{VoucherID: "RV-001"})
	require.ErrorIs(t, err, ErrAlreadyReversed)
	_, err = svc.ReverseVoucher(ctx, ReverseInput{VoucherID: "RV-404"})
	require.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestGetVoucherNotFound(t *testing.T) {
	svc := NewService(newMemoryLedger(), nil)
	_, err := svc.GetVoucher(context.Background(), "JV-999")
	if !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound, got %v", err)
	}
}

func TestCheckVoucherBalancesFlagsBrokenVoucher(t *testing.T) {
	entries := []JournalEntry{
		{VoucherID: "JV-001", Debit: 100},
		{VoucherID: "JV-001", Credit: 100},
		{VoucherID: "JV-002", Debit: 50},
		{VoucherID: "JV-002", Credit: 49.5},
	}
	got := CheckVoucherBalances(entries)
	require.Len(t, got, 1)
	require.Equal(t, "JV-002", got[0].VoucherID)
}

func TestVoucherIDFormats(t *testing.T) {
	require.Equal(t, "RV-001", FormatVoucherID(EntryTypeReceipt, 1))
	require.Equal(t, "PV-042", FormatVoucherID(EntryTypePayment, 42))
	require.Equal(t, "EV-1000", FormatVoucherID(EntryTypeExpense, 1000))
	require.Equal(t, "JV-007", FormatVoucherID(EntryTypeJournal, 7))
	require.Equal(t, "JV-FA-abc", AssetVoucherID("abc"))
	require.Equal(t, "JV-DEP-1709251200000", DepreciationVoucherID(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDisplayBalanceFlipsCreditNormal(t *testing.T) {
	require.Equal(t, 100.0, DisplayBalance(CategoryCash, 100))
	require.Equal(t, 100.0, DisplayBalance(CategoryPayable, -100))
	require.Equal(t, -25.0, DisplayBalance(CategoryRevenue, 25))
	require.Equal(t, NormalSideCredit, CategoryAccumulatedDepreciation.NormalSide())
}

func TestReverseVoucherRejectsOwnedVouchers(t *testing.T) {
	ledger := newMemoryLedger()
	svc := NewService(ledger, nil)
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, CashInput{Date: date("2024-03-01"), CashAccountID: "CASH-1", EntityID: "C1", Amount: 40})
	require.NoError(t, err)
	ledger.entries = append(ledger.entries,
		JournalEntry{ID: "S1", VoucherID: "JV-002", Account: AccountSalesRevenue, Credit: 40, Source: SourceSalesInvoice},
		JournalEntry{ID: "S2", VoucherID: "JV-002", EntityID: "C1", Account: AccountReceivable, Debit: 40, Source: SourceSalesInvoice},
		JournalEntry{ID: "D1", VoucherID: "JV-DEP-1735603200000", Account: AccountDepreciationExpense, Debit: 10},
		JournalEntry{ID: "D2", VoucherID: "JV-DEP-1735603200000", Account: AccountAccumulatedDepreciation, Credit: 10},
	)
	before := len(ledger.entries)

	for _, id := range []string{"JV-002", "JV-DEP-1735603200000"} {
		_, err := svc.ReverseVoucher(ctx, ReverseInput{VoucherID: id, Date: date("2024-03-05")})
		require.ErrorIs(t, err, ErrOwnedVoucher)
	}
	require.Len(t, ledger.entries, before)

	_, err = svc.ReverseVoucher(ctx, ReverseInput{VoucherID: "RV-001", Date: date("2024-03-05")})
	require.NoError(t, err)
	require.Len(t, ledger.entries, before+2)
}
