package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
)

type defaultAccounts struct{}

func (defaultAccounts) GeneralAccountFor(t accounting.EntityType) string {
	return accounting.DefaultEntityAccounts()[t]
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPeriodStart(t *testing.T) {
	// 2024-03-07 is a Thursday.
	require.Equal(t, at("2024-03-04T00:00:00Z"), PeriodStart(Weekly, at("2024-03-07T15:30:00Z")))
	require.Equal(t, at("2024-03-04T00:00:00Z"), PeriodStart(Weekly, at("2024-03-04T00:00:00Z")))
	require.Equal(t, at("2024-03-04T00:00:00Z"), PeriodStart(Weekly, at("2024-03-10T23:59:00Z")))
	require.Equal(t, at("2024-03-01T00:00:00Z"), PeriodStart(Monthly, at("2024-03-31T10:00:00Z")))

	start, end := PreviousPeriod(Weekly, at("2024-03-04T00:00:00Z"))
	require.Equal(t, at("2024-02-26T00:00:00Z"), start)
	require.Equal(t, at("2024-03-03T00:00:00Z"), end)
	start, end = PreviousPeriod(Monthly, at("2024-03-01T00:00:00Z"))
	require.Equal(t, at("2024-02-01T00:00:00Z"), start)
	require.Equal(t, at("2024-02-29T00:00:00Z"), end)
}

func TestStatusTransitions(t *testing.T) {
	var d Data
	now := at("2024-03-07T09:00:00Z")
	require.Equal(t, StatusIdle, StatusAt(d, Weekly, now))

	d.LastWeeklyReset = at("2024-03-04T00:00:00Z")
	require.Equal(t, StatusIdle, StatusAt(d, Weekly, now))

	next := at("2024-03-12T09:00:00Z")
	require.Equal(t, StatusPromptPending, StatusAt(d, Weekly, next))

	cont := Continue(d, Weekly, next)
	require.Equal(t, StatusIdle, StatusAt(cont, Weekly, next))
	require.Equal(t, StatusPromptPending, StatusAt(d, Weekly, next), "input must not be mutated")
}

func TestStartNewRollsPlans(t *testing.T) {
	d := Data{
		Plans: map[string]Plan{
			"C1":      {Monthly: Values{CurrentPlan: 1000, LastPlan: 5}},
			"S1":      {Monthly: Values{CurrentPlan: 400}},
			"EXP-001": {Monthly: Values{CurrentPlan: 90}, Weekly: Values{CurrentPlan: 20}},
		},
		LastMonthlyReset:  at("2024-02-01T00:00:00Z"),
		CustomerIDs:       []string{"C1"},
		SupplierIDs:       []string{"S1"},
		ExpenseAccountIDs: []string{"EXP-001"},
	}
	entries := []accounting.JournalEntry{
		{VoucherID: "RV-001", Date: at("2024-02-10T00:00:00Z"), EntryType: accounting.EntryTypeReceipt, Account: "CASH-001", Debit: 700},
		{VoucherID: "RV-001", Date: at("2024-02-10T00:00:00Z"), EntryType: accounting.EntryTypeReceipt, Account: "AR-001", EntityID: "C1", Credit: 700},
		{VoucherID: "RV-002", Date: at("2024-03-01T00:00:00Z"), EntryType: accounting.EntryTypeReceipt, Account: "AR-001", EntityID: "C1", Credit: 50},
		{VoucherID: "JV-001", Date: at("2024-02-11T00:00:00Z"), EntryType: accounting.EntryTypeJournal, Account: "AR-001", EntityID: "C1", Credit: 999},
		{VoucherID: "PV-001", Date: at("2024-02-20T00:00:00Z"), EntryType: accounting.EntryTypePayment, Account: "AP-001", EntityID: "S1", Debit: 300},
		{VoucherID: "EV-001", Date: at("2024-02-29T00:00:00Z"), EntryType: accounting.EntryTypeExpense, Account: "EXP-001", Debit: 80},
	}

	now := at("2024-03-05T08:00:00Z")
	require.Equal(t, StatusPromptPending, StatusAt(d, Monthly, now))
	out := StartNew(d, Monthly, now, entries, defaultAccounts{})

	require.Equal(t, at("2024-03-01T00:00:00Z"), out.LastMonthlyReset)
	require.Equal(t, Values{CurrentPlan: 0, LastPlan: 1000, LastActual: 700}, out.Plans["C1"].Monthly)
	require.Equal(t, Values{CurrentPlan: 0, LastPlan: 400, LastActual: 300}, out.Plans["S1"].Monthly)
	require.Equal(t, Values{CurrentPlan: 0, LastPlan: 90, LastActual: 80}, out.Plans["EXP-001"].Monthly)
	require.Equal(t, 20.0, out.Plans["EXP-001"].Weekly.CurrentPlan, "weekly plan untouched")
	require.Equal(t, 1000.0, d.Plans["C1"].Monthly.CurrentPlan, "input must not be mutated")
}
