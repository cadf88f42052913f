package reports

import (
	"sort"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// ProfitAndLossAccount represents a revenue or expense account summary.
type ProfitAndLossAccount struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string                 `json:"label"`
	Accounts []ProfitAndLossAccount `json:"accounts"`
	Total    float64                `json:"total"`
}

// ProfitAndLoss contains the structured output for the report.
type ProfitAndLoss struct {
	From      time.Time            `json:"from"`
	To        time.Time            `json:"to"`
	Revenue   ProfitAndLossSection `json:"revenue"`
	Expense   ProfitAndLossSection `json:"expense"`
	NetIncome float64              `json:"netIncome"`
}

// BuildProfitAndLoss aggregates period movements of revenue and expense
// accounts between start and end inclusive.
func BuildProfitAndLoss(entries []accounting.JournalEntry, accounts []accounting.Account, start, end time.Time) ProfitAndLoss {
	pl := ProfitAndLossFromBalances(AccountBalances(entries, accounts, start, end))
	pl.From, pl.To = accounting.Day(start), accounting.Day(end)
	return pl
}

// ProfitAndLossFromBalances splits balances into revenue and expense sections.
// Only period debit and credit are used; opening balances are ignored.
func ProfitAndLossFromBalances(accounts []AccountBalance) ProfitAndLoss {
	revenue := ProfitAndLossSection{Label: "Revenue", Accounts: []ProfitAndLossAccount{}}
	expense := ProfitAndLossSection{Label: "Expenses", Accounts: []ProfitAndLossAccount{}}

	for _, acc := range accounts {
		amount := acc.Debit - acc.Credit
		row := ProfitAndLossAccount{Code: acc.Code, Name: acc.Name}
		switch acc.Category {
		case accounting.CategoryRevenue:
			row.Amount = accounting.Round2(-amount)
			revenue.Accounts = append(revenue.Accounts, row)
			revenue.Total += row.Amount
		case accounting.CategoryExpense:
			row.Amount = accounting.Round2(amount)
			expense.Accounts = append(expense.Accounts, row)
			expense.Total += row.Amount
		}
	}

	sort.Slice(revenue.Accounts, func(i, j int) bool { return revenue.Accounts[i].Code < revenue.Accounts[j].Code })
	sort.Slice(expense.Accounts, func(i, j int) bool { return expense.Accounts[i].Code < expense.Accounts[j].Code })
	revenue.Total = accounting.Round2(revenue.Total)
	expense.Total = accounting.Round2(expense.Total)

	return ProfitAndLoss{
		Revenue:   revenue,
		Expense:   expense,
		NetIncome: accounting.Round2(revenue.Total - expense.Total),
	}
}
