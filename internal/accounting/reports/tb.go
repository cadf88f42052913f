package reports

import (
	"sort"

	"github.com/usman-global/usman-books/internal/accounting"
)

// AccountBalance models a general ledger account with aggregated balances.
type AccountBalance struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Category accounting.Category `json:"category"`
	Opening  float64             `json:"opening"`
	Debit    float64             `json:"debit"`
	Credit   float64             `json:"credit"`
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() float64 {
	return accounting.Round2(a.Opening + a.Debit - a.Credit)
}

// GroupKey returns a key used for grouping trial balance rows.
func (a AccountBalance) GroupKey() accounting.Category {
	if !a.Category.Valid() {
		return accounting.CategoryUnclassified
	}
	return a.Category
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Opening float64 `json:"opening"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Closing float64 `json:"closing"`
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key      accounting.Category   `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Opening  float64               `json:"opening"`
	Debit    float64               `json:"debit"`
	Credit   float64               `json:"credit"`
	Closing  float64               `json:"closing"`
}

// TrialBalance is the grouped trial balance for a period.
type TrialBalance struct {
	Groups       []TrialBalanceGroup `json:"groups"`
	TotalDebit   float64             `json:"totalDebit"`
	TotalCredit  float64             `json:"totalCredit"`
	TotalOpening float64             `json:"totalOpening"`
	TotalClosing float64             `json:"totalClosing"`
}

// BuildTrialBalance converts account balances into trial balance data
// grouped by category in chart order.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	groups := make(map[accounting.Category]*TrialBalanceGroup)
	for _, acc := range accounts {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
		}
		row := TrialBalanceAccount{
			Code:    acc.Code,
			Name:    acc.Name,
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: acc.Closing(),
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Opening += row.Opening
		grp.Debit += row.Debit
		grp.Credit += row.Credit
		grp.Closing += row.Closing
	}

	result := TrialBalance{Groups: []TrialBalanceGroup{}}
	for _, key := range accounting.Categories {
		grp, ok := groups[key]
		if !ok {
			continue
		}
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		grp.Opening = accounting.Round2(grp.Opening)
		grp.Debit = accounting.Round2(grp.Debit)
		grp.Credit = accounting.Round2(grp.Credit)
		grp.Closing = accounting.Round2(grp.Closing)
		result.Groups = append(result.Groups, *grp)
		result.TotalOpening += grp.Opening
		result.TotalDebit += grp.Debit
		result.TotalCredit += grp.Credit
		result.TotalClosing += grp.Closing
	}
	result.TotalOpening = accounting.Round2(result.TotalOpening)
	result.TotalDebit = accounting.Round2(result.TotalDebit)
	result.TotalCredit = accounting.Round2(result.TotalCredit)
	result.TotalClosing = accounting.Round2(result.TotalClosing)
	return result
}
