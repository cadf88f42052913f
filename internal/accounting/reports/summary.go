package reports

import (
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// Subject is an account or entity listed by the summarizer.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SummaryRow holds the period movement of one account or entity.
type SummaryRow struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Opening float64 `json:"opening"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Closing float64 `json:"closing"`
}

// SummarizeByType computes opening, period debit/credit and closing for each
// subject. With an empty generalAccountID subject ids are account ids;
// otherwise subjects are entities on that shared account.
func SummarizeByType(entries []accounting.JournalEntry, subjects []Subject, generalAccountID string, start, end time.Time) []SummaryRow {
	start, end = accounting.Day(start), accounting.Day(end)
	index := make(map[string]*SummaryRow, len(subjects))
	rows := make([]SummaryRow, len(subjects))
	for i, s := range subjects {
		rows[i] = SummaryRow{ID: s.ID, Name: s.Name}
		index[s.ID] = &rows[i]
	}
	for _, e := range entries {
		key := e.Account
		if generalAccountID != "" {
			if e.Account != generalAccountID || e.EntityID == "" {
				continue
			}
			key = e.EntityID
		}
		row, ok := index[key]
		if !ok {
			continue
		}
		day := accounting.Day(e.Date)
		switch {
		case day.Before(start):
			row.Opening += e.Net()
		case !day.After(end):
			row.Debit += e.Debit
			row.Credit += e.Credit
		}
	}
	for i := range rows {
		rows[i].Opening = accounting.Round2(rows[i].Opening)
		rows[i].Debit = accounting.Round2(rows[i].Debit)
		rows[i].Credit = accounting.Round2(rows[i].Credit)
		rows[i].Closing = accounting.Round2(rows[i].Opening + rows[i].Debit - rows[i].Credit)
	}
	return rows
}

// AccountBalances summarises every chart account plus any account that only
// appears in entries, which is reported as unclassified.
func AccountBalances(entries []accounting.JournalEntry, accounts []accounting.Account, start, end time.Time) []AccountBalance {
	subjects := make([]Subject, 0, len(accounts))
	categories := make(map[string]accounting.Category, len(accounts))
	for _, acc := range accounts {
		subjects = append(subjects, Subject{ID: acc.ID, Name: acc.Name})
		categories[acc.ID] = acc.Category
	}
	for _, e := range entries {
		if _, ok := categories[e.Account]; ok {
			continue
		}
		categories[e.Account] = accounting.CategoryUnclassified
		subjects = append(subjects, Subject{ID: e.Account, Name: e.Account})
	}
	rows := SummarizeByType(entries, subjects, "", start, end)
	out := make([]AccountBalance, len(rows))
	for i, row := range rows {
		out[i] = AccountBalance{
			Code:     row.ID,
			Name:     row.Name,
			Category: categories[row.ID],
			Opening:  row.Opening,
			Debit:    row.Debit,
			Credit:   row.Credit,
		}
	}
	return out
}
