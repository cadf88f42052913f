package reports

import (
	"math"
	"strings"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// AccountFilter selects a direct account or an entity sub-ledger of a shared account.
type AccountFilter struct {
	AccountID string `json:"accountId"`
	EntityID  string `json:"entityId,omitempty"`
}

// Matches reports whether the entry belongs to the filtered ledger.
func (f AccountFilter) Matches(e accounting.JournalEntry) bool {
	if e.Account != f.AccountID {
		return false
	}
	return f.EntityID == "" || e.EntityID == f.EntityID
}

// FCYAmount is the foreign currency view of a ledger row.
type FCYAmount struct {
	Currency string  `json:"currency"`
	Debit    float64 `json:"debit"`
	Credit   float64 `json:"credit"`
	Balance  float64 `json:"balance"`
	Rate     float64 `json:"rate"`
	// Estimated is set when the amount was derived from a carried-forward rate.
	Estimated bool `json:"estimated"`
}

// LedgerRow is one posted entry with its running balance.
type LedgerRow struct {
	EntryID     string               `json:"entryId"`
	VoucherID   string               `json:"voucherId"`
	Date        time.Time            `json:"date"`
	EntryType   accounting.EntryType `json:"entryType"`
	Description string               `json:"description"`
	Debit       float64              `json:"debit"`
	Credit      float64              `json:"credit"`
	Balance     float64              `json:"balance"`
	Side        string               `json:"side"`
	FCY         *FCYAmount           `json:"fcy,omitempty"`
}

// Ledger is the replayed statement of one account for a date range.
type Ledger struct {
	Filter      AccountFilter `json:"filter"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Currency    string        `json:"currency"`
	Opening     float64       `json:"opening"`
	Closing     float64       `json:"closing"`
	TotalDebit  float64       `json:"totalDebit"`
	TotalCredit float64       `json:"totalCredit"`
	OpeningFCY  float64       `json:"openingFcy"`
	ClosingFCY  float64       `json:"closingFcy"`
	Rows        []LedgerRow   `json:"rows"`
}

// Side labels a balance as Dr (zero or positive) or Cr.
func Side(balance float64) string {
	if balance < 0 {
		return "Cr"
	}
	return "Dr"
}

// ComputeLedger replays entries for one account between start and end
// inclusive. When displayCurrency is a foreign currency every row also
// carries its foreign amount: the entry's original amount when booked in
// that currency, otherwise an estimate using the last implied rate.
func ComputeLedger(entries []accounting.JournalEntry, filter AccountFilter, start, end time.Time, displayCurrency string) Ledger {
	start, end = accounting.Day(start), accounting.Day(end)
	ledger := Ledger{Filter: filter, From: start, To: end, Currency: accounting.BaseCurrency, Rows: []LedgerRow{}}
	fcyMode := displayCurrency != "" && !strings.EqualFold(displayCurrency, accounting.BaseCurrency)
	if fcyMode {
		ledger.Currency = strings.ToUpper(displayCurrency)
	}

	var balance, fcyBalance, rate float64
	for _, e := range entries {
		if !filter.Matches(e) {
			continue
		}
		day := accounting.Day(e.Date)
		if day.After(end) {
			continue
		}

		var fcy *FCYAmount
		if fcyMode {
			fcy, rate = foreignAmount(e, ledger.Currency, rate)
		}

		if day.Before(start) {
			balance += e.Net()
			if fcy != nil {
				fcyBalance += fcy.Debit - fcy.Credit
			}
			continue
		}
		if len(ledger.Rows) == 0 {
			ledger.Opening = accounting.Round2(balance)
			ledger.OpeningFCY = accounting.Round2(fcyBalance)
		}
		balance += e.Net()
		ledger.TotalDebit += e.Debit
		ledger.TotalCredit += e.Credit
		row := LedgerRow{
			EntryID:     e.ID,
			VoucherID:   e.VoucherID,
			Date:        day,
			EntryType:   e.EntryType,
			Description: e.Description,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Balance:     accounting.Round2(balance),
			Side:        Side(accounting.Round2(balance)),
		}
		if fcy != nil {
			fcyBalance += fcy.Debit - fcy.Credit
			fcy.Balance = accounting.Round2(fcyBalance)
			row.FCY = fcy
		}
		ledger.Rows = append(ledger.Rows, row)
	}
	if len(ledger.Rows) == 0 {
		ledger.Opening = accounting.Round2(balance)
		ledger.OpeningFCY = accounting.Round2(fcyBalance)
	}
	ledger.Closing = accounting.Round2(balance)
	ledger.ClosingFCY = accounting.Round2(fcyBalance)
	ledger.TotalDebit = accounting.Round2(ledger.TotalDebit)
	ledger.TotalCredit = accounting.Round2(ledger.TotalCredit)
	return ledger
}

// foreignAmount returns the FCY view of e and the rate to carry forward.
func foreignAmount(e accounting.JournalEntry, currency string, lastRate float64) (*FCYAmount, float64) {
	usd := e.Debit + e.Credit
	var amount float64
	estimated := false
	switch {
	case e.OriginalAmount != nil && strings.EqualFold(e.OriginalAmount.Currency, currency) && e.OriginalAmount.Amount != 0:
		amount = math.Abs(e.OriginalAmount.Amount)
		lastRate = usd / amount
	case lastRate > 0:
		amount = usd / lastRate
		estimated = true
	default:
		return nil, lastRate
	}
	fcy := &FCYAmount{Currency: currency, Rate: lastRate, Estimated: estimated}
	if e.Debit >= e.Credit {
		fcy.Debit = accounting.Round2(amount)
	} else {
		fcy.Credit = accounting.Round2(amount)
	}
	return fcy, lastRate
}
