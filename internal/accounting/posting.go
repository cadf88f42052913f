package accounting

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TxRepository exposes the ledger operations available inside a store transaction.
type TxRepository interface {
	Account(id string) (Account, bool)
	Entity(id string) (Entity, bool)
	GeneralAccountFor(t EntityType) string
	Entries() []JournalEntry
	VoucherEntries(voucherID string) []JournalEntry
	NextVoucherNumber(kind EntryType) int
	AppendEntries(entries []JournalEntry) ([]JournalEntry, error)
}

// Validate ensures the voucher is balanced and well formed.
func (v Voucher) Validate() error {
	if !v.Type.Valid() {
		return ErrInvalidEntryType
	}
	if v.Date.IsZero() {
		return ErrDateRequired
	}
	if len(v.Lines) < 2 {
		return ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range v.Lines {
		if line.Account == "" && line.EntityID == "" {
			return fmt.Errorf("%w: line %d missing account", ErrUnknownAccount, idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w: line %d negative amount", ErrInvalidAmount, idx)
		}
		if line.Debit > 0 && line.Credit > 0 {
			return fmt.Errorf("%w: line %d cannot be both debit and credit", ErrInvalidAmount, idx)
		}
		if line.Debit == 0 && line.Credit == 0 {
			return fmt.Errorf("%w: line %d has no amount", ErrInvalidAmount, idx)
		}
		debit = debit.Add(decimal.NewFromFloat(line.Debit))
		credit = credit.Add(decimal.NewFromFloat(line.Credit))
	}
	if debit.Sub(credit).Abs().GreaterThanOrEqual(Tolerance) {
		return fmt.Errorf("%w: debit %s credit %s", ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

// PostVoucher validates v and appends all of its legs through tx in one call.
func PostVoucher(tx TxRepository, v Voucher) ([]JournalEntry, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	entries := make([]JournalEntry, 0, len(v.Lines))
	for idx, line := range v.Lines {
		entry := JournalEntry{
			Date:           Day(v.Date),
			EntryType:      v.Type,
			Account:        line.Account,
			Debit:          Round2(line.Debit),
			Credit:         Round2(line.Credit),
			Description:    line.Description,
			OriginalAmount: line.OriginalAmount,
			CreatedBy:      v.CreatedBy,
			Source:         v.Source,
		}
		if line.EntityID != "" {
			ent, ok := tx.Entity(line.EntityID)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, line.EntityID)
			}
			entry.EntityID = ent.ID
			entry.EntityType = ent.Type
			if entry.Account == "" {
				entry.Account = tx.GeneralAccountFor(ent.Type)
			}
		}
		if _, ok := tx.Account(entry.Account); !ok {
			return nil, fmt.Errorf("%w: line %d account %q", ErrUnknownAccount, idx, entry.Account)
		}
		entries = append(entries, entry)
	}

	voucherID := v.ID
	if voucherID == "" {
		voucherID = FormatVoucherID(v.Type, tx.NextVoucherNumber(v.Type))
	}
	if len(tx.VoucherEntries(voucherID)) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateVoucher, voucherID)
	}
	for i := range entries {
		entries[i].VoucherID = voucherID
	}
	return tx.AppendEntries(entries)
}

// ReversalEntries mirrors the legs of a voucher with debit and credit swapped.
// The reversal keeps the voucher id and entry type so per-voucher totals and
// per-type actuals net to zero.
func ReversalEntries(original []JournalEntry, date time.Time, actor string) []JournalEntry {
	out := make([]JournalEntry, 0, len(original))
	for _, e := range original {
		rev := e
		rev.ID = ""
		rev.Date = Day(date)
		rev.Debit, rev.Credit = e.Credit, e.Debit
		rev.Description = ReversedPrefix + e.Description
		rev.CreatedBy = actor
		out = append(out, rev)
	}
	return out
}

// FindVoucher returns every leg of the voucher in entry order.
func FindVoucher(entries []JournalEntry, voucherID string) ([]JournalEntry, error) {
	var legs []JournalEntry
	for _, e := range entries {
		if e.VoucherID == voucherID {
			legs = append(legs, e)
		}
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVoucherNotFound, voucherID)
	}
	return legs, nil
}

// Imbalance reports a voucher whose legs do not net to zero.
type Imbalance struct {
	VoucherID string  `json:"voucherId"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
}

// CheckVoucherBalances returns every voucher whose debits differ from its credits.
func CheckVoucherBalances(entries []JournalEntry) []Imbalance {
	type totals struct{ debit, credit decimal.Decimal }
	byVoucher := make(map[string]*totals)
	for _, e := range entries {
		t, ok := byVoucher[e.VoucherID]
		if !ok {
			t = &totals{debit: decimal.Zero, credit: decimal.Zero}
			byVoucher[e.VoucherID] = t
		}
		t.debit = t.debit.Add(decimal.NewFromFloat(e.Debit))
		t.credit = t.credit.Add(decimal.NewFromFloat(e.Credit))
	}
	var out []Imbalance
	for id, t := range byVoucher {
		if t.debit.Sub(t.credit).Abs().LessThan(Tolerance) {
			continue
		}
		debit, _ := t.debit.Float64()
		credit, _ := t.credit.Float64()
		out = append(out, Imbalance{VoucherID: id, Debit: debit, Credit: credit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoucherID < out[j].VoucherID })
	return out
}
