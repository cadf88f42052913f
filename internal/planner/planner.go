// Package planner tracks weekly and monthly receivable, payable and expense
// plans against the actuals recorded in the ledger.
package planner

import (
	"errors"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
)

// Period selects the planning horizon.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// Valid reports whether the period is known.
func (p Period) Valid() bool {
	return p == Weekly || p == Monthly
}

// Status is the planner state for a period.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusPromptPending Status = "promptPending"
)

// MemberKind says which actuals a planned member is measured against.
type MemberKind string

const (
	MemberCustomer MemberKind = "customer"
	MemberSupplier MemberKind = "supplier"
	MemberExpense  MemberKind = "expense"
)

// Values are the plan figures of one member for one period.
type Values struct {
	CurrentPlan float64 `json:"currentPlan"`
	LastPlan    float64 `json:"lastPlan"`
	LastActual  float64 `json:"lastActual"`
}

// Plan holds the weekly and monthly figures of one member.
type Plan struct {
	Weekly  Values `json:"weekly"`
	Monthly Values `json:"monthly"`
}

// For returns the values for p.
func (pl Plan) For(p Period) Values {
	if p == Monthly {
		return pl.Monthly
	}
	return pl.Weekly
}

func (pl *Plan) set(p Period, v Values) {
	if p == Monthly {
		pl.Monthly = v
		return
	}
	pl.Weekly = v
}

// Data is the persisted planner state.
type Data struct {
	Plans             map[string]Plan `json:"plans"`
	LastWeeklyReset   time.Time       `json:"lastWeeklyReset"`
	LastMonthlyReset  time.Time       `json:"lastMonthlyReset"`
	CustomerIDs       []string        `json:"customerIds"`
	SupplierIDs       []string        `json:"supplierIds"`
	ExpenseAccountIDs []string        `json:"expenseAccountIds"`
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	out := d
	out.Plans = make(map[string]Plan, len(d.Plans))
	for k, v := range d.Plans {
		out.Plans[k] = v
	}
	out.CustomerIDs = append([]string(nil), d.CustomerIDs...)
	out.SupplierIDs = append([]string(nil), d.SupplierIDs...)
	out.ExpenseAccountIDs = append([]string(nil), d.ExpenseAccountIDs...)
	return out
}

// Marker returns the stored reset marker for p; zero means never set.
func (d Data) Marker(p Period) time.Time {
	if p == Monthly {
		return d.LastMonthlyReset
	}
	return d.LastWeeklyReset
}

func (d *Data) setMarker(p Period, t time.Time) {
	if p == Monthly {
		d.LastMonthlyReset = t
		return
	}
	d.LastWeeklyReset = t
}

// Member is one tracked customer, supplier or expense account.
type Member struct {
	ID   string     `json:"id"`
	Kind MemberKind `json:"kind"`
}

// Members lists every tracked member in kind order.
func (d Data) Members() []Member {
	out := make([]Member, 0, len(d.CustomerIDs)+len(d.SupplierIDs)+len(d.ExpenseAccountIDs))
	for _, id := range d.CustomerIDs {
		out = append(out, Member{ID: id, Kind: MemberCustomer})
	}
	for _, id := range d.SupplierIDs {
		out = append(out, Member{ID: id, Kind: MemberSupplier})
	}
	for _, id := range d.ExpenseAccountIDs {
		out = append(out, Member{ID: id, Kind: MemberExpense})
	}
	return out
}

// IsMember reports whether id is tracked.
func (d Data) IsMember(id string) bool {
	for _, m := range d.Members() {
		if m.ID == id {
			return true
		}
	}
	return false
}

var (
	// ErrPromptPending blocks plan edits until the rollover prompt is resolved.
	ErrPromptPending = errors.New("planner: new period started, choose start new or continue")
	// ErrInvalidPeriod indicates an unknown period.
	ErrInvalidPeriod = errors.New("planner: invalid period")
	// ErrNotMember indicates a plan edit for an untracked entity.
	ErrNotMember = errors.New("planner: entity is not tracked")
	// ErrNoPrompt indicates a rollover action while no prompt is pending.
	ErrNoPrompt = errors.New("planner: no rollover pending")
)

// PeriodStart returns Monday 00:00 UTC of the week, or the first of the
// month, containing now.
func PeriodStart(p Period, now time.Time) time.Time {
	day := accounting.Day(now)
	if p == Monthly {
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// PreviousPeriod returns the first and last day of the full period before
// the one starting at currentStart.
func PreviousPeriod(p Period, currentStart time.Time) (time.Time, time.Time) {
	end := currentStart.AddDate(0, 0, -1)
	if p == Monthly {
		return currentStart.AddDate(0, -1, 0), end
	}
	return currentStart.AddDate(0, 0, -7), end
}

// StatusAt derives the state for p at now. A missing marker is idle; the
// caller initialises it.
func StatusAt(d Data, p Period, now time.Time) Status {
	marker := d.Marker(p)
	if marker.IsZero() || marker.Equal(PeriodStart(p, now)) {
		return StatusIdle
	}
	return StatusPromptPending
}

// Accounts resolves the shared general account of customers and suppliers.
type Accounts interface {
	GeneralAccountFor(t accounting.EntityType) string
}

// Actual sums what a member actually received, paid or spent between start
// and end inclusive.
func Actual(entries []accounting.JournalEntry, m Member, accounts Accounts, start, end time.Time) float64 {
	start, end = accounting.Day(start), accounting.Day(end)
	var total float64
	for _, e := range entries {
		day := accounting.Day(e.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		switch m.Kind {
		case MemberCustomer:
			if e.EntryType == accounting.EntryTypeReceipt && e.EntityID == m.ID &&
				e.Account == accounts.GeneralAccountFor(accounting.EntityCustomer) {
				total += e.Credit - e.Debit
			}
		case MemberSupplier:
			if e.EntryType == accounting.EntryTypePayment && e.EntityID == m.ID &&
				e.Account == accounts.GeneralAccountFor(accounting.EntitySupplier) {
				total += e.Debit - e.Credit
			}
		case MemberExpense:
			if e.EntryType == accounting.EntryTypeExpense && e.Account == m.ID {
				total += e.Debit - e.Credit
			}
		}
	}
	return accounting.Round2(total)
}

// StartNew rolls every member's current plan into last plan, records the
// previous full period's actual, clears the current plan and advances the marker.
func StartNew(d Data, p Period, now time.Time, entries []accounting.JournalEntry, accounts Accounts) Data {
	out := d.Clone()
	start := PeriodStart(p, now)
	prevStart, prevEnd := PreviousPeriod(p, start)
	for _, m := range out.Members() {
		plan := out.Plans[m.ID]
		v := plan.For(p)
		v.LastPlan = v.CurrentPlan
		v.LastActual = Actual(entries, m, accounts, prevStart, prevEnd)
		v.CurrentPlan = 0
		plan.set(p, v)
		out.Plans[m.ID] = plan
	}
	out.setMarker(p, start)
	return out
}

// Continue keeps the plans and only advances the marker.
func Continue(d Data, p Period, now time.Time) Data {
	out := d.Clone()
	out.setMarker(p, PeriodStart(p, now))
	return out
}
