package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/usman-global/usman-books/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts posted vouchers.
type MetricsPort interface {
	ObserveVoucher(kind string)
}

// ErrCounterpartyRequired indicates a receipt or payment without entity or account.
var ErrCounterpartyRequired = errors.New("accounting: counterparty entity or account required")

// Service coordinates posting and reversing vouchers.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches a voucher counter.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

// CashInput describes a receipt into, or a payment out of, a cash or bank account.
type CashInput struct {
	Date           time.Time
	CashAccountID  string
	EntityID       string
	AccountID      string
	Amount         float64
	Description    string
	OriginalAmount *Money
	CreatedBy      string
}

// ExpenseInput describes an expense paid from a cash or bank account.
type ExpenseInput struct {
	Date             time.Time
	CashAccountID    string
	ExpenseAccountID string
	Amount           float64
	Description      string
	CreatedBy        string
}

// JournalInput describes a free-form journal voucher.
type JournalInput struct {
	Date        time.Time
	Description string
	Lines       []VoucherLine
	CreatedBy   string
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	VoucherID string
	Date      time.Time
	ActorID   string
}

// PostReceipt debits the cash account and credits the counterparty.
func (s *Service) PostReceipt(ctx context.Context, in CashInput) ([]JournalEntry, error) {
	return s.postCash(ctx, EntryTypeReceipt, in)
}

// PostPayment debits the counterparty and credits the cash account.
func (s *Service) PostPayment(ctx context.Context, in CashInput) ([]JournalEntry, error) {
	return s.postCash(ctx, EntryTypePayment, in)
}

func (s *Service) postCash(ctx context.Context, kind EntryType, in CashInput) ([]JournalEntry, error) {
	if in.EntityID == "" && in.AccountID == "" {
		return nil, ErrCounterpartyRequired
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	var posted []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureCashAccount(tx, in.CashAccountID); err != nil {
			return err
		}
		desc := in.Description
		if desc == "" {
			name := counterpartyName(tx, in.EntityID, in.AccountID)
			if kind == EntryTypeReceipt {
				desc = "Receipt from " + name
			} else {
				desc = "Payment to " + name
			}
		}
		cash := VoucherLine{Account: in.CashAccountID, Description: desc, OriginalAmount: in.OriginalAmount}
		party := VoucherLine{Account: in.AccountID, EntityID: in.EntityID, Description: desc, OriginalAmount: in.OriginalAmount}
		if kind == EntryTypeReceipt {
			cash.Debit, party.Credit = in.Amount, in.Amount
		} else {
			party.Debit, cash.Credit = in.Amount, in.Amount
		}
		lines := []VoucherLine{cash, party}
		if kind == EntryTypePayment {
			lines = []VoucherLine{party, cash}
		}
		entries, err := PostVoucher(tx, Voucher{Type: kind, Date: in.Date, CreatedBy: in.CreatedBy, Lines: lines})
		if err != nil {
			return err
		}
		posted = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordPosted(ctx, kind, posted, in.CreatedBy)
	return posted, nil
}

// PostExpense debits an expense account and credits the cash account.
func (s *Service) PostExpense(ctx context.Context, in ExpenseInput) ([]JournalEntry, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	var posted []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensureCashAccount(tx, in.CashAccountID); err != nil {
			return err
		}
		acc, ok := tx.Account(in.ExpenseAccountID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, in.ExpenseAccountID)
		}
		if acc.Category != CategoryExpense {
			return ErrInvalidExpenseAccount
		}
		desc := in.Description
		if desc == "" {
			desc = acc.Name
		}
		entries, err := PostVoucher(tx, Voucher{
			Type:      EntryTypeExpense,
			Date:      in.Date,
			CreatedBy: in.CreatedBy,
			Lines: []VoucherLine{
				{Account: acc.ID, Debit: in.Amount, Description: desc},
				{Account: in.CashAccountID, Credit: in.Amount, Description: desc},
			},
		})
		if err != nil {
			return err
		}
		posted = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordPosted(ctx, EntryTypeExpense, posted, in.CreatedBy)
	return posted, nil
}

// PostJournal posts a balanced multi-line journal voucher.
func (s *Service) PostJournal(ctx context.Context, in JournalInput) ([]JournalEntry, error) {
	lines := make([]VoucherLine, len(in.Lines))
	copy(lines, in.Lines)
	for i := range lines {
		if lines[i].Description == "" {
			lines[i].Description = in.Description
		}
	}
	var posted []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entries, err := PostVoucher(tx, Voucher{Type: EntryTypeJournal, Date: in.Date, CreatedBy: in.CreatedBy, Lines: lines})
		if err != nil {
			return err
		}
		posted = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordPosted(ctx, EntryTypeJournal, posted, in.CreatedBy)
	return posted, nil
}

// ReverseVoucher appends mirrored legs for an existing voucher.
func (s *Service) ReverseVoucher(ctx context.Context, in ReverseInput) ([]JournalEntry, error) {
	if in.VoucherID == "" {
		return nil, fmt.Errorf("%w: voucher id required", ErrVoucherNotFound)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	var posted []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		legs := tx.VoucherEntries(in.VoucherID)
		if len(legs) == 0 {
			return fmt.Errorf("%w: %s", ErrVoucherNotFound, in.VoucherID)
		}
		for _, leg := range legs {
			if leg.Owned() {
				return fmt.Errorf("%w: %s", ErrOwnedVoucher, in.VoucherID)
			}
			if leg.IsReversal() {
				return fmt.Errorf("%w: %s", ErrAlreadyReversed, in.VoucherID)
			}
		}
		entries, err := tx.AppendEntries(ReversalEntries(legs, date, in.ActorID))
		if err != nil {
			return err
		}
		posted = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    in.ActorID,
			Action:   "voucher.reverse",
			Entity:   "voucher",
			EntityID: in.VoucherID,
			At:       s.now(),
		})
	}
	return posted, nil
}

// GetVoucher returns the legs of a voucher.
func (s *Service) GetVoucher(ctx context.Context, voucherID string) ([]JournalEntry, error) {
	var legs []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		found := tx.VoucherEntries(voucherID)
		if len(found) == 0 {
			return fmt.Errorf("%w: %s", ErrVoucherNotFound, voucherID)
		}
		legs = found
		return nil
	})
	return legs, err
}

func (s *Service) recordPosted(ctx context.Context, kind EntryType, entries []JournalEntry, actor string) {
	if len(entries) == 0 {
		return
	}
	if s.metrics != nil {
		s.metrics.ObserveVoucher(string(kind))
	}
	if s.audit != nil {
		var total float64
		for _, e := range entries {
			total += e.Debit
		}
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "voucher.post",
			Entity:   "voucher",
			EntityID: entries[0].VoucherID,
			Meta: map[string]any{
				"type":  string(kind),
				"legs":  len(entries),
				"total": Round2(total),
			},
			At: s.now(),
		})
	}
}

func ensureCashAccount(tx TxRepository, id string) error {
	acc, ok := tx.Account(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	if acc.Category != CategoryCash && acc.Category != CategoryBank {
		return ErrInvalidCashAccount
	}
	return nil
}

func counterpartyName(tx TxRepository, entityID, accountID string) string {
	if entityID != "" {
		if ent, ok := tx.Entity(entityID); ok {
			return ent.Name
		}
		return entityID
	}
	if acc, ok := tx.Account(accountID); ok {
		return acc.Name
	}
	return accountID
}
