// Package reporting serves the derived reports over store snapshots and
// caches them per state version.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/accounting/reports"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/store"
)

var (
	// ErrInvalidRange indicates a from date after the to date.
	ErrInvalidRange = errors.New("reporting: from date is after to date")
	// ErrInvalidFilter indicates an unknown category, entity type or account.
	ErrInvalidFilter = errors.New("reporting: invalid filter")
)

// Snapshots provides the current committed state.
type Snapshots interface {
	Snapshot() *store.State
}

// CacheMetrics counts cache hits and misses.
type CacheMetrics interface {
	ObserveCache(report string, hit bool)
}

// Service builds reports from snapshots.
type Service struct {
	source  Snapshots
	cache   *Cache
	metrics CacheMetrics
	logger  *slog.Logger
	group   singleflight.Group
	now     func() time.Time
}

// NewService wires a snapshot source with an optional cache.
func NewService(source Snapshots, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, logger: logger, now: time.Now}
}

// WithMetrics attaches cache metrics.
func (s *Service) WithMetrics(m CacheMetrics) {
	s.metrics = m
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Range is an inclusive date range. A zero To means today.
type Range struct {
	From time.Time
	To   time.Time
}

func (s *Service) resolve(r Range) (Range, error) {
	if r.To.IsZero() {
		r.To = s.now()
	}
	r.From, r.To = accounting.Day(r.From), accounting.Day(r.To)
	if r.From.After(r.To) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

func (r Range) key() string {
	return r.From.Format("20060102") + "-" + r.To.Format("20060102")
}

// load returns the report for the current snapshot, computing it at most once
// per key and state version.
func load[T any](ctx context.Context, s *Service, report string, parts []string, build func(*store.State) T) (T, error) {
	st := s.source.Snapshot()
	if s.cache == nil {
		return build(st), nil
	}
	keyParts := append([]string{"reports", report, "s" + strconv.FormatInt(st.Version, 10)}, parts...)
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.String("report", report), slog.Any("error", err))
		return build(st), nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		var value T
		hit, err := s.cache.FetchJSON(ctx, key, &value, func(context.Context) (any, error) {
			return build(st), nil
		})
		if err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.ObserveCache(report, hit)
		}
		return value, nil
	})
	if err != nil {
		s.logger.Warn("report cache failed", slog.String("report", report), slog.Any("error", err))
		return build(st), nil
	}
	return v.(T), nil
}

// LedgerQuery selects an account or entity ledger.
type LedgerQuery struct {
	AccountID string
	EntityID  string
	Range     Range
	// Currency overrides the account or entity currency for the FCY view.
	Currency string
}

// Ledger returns the running ledger. An entity ledger defaults to the
// general account of its type and to the entity currency.
func (s *Service) Ledger(ctx context.Context, q LedgerQuery) (reports.Ledger, error) {
	r, err := s.resolve(q.Range)
	if err != nil {
		return reports.Ledger{}, err
	}
	parts := []string{q.AccountID, q.EntityID, strings.ToUpper(q.Currency), r.key()}
	return load(ctx, s, "ledger", parts, func(st *store.State) reports.Ledger {
		filter, currency := resolveLedger(st, q)
		return reports.ComputeLedger(st.JournalEntries, filter, r.From, r.To, currency)
	})
}

func resolveLedger(st *store.State, q LedgerQuery) (reports.AccountFilter, string) {
	filter := reports.AccountFilter{AccountID: q.AccountID, EntityID: q.EntityID}
	currency := q.Currency
	if q.EntityID != "" {
		if ent, ok := findEntity(st, q.EntityID); ok {
			if filter.AccountID == "" {
				filter.AccountID = st.EntityAccounts[ent.Type]
			}
			if currency == "" {
				currency = ent.Currency
			}
		}
		return filter, currency
	}
	if acc, ok := findAccount(st, q.AccountID); ok && currency == "" {
		currency = acc.Currency
	}
	return filter, currency
}

// CashBook returns the ledger of a cash or bank account.
func (s *Service) CashBook(ctx context.Context, accountID string, rng Range) (reports.Ledger, error) {
	acc, ok := findAccount(s.source.Snapshot(), accountID)
	if !ok || (acc.Category != accounting.CategoryCash && acc.Category != accounting.CategoryBank) {
		return reports.Ledger{}, fmt.Errorf("%w: %q is not a cash or bank account", ErrInvalidFilter, accountID)
	}
	return s.Ledger(ctx, LedgerQuery{AccountID: acc.ID, Range: rng})
}

// SummaryQuery selects the subjects of an account-type summary: entities of
// EntityType on their general account, or accounts of Category.
type SummaryQuery struct {
	EntityType accounting.EntityType
	Category   accounting.Category
	Range      Range
}

// Summary returns opening, movement and closing per subject.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) ([]reports.SummaryRow, error) {
	if q.EntityType != "" && !q.EntityType.Valid() {
		return nil, fmt.Errorf("%w: entity type %q", ErrInvalidFilter, q.EntityType)
	}
	if q.Category != "" && !q.Category.Valid() {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidFilter, q.Category)
	}
	r, err := s.resolve(q.Range)
	if err != nil {
		return nil, err
	}
	parts := []string{string(q.EntityType), string(q.Category), r.key()}
	return load(ctx, s, "summary", parts, func(st *store.State) []reports.SummaryRow {
		subjects, general := summarySubjects(st, q)
		return reports.SummarizeByType(st.JournalEntries, subjects, general, r.From, r.To)
	})
}

func summarySubjects(st *store.State, q SummaryQuery) ([]reports.Subject, string) {
	var subjects []reports.Subject
	if q.EntityType != "" {
		for _, ent := range st.Entities {
			if ent.Type == q.EntityType {
				subjects = append(subjects, reports.Subject{ID: ent.ID, Name: ent.Name})
			}
		}
		sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
		return subjects, st.EntityAccounts[q.EntityType]
	}
	for _, acc := range st.Accounts {
		if q.Category == "" || acc.Category == q.Category {
			subjects = append(subjects, reports.Subject{ID: acc.ID, Name: acc.Name})
		}
	}
	return subjects, ""
}

// TrialBalance returns the grouped trial balance for the range.
func (s *Service) TrialBalance(ctx context.Context, rng Range) (reports.TrialBalance, error) {
	r, err := s.resolve(rng)
	if err != nil {
		return reports.TrialBalance{}, err
	}
	return load(ctx, s, "tb", []string{r.key()}, func(st *store.State) reports.TrialBalance {
		return reports.BuildTrialBalance(reports.AccountBalances(st.JournalEntries, st.Accounts, r.From, r.To))
	})
}

// ProfitAndLoss returns revenue, expenses and net income for the range.
func (s *Service) ProfitAndLoss(ctx context.Context, rng Range) (reports.ProfitAndLoss, error) {
	r, err := s.resolve(rng)
	if err != nil {
		return reports.ProfitAndLoss{}, err
	}
	return load(ctx, s, "pl", []string{r.key()}, func(st *store.State) reports.ProfitAndLoss {
		return reports.BuildProfitAndLoss(st.JournalEntries, st.Accounts, r.From, r.To)
	})
}

// BalanceSheet returns the statement as of a day with stock valued from the
// inventory records.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (reports.BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = accounting.Day(asOf)
	return load(ctx, s, "bs", []string{asOf.Format("20060102")}, func(st *store.State) reports.BalanceSheet {
		return reports.BuildBalanceSheet(st.JournalEntries, st.Accounts, asOf, InventoryValues(st, asOf))
	})
}

// InventoryValues values raw material and finished goods stock as of asOf.
func InventoryValues(st *store.State, asOf time.Time) reports.InventoryValues {
	rm := inventory.ValueRawMaterial(st.OriginalTypes, st.RawMaterialPurchases, st.RawMaterialIssues, asOf)
	fg := inventory.ValueFinishedGoods(st.Items, st.Productions, st.SalesInvoices, asOf, asOf)
	return reports.InventoryValues{RawMaterial: rm.TotalValue, FinishedGoods: fg.TotalWorth}
}

// Stock returns the finished goods stock report for the range.
func (s *Service) Stock(ctx context.Context, rng Range) (inventory.StockReport, error) {
	r, err := s.resolve(rng)
	if err != nil {
		return inventory.StockReport{}, err
	}
	return load(ctx, s, "stock", []string{r.key()}, func(st *store.State) inventory.StockReport {
		return inventory.ValueFinishedGoods(st.Items, st.Productions, st.SalesInvoices, r.From, r.To)
	})
}

// RawMaterial returns raw material stock and weighted average cost as of a day.
func (s *Service) RawMaterial(ctx context.Context, asOf time.Time) (inventory.RawMaterialReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = accounting.Day(asOf)
	return load(ctx, s, "raw", []string{asOf.Format("20060102")}, func(st *store.State) inventory.RawMaterialReport {
		return inventory.ValueRawMaterial(st.OriginalTypes, st.RawMaterialPurchases, st.RawMaterialIssues, asOf)
	})
}

// Packing returns packing material in hand as of a day.
func (s *Service) Packing(ctx context.Context, asOf time.Time) ([]inventory.PackingPosition, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = accounting.Day(asOf)
	return load(ctx, s, "packing", []string{asOf.Format("20060102")}, func(st *store.State) []inventory.PackingPosition {
		return inventory.PackingStock(st.PackingMaterialItems, st.PackingMaterialPurchases, asOf)
	})
}

// Production returns produced against sold quantities per item.
func (s *Service) Production(ctx context.Context, rng Range) ([]inventory.ProductionRow, error) {
	r, err := s.resolve(rng)
	if err != nil {
		return nil, err
	}
	return load(ctx, s, "production", []string{r.key()}, func(st *store.State) []inventory.ProductionRow {
		return inventory.ProductionAnalysis(st.Items, st.Productions, st.SalesInvoices, r.From, r.To)
	})
}

// Integrity lists vouchers whose legs do not balance.
func (s *Service) Integrity(ctx context.Context) ([]accounting.Imbalance, error) {
	return load(ctx, s, "integrity", nil, func(st *store.State) []accounting.Imbalance {
		return accounting.CheckVoucherBalances(st.JournalEntries)
	})
}

func findAccount(st *store.State, id string) (accounting.Account, bool) {
	for _, acc := range st.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return accounting.Account{}, false
}

func findEntity(st *store.State, id string) (accounting.Entity, bool) {
	for _, ent := range st.Entities {
		if ent.ID == id {
			return ent, true
		}
	}
	return accounting.Entity{}, false
}
