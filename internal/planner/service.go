package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/shared"
)

// TxRepository exposes planner state inside a store transaction.
type TxRepository interface {
	Accounts
	Entity(id string) (accounting.Entity, bool)
	Account(id string) (accounting.Account, bool)
	Entries() []accounting.JournalEntry
	Planner() Data
	SavePlanner(d Data) error
}

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort records planner decisions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service drives the planner state machine.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the planner service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Row is one member line of the planner view.
type Row struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Kind          MemberKind `json:"kind"`
	CurrentPlan   float64    `json:"currentPlan"`
	CurrentActual float64    `json:"currentActual"`
	LastPlan      float64    `json:"lastPlan"`
	LastActual    float64    `json:"lastActual"`
}

// View is the planner screen for one period.
type View struct {
	Period      Period    `json:"period"`
	Status      Status    `json:"status"`
	PeriodStart time.Time `json:"periodStart"`
	LastReset   time.Time `json:"lastReset"`
	Rows        []Row     `json:"rows"`
}

// View returns the planner for p, silently initialising a missing marker.
func (s *Service) View(ctx context.Context, p Period) (View, error) {
	if !p.Valid() {
		return View{}, ErrInvalidPeriod
	}
	now := s.now()
	var view View
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		data := tx.Planner()
		if data.Marker(p).IsZero() {
			data = Continue(data, p, now)
			if err := tx.SavePlanner(data); err != nil {
				return err
			}
		}
		view = buildView(tx, data, p, now)
		return nil
	})
	return view, err
}

func buildView(tx TxRepository, data Data, p Period, now time.Time) View {
	start := PeriodStart(p, now)
	view := View{Period: p, Status: StatusAt(data, p, now), PeriodStart: start, LastReset: data.Marker(p), Rows: []Row{}}
	entries := tx.Entries()
	for _, m := range data.Members() {
		v := data.Plans[m.ID].For(p)
		view.Rows = append(view.Rows, Row{
			ID:            m.ID,
			Name:          memberName(tx, m),
			Kind:          m.Kind,
			CurrentPlan:   v.CurrentPlan,
			CurrentActual: Actual(entries, m, tx, start, accounting.Day(now)),
			LastPlan:      v.LastPlan,
			LastActual:    v.LastActual,
		})
	}
	return view
}

func memberName(tx TxRepository, m Member) string {
	if m.Kind == MemberExpense {
		if acc, ok := tx.Account(m.ID); ok {
			return acc.Name
		}
		return "N/A"
	}
	if ent, ok := tx.Entity(m.ID); ok {
		return ent.Name
	}
	return "N/A"
}

// SetPlan edits the current plan of a tracked member.
func (s *Service) SetPlan(ctx context.Context, p Period, id string, amount float64, actorID string) error {
	if !p.Valid() {
		return ErrInvalidPeriod
	}
	if amount < 0 {
		return fmt.Errorf("%w: plan must not be negative", accounting.ErrInvalidAmount)
	}
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		data := tx.Planner()
		if StatusAt(data, p, now) == StatusPromptPending {
			return ErrPromptPending
		}
		if !data.IsMember(id) {
			return fmt.Errorf("%w: %s", ErrNotMember, id)
		}
		data = data.Clone()
		if data.Marker(p).IsZero() {
			data.setMarker(p, PeriodStart(p, now))
		}
		plan := data.Plans[id]
		v := plan.For(p)
		v.CurrentPlan = accounting.Round2(amount)
		plan.set(p, v)
		data.Plans[id] = plan
		return tx.SavePlanner(data)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "planner.set", id, map[string]any{"period": string(p), "amount": amount})
	return nil
}

// StartNew resolves a pending prompt by rolling plans into a new period.
func (s *Service) StartNew(ctx context.Context, p Period, actorID string) (View, error) {
	return s.resolve(ctx, p, actorID, "planner.start_new", true)
}

// Continue resolves a pending prompt keeping the current plans.
func (s *Service) Continue(ctx context.Context, p Period, actorID string) (View, error) {
	return s.resolve(ctx, p, actorID, "planner.continue", false)
}

func (s *Service) resolve(ctx context.Context, p Period, actorID, action string, startNew bool) (View, error) {
	if !p.Valid() {
		return View{}, ErrInvalidPeriod
	}
	now := s.now()
	var view View
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		data := tx.Planner()
		if StatusAt(data, p, now) != StatusPromptPending {
			return ErrNoPrompt
		}
		if startNew {
			data = StartNew(data, p, now, tx.Entries(), tx)
		} else {
			data = Continue(data, p, now)
		}
		if err := tx.SavePlanner(data); err != nil {
			return err
		}
		view = buildView(tx, data, p, now)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.record(ctx, actorID, action, string(p), map[string]any{"period_start": view.PeriodStart.Format("2006-01-02")})
	return view, nil
}

// AutoRollover starts a new period without prompting when one is pending.
// It reports whether a rollover happened.
func (s *Service) AutoRollover(ctx context.Context, p Period) (bool, error) {
	_, err := s.StartNew(ctx, p, "system")
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNoPrompt):
		return false, nil
	default:
		return false, err
	}
}

// MembersInput replaces the tracked member sets.
type MembersInput struct {
	CustomerIDs       []string
	SupplierIDs       []string
	ExpenseAccountIDs []string
	ActorID           string
}

// SetMembers replaces which customers, suppliers and expense accounts the
// planner tracks. Plans of removed members are kept for when they return.
func (s *Service) SetMembers(ctx context.Context, in MembersInput) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkEntities(tx, in.CustomerIDs, accounting.EntityCustomer); err != nil {
			return err
		}
		if err := checkEntities(tx, in.SupplierIDs, accounting.EntitySupplier); err != nil {
			return err
		}
		for _, id := range in.ExpenseAccountIDs {
			acc, ok := tx.Account(id)
			if !ok || acc.Category != accounting.CategoryExpense {
				return fmt.Errorf("%w: %s", accounting.ErrInvalidExpenseAccount, id)
			}
		}
		data := tx.Planner().Clone()
		data.CustomerIDs = dedupe(in.CustomerIDs)
		data.SupplierIDs = dedupe(in.SupplierIDs)
		data.ExpenseAccountIDs = dedupe(in.ExpenseAccountIDs)
		return tx.SavePlanner(data)
	})
	if err != nil {
		return err
	}
	s.record(ctx, in.ActorID, "planner.members", "members", map[string]any{
		"customers": len(in.CustomerIDs), "suppliers": len(in.SupplierIDs), "expenses": len(in.ExpenseAccountIDs),
	})
	return nil
}

func checkEntities(tx TxRepository, ids []string, want accounting.EntityType) error {
	for _, id := range ids {
		ent, ok := tx.Entity(id)
		if !ok || ent.Type != want {
			return fmt.Errorf("%w: %s is not a %s", accounting.ErrUnknownEntity, id, want)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) record(ctx context.Context, actor, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "planner",
		EntityID: id,
		Meta:     meta,
		At:       s.now(),
	})
}
