package assets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/shared"
)

// TxRepository exposes the register inside a store transaction.
type TxRepository interface {
	accounting.TxRepository
	AssetType(id string) (AssetType, bool)
	AssetTypes() []AssetType
	Asset(id string) (FixedAsset, bool)
	Assets() []FixedAsset
	Depreciation() []DepreciationEntry
	SaveAsset(asset FixedAsset) (FixedAsset, error)
	AppendDepreciation(entries []DepreciationEntry) ([]DepreciationEntry, error)
}

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort records register events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service maintains the fixed-asset register and its ledger postings.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
	newID func() string
}

// NewService constructs the asset service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now, newID: uuid.NewString}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RegisterInput describes an asset purchase.
type RegisterInput struct {
	Name          string
	AssetTypeID   string
	PurchaseDate  time.Time
	PurchaseValue float64
	// CreditAccountID defaults to owner's capital.
	CreditAccountID string
	ActorID         string
}

// RegisterAsset adds the asset and posts JV-FA-<id>: Dr fixed assets, Cr capital.
func (s *Service) RegisterAsset(ctx context.Context, in RegisterInput) (FixedAsset, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return FixedAsset{}, ErrNameRequired
	}
	if in.PurchaseValue <= 0 {
		return FixedAsset{}, ErrInvalidValue
	}
	if in.PurchaseDate.IsZero() {
		return FixedAsset{}, accounting.ErrDateRequired
	}
	credit := in.CreditAccountID
	if credit == "" {
		credit = accounting.AccountCapital
	}
	asset := FixedAsset{
		ID:            s.newID(),
		Name:          name,
		AssetTypeID:   in.AssetTypeID,
		PurchaseDate:  accounting.Day(in.PurchaseDate),
		PurchaseValue: accounting.Round2(in.PurchaseValue),
		Status:        StatusActive,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, ok := tx.AssetType(asset.AssetTypeID); !ok {
			return fmt.Errorf("%w: %s", ErrAssetTypeNotFound, asset.AssetTypeID)
		}
		desc := "Purchase of fixed asset " + asset.Name
		if _, err := accounting.PostVoucher(tx, accounting.Voucher{
			ID:        accounting.AssetVoucherID(asset.ID),
			Type:      accounting.EntryTypeJournal,
			Date:      asset.PurchaseDate,
			CreatedBy: in.ActorID,
			Source:    accounting.SourceAsset,
			Lines: []accounting.VoucherLine{
				{Account: accounting.AccountFixedAssets, Debit: asset.PurchaseValue, Description: desc},
				{Account: credit, Credit: asset.PurchaseValue, Description: desc},
			},
		}); err != nil {
			return err
		}
		saved, err := tx.SaveAsset(asset)
		if err != nil {
			return err
		}
		asset = saved
		return nil
	})
	if err != nil {
		return FixedAsset{}, err
	}
	s.record(ctx, in.ActorID, "asset.register", asset.ID, map[string]any{"value": asset.PurchaseValue})
	return asset, nil
}

// DepreciationInput selects assets and the rate for a depreciation run.
type DepreciationInput struct {
	// Rate is a percentage of purchase value in (0, 100].
	Rate float64
	// AssetIDs limits the run; empty means every active asset.
	AssetIDs []string
	Date     time.Time
	ActorID  string
}

// DepreciationResult is the outcome of one depreciation run.
type DepreciationResult struct {
	VoucherID string              `json:"voucherId"`
	Entries   []DepreciationEntry `json:"entries"`
	Total     float64             `json:"total"`
}

// PostDepreciation charges rate% of purchase value on each selected asset,
// capped at its remaining value, and posts one consolidated JV-DEP voucher.
func (s *Service) PostDepreciation(ctx context.Context, in DepreciationInput) (DepreciationResult, error) {
	if math.IsNaN(in.Rate) || in.Rate <= 0 || in.Rate > 100 {
		return DepreciationResult{}, ErrInvalidRate
	}
	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	date = accounting.Day(date)
	voucherID := accounting.DepreciationVoucherID(now)

	var result DepreciationResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		selected, err := selectAssets(tx, in.AssetIDs)
		if err != nil {
			return err
		}
		history := tx.Depreciation()
		var entries []DepreciationEntry
		var total float64
		for _, asset := range selected {
			remaining := accounting.Round2(CurrentValue(asset, history))
			if remaining <= 0 {
				continue
			}
			amount := math.Min(accounting.Round2(asset.PurchaseValue*in.Rate/100), remaining)
			if amount <= 0 {
				continue
			}
			entries = append(entries, DepreciationEntry{
				ID:          s.newID(),
				AssetID:     asset.ID,
				Date:        date,
				Amount:      amount,
				Description: fmt.Sprintf("Depreciation %g%% on %s", in.Rate, asset.Name),
				VoucherID:   voucherID,
			})
			total += amount
			if amount >= remaining {
				asset.Status = StatusFullyDepreciated
				if _, err := tx.SaveAsset(asset); err != nil {
					return err
				}
			}
		}
		if len(entries) == 0 {
			return ErrNothingToDepreciate
		}
		total = accounting.Round2(total)
		desc := fmt.Sprintf("Depreciation at %g%% on %d asset(s)", in.Rate, len(entries))
		if _, err := accounting.PostVoucher(tx, accounting.Voucher{
			ID:        voucherID,
			Type:      accounting.EntryTypeJournal,
			Date:      date,
			CreatedBy: in.ActorID,
			Source:    accounting.SourceDepreciation,
			Lines: []accounting.VoucherLine{
				{Account: accounting.AccountDepreciationExpense, Debit: total, Description: desc},
				{Account: accounting.AccountAccumulatedDepreciation, Credit: total, Description: desc},
			},
		}); err != nil {
			return err
		}
		saved, err := tx.AppendDepreciation(entries)
		if err != nil {
			return err
		}
		result = DepreciationResult{VoucherID: voucherID, Entries: saved, Total: total}
		return nil
	})
	if err != nil {
		return DepreciationResult{}, err
	}
	s.record(ctx, in.ActorID, "asset.depreciate", voucherID, map[string]any{"rate": in.Rate, "assets": len(result.Entries), "total": result.Total})
	return result, nil
}

func selectAssets(tx TxRepository, ids []string) ([]FixedAsset, error) {
	if len(ids) == 0 {
		var active []FixedAsset
		for _, a := range tx.Assets() {
			if a.Status != StatusFullyDepreciated {
				active = append(active, a)
			}
		}
		return active, nil
	}
	out := make([]FixedAsset, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		a, ok := tx.Asset(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, id)
		}
		out = append(out, a)
	}
	return out, nil
}

// RenameAsset edits the asset name; it is the only mutable asset field.
func (s *Service) RenameAsset(ctx context.Context, id, name, actorID string) (FixedAsset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return FixedAsset{}, ErrNameRequired
	}
	var out FixedAsset
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		asset, ok := tx.Asset(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, id)
		}
		asset.Name = name
		saved, err := tx.SaveAsset(asset)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return FixedAsset{}, err
	}
	s.record(ctx, actorID, "asset.rename", id, map[string]any{"name": name})
	return out, nil
}

// ListAssets returns every asset with its current book value, sorted by name.
func (s *Service) ListAssets(ctx context.Context) ([]AssetView, error) {
	var out []AssetView
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = BuildRegister(tx.Assets(), tx.AssetTypes(), tx.Depreciation())
		return nil
	})
	return out, err
}

// BuildRegister derives book values for every asset.
func BuildRegister(list []FixedAsset, types []AssetType, history []DepreciationEntry) []AssetView {
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	out := make([]AssetView, 0, len(list))
	for _, a := range list {
		current := accounting.Round2(CurrentValue(a, history))
		typeName, ok := names[a.AssetTypeID]
		if !ok {
			typeName = "N/A"
		}
		out = append(out, AssetView{
			FixedAsset:              a,
			TypeName:                typeName,
			AccumulatedDepreciation: accounting.Round2(a.PurchaseValue - current),
			CurrentValue:            current,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) record(ctx context.Context, actor, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "fixed_asset",
		EntityID: id,
		Meta:     meta,
		At:       s.now(),
	})
}
