package masterdata

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
)

// service implements Service interface
type service struct {
	repo Repository
}

// NewService creates a new master data service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Account operations
func (s *service) ListAccounts(ctx context.Context, category accounting.Category) ([]accounting.Account, error) {
	var out []accounting.Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, acc := range tx.Accounts() {
			if category == "" || acc.Category == category {
				out = append(out, acc)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (s *service) CreateAccount(ctx context.Context, acc accounting.Account) (accounting.Account, error) {
	acc.ID = strings.ToUpper(strings.TrimSpace(acc.ID))
	acc.Name = strings.TrimSpace(acc.Name)
	if err := s.validateAccount(acc); err != nil {
		return accounting.Account{}, err
	}
	var out accounting.Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, ok := tx.Account(acc.ID); ok {
			return fmt.Errorf("%w: account %s", ErrDuplicate, acc.ID)
		}
		saved, err := tx.SaveAccount(acc)
		out = saved
		return err
	})
	return out, err
}

func (s *service) validateAccount(acc accounting.Account) error {
	if acc.ID == "" || acc.Name == "" {
		return fmt.Errorf("%w: account id and name required", ErrInvalid)
	}
	if !acc.Category.Valid() || acc.Category == accounting.CategoryUnclassified {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, acc.Category)
	}
	return nil
}

// Entity operations
func (s *service) ListEntities(ctx context.Context, t accounting.EntityType) ([]accounting.Entity, error) {
	var out []accounting.Entity
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, ent := range tx.Entities() {
			if t == "" || ent.Type == t {
				out = append(out, ent)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (s *service) CreateEntity(ctx context.Context, ent accounting.Entity) (accounting.Entity, error) {
	ent.Name = strings.TrimSpace(ent.Name)
	ent.Currency = strings.ToUpper(strings.TrimSpace(ent.Currency))
	if ent.Name == "" {
		return accounting.Entity{}, fmt.Errorf("%w: entity name required", ErrInvalid)
	}
	if !ent.Type.Valid() {
		return accounting.Entity{}, fmt.Errorf("%w: unknown entity type %q", ErrInvalid, ent.Type)
	}
	var out accounting.Entity
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if ent.ID != "" {
			if _, ok := tx.Entity(ent.ID); ok {
				return fmt.Errorf("%w: entity %s", ErrDuplicate, ent.ID)
			}
		}
		saved, err := tx.SaveEntity(ent)
		out = saved
		return err
	})
	return out, err
}

func (s *service) UpdateEntity(ctx context.Context, id string, upd EntityUpdate) (accounting.Entity, error) {
	var out accounting.Entity
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ent, ok := tx.Entity(id)
		if !ok {
			return fmt.Errorf("%w: entity %s", ErrNotFound, id)
		}
		if name := strings.TrimSpace(upd.Name); name != "" {
			ent.Name = name
		}
		if upd.Currency != "" {
			ent.Currency = strings.ToUpper(strings.TrimSpace(upd.Currency))
		}
		saved, err := tx.SaveEntity(ent)
		out = saved
		return err
	})
	return out, err
}

// Item operations
func (s *service) ListItems(ctx context.Context) ([]inventory.Item, error) {
	var out []inventory.Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = append(out, tx.Items()...)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (s *service) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if err := s.validateItem(item); err != nil {
		return inventory.Item{}, err
	}
	var out inventory.Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if item.ID != "" {
			if _, ok := tx.Item(item.ID); ok {
				return fmt.Errorf("%w: item %s", ErrDuplicate, item.ID)
			}
		}
		saved, err := tx.SaveItem(item)
		out = saved
		return err
	})
	return out, err
}

func (s *service) validateItem(item inventory.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: item name required", ErrInvalid)
	}
	if !item.PackingType.Valid() {
		return fmt.Errorf("%w: unknown packing type %q", ErrInvalid, item.PackingType)
	}
	if item.PackingType != inventory.PackingKg && item.BaleSize <= 0 {
		return fmt.Errorf("%w: bale size required for %s packing", ErrInvalid, item.PackingType)
	}
	if item.AvgProductionPrice < 0 {
		return fmt.Errorf("%w: average production price must not be negative", ErrInvalid)
	}
	return nil
}

// Asset type operations
func (s *service) ListAssetTypes(ctx context.Context) ([]assets.AssetType, error) {
	var out []assets.AssetType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = append(out, tx.AssetTypes()...)
		return nil
	})
	return out, err
}

func (s *service) CreateAssetType(ctx context.Context, t assets.AssetType) (assets.AssetType, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return assets.AssetType{}, fmt.Errorf("%w: asset type name required", ErrInvalid)
	}
	var out assets.AssetType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, existing := range tx.AssetTypes() {
			if strings.EqualFold(existing.Name, t.Name) || (t.ID != "" && existing.ID == t.ID) {
				return fmt.Errorf("%w: asset type %s", ErrDuplicate, t.Name)
			}
		}
		saved, err := tx.SaveAssetType(t)
		out = saved
		return err
	})
	return out, err
}

// Original type operations
func (s *service) ListOriginalTypes(ctx context.Context) ([]inventory.OriginalType, error) {
	var out []inventory.OriginalType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = append(out, tx.OriginalTypes()...)
		return nil
	})
	return out, err
}

func (s *service) CreateOriginalType(ctx context.Context, t inventory.OriginalType) (inventory.OriginalType, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return inventory.OriginalType{}, fmt.Errorf("%w: original type name required", ErrInvalid)
	}
	if t.OpeningKg < 0 || t.OpeningValueUSD < 0 {
		return inventory.OriginalType{}, fmt.Errorf("%w: opening stock must not be negative", ErrInvalid)
	}
	var out inventory.OriginalType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, existing := range tx.OriginalTypes() {
			if strings.EqualFold(existing.Name, t.Name) || (t.ID != "" && existing.ID == t.ID) {
				return fmt.Errorf("%w: original type %s", ErrDuplicate, t.Name)
			}
		}
		saved, err := tx.SaveOriginalType(t)
		out = saved
		return err
	})
	return out, err
}
