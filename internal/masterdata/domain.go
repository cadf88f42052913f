package masterdata

import (
	"context"
	"errors"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
)

// TxRepository exposes master data inside a store transaction.
type TxRepository interface {
	Account(id string) (accounting.Account, bool)
	Accounts() []accounting.Account
	SaveAccount(acc accounting.Account) (accounting.Account, error)
	Entity(id string) (accounting.Entity, bool)
	Entities() []accounting.Entity
	SaveEntity(ent accounting.Entity) (accounting.Entity, error)
	Item(id string) (inventory.Item, bool)
	Items() []inventory.Item
	SaveItem(item inventory.Item) (inventory.Item, error)
	AssetTypes() []assets.AssetType
	SaveAssetType(t assets.AssetType) (assets.AssetType, error)
	OriginalTypes() []inventory.OriginalType
	SaveOriginalType(t inventory.OriginalType) (inventory.OriginalType, error)
}

// Repository abstracts transactional access to master data.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// EntityUpdate carries the editable fields of a business entity.
type EntityUpdate struct {
	Name     string
	Currency string
}

// Service defines master data operations.
type Service interface {
	ListAccounts(ctx context.Context, category accounting.Category) ([]accounting.Account, error)
	CreateAccount(ctx context.Context, acc accounting.Account) (accounting.Account, error)
	ListEntities(ctx context.Context, t accounting.EntityType) ([]accounting.Entity, error)
	CreateEntity(ctx context.Context, ent accounting.Entity) (accounting.Entity, error)
	UpdateEntity(ctx context.Context, id string, upd EntityUpdate) (accounting.Entity, error)
	ListItems(ctx context.Context) ([]inventory.Item, error)
	CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error)
	ListAssetTypes(ctx context.Context) ([]assets.AssetType, error)
	CreateAssetType(ctx context.Context, t assets.AssetType) (assets.AssetType, error)
	ListOriginalTypes(ctx context.Context) ([]inventory.OriginalType, error)
	CreateOriginalType(ctx context.Context, t inventory.OriginalType) (inventory.OriginalType, error)
}

var (
	// ErrNotFound indicates an unknown master record.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrDuplicate indicates the id is already taken.
	ErrDuplicate = errors.New("masterdata: duplicate id")
	// ErrInvalid indicates a malformed master record.
	ErrInvalid = errors.New("masterdata: invalid record")
)
