package store

import (
	"context"

	"github.com/usman-global/usman-books/internal/accounting"
	"github.com/usman-global/usman-books/internal/assets"
	"github.com/usman-global/usman-books/internal/inventory"
	"github.com/usman-global/usman-books/internal/masterdata"
	"github.com/usman-global/usman-books/internal/planner"
)

// Ledger returns the repository used by the voucher service.
func (s *Store) Ledger() accounting.RepositoryPort { return ledgerRepo{s} }

// Assets returns the repository used by the fixed-asset service.
func (s *Store) Assets() assets.RepositoryPort { return assetRepo{s} }

// Inventory returns the repository used by the inventory service.
func (s *Store) Inventory() inventory.RepositoryPort { return inventoryRepo{s} }

// Planner returns the repository used by the planner service.
func (s *Store) Planner() planner.RepositoryPort { return plannerRepo{s} }

// MasterData returns the repository used by the master data service.
func (s *Store) MasterData() masterdata.Repository { return masterRepo{s} }

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) WithTx(ctx context.Context, fn func(context.Context, accounting.TxRepository) error) error {
	return r.s.update(ctx, func(tx *stateTx) error { return fn(ctx, tx) })
}

type assetRepo struct{ s *Store }

func (r assetRepo) WithTx(ctx context.Context, fn func(context.Context, assets.TxRepository) error) error {
	return r.s.update(ctx, func(tx *stateTx) error { return fn(ctx, tx) })
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) WithTx(ctx context.Context, fn func(context.Context, inventory.TxRepository) error) error {
	return r.s.update(ctx, func(tx *stateTx) error { return fn(ctx, tx) })
}

type plannerRepo struct{ s *Store }

func (r plannerRepo) WithTx(ctx context.Context, fn func(context.Context, planner.TxRepository) error) error {
	return r.s.update(ctx, func(tx *stateTx) error { return fn(ctx, tx) })
}

type masterRepo struct{ s *Store }

func (r masterRepo) WithTx(ctx context.Context, fn func(context.Context, masterdata.TxRepository) error) error {
	return r.s.update(ctx, func(tx *stateTx) error { return fn(ctx, tx) })
}
