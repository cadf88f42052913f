package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/accounting"
)

type memoryPersister struct {
	saved    *State
	saves    int
	conflict bool
}

func (p *memoryPersister) Load(context.Context) (*State, error) {
	if p.saved == nil {
		return nil, nil
	}
	return p.saved.Clone(), nil
}

func (p *memoryPersister) Save(_ context.Context, st *State, prev int64) error {
	if p.conflict {
		return ErrVersionConflict
	}
	if p.saved != nil && p.saved.Version != prev {
		return ErrVersionConflict
	}
	p.saved = st.Clone()
	p.saves++
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func journal(amount float64) accounting.Voucher {
	return accounting.Voucher{
		Type: accounting.EntryTypeJournal,
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines: []accounting.VoucherLine{
			{Account: accounting.AccountCash, Debit: amount},
			{Account: accounting.AccountCapital, Credit: amount},
		},
	}
}

func post(t *testing.T, s *Store, v accounting.Voucher) ([]accounting.JournalEntry, error) {
	t.Helper()
	var out []accounting.JournalEntry
	err := s.Ledger().WithTx(context.Background(), func(_ context.Context, tx accounting.TxRepository) error {
		entries, err := accounting.PostVoucher(tx, v)
		out = entries
		return err
	})
	return out, err
}

func TestNewStateSeedsDefaultChart(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	require.Len(t, snap.Accounts, len(accounting.DefaultChart()))
	require.Equal(t, accounting.AccountReceivable, snap.EntityAccounts[accounting.EntityCustomer])
	require.Equal(t, 1, snap.Counters.NextJournalVoucherNumber)
	require.Zero(t, snap.Version)
}

func TestUpdateCommitsAtomically(t *testing.T) {
	s := New(WithIDGenerator(sequentialIDs()))
	var versions []int64
	s.OnCommit(func(_ context.Context, v int64) { versions = append(versions, v) })

	entries, err := post(t, s, journal(100))
	require.NoError(t, err)
	require.Equal(t, "JV-001", entries[0].VoucherID)
	require.Equal(t, "id-1", entries[0].ID)
	require.Equal(t, "id-2", entries[1].ID)

	snap := s.Snapshot()
	require.Len(t, snap.JournalEntries, 2)
	require.Equal(t, int64(1), snap.Version)
	require.Equal(t, 2, snap.Counters.NextJournalVoucherNumber)
	require.Equal(t, []int64{1}, versions)
}

func TestFailedUpdateLeavesStateUntouched(t *testing.T) {
	s := New()
	before := s.Snapshot()

	err := s.Ledger().WithTx(context.Background(), func(_ context.Context, tx accounting.TxRepository) error {
		if _, err := accounting.PostVoucher(tx, journal(50)); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	after := s.Snapshot()
	require.Same(t, before, after)
	require.Empty(t, after.JournalEntries)
	require.Equal(t, 1, after.Counters.NextJournalVoucherNumber)
}

func TestReadOnlyTransactionDoesNotBumpVersion(t *testing.T) {
	s := New()
	persister := &memoryPersister{}
	s.persister = persister

	err := s.Ledger().WithTx(context.Background(), func(_ context.Context, tx accounting.TxRepository) error {
		_ = tx.VoucherEntries("JV-001")
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, s.Version())
	require.Zero(t, persister.saves)
}

func TestSnapshotIsIsolatedFromLaterWrites(t *testing.T) {
	s := New()
	_, err := post(t, s, journal(10))
	require.NoError(t, err)
	snap := s.Snapshot()

	_, err = post(t, s, journal(20))
	require.NoError(t, err)
	require.Len(t, snap.JournalEntries, 2)
	require.Len(t, s.Snapshot().JournalEntries, 4)
}

func TestOpenPersistsFirstVersionAndReloads(t *testing.T) {
	ctx := context.Background()
	persister := &memoryPersister{}

	a := New(WithPersister(persister))
	require.NoError(t, a.Open(ctx))
	require.Equal(t, int64(1), a.Version())

	b := New(WithPersister(persister))
	require.NoError(t, b.Open(ctx))

	_, err := post(t, a, journal(75))
	require.NoError(t, err)
	require.Equal(t, int64(2), persister.saved.Version)

	_, err = post(t, b, journal(5))
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Equal(t, int64(2), b.Version(), "conflict reloads the newer state")

	changed, err := b.Reload(ctx)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = post(t, b, journal(5))
	require.NoError(t, err)
	require.Len(t, persister.saved.JournalEntries, 4)
}

func TestStateFileRoundTrip(t *testing.T) {
	s := New()
	_, err := post(t, s, journal(42))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, WriteFile(path, s.Snapshot()))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.JournalEntries, 2)
	require.Equal(t, 2, loaded.Counters.NextJournalVoucherNumber)
	require.True(t, loaded.JournalEntries[0].Date.Equal(s.Snapshot().JournalEntries[0].Date))
}
