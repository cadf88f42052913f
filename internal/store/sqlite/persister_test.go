package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usman-global/usman-books/internal/store"
)

func TestPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := Open(ctx, filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)

	st := store.NewState()
	st.Version = 1
	require.NoError(t, p.Save(ctx, st, 0))
	require.ErrorIs(t, p.Save(ctx, st, 0), store.ErrVersionConflict)

	st.Version = 2
	require.NoError(t, p.Save(ctx, st, 1))
	require.ErrorIs(t, p.Save(ctx, st, 1), store.ErrVersionConflict)

	loaded, err = p.Load(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, loaded.Version)
	require.Len(t, loaded.Accounts, len(st.Accounts))
}

func TestStoreOpensOnSQLite(t *testing.T) {
	ctx := context.Background()
	p, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	s := store.New(store.WithPersister(p))
	require.NoError(t, s.Open(ctx))

	reopened := store.New(store.WithPersister(p))
	require.NoError(t, reopened.Open(ctx))
	require.Equal(t, s.Version(), reopened.Version())
}
