package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstorewatch/insights/internal/database"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"sql":    NewSQLStore(db),
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("progress:launch-checklist")
			assert.ErrorIs(t, err, ErrNotFound)

			set, err := store.Set("progress:launch-checklist", `{"done":["listing","pricing"]}`)
			require.NoError(t, err)
			assert.False(t, set.UpdatedAt.IsZero())

			got, err := store.Get("progress:launch-checklist")
			require.NoError(t, err)
			assert.Equal(t, `{"done":["listing","pricing"]}`, got.Value)
		})
	}
}

func TestStoreOverwriteIsLastWriteWins(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Set("k", "first")
			require.NoError(t, err)
			_, err = store.Set("k", "second")
			require.NoError(t, err)

			got, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "second", got.Value)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Set("k", "v")
			require.NoError(t, err)

			require.NoError(t, store.Delete("k"))
			_, err = store.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting an absent key is fine.
			assert.NoError(t, store.Delete("k"))
		})
	}
}
