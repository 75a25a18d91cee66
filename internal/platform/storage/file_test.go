package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLoadMissingCollection(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	records, err := store.Load(context.Background(), "users")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreSaveOverwritesCollection(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := map[string]json.RawMessage{
		"1": json.RawMessage(`{"name":"alice"}`),
		"2": json.RawMessage(`{"name":"bob"}`),
	}
	require.NoError(t, store.Save(ctx, "users", first))

	second := map[string]json.RawMessage{
		"3": json.RawMessage(`{"name":"carol"}`),
	}
	require.NoError(t, store.Save(ctx, "users", second))

	records, err := store.Load(ctx, "users")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `{"name":"carol"}`, string(records["3"]))
}

func TestFileStoreCollectionsAreIndependent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "users", map[string]json.RawMessage{
		"1": json.RawMessage(`{}`),
	}))

	records, err := store.Load(ctx, "admins")
	require.NoError(t, err)
	assert.Empty(t, records)
}
