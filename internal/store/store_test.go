package store_test

import (
	"testing"

	"github.com/ngrigoriev/zonewarden/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	s := store.New()
	key := store.NewKey(store.ScopeBase, "example.com", store.TypeA)

	require.NoError(t, s.Put(key, []string{"93.184.216.34"}))

	rec, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"93.184.216.34"}, rec.Values)

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPutRejectsEmptyValues(t *testing.T) {
	s := store.New()
	key := store.NewKey(store.ScopeBase, "example.com", store.TypeA)
	err := s.Put(key, nil)
	assert.ErrorIs(t, err, store.ErrEmptyValues)
}

func TestPutIsIdempotent(t *testing.T) {
	s := store.New()
	key := store.NewKey(store.ScopeBase, "example.com", store.TypeA)

	require.NoError(t, s.Put(key, []string{"1.2.3.4"}))
	require.NoError(t, s.Put(key, []string{"1.2.3.4"}))

	assert.Len(t, s.Snapshot(), 1)
}

func TestDeleteAfterAddRestoresPriorState(t *testing.T) {
	s := store.New()
	key := store.NewKey(store.ScopeBase, "example.com", store.TypeA)

	before := s.Snapshot()
	require.NoError(t, s.Put(key, []string{"1.2.3.4"}))
	require.NoError(t, s.Delete(key))
	after := s.Snapshot()

	assert.Equal(t, before, after)
}

func TestCNAMEExclusivityBlocksOtherAfterCNAME(t *testing.T) {
	s := store.New()
	cname := store.NewKey(store.ScopeBase, "example.com", store.TypeCNAME)
	other := store.NewKey(store.ScopeBase, "example.com", store.TypeA)

	require.NoError(t, s.Put(cname, []string{"alias.example.net"}))
	err := s.Put(other, []string{"1.2.3.4"})
	assert.ErrorIs(t, err, store.ErrCNAMEConflict)
}

func TestCNAMEExclusivityBlocksCNAMEAfterOther(t *testing.T) {
	s := store.New()
	other := store.NewKey(store.ScopeBase, "example.com", store.TypeA)
	cname := store.NewKey(store.ScopeBase, "example.com", store.TypeCNAME)

	require.NoError(t, s.Put(other, []string{"1.2.3.4"}))
	err := s.Put(cname, []string{"alias.example.net"})
	assert.ErrorIs(t, err, store.ErrCNAMEConflict)
}

func TestCNAMEExclusivityIgnoresOtherScopes(t *testing.T) {
	s := store.New()
	// SUBDOMAIN and WILDCARD records never participate in BASE CNAME
	// exclusivity, since I2 only governs BASE-scoped keys.
	cname := store.NewKey(store.ScopeBase, "example.com", store.TypeCNAME)
	sub := store.NewKey(store.ScopeSubdomain, "example.com", store.TypeA)

	require.NoError(t, s.Put(cname, []string{"alias.example.net"}))
	require.NoError(t, s.Put(sub, []string{"1.2.3.4"}))
}

func TestReplaceAllAbortsOnConflictAndKeepsOldContents(t *testing.T) {
	s := store.New()
	key := store.NewKey(store.ScopeBase, "keep.example.com", store.TypeA)
	require.NoError(t, s.Put(key, []string{"9.9.9.9"}))

	badBatch := map[store.Key]store.Record{
		store.NewKey(store.ScopeBase, "conflict.example.com", store.TypeCNAME): {
			Key:    store.NewKey(store.ScopeBase, "conflict.example.com", store.TypeCNAME),
			Values: []string{"x"},
		},
		store.NewKey(store.ScopeBase, "conflict.example.com", store.TypeA): {
			Key:    store.NewKey(store.ScopeBase, "conflict.example.com", store.TypeA),
			Values: []string{"1.1.1.1"},
		},
	}

	err := s.ReplaceAll(badBatch)
	assert.ErrorIs(t, err, store.ErrCNAMEConflict)

	rec, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"9.9.9.9"}, rec.Values)
}

func TestReplaceAllSwapsContents(t *testing.T) {
	s := store.New()
	oldKey := store.NewKey(store.ScopeBase, "old.example.com", store.TypeA)
	require.NoError(t, s.Put(oldKey, []string{"1.1.1.1"}))

	newKey := store.NewKey(store.ScopeBase, "new.example.com", store.TypeA)
	batch := map[store.Key]store.Record{
		newKey: {Key: newKey, Values: []string{"2.2.2.2"}},
	}
	require.NoError(t, s.ReplaceAll(batch))

	_, err := s.Get(oldKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec, err := s.Get(newKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.2.2.2"}, rec.Values)
}

func TestKeyDomainIsCaseInsensitive(t *testing.T) {
	s := store.New()
	upper := store.NewKey(store.ScopeBase, "Example.COM", store.TypeA)
	lower := store.NewKey(store.ScopeBase, "example.com", store.TypeA)

	require.NoError(t, s.Put(upper, []string{"1.2.3.4"}))
	rec, err := s.Get(lower)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4"}, rec.Values)
}
