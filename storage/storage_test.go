package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoi-online/server/consts"
	"github.com/masoi-online/server/storage"
)

func TestMemoryPutGetDel(t *testing.T) {
	m := storage.NewMemory()

	require.NoError(t, m.Put("g1", "c1", []byte("alpha")))
	data, err := m.Get("g1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)

	require.NoError(t, m.Put("g1", "c1", []byte("beta")))
	data, err = m.Get("g1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), data)

	require.NoError(t, m.Del("g1", "c1"))
	_, err = m.Get("g1", "c1")
	assert.Equal(t, consts.ErrorsSnapshotNotFound, err)
}

func TestMemoryMiss(t *testing.T) {
	m := storage.NewMemory()
	_, err := m.Get("nope", "nope")
	assert.Equal(t, consts.ErrorsSnapshotNotFound, err)
	assert.NoError(t, m.Del("nope", "nope"))
	assert.NoError(t, m.Close())
}

func TestMemoryKeysAreScoped(t *testing.T) {
	m := storage.NewMemory()
	require.NoError(t, m.Put("g1", "c1", []byte("one")))
	require.NoError(t, m.Put("g1", "c2", []byte("two")))
	require.NoError(t, m.Put("g2", "c1", []byte("three")))

	data, err := m.Get("g1", "c2")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)

	require.NoError(t, m.Del("g1", "c1"))
	_, err = m.Get("g1", "c1")
	assert.Error(t, err)
	_, err = m.Get("g2", "c1")
	assert.NoError(t, err)
}

func TestMemoryCopiesOnPut(t *testing.T) {
	m := storage.NewMemory()
	buf := []byte("stable")
	require.NoError(t, m.Put("g", "c", buf))
	buf[0] = 'x'

	data, err := m.Get("g", "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("stable"), data)
}
