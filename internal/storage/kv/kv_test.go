package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	v, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, s.Set(ctx, "a", []byte("2")))
	v, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "a"))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "eco.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.Set(ctx, "persist", []byte("yes")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, "yes", string(v))
}

func TestBatchLastWriteWins(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]Store{"memory": NewMemory(), "sqlite": openSQLite(t)} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "gone", []byte("x")))

			b := NewBatch()
			b.Set("a", []byte("1"))
			b.Set("a", []byte("2"))
			b.Delete("gone")
			b.Set("b", nil)
			require.Equal(t, 4, b.Len())
			require.NoError(t, s.Apply(ctx, b))

			v, err := s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "2", string(v))
			v, err = s.Get(ctx, "b")
			require.NoError(t, err)
			assert.Empty(t, v)
			_, err = s.Get(ctx, "gone")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteBatchRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, s.Set(ctx, "keep", []byte("old")))

	_, err := s.db.ExecContext(ctx, `
		CREATE TRIGGER reject_boom BEFORE INSERT ON kv WHEN NEW.key = 'boom'
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	b := NewBatch()
	b.Set("keep", []byte("new"))
	b.Set("fresh", []byte("1"))
	b.Set("boom", []byte("x"))
	require.Error(t, s.Apply(ctx, b))

	v, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "old", string(v))
	_, err = s.Get(ctx, "fresh")
	assert.ErrorIs(t, err, ErrNotFound)
}

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}
