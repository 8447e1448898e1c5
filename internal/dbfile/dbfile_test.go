package dbfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepvis/vqleval/internal/testutil"
)

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := testutil.CompanyDB(t, root, "company")

	got, err := Find(root, "company", ".sqlite")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_Nested(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shop", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shop", "notes.txt"), []byte("x"), 0o644))
	testutil.CreateDB(t, filepath.Join(root, "shop", "b", "shop.sqlite"), `CREATE TABLE t (a INTEGER)`)
	testutil.CreateDB(t, filepath.Join(root, "shop", "a", "old.sqlite"), `CREATE TABLE t (a INTEGER)`)

	got, err := Find(root, "shop", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "shop", "a", "old.sqlite"), got)
}

func TestFind_NotFound(t *testing.T) {
	root := t.TempDir()
	_, err := Find(root, "missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "nofile"), 0o755))
	_, err = Find(root, "nofile", ".sqlite")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpen_QueryOnly(t *testing.T) {
	root := t.TempDir()
	path := testutil.CompanyDB(t, root, "company")

	db, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM Employee`).Scan(&n))
	assert.Equal(t, 4, n)

	_, err = db.ExecContext(context.Background(), `DELETE FROM Employee`)
	assert.Error(t, err)
}

func TestOpen_MissingFile(t *testing.T) {
	_, path := testutil.TempDBPath(t)
	_, err := Open(path, Options{})
	assert.Error(t, err)
	testutil.MustNotExist(t, path)
}
