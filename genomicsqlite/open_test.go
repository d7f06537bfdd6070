package genomicsqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/genomicsqlite/gogenomicsqlite/vfs"
)

func TestOpen_MemoryDatabase(t *testing.T) {
	db, err := Open(context.Background(), ":memory:", FlagReadWrite|FlagCreate, nil)
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), ":memory:", FlagReadWrite|FlagCreate, map[string]interface{}{"bogus": true})
	require.Error(t, err)
}

func TestOpen_RejectsNonEmptyNonCompressedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.db")

	// Built directly against modernc.org/sqlite, bypassing Open, so the file
	// on disk is genuinely a plain uncompressed SQLite file rather than the
	// compressed layout Open itself produces.
	plain, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = plain.Exec("CREATE TABLE t(x)")
	require.NoError(t, err)
	require.NoError(t, plain.Close())

	_, err = Open(context.Background(), path, FlagReadWrite, nil)
	require.Error(t, err)
	var layoutErr *LayoutError
	assert.ErrorAs(t, err, &layoutErr)
}

func TestOpen_RoundTripsThroughCompressedLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compressed.db")

	db, err := Open(context.Background(), path, FlagReadWrite|FlagCreate, nil)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t(x); INSERT INTO t VALUES (42)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	empty, compressed, err := vfs.IsCompressedFile(path)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.True(t, compressed, "Open must leave the compressed-layout magic header on disk")

	reopened, err := Open(context.Background(), path, FlagReadWrite, nil)
	require.NoError(t, err)
	defer reopened.Close()

	var x int
	require.NoError(t, reopened.QueryRow("SELECT x FROM t").Scan(&x))
	assert.Equal(t, 42, x)
}

func TestOpen_ReadOnlyDoesNotRewriteContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compressed.db")

	db, err := Open(context.Background(), path, FlagReadWrite|FlagCreate, nil)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t(x)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	ro, err := Open(context.Background(), path, FlagReadOnly, nil)
	require.NoError(t, err)
	require.NoError(t, ro.Close())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpen_AppliesPageCachePragma(t *testing.T) {
	db, err := Open(context.Background(), ":memory:", FlagReadWrite|FlagCreate, map[string]interface{}{"page_cache_MiB": 64})
	require.NoError(t, err)
	defer db.Close()

	var cacheSize int
	require.NoError(t, db.QueryRow("PRAGMA cache_size").Scan(&cacheSize))
	assert.Equal(t, -64*1024, cacheSize)
}

func TestGenomicsqliteVersionScalarFunction(t *testing.T) {
	db, err := Open(context.Background(), ":memory:", FlagReadWrite|FlagCreate, nil)
	require.NoError(t, err)
	defer db.Close()

	var version string
	require.NoError(t, db.QueryRow("SELECT genomicsqlite_version()").Scan(&version))
	assert.Equal(t, Version, version)
}
