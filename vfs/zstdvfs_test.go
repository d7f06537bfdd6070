package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdapter_Defaults(t *testing.T) {
	a, err := NewAdapter(Config{})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, 6, a.config.ZstdLevel)
	assert.Equal(t, 32, a.config.OuterPageKiB)
}

func TestNewAdapter_RejectsBadZstdLevel(t *testing.T) {
	_, err := NewAdapter(Config{ZstdLevel: 23})
	require.Error(t, err)
}

func TestNewAdapter_RejectsBadPageSize(t *testing.T) {
	_, err := NewAdapter(Config{OuterPageKiB: 7})
	require.Error(t, err)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	a, err := NewAdapter(Config{Threads: 2})
	require.NoError(t, err)
	defer a.Close()

	page := make([]byte, 16*1024)
	for i := range page {
		page[i] = byte(i % 251)
	}

	compressed, err := a.CompressPage(context.Background(), page)
	require.NoError(t, err)
	assert.NotEqual(t, page, compressed)

	decompressed, err := a.DecompressBlock(context.Background(), compressed)
	require.NoError(t, err)
	assert.Equal(t, page, decompressed)
}

func TestIsCompressedFile_MissingIsEmpty(t *testing.T) {
	empty, compressed, err := IsCompressedFile(filepath.Join(t.TempDir(), "does-not-exist.db"))
	require.NoError(t, err)
	assert.True(t, empty)
	assert.False(t, compressed)
}

func TestIsCompressedFile_ZeroLengthIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	empty, compressed, err := IsCompressedFile(path)
	require.NoError(t, err)
	assert.True(t, empty)
	assert.False(t, compressed)
}

func TestIsCompressedFile_DetectsMagicHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compressed.db")
	require.NoError(t, os.WriteFile(path, append(append([]byte{}, MagicHeader...), []byte("...rest of page 0...")...), 0o644))

	empty, compressed, err := IsCompressedFile(path)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.True(t, compressed)
}

func TestIsCompressedFile_PlainSQLiteFileIsNotCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.db")
	require.NoError(t, os.WriteFile(path, []byte("SQLite format 3\x00 plain file, no magic header here"), 0o644))

	empty, compressed, err := IsCompressedFile(path)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.False(t, compressed)
}

func TestNewSpillFileName_Unique(t *testing.T) {
	a := NewSpillFileName("/tmp")
	b := NewSpillFileName("/tmp")
	assert.NotEqual(t, a, b)
}

func TestFsync_UnsafeLoadSkipsSync(t *testing.T) {
	a, err := NewAdapter(Config{UnsafeLoad: true})
	require.NoError(t, err)
	defer a.Close()

	// fd -1 would fail a real fsync; UnsafeLoad must short-circuit before
	// the syscall is attempted.
	require.NoError(t, a.Fsync(-1))
}

func TestFsync_SafeLoadSyncsRealFile(t *testing.T) {
	a, err := NewAdapter(Config{})
	require.NoError(t, err)
	defer a.Close()

	f, err := os.CreateTemp(t.TempDir(), "fsync-test")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, a.Fsync(int(f.Fd())))
}

func TestRegister_Idempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
	assert.Equal(t, "sqlite3_genomicsqlite", DriverName())
}
