// Package vfs implements the compressed-storage VFS adapter (C7) at the
// contract level spec.md scopes it to (§1, §2): page-compression and
// page-cache collaboration with the host storage engine. It does not
// implement SQLite's sqlite3_vfs C struct and registers no VFS with the
// host engine. What lives here is the Go-side contract genomicsqlite.Open
// drives: the codec, the worker-pool sizing policy, and the on-disk layout
// marker C5 uses to tell an empty file from an already-compressed one.
package vfs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sys/unix"
)

// MagicHeader marks the first bytes of an outer page-0 written by this
// adapter, distinguishing a compressed-layout file from a plain SQLite
// file or an empty one (§4.5: the opener "validates that the file is
// either empty or already in the compressed layout").
var MagicHeader = []byte("GenomicSQLite-zstd-v1\x00")

// Config mirrors the subset of §4.5's configuration table that governs
// the compressed VFS itself (as opposed to host-engine pragmas, which
// genomicsqlite.Config applies separately).
type Config struct {
	// ZstdLevel is the compression level in [-5,22] for newly written
	// outer pages (default 6).
	ZstdLevel int
	// Threads bounds the worker pool used for compression and
	// decompression; -1 (or any value <= 0) means min(runtime.NumCPU(), 8).
	Threads int
	// OuterPageKiB is the compressed VFS's page size in KiB; one of
	// {1,2,4,8,16,32,64} (default 32), fixed at file creation.
	OuterPageKiB int
	// UnsafeLoad disables durable writes for this adapter's lifetime
	// when true (data loss risk on crash, §4.5).
	UnsafeLoad bool
}

// Adapter compresses outer pages with a streaming zstd encoder and
// decompresses blocks with a matching decoder, sharing both across a
// bounded worker pool sized from Config.Threads. genomicsqlite.Open calls
// it to compress and decompress a whole database file; nothing in this
// module intercepts SQLite's page reads/writes.
type Adapter struct {
	config  Config
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	workers chan struct{}
}

// NewAdapter builds an Adapter from config. A zero ZstdLevel or
// OuterPageKiB is treated as unset and replaced by its default (6 and 32),
// so zstd level 0 cannot be selected here; the resulting values are
// checked against the same ranges genomicsqlite.ParseConfig uses.
func NewAdapter(config Config) (*Adapter, error) {
	if config.ZstdLevel == 0 {
		config.ZstdLevel = 6
	}
	if config.ZstdLevel < -5 || config.ZstdLevel > 22 {
		return nil, fmt.Errorf("vfs: zstd_level %d out of range [-5,22]", config.ZstdLevel)
	}
	if config.OuterPageKiB == 0 {
		config.OuterPageKiB = 32
	}
	if !validPageSize(config.OuterPageKiB) {
		return nil, fmt.Errorf("vfs: outer_page_KiB %d must be one of {1,2,4,8,16,32,64}", config.OuterPageKiB)
	}

	threads := config.Threads
	if threads <= 0 {
		threads = defaultThreads()
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(config.ZstdLevel)),
		zstd.WithEncoderConcurrency(threads),
	)
	if err != nil {
		return nil, fmt.Errorf("vfs: building zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(threads))
	if err != nil {
		return nil, fmt.Errorf("vfs: building zstd decoder: %w", err)
	}

	return &Adapter{
		config:  config,
		encoder: enc,
		decoder: dec,
		workers: make(chan struct{}, threads),
	}, nil
}

func validPageSize(kib int) bool {
	switch kib {
	case 1, 2, 4, 8, 16, 32, 64:
		return true
	default:
		return false
	}
}

func defaultThreads() int {
	n := numCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// Close releases the adapter's encoder/decoder resources.
func (a *Adapter) Close() error {
	a.encoder.Close()
	a.decoder.Close()
	return nil
}

// CompressPage compresses one inner-engine page into an outer block,
// queuing the call on the adapter's worker pool so concurrent writers are
// bounded by Config.Threads.
func (a *Adapter) CompressPage(ctx context.Context, page []byte) ([]byte, error) {
	select {
	case a.workers <- struct{}{}:
		defer func() { <-a.workers }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return a.encoder.EncodeAll(page, nil), nil
}

// DecompressBlock reverses CompressPage.
func (a *Adapter) DecompressBlock(ctx context.Context, block []byte) ([]byte, error) {
	select {
	case a.workers <- struct{}{}:
		defer func() { <-a.workers }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return a.decoder.DecodeAll(block, nil)
}

// IsCompressedFile reports whether path already carries the compressed
// on-disk layout, distinguishing it from an empty file (§4.5). A
// nonexistent or zero-length file is treated as "empty", which C5 accepts
// for a fresh compressed database.
func IsCompressedFile(path string) (empty bool, compressed bool, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return true, false, nil
	}
	if err != nil {
		return false, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, false, err
	}
	if info.Size() == 0 {
		return true, false, nil
	}

	header := make([]byte, len(MagicHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return false, false, nil
		}
		return false, false, err
	}
	return false, bytes.Equal(header, MagicHeader), nil
}

// NewSpillFileName returns a unique file name in dir; genomicsqlite.Open
// uses it for its private working copy, and unique naming avoids
// collisions across concurrent connections sharing a directory.
func NewSpillFileName(dir string) string {
	return dir + string(os.PathSeparator) + "gsqlite-spill-" + uuid.NewString()
}

// Fsync flushes a written outer block to durable storage, honoring
// UnsafeLoad the same way C5's pragma application disables synchronous
// writes for the connection (§4.5): a no-op when UnsafeLoad is set.
func (a *Adapter) Fsync(fd int) error {
	if a.config.UnsafeLoad {
		return nil
	}
	return unix.Fsync(fd)
}
