// Package genomicsqlite is the connection opener/tuner (C5), the
// vacuum-into emitter (C6), and the §6 extension entrypoint for a SQLite
// database equipped with genomic range indexing and compressed storage.
package genomicsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/genomicsqlite/gogenomicsqlite/vfs"
	_ "modernc.org/sqlite"
)

// Open flags, mirroring SQLite's native sqlite3_open_v2 flag bits (§6
// "open(path, flags, config)").
const (
	FlagReadOnly  = 0x01
	FlagReadWrite = 0x02
	FlagCreate    = 0x04
)

// LayoutError reports that a non-empty file at the requested path is not in
// the compressed on-disk layout (§4.5: "The opener must not open a
// compressed database via the default (uncompressed) VFS").
type LayoutError struct {
	Path string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("genomicsqlite: %q is a non-empty file but is not in the compressed layout", e.Path)
}

// DB wraps *sql.DB with the bookkeeping Open's compressed-file path needs:
// the connection actually runs against a private, plain-SQLite working
// copy, so closing it must fold that copy back into the compressed
// container before the descriptor goes away. Every *sql.DB method is
// promoted unchanged; only Close does extra work.
type DB struct {
	*sql.DB

	innerPath string
	save      func() error
}

// Close closes the underlying connection, then (unless the database was
// opened read-only or is in-memory) recompresses the working copy back
// into the compressed container and removes the working copy.
func (d *DB) Close() error {
	err := d.DB.Close()
	if d.save != nil {
		if saveErr := d.save(); err == nil {
			err = saveErr
		}
	}
	if d.innerPath != "" {
		os.Remove(d.innerPath)
	}
	return err
}

// Open implements C5: it loads the extension (if not yet loaded), routes
// path through the compressed VFS adapter with the given flags, applies
// the pragmas derived from config, and validates that the file is either
// empty or already in the compressed layout.
//
// A real sqlite3_vfs page-level intercept (the native genomicsqlite's
// approach) isn't reachable from a pure-Go driver, so the compressed
// layout here is realized one level up: a compressed path is decompressed
// in full into a private plain-SQLite working copy before modernc.org/sqlite
// ever opens it, and recompressed in full back into path on Close. The
// compressed container on disk is MagicHeader followed by one zstd block
// holding the entire working copy, produced by vfs.Adapter.CompressPage
// and reversed by vfs.Adapter.DecompressBlock — genuinely exercising the
// C7 codec, just at whole-file rather than per-page granularity.
//
// config is the map-shaped form described in §6; see ParseConfig for the
// keys it accepts.
func Open(ctx context.Context, path string, flags int, config map[string]interface{}) (*DB, error) {
	if err := registerScalarFunctions(); err != nil {
		return nil, &EngineError{Op: "register scalar functions", Err: err}
	}
	if err := vfs.Register(); err != nil {
		return nil, &EngineError{Op: "register compressed VFS", Err: err}
	}

	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}

	if path == ":memory:" || path == "" {
		db, err := openPlain(ctx, path, flags, cfg)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db}, nil
	}

	adapter, err := vfs.NewAdapter(vfs.Config{
		ZstdLevel:    cfg.ZstdLevel,
		Threads:      cfg.Threads,
		OuterPageKiB: cfg.OuterPageKiB,
		UnsafeLoad:   cfg.UnsafeLoad,
	})
	if err != nil {
		return nil, &EngineError{Op: "build compressed VFS adapter", Err: err}
	}
	defer adapter.Close()

	empty, compressed, err := vfs.IsCompressedFile(path)
	if err != nil {
		return nil, &EngineError{Op: "stat database file", Err: err}
	}
	if !empty && !compressed {
		return nil, &LayoutError{Path: path}
	}

	innerPath := vfs.NewSpillFileName(filepath.Dir(path))
	if compressed {
		if err := decompressInto(ctx, adapter, path, innerPath); err != nil {
			return nil, &EngineError{Op: "decompress database file", Err: err}
		}
	}

	db, err := openPlain(ctx, innerPath, flags, cfg)
	if err != nil {
		os.Remove(innerPath)
		return nil, err
	}

	result := &DB{DB: db, innerPath: innerPath}
	if flags&FlagReadOnly == 0 {
		result.save = func() error {
			return compressInto(context.Background(), adapter, innerPath, path)
		}
	}
	return result, nil
}

func openPlain(ctx context.Context, path string, flags int, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path, flags))
	if err != nil {
		return nil, &EngineError{Op: "open", Err: err}
	}

	for _, pragma := range cfg.Pragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, &EngineError{Op: "apply pragma: " + pragma, Err: err}
		}
	}
	return db, nil
}

// decompressInto reverses compressInto: it strips path's MagicHeader,
// decompresses the remaining block, and writes the result to innerPath as
// a fresh plain-SQLite file modernc.org/sqlite can open directly.
func decompressInto(ctx context.Context, adapter *vfs.Adapter, path, innerPath string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	block := raw[len(vfs.MagicHeader):]

	plain, err := adapter.DecompressBlock(ctx, block)
	if err != nil {
		return err
	}
	return os.WriteFile(innerPath, plain, 0o644)
}

// compressInto reads the plain-SQLite working copy at innerPath, compresses
// it as one outer block, and (re)writes path as MagicHeader followed by
// that block, fsync'ing the result unless the adapter's config disables
// durable writes (§4.5 unsafe_load).
func compressInto(ctx context.Context, adapter *vfs.Adapter, innerPath, path string) error {
	plain, err := os.ReadFile(innerPath)
	if err != nil {
		return err
	}

	block, err := adapter.CompressPage(ctx, plain)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(vfs.MagicHeader); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(block); err != nil {
		f.Close()
		return err
	}
	if err := adapter.Fsync(int(f.Fd())); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// dsn builds a modernc.org/sqlite URI DSN reflecting the open flags,
// following the same "file:<path>?<params>" shape the teacher's VACUUM
// INTO target URIs use (database/sqlite3, sqlite3.go).
func dsn(path string, flags int) string {
	params := url.Values{}
	switch {
	case flags&FlagReadOnly != 0:
		params.Set("mode", "ro")
	case flags&FlagCreate != 0:
		params.Set("mode", "rwc")
	case flags&FlagReadWrite != 0:
		params.Set("mode", "rw")
	}
	if len(params) == 0 {
		return path
	}
	return "file:" + path + "?" + params.Encode()
}
