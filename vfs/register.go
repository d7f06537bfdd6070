package vfs

import (
	"database/sql"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// DefaultVFSName is the VFS name EmitVacuumInto puts in its target URI.
// Nothing in this module registers a VFS under this name.
const DefaultVFSName = "zstd"

var registerOnce sync.Once
var registerErr error

// Register adds a named database/sql driver ("sqlite3_genomicsqlite") built
// on github.com/mattn/go-sqlite3's cgo bridge, exactly once per process.
// The driver's ConnectHook does nothing: Register loads no extension and
// registers no sqlite3_vfs, so a connection opened through this driver
// sees plain SQLite files and cannot read the compressed layout that
// genomicsqlite.Open writes.
func Register() error {
	registerOnce.Do(func() {
		sql.Register("sqlite3_genomicsqlite", &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return nil
			},
		})
	})
	return registerErr
}

// DriverName returns the database/sql driver name Register makes
// available.
func DriverName() string {
	return "sqlite3_genomicsqlite"
}
