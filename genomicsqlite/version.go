package genomicsqlite

import (
	"database/sql/driver"
	"sync"

	"modernc.org/sqlite"
)

// Version is the value genomicsqlite_version() returns (§6).
const Version = "0.1.0"

var registerFuncOnce sync.Once
var registerFuncErr error

// registerScalarFunctions registers the extension's SQL scalar functions
// (§6: "SQL scalar genomicsqlite_version() -> TEXT") against the pure-Go
// modernc.org/sqlite driver Open uses by default. Registration happens
// once per process, the same one-time-registration invariant §5 calls out
// ("No process-wide mutable state beyond the one-time extension
// registration").
func registerScalarFunctions() error {
	registerFuncOnce.Do(func() {
		registerFuncErr = sqlite.RegisterDeterministicScalarFunction(
			"genomicsqlite_version", 0,
			func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
				return Version, nil
			},
		)
	})
	return registerFuncErr
}
