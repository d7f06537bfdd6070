package gri

import "fmt"

// ConfigError reports an unknown config key or an out-of-domain value (§7).
type ConfigError struct {
	Key   string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gri: config error for %q=%v: %s", e.Key, e.Value, e.Msg)
}

// SchemaError reports a table name that is not a valid bare identifier.
// gri does not check for rowid-less tables or for _gri_* names already on
// the target table; those surface as the host engine's own errors when the
// emitted SQL runs.
type SchemaError struct {
	Table string
	Msg   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("gri: schema error on table %q: %s", e.Table, e.Msg)
}

// IntegrityError reports a ceiling supplied by the caller that is smaller
// than the observed maximum level in the index (§7).
type IntegrityError struct {
	Table        string
	Ceiling      int
	ObservedMax  int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("gri: ceiling %d on table %q is below observed max level %d", e.Ceiling, e.Table, e.ObservedMax)
}

// ProbeError reports a failure of the query planner's index probe (§4.3, §7).
// Callers may retry emission with an explicit ceiling to bypass probing.
type ProbeError struct {
	Table string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("gri: probe of table %q failed: %s", e.Table, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
