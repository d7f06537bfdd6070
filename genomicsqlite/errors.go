package genomicsqlite

import "fmt"

// ConfigError reports an unknown config key or an out-of-domain value in
// the §4.5 configuration table.
type ConfigError struct {
	Key   string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("genomicsqlite: config error for %q=%v: %s", e.Key, e.Value, e.Msg)
}

// EngineError wraps an error surfaced by the host engine during open, exec,
// or prepare (§7), preserving its native error for %w unwrapping.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("genomicsqlite: engine error during %s: %s", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
