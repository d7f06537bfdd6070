package genomicsqlite

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the Go-typed form of §4.5's configuration table. ParseConfig
// builds one from the map-shaped config the public API (§6) accepts.
type Config struct {
	UnsafeLoad   bool
	PageCacheMiB int
	Threads      int
	ZstdLevel    int
	InnerPageKiB int
	OuterPageKiB int
}

// DefaultConfig returns the §4.5 defaults.
func DefaultConfig() Config {
	return Config{
		UnsafeLoad:   false,
		PageCacheMiB: 1024,
		Threads:      -1,
		ZstdLevel:    6,
		InnerPageKiB: 16,
		OuterPageKiB: 32,
	}
}

var validPageSizesKiB = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true, 32: true, 64: true}

// ParseConfig validates and converts a map-shaped config (§6's
// language-agnostic `config: map` parameter) into a Config, applying the
// §4.5 defaults for any key the caller omits.
func ParseConfig(raw map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()

	for key, value := range raw {
		switch key {
		case "unsafe_load":
			b, ok := value.(bool)
			if !ok {
				return Config{}, &ConfigError{Key: key, Value: value, Msg: "must be a bool"}
			}
			cfg.UnsafeLoad = b

		case "page_cache_MiB":
			n, err := asInt(key, value)
			if err != nil {
				return Config{}, err
			}
			if n <= 0 {
				return Config{}, &ConfigError{Key: key, Value: value, Msg: "must be positive"}
			}
			cfg.PageCacheMiB = n

		case "threads":
			n, err := asInt(key, value)
			if err != nil {
				return Config{}, err
			}
			cfg.Threads = n

		case "zstd_level":
			n, err := asInt(key, value)
			if err != nil {
				return Config{}, err
			}
			if n < -5 || n > 22 {
				return Config{}, &ConfigError{Key: key, Value: value, Msg: "must be in [-5,22]"}
			}
			cfg.ZstdLevel = n

		case "inner_page_KiB":
			n, err := asInt(key, value)
			if err != nil {
				return Config{}, err
			}
			if !validPageSizesKiB[n] {
				return Config{}, &ConfigError{Key: key, Value: value, Msg: "must be one of {1,2,4,8,16,32,64}"}
			}
			cfg.InnerPageKiB = n

		case "outer_page_KiB":
			n, err := asInt(key, value)
			if err != nil {
				return Config{}, err
			}
			if !validPageSizesKiB[n] {
				return Config{}, &ConfigError{Key: key, Value: value, Msg: "must be one of {1,2,4,8,16,32,64}"}
			}
			cfg.OuterPageKiB = n

		default:
			return Config{}, &ConfigError{Key: key, Value: value, Msg: "unknown config key"}
		}
	}

	return cfg, nil
}

// ParseConfigFile reads a YAML document from path and parses it the same
// way ParseConfig does a map, so a CLI or embedding application can keep
// connection tuning in a file instead of inline literals. Grounded on the
// teacher's ParseGeneratorConfigString/parseGeneratorConfigFromBytes
// (database/database.go), which decodes a YAML document into a
// yaml.v3-tagged struct the same way.
func ParseConfigFile(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Key: path, Value: nil, Msg: err.Error()}
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(buf, &raw); err != nil {
		return Config{}, &ConfigError{Key: path, Value: nil, Msg: "invalid YAML: " + err.Error()}
	}
	return ParseConfig(raw)
}

func asInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, &ConfigError{Key: key, Value: value, Msg: "must be an integer"}
	}
}

// ToMap converts Config back into the map-shaped form Open accepts, so a
// Config parsed from a file (ParseConfigFile) or built programmatically can
// be threaded through the same §6 entrypoint as an inline literal.
func (c Config) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"unsafe_load":    c.UnsafeLoad,
		"page_cache_MiB": c.PageCacheMiB,
		"threads":        c.Threads,
		"zstd_level":     c.ZstdLevel,
		"inner_page_KiB": c.InnerPageKiB,
		"outer_page_KiB": c.OuterPageKiB,
	}
}

// Pragmas returns the host-engine pragma statements Open applies for this
// config (§4.5): page cache size always, and synchronous/journal/foreign-key
// relaxation only when UnsafeLoad is set.
func (c Config) Pragmas() []string {
	pragmas := []string{
		pragmaCacheSize(c.PageCacheMiB),
	}
	if c.UnsafeLoad {
		pragmas = append(pragmas,
			"PRAGMA synchronous = OFF",
			"PRAGMA journal_mode = OFF",
			"PRAGMA defer_foreign_keys = ON",
		)
	}
	return pragmas
}

func pragmaCacheSize(mib int) string {
	// SQLite's cache_size pragma takes pages when positive, KiB when
	// negative; negative-KiB is what lets the cache size stay correct
	// across differing inner page sizes.
	kib := mib * 1024
	return "PRAGMA cache_size = -" + strconv.Itoa(kib)
}
