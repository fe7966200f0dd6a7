package file

import "github.com/custodia-labs/docqa/internal/core/ports/driven"

// stringValue reads key as a string. Other types read as "".
func stringValue(store driven.ConfigStore, key string) string {
	v, _ := store.Get(key)
	s, _ := v.(string)
	return s
}

// intValue reads key as an int. TOML decodes integers as int64 and JSON
// as float64.
func intValue(store driven.ConfigStore, key string) int {
	v, _ := store.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// floatValue reads key as a float64 so that "rate_limit = 2" works too.
func floatValue(store driven.ConfigStore, key string) float64 {
	v, _ := store.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
