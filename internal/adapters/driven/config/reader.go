// Package config holds value handling shared by the configuration stores.
package config

// Reader derives the typed getters of driven.ConfigStore from a raw lookup.
// TOML decodes integers as int64 and arrays as []any; values set in code
// keep their Go types. Every getter accepts both.
type Reader struct {
	lookup func(key string) (any, bool)
}

// NewReader wraps lookup, usually the owning store's Get method.
func NewReader(lookup func(key string) (any, bool)) Reader {
	return Reader{lookup: lookup}
}

func (r Reader) value(key string) any {
	if r.lookup == nil {
		return nil
	}
	v, _ := r.lookup(key)
	return v
}

// GetString returns "" unless the value is a string.
func (r Reader) GetString(key string) string {
	s, _ := r.value(key).(string)
	return s
}

// GetInt returns 0 unless the value is an integer or a whole float.
func (r Reader) GetInt(key string) int {
	switch v := r.value(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return 0
}

// GetFloat returns 0 unless the value is numeric.
func (r Reader) GetFloat(key string) float64 {
	switch v := r.value(key).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// GetBool returns false unless the value is a boolean.
func (r Reader) GetBool(key string) bool {
	b, _ := r.value(key).(bool)
	return b
}

// GetStringSlice returns the string items of a list, nil for non-lists.
func (r Reader) GetStringSlice(key string) []string {
	switch v := r.value(key).(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
