package listctl

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Field is one URL parameter. Parse validates and normalizes a raw value;
// returning false falls back to Default. Format renders a value for the URL.
// Both may be nil.
type Field struct {
	Key     string
	Default string
	Parse   func(raw string) (string, bool)
	Format  func(value string) string
}

// Schema is an ordered set of fields.
type Schema []Field

// Values is decoded list state keyed by field name.
type Values map[string]string

// Int returns the integer value of key, or 0.
func (v Values) Int(key string) int {
	n, _ := strconv.Atoi(v[key])
	return n
}

// Decode reads every field from q. Missing or invalid values take their
// default.
func (s Schema) Decode(q url.Values) Values {
	out := make(Values, len(s))
	for _, f := range s {
		raw, ok := "", q.Has(f.Key)
		if ok {
			raw = q.Get(f.Key)
		}
		val := f.Default
		if ok {
			if f.Parse == nil {
				val = raw
			} else if parsed, valid := f.Parse(raw); valid {
				val = parsed
			}
		}
		out[f.Key] = val
	}
	return out
}

// Encode renders v as URL parameters, omitting fields equal to their default.
func (s Schema) Encode(v Values) url.Values {
	out := url.Values{}
	for _, f := range s {
		val, ok := v[f.Key]
		if !ok || val == f.Default {
			continue
		}
		if f.Format != nil {
			val = f.Format(val)
		}
		out.Set(f.Key, val)
	}
	return out
}

// Field returns the field named key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// IntField accepts integers >= min.
func IntField(key string, def, min int) Field {
	return Field{
		Key:     key,
		Default: strconv.Itoa(def),
		Parse: func(raw string) (string, bool) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < min {
				return "", false
			}
			return strconv.Itoa(n), true
		},
	}
}

// OneOfInt accepts only the listed integers.
func OneOfInt(key string, def int, allowed []int) Field {
	return Field{
		Key:     key,
		Default: strconv.Itoa(def),
		Parse: func(raw string) (string, bool) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || !slices.Contains(allowed, n) {
				return "", false
			}
			return strconv.Itoa(n), true
		},
	}
}

// TextField trims the value; a blank value is the default.
func TextField(key, def string) Field {
	return Field{
		Key:     key,
		Default: def,
		Parse: func(raw string) (string, bool) {
			raw = strings.TrimSpace(raw)
			return raw, raw != ""
		},
	}
}

// OneOf accepts only the listed strings.
func OneOf(key, def string, allowed ...string) Field {
	return Field{
		Key:     key,
		Default: def,
		Parse: func(raw string) (string, bool) {
			raw = strings.TrimSpace(raw)
			return raw, slices.Contains(allowed, raw)
		},
	}
}
