package twilio

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// Attributes maps API field names (e.g. "FriendlyName") to string values.
// Keys passed to Get and Set may use either naming convention.
type Attributes map[string]string

// NewAttributes builds an Attributes set from caller supplied values, which
// may be keyed by local or API names and hold any scalar.
func NewAttributes(fields map[string]any) Attributes {
	a := make(Attributes, len(fields))
	for k, v := range fields {
		a.Set(k, v)
	}
	return a
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[Camelize(key)]
	return v, ok
}

// Set stores value under key, coerced to its string form. A nil value
// removes the key.
func (a Attributes) Set(key string, value any) {
	s, ok := stringify(value)
	if !ok {
		delete(a, Camelize(key))
		return
	}
	a[Camelize(key)] = s
}

// Merge applies a decoded response body. Keys in fields overwrite existing
// values; keys absent from fields are left untouched.
func (a Attributes) Merge(fields map[string]any) {
	for k, v := range fields {
		a.Set(k, v)
	}
}

// Clone returns a copy of a.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Local returns the attributes keyed by their underscore names.
func (a Attributes) Local() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[Underscore(k)] = v
	}
	return out
}

// Keys returns the API field names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringify coerces v to the string form it is stored as. The second result
// is false for nil, which callers treat as "no value".
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t), true
		}
		return string(b), true
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s, true
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b), true
	}
	return fmt.Sprint(v), true
}
