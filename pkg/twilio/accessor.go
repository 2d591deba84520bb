package twilio

import (
	"sort"
	"strings"
	"sync"
)

type accessorType int

const (
	readerAccessor accessorType = iota
	writerAccessor
	predicateAccessor
)

func (t accessorType) String() string {
	switch t {
	case writerAccessor:
		return "writer"
	case predicateAccessor:
		return "predicate"
	default:
		return "reader"
	}
}

// accessor is a resolved accessor name. For readers and writers field is the
// API field name; for predicates it is the status term being tested.
type accessor struct {
	typ   accessorType
	field string
}

// accessorRegistry memoizes accessor resolution per kind. Resolution is
// uniform across instances, so one registry serves every resource of a kind.
type accessorRegistry struct {
	kind  *Kind
	mu    sync.RWMutex
	cache map[string]accessor
}

func newAccessorRegistry(k *Kind) *accessorRegistry {
	return &accessorRegistry{kind: k, cache: make(map[string]accessor)}
}

// parseAccessor classifies name by its suffix and returns the cache key the
// resolved accessor is stored under. Local and API spellings of the same
// field share a key.
func parseAccessor(name string) (string, accessor) {
	switch {
	case strings.HasSuffix(name, "="):
		field := Camelize(strings.TrimSuffix(name, "="))
		return field + "=", accessor{typ: writerAccessor, field: field}
	case strings.HasSuffix(name, "?"):
		term := normalizeStatus(strings.TrimSuffix(name, "?"))
		return term + "?", accessor{typ: predicateAccessor, field: term}
	default:
		field := Camelize(name)
		return field, accessor{typ: readerAccessor, field: field}
	}
}

// declare registers name without consulting any instance. Used for fields a
// kind declares up front.
func (reg *accessorRegistry) declare(name string) {
	key, acc := parseAccessor(name)
	reg.mu.Lock()
	reg.cache[key] = acc
	reg.mu.Unlock()
}

// resolve returns the accessor for name, defining and caching it on first
// use. A reader is only defined when r actually carries the field.
func (reg *accessorRegistry) resolve(r *Resource, name string) (accessor, error) {
	key, acc := parseAccessor(name)

	reg.mu.RLock()
	cached, ok := reg.cache[key]
	reg.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if acc.typ == readerAccessor {
		if _, present := r.attrs.Get(acc.field); !present {
			return accessor{}, &NoSuchMethodError{Kind: reg.kind.Name, Name: name}
		}
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if cached, ok := reg.cache[key]; ok {
		return cached, nil
	}
	reg.cache[key] = acc
	return acc, nil
}

func (reg *accessorRegistry) names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.cache))
	for k := range reg.cache {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Accessors returns the accessor names defined so far for k, in API form
// with "=" and "?" suffixes for writers and predicates.
func (k *Kind) Accessors() []string { return k.accessors.names() }

func normalizeStatus(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
}
