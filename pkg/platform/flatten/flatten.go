// Package flatten turns structured records into flat, JSON-safe mappings driven
// by a field whitelist.
//
// Each field path is either a bare attribute name or a dotted path
// "relation__attribute". Bare attributes that hold a related record collapse to
// "<name>_id" with the related record's primary key; collections are skipped.
// Dotted paths sharing a relation prefix are grouped under a nested Map, and the
// relation is resolved once per flattening call.
//
// Flattening never fails: missing attributes become nil and values that cannot
// be encoded as JSON are replaced by their string form.
package flatten

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"opevent/pkg/platform/record"
)

// Separator splits a field path into relation and child path.
const Separator = "__"

// Cache memoizes resolved attributes for one flattening call, including the
// recursive calls made for dotted paths. Keys are scoped by the relation path
// already traversed, so "submission__id" and "id" never share an entry.
type Cache struct {
	values map[string]any
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{values: make(map[string]any)}
}

// Len returns the number of resolved attributes.
func (c *Cache) Len() int {
	return len(c.values)
}

// Flatten flattens r restricted to paths. A nil paths slice selects every
// attribute when r implements record.Lister.
func Flatten(r record.Record, paths []string) *Map {
	return FlattenWith(r, paths, nil)
}

// FlattenWith is Flatten with a caller-supplied cache. A nil cache is replaced
// by a fresh one.
func FlattenWith(r record.Record, paths []string, cache *Cache) *Map {
	if cache == nil {
		cache = NewCache()
	}
	return flatten(r, paths, cache, "")
}

func flatten(r record.Record, paths []string, cache *Cache, scope string) *Map {
	if paths == nil {
		if lister, ok := r.(record.Lister); ok && !record.IsNil(r) {
			paths = lister.Attrs()
		}
	}

	out := NewMap()
	for _, path := range paths {
		key, rest, dotted := strings.Cut(path, Separator)
		value := resolve(r, key, cache, scope)

		if !dotted {
			if record.IsCollection(value) {
				continue
			}
			if related, ok := record.As(value); ok {
				if plain, ok := record.PlainValue(related); ok {
					out.Set(key, jsonSafe(plain))
					continue
				}
				out.Set(key+"_id", jsonSafe(related.PrimaryKey()))
				continue
			}
			out.Set(key, jsonSafe(value))
			continue
		}

		related, _ := record.As(value)
		nested := flatten(related, []string{rest}, cache, scope+key+".")
		group, ok := out.values[key].(*Map)
		if !ok {
			group = NewMap()
			out.Set(key, group)
		}
		group.Merge(nested)
	}
	return out
}

func resolve(r record.Record, key string, cache *Cache, scope string) any {
	scoped := scope + key
	if v, ok := cache.values[scoped]; ok {
		return v
	}
	v, _ := record.Resolve(r, key)
	cache.values[scoped] = v
	return v
}

// jsonSafe returns v when it encodes as JSON and its string form otherwise.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Sprint(t)
		}
		return v
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return fmt.Sprint(t)
		}
		return v
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}
