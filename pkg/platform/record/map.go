package record

import "sort"

// DefaultPrimaryKey is the attribute used as identifier when none is configured.
const DefaultPrimaryKey = "id"

// Map adapts a map[string]any to Record. Nested maps are related records and
// slices of maps carrying an id are collections. A nested map without an id is
// an embedded object: it can be traversed, but a bare path keeps its value.
type Map struct {
	Values map[string]any
	// Key names the primary-key attribute. Empty means DefaultPrimaryKey.
	Key string
}

// FromMap wraps values as a Record keyed by DefaultPrimaryKey.
func FromMap(values map[string]any) Map {
	return Map{Values: values}
}

// Attr implements Record.
func (m Map) Attr(name string) (any, bool) {
	v, ok := m.Values[name]
	if !ok {
		return nil, false
	}
	return wrapMapValue(v), true
}

// PrimaryKey implements Record.
func (m Map) PrimaryKey() any {
	return m.Values[m.key()]
}

// Plain implements Embedded.
func (m Map) Plain() (any, bool) {
	if _, ok := m.Values[m.key()]; ok {
		return nil, false
	}
	return m.Values, true
}

func (m Map) key() string {
	if m.Key == "" {
		return DefaultPrimaryKey
	}
	return m.Key
}

// Attrs implements Lister. Names are sorted since maps carry no order.
func (m Map) Attrs() []string {
	names := make([]string, 0, len(m.Values))
	for k := range m.Values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func wrapMapValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil
		}
		return Map{Values: t}
	case []map[string]any:
		out := make(Records, len(t))
		for i, item := range t {
			if _, ok := item[DefaultPrimaryKey]; !ok {
				return t
			}
			out[i] = Map{Values: item}
		}
		return out
	case []any:
		if len(t) == 0 {
			return t
		}
		out := make(Records, 0, len(t))
		for _, item := range t {
			child, ok := item.(map[string]any)
			if !ok {
				// mixed or scalar slices stay plain values
				return t
			}
			if _, keyed := child[DefaultPrimaryKey]; !keyed {
				return t
			}
			out = append(out, Map{Values: child})
		}
		return out
	}
	return v
}
