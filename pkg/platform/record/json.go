package record

import (
	"math"

	"github.com/valyala/fastjson"
)

// JSON adapts a parsed JSON object to Record without decoding it up front.
// Objects become related records and arrays of objects carrying an id become
// collections. An object without an id is embedded: it can be traversed, but a
// bare path keeps its decoded value.
//
// The underlying value belongs to the fastjson.Parser that produced it, so a
// JSON record must not outlive the next Parse call on that parser.
type JSON struct {
	obj *fastjson.Object
	// Key names the primary-key attribute. Empty means DefaultPrimaryKey.
	Key string
}

// FromJSON wraps v. Non-object values yield a record with no attributes.
func FromJSON(v *fastjson.Value) JSON {
	if v == nil || v.Type() != fastjson.TypeObject {
		return JSON{}
	}
	obj, _ := v.Object()
	return JSON{obj: obj}
}

// Attr implements Record.
func (j JSON) Attr(name string) (any, bool) {
	if j.obj == nil {
		return nil, false
	}
	v := j.obj.Get(name)
	if v == nil {
		return nil, false
	}
	return jsonAttr(v), true
}

// PrimaryKey implements Record.
func (j JSON) PrimaryKey() any {
	if j.obj == nil {
		return nil
	}
	v := j.obj.Get(j.key())
	if v == nil {
		return nil
	}
	return Decode(v)
}

// Plain implements Embedded.
func (j JSON) Plain() (any, bool) {
	if j.obj == nil || j.obj.Get(j.key()) != nil {
		return nil, false
	}
	return decodeObject(j.obj), true
}

func (j JSON) key() string {
	if j.Key == "" {
		return DefaultPrimaryKey
	}
	return j.Key
}

// Attrs implements Lister in document order.
func (j JSON) Attrs() []string {
	if j.obj == nil {
		return nil
	}
	var names []string
	j.obj.Visit(func(key []byte, _ *fastjson.Value) {
		names = append(names, string(key))
	})
	return names
}

func jsonAttr(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		return FromJSON(v)
	case fastjson.TypeArray:
		items, _ := v.Array()
		if len(items) > 0 && allKeyedObjects(items) {
			out := make(Records, len(items))
			for i, item := range items {
				out[i] = FromJSON(item)
			}
			return out
		}
	}
	return Decode(v)
}

func allKeyedObjects(items []*fastjson.Value) bool {
	for _, item := range items {
		if item.Type() != fastjson.TypeObject || item.Get(DefaultPrimaryKey) == nil {
			return false
		}
	}
	return true
}

// Decode converts a fastjson value into plain Go values. Integral numbers that
// fit an int64 decode as int64, everything else as float64.
func Decode(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f := v.GetFloat64()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = Decode(item)
		}
		return out
	case fastjson.TypeObject:
		obj, _ := v.Object()
		return decodeObject(obj)
	}
	return nil
}

func decodeObject(obj *fastjson.Object) map[string]any {
	out := make(map[string]any, obj.Len())
	obj.Visit(func(key []byte, item *fastjson.Value) {
		out[string(key)] = Decode(item)
	})
	return out
}
