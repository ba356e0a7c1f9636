// Package record defines the capabilities the flattener needs from a structured
// record, independent of where the record comes from.
//
// A record exposes three things:
//   - named attribute reads (Attr), which may yield scalars, related records or
//     collections of related records
//   - a primary-key identifier (PrimaryKey)
//   - the collection predicate (IsCollection) for one-to-many accessors
//
// Adapters in this package cover plain maps, Go structs and parsed JSON documents.
// ORM-backed records live in sub-packages so callers only pull in the ORM they use.
package record

import "reflect"

// Record is a structured object with named attributes and a primary key.
type Record interface {
	// Attr returns the value of the named attribute. ok is false when the
	// record has no such attribute.
	Attr(name string) (value any, ok bool)
	// PrimaryKey returns the record's identifier.
	PrimaryKey() any
}

// Lister is implemented by records that can enumerate their attribute names.
type Lister interface {
	Attrs() []string
}

// Collection marks a one-to-many relation accessor. Collections are never
// flattened through a bare field path.
type Collection interface {
	Len() int
}

// Embedded is implemented by adapters whose nested objects may be plain
// values rather than relations. Plain returns the object's value and true when
// it carries no primary key.
type Embedded interface {
	Plain() (any, bool)
}

// PlainValue returns the plain value of r when r is an embedded object
// without a primary key.
func PlainValue(r Record) (any, bool) {
	e, ok := r.(Embedded)
	if !ok || IsNil(r) {
		return nil, false
	}
	return e.Plain()
}

// IsCollection reports whether v is a relation collection.
func IsCollection(v any) bool {
	_, ok := v.(Collection)
	return ok
}

// IsNil reports whether r is nil, including typed-nil pointers stored in the
// interface.
func IsNil(r Record) bool {
	if r == nil {
		return true
	}
	rv := reflect.ValueOf(r)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// As returns v as a non-nil Record.
func As(v any) (Record, bool) {
	r, ok := v.(Record)
	if !ok || IsNil(r) {
		return nil, false
	}
	return r, true
}

// Resolve reads name from r, treating a nil record as having no attributes.
func Resolve(r Record, name string) (any, bool) {
	if IsNil(r) {
		return nil, false
	}
	return r.Attr(name)
}

// Records is a Collection over a fixed slice of related records.
type Records []Record

// Len returns the number of related records.
func (rs Records) Len() int { return len(rs) }
