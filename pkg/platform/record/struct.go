package record

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Struct adapts a Go struct to Record using reflection.
//
// Attribute names come from the `event` tag, then the `json` tag, then the
// snake_case field name. The primary key is the field tagged `event:",pk"` or,
// failing that, the field named ID. Struct-typed fields whose type has a primary
// key are relations; slices of them are collections.
type Struct struct {
	v      reflect.Value
	layout *structLayout
}

type structField struct {
	name  string
	index []int
}

type structLayout struct {
	fields []structField
	byName map[string]int
	pk     []int
}

var layouts sync.Map // reflect.Type -> *structLayout

// FromStruct wraps a struct or pointer to struct. A nil pointer yields a record
// with no attributes.
func FromStruct(v any) Struct {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Struct{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Struct{}
	}
	return Struct{v: rv, layout: layoutOf(rv.Type())}
}

// Attr implements Record.
func (s Struct) Attr(name string) (any, bool) {
	if s.layout == nil {
		return nil, false
	}
	i, ok := s.layout.byName[name]
	if !ok {
		return nil, false
	}
	fv, err := s.v.FieldByIndexErr(s.layout.fields[i].index)
	if err != nil {
		// promoted through a nil embedded pointer
		return nil, true
	}
	return structValue(fv), true
}

// PrimaryKey implements Record.
func (s Struct) PrimaryKey() any {
	if s.layout == nil || s.layout.pk == nil {
		return nil
	}
	fv, err := s.v.FieldByIndexErr(s.layout.pk)
	if err != nil {
		return nil
	}
	return fv.Interface()
}

// Attrs implements Lister, in declaration order.
func (s Struct) Attrs() []string {
	if s.layout == nil {
		return nil
	}
	names := make([]string, len(s.layout.fields))
	for i, f := range s.layout.fields {
		names[i] = f.name
	}
	return names
}

var recordType = reflect.TypeFor[Record]()

func structValue(fv reflect.Value) any {
	if fv.Type().Implements(recordType) {
		if isNilValue(fv) {
			return nil
		}
		return fv.Interface()
	}
	switch fv.Kind() {
	case reflect.Pointer:
		if isRelationType(fv.Type().Elem()) {
			if fv.IsNil() {
				return nil
			}
			return FromStruct(fv.Interface())
		}
	case reflect.Struct:
		if isRelationType(fv.Type()) {
			return FromStruct(fv.Interface())
		}
	case reflect.Slice:
		elem := fv.Type().Elem()
		if elem.Implements(recordType) || isRelationType(derefType(elem)) {
			out := make(Records, 0, fv.Len())
			for i := 0; i < fv.Len(); i++ {
				item := fv.Index(i)
				if r, ok := structValue(item).(Record); ok {
					out = append(out, r)
				}
			}
			return out
		}
	}
	return fv.Interface()
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isRelationType(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	return layoutOf(t).pk != nil
}

func layoutOf(t reflect.Type) *structLayout {
	if l, ok := layouts.Load(t); ok {
		return l.(*structLayout)
	}
	l := &structLayout{byName: make(map[string]int)}
	var idField []int
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, pk, skip := fieldName(f)
		if skip {
			continue
		}
		if _, dup := l.byName[name]; dup {
			continue
		}
		l.byName[name] = len(l.fields)
		l.fields = append(l.fields, structField{name: name, index: f.Index})
		if pk {
			l.pk = f.Index
		}
		if f.Name == "ID" {
			idField = f.Index
		}
	}
	if l.pk == nil {
		l.pk = idField
	}
	actual, _ := layouts.LoadOrStore(t, l)
	return actual.(*structLayout)
}

func fieldName(f reflect.StructField) (name string, pk bool, skip bool) {
	if tag, ok := f.Tag.Lookup("event"); ok {
		if tag == "-" {
			return "", false, true
		}
		parts := strings.Split(tag, ",")
		name = parts[0]
		for _, opt := range parts[1:] {
			if opt == "pk" {
				pk = true
			}
		}
	}
	if name == "" {
		if tag, ok := f.Tag.Lookup("json"); ok {
			jsonName, _, _ := strings.Cut(tag, ",")
			if jsonName == "-" {
				return "", false, true
			}
			name = jsonName
		}
	}
	if name == "" {
		name = snakeCase(f.Name)
	}
	return name, pk, false
}

// snakeCase converts Go field names like CourseID or DisplayName to course_id
// and display_name.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
