// Package gormrecord adapts GORM models to record.Record.
//
// Columns are addressed by their database name or Go field name. Relations are
// addressed by the snake_case form of their field name ("user" for a User
// field) and resolve from the loaded struct first. When a relation was not
// preloaded and a *gorm.DB is available, it is fetched through the association
// API on first access.
package gormrecord

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"opevent/pkg/platform/record"
)

var schemaCache sync.Map

// Record is a record.Record over one GORM model value.
type Record struct {
	ctx       context.Context
	db        *gorm.DB
	schema    *schema.Schema
	namer     schema.Namer
	model     any
	value     reflect.Value
	relations map[string]*schema.Relationship
}

// New parses model's schema and wraps it. model must be a pointer to a
// struct. db may be nil, in which case only preloaded relations resolve.
func New(ctx context.Context, db *gorm.DB, model any) (*Record, error) {
	var namer schema.Namer = schema.NamingStrategy{}
	if db != nil && db.Config != nil && db.NamingStrategy != nil {
		namer = db.NamingStrategy
	}

	rv := reflect.ValueOf(model)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("gorm record requires a non-nil struct pointer, got %T", model)
	}

	s, err := schema.Parse(model, &schemaCache, namer)
	if err != nil {
		return nil, fmt.Errorf("parse gorm schema for %T: %w", model, err)
	}

	relations := make(map[string]*schema.Relationship, len(s.Relationships.Relations))
	for name, rel := range s.Relationships.Relations {
		relations[namer.ColumnName("", name)] = rel
		relations[name] = rel
	}

	return &Record{
		ctx:       ctx,
		db:        db,
		schema:    s,
		namer:     namer,
		model:     model,
		value:     rv,
		relations: relations,
	}, nil
}

// MustNew is New for models known to be valid.
func MustNew(ctx context.Context, db *gorm.DB, model any) *Record {
	r, err := New(ctx, db, model)
	if err != nil {
		panic(err)
	}
	return r
}

// Model returns the wrapped model pointer.
func (r *Record) Model() any {
	return r.model
}

// Attr implements record.Record.
func (r *Record) Attr(name string) (any, bool) {
	if rel, ok := r.relations[name]; ok {
		return r.relation(rel), true
	}

	field := r.schema.LookUpField(name)
	if field == nil || !field.Readable {
		return nil, false
	}
	v, _ := field.ValueOf(r.ctx, r.value)
	return deref(v), true
}

// PrimaryKey implements record.Record.
func (r *Record) PrimaryKey() any {
	pk := r.schema.PrioritizedPrimaryField
	if pk == nil {
		return nil
	}
	v, _ := pk.ValueOf(r.ctx, r.value)
	return deref(v)
}

// Attrs implements record.Lister: columns in declaration order followed by
// relations.
func (r *Record) Attrs() []string {
	out := append([]string(nil), r.schema.DBNames...)
	t := r.schema.ModelType
	for i := range t.NumField() {
		name := t.Field(i).Name
		if _, ok := r.schema.Relationships.Relations[name]; ok {
			out = append(out, r.namer.ColumnName("", name))
		}
	}
	return out
}

func (r *Record) relation(rel *schema.Relationship) any {
	fv := rel.Field.ReflectValueOf(r.ctx, r.value)

	switch rel.Type {
	case schema.HasMany, schema.Many2Many:
		if fv.Kind() != reflect.Slice {
			return nil
		}
		if fv.IsNil() {
			loaded, ok := r.load(rel, reflect.New(fv.Type()))
			if !ok {
				return record.Records{}
			}
			fv = loaded.Elem()
		}
		return r.wrapSlice(fv)
	default:
		if isUnset(fv) {
			elemType := fv.Type()
			if elemType.Kind() == reflect.Pointer {
				elemType = elemType.Elem()
			}
			loaded, ok := r.load(rel, reflect.New(elemType))
			if !ok {
				return nil
			}
			fv = loaded
		}
		return r.wrap(fv)
	}
}

// load fetches rel into dest, a pointer to a zero value of the relation type.
func (r *Record) load(rel *schema.Relationship, dest reflect.Value) (reflect.Value, bool) {
	if r.db == nil {
		return reflect.Value{}, false
	}
	if err := r.db.WithContext(r.ctx).Model(r.model).Association(rel.Name).Find(dest.Interface()); err != nil {
		return reflect.Value{}, false
	}
	if dest.Elem().Kind() != reflect.Slice && isUnset(dest.Elem()) {
		return reflect.Value{}, false
	}
	return dest, true
}

func (r *Record) wrap(v reflect.Value) any {
	if v.Kind() != reflect.Pointer {
		if !v.CanAddr() {
			cp := reflect.New(v.Type())
			cp.Elem().Set(v)
			v = cp
		} else {
			v = v.Addr()
		}
	}
	if v.IsNil() {
		return nil
	}
	related, err := New(r.ctx, r.db, v.Interface())
	if err != nil {
		return nil
	}
	return related
}

func (r *Record) wrapSlice(v reflect.Value) record.Records {
	out := make(record.Records, 0, v.Len())
	for i := range v.Len() {
		if related, ok := r.wrap(v.Index(i)).(*Record); ok {
			out = append(out, related)
		}
	}
	return out
}

// isUnset reports whether a has-one or belongs-to field holds nothing: a nil
// pointer or a struct whose primary key is zero.
func isUnset(v reflect.Value) bool {
	if v.Kind() == reflect.Pointer {
		return v.IsNil()
	}
	return v.IsZero()
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}
