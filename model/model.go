package model

import (
	"fmt"
	"reflect"
	"sync"
)

// Model is the field descriptor table of one struct type
type Model struct {
	Type      reflect.Type
	Fields    []*Field          // declaration order, promoted fields in place
	FieldMap  map[string]*Field // by struct field name
	ColumnMap map[string]*Field // by column name, first claimant
}

var modelCache sync.Map // reflect.Type -> *Model

// GetModel returns the cached table for typ, which must be a struct or a
// pointer to one. The table is built on first use.
func GetModel(typ reflect.Type) (*Model, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", ErrConstruction)
	}
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is a %s, not a struct", ErrConstruction, typ, typ.Kind())
	}

	if cached, ok := modelCache.Load(typ); ok {
		return cached.(*Model), nil
	}

	m := parseModel(typ)
	actual, _ := modelCache.LoadOrStore(typ, m)
	return actual.(*Model), nil
}

// Of returns the model of value's dynamic type.
func Of(value any) (*Model, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: value is nil", ErrConstruction)
	}
	return GetModel(reflect.TypeOf(value))
}

func parseModel(typ reflect.Type) *Model {
	m := &Model{
		Type:      typ,
		FieldMap:  make(map[string]*Field),
		ColumnMap: make(map[string]*Field),
	}

	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() {
			continue
		}
		if sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct {
			// promoted fields are listed separately
			continue
		}
		if throughPointer(typ, sf.Index) {
			continue
		}

		tagStr := sf.Tag.Get(TagName)
		tag := ParseTag(tagStr)
		if tag.Omit {
			continue
		}

		column := tag.Column
		if column == "" {
			column = sf.Name
		}

		field := &Field{
			Owner:  typ,
			Name:   sf.Name,
			Column: column,
			Type:   sf.Type,
			Index:  sf.Index,
			Tag:    tagStr,
		}

		m.Fields = append(m.Fields, field)
		m.FieldMap[field.Name] = field
		// a column claimed by several fields feeds each of them; the
		// column index keeps the first
		if _, dup := m.ColumnMap[column]; !dup {
			m.ColumnMap[column] = field
		}
	}

	return m
}

// Field returns the writable field called name; the lookup is case-sensitive.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.FieldMap[name]
	return f, ok
}

// New allocates a zero instance and returns a pointer to it.
func (m *Model) New() reflect.Value {
	return reflect.New(m.Type)
}

// throughPointer reports whether reaching index walks through an embedded
// pointer, which would need allocation of a nested object.
func throughPointer(typ reflect.Type, index []int) bool {
	t := typ
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Ptr {
			return true
		}
	}
	return false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
