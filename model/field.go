package model

import (
	"reflect"
)

// Field describes one writable struct field and the column it is read from
type Field struct {
	Owner  reflect.Type // Struct type declaring (or promoting) the field
	Name   string       // Struct field name
	Column string       // Column name matched against rows
	Type   reflect.Type // Declared field type
	Index  []int        // Index path for reflect.Value.FieldByIndex
	Tag    string       // Raw tag string
}

// String returns Owner.Name, e.g. "main.User.ID".
func (f *Field) String() string {
	return f.Owner.String() + "." + f.Name
}
