// Package dbutils converts query result rows into Go structs, matching
// columns to fields by exact name through a cache of compiled field setters.
package dbutils

import (
	"github.com/shrek82/dbutils/accessor"
	"github.com/shrek82/dbutils/core"
)

// Re-export core types and functions
type Mapper = core.Mapper
type Options = core.Options
type Row = core.Row
type Rows = core.Rows
type MapRow = core.MapRow
type AfterMapper = core.AfterMapper

var (
	NewMapper    = core.NewMapper
	Default      = core.Default
	NewSliceRows = core.NewSliceRows
	IsAbsent     = core.IsAbsent
	Absent       = core.Absent
	NewCache     = accessor.NewCache
	DefaultCache = accessor.Default
)

// Re-export errors
var (
	ErrFieldNotWritable = core.ErrFieldNotWritable
	ErrTypeMismatch     = core.ErrTypeMismatch
	ErrConstruction     = core.ErrConstruction
	ErrInvalidTarget    = core.ErrInvalidTarget
)

// MapOne maps row into a T using the default mapper.
func MapOne[T any](row Row) (T, error) {
	return core.MapOne[T](core.Default(), row)
}

// MapMany maps every row of rows into a T using the default mapper.
func MapMany[T any](rows Rows) ([]T, error) {
	return core.MapMany[T](core.Default(), rows)
}
