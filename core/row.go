package core

import (
	"database/sql/driver"
	"reflect"
)

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent is returned by Row.Value for a cell that holds no data, such as SQL
// NULL. It is distinct from any present zero or empty value.
var Absent any = absent{}

// IsAbsent reports whether v means "no data": nil, a nil pointer, Absent, or
// a driver.Valuer whose value is nil (an invalid sql.NullString, for example).
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	if _, ok := v.(absent); ok {
		return true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		return err == nil && inner == nil
	}
	return false
}

// Row is a read-only view of one result record with named columns.
type Row interface {
	HasColumn(name string) bool
	// Value returns the raw cell for the column, or Absent.
	Value(name string) any
}

// Rows is a forward-only cursor over result records. The Row methods read the
// current record; Next advances to the next one and reports false once the
// source is exhausted or failed.
type Rows interface {
	Row
	Next() bool
	Err() error
}

// MapRow is a Row backed by a map. Missing keys are absent columns, nil
// values are absent cells.
type MapRow map[string]any

func (r MapRow) HasColumn(name string) bool {
	_, ok := r[name]
	return ok
}

func (r MapRow) Value(name string) any {
	v, ok := r[name]
	if !ok || v == nil {
		return Absent
	}
	return v
}

// SliceRows iterates over in-memory rows.
type SliceRows struct {
	rows []Row
	pos  int
}

// NewSliceRows returns a Rows positioned before the first of rows.
func NewSliceRows(rows ...Row) *SliceRows {
	return &SliceRows{rows: rows, pos: -1}
}

func (s *SliceRows) Next() bool {
	if s.pos+1 >= len(s.rows) {
		s.pos = len(s.rows)
		return false
	}
	s.pos++
	return true
}

func (s *SliceRows) current() Row {
	if s.pos < 0 || s.pos >= len(s.rows) || s.rows[s.pos] == nil {
		return MapRow(nil)
	}
	return s.rows[s.pos]
}

func (s *SliceRows) HasColumn(name string) bool { return s.current().HasColumn(name) }

func (s *SliceRows) Value(name string) any { return s.current().Value(name) }

func (s *SliceRows) Err() error { return nil }
