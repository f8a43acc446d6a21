package core

import (
	"fmt"
	"iter"
	"reflect"
	"sync"
	"time"

	"github.com/shrek82/dbutils/accessor"
	"github.com/shrek82/dbutils/logger"
	"github.com/shrek82/dbutils/model"
)

// Options defines the configuration of a Mapper.
type Options struct {
	// Cache holds the compiled accessors. Defaults to accessor.Default().
	Cache *accessor.Cache
	// Logger receives one line per multi-row conversion and every failure.
	// Nil disables logging.
	Logger logger.Logger
}

// Mapper materializes rows into struct values.
// It is safe for concurrent use.
type Mapper struct {
	cache  *accessor.Cache
	logger logger.Logger
}

// NewMapper creates a Mapper. opts may be nil.
func NewMapper(opts *Options) *Mapper {
	m := &Mapper{}
	if opts != nil {
		m.cache = opts.Cache
		m.logger = opts.Logger
	}
	if m.cache == nil {
		m.cache = accessor.Default()
	}
	return m
}

var (
	defaultMapper     *Mapper
	defaultMapperOnce sync.Once
)

// Default returns a Mapper over the process-wide accessor cache, without logging.
func Default() *Mapper {
	defaultMapperOnce.Do(func() { defaultMapper = NewMapper(nil) })
	return defaultMapper
}

// Cache returns the accessor cache used by m.
func (m *Mapper) Cache() *accessor.Cache {
	return m.cache
}

// MapOne builds a T from row. T must be a struct or a pointer to a struct.
// A nil row yields the zero T. Fields without a matching column and cells that
// are absent keep their zero value; columns without a matching field are
// ignored. On error the zero T is returned.
func MapOne[T any](m *Mapper, row Row) (T, error) {
	var zero T
	if row == nil {
		return zero, nil
	}

	rt := reflect.TypeFor[T]()
	v, err := m.mapValue(rt, row)
	if err != nil {
		m.logError(rt, err)
		return zero, err
	}
	return v.Interface().(T), nil
}

// MapMany builds one T per row of rows, in order. An exhausted source yields
// an empty slice. The first failing row stops the conversion and its error is
// returned with no values.
func MapMany[T any](m *Mapper, rows Rows) ([]T, error) {
	start := time.Now()
	out := make([]T, 0)
	if rows == nil {
		return out, nil
	}

	rt := reflect.TypeFor[T]()
	for rows.Next() {
		v, err := m.mapValue(rt, rows)
		if err != nil {
			return nil, m.rowError(rt, len(out), err)
		}
		out = append(out, v.Interface().(T))
	}
	if err := rows.Err(); err != nil {
		m.logError(rt, err)
		return nil, err
	}

	m.logMapping(rt, len(out), time.Since(start))
	return out, nil
}

// Iterate is the lazy form of MapMany. Rows are read only as the sequence is
// consumed. A failure is yielded once, with a zero T, and ends the sequence.
// A sequence read to the end logs one mapping line.
func Iterate[T any](m *Mapper, rows Rows) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if rows == nil {
			return
		}
		start := time.Now()

		rt := reflect.TypeFor[T]()
		n := 0
		for rows.Next() {
			v, err := m.mapValue(rt, rows)
			if err != nil {
				yield(zero, m.rowError(rt, n, err))
				return
			}
			if !yield(v.Interface().(T), nil) {
				return
			}
			n++
		}
		if err := rows.Err(); err != nil {
			m.logError(rt, err)
			yield(zero, err)
			return
		}
		m.logMapping(rt, n, time.Since(start))
	}
}

// MapInto fills dest, a non-nil pointer to a struct or to a struct pointer,
// from row. dest is only written when mapping succeeds; a nil row stores the
// zero value.
func (m *Mapper) MapInto(dest any, row Row) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("%w: dest must be a non-nil pointer, got %T", ErrInvalidTarget, dest)
	}

	target := dv.Elem()
	if row == nil {
		target.SetZero()
		return nil
	}

	v, err := m.mapValue(target.Type(), row)
	if err != nil {
		m.logError(target.Type(), err)
		return err
	}
	target.Set(v)
	return nil
}

// MapSlice replaces the contents of dest, a pointer to a slice of structs or
// struct pointers, with one element per row. dest is left untouched on error.
func (m *Mapper) MapSlice(dest any, rows Rows) error {
	start := time.Now()
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() || dv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("%w: dest must be a pointer to a slice, got %T", ErrInvalidTarget, dest)
	}

	sliceValue := dv.Elem()
	itemType := sliceValue.Type().Elem()
	out := reflect.MakeSlice(sliceValue.Type(), 0, 0)

	if rows != nil {
		for rows.Next() {
			v, err := m.mapValue(itemType, rows)
			if err != nil {
				return m.rowError(itemType, out.Len(), err)
			}
			out = reflect.Append(out, v)
		}
		if err := rows.Err(); err != nil {
			m.logError(itemType, err)
			return err
		}
	}

	sliceValue.Set(out)
	m.logMapping(itemType, out.Len(), time.Since(start))
	return nil
}

// mapValue constructs one rt from row. rt is a struct type or a single
// pointer to one.
func (m *Mapper) mapValue(rt reflect.Type, row Row) (reflect.Value, error) {
	if rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Ptr {
		return reflect.Value{}, fmt.Errorf("%w: %s has more than one level of indirection", ErrConstruction, rt)
	}

	md, err := model.GetModel(rt)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := md.New()
	if err := m.fill(md, ptr.Elem(), row); err != nil {
		return reflect.Value{}, err
	}

	if h, ok := ptr.Interface().(AfterMapper); ok {
		if err := h.AfterMap(); err != nil {
			return reflect.Value{}, err
		}
	}

	if rt.Kind() == reflect.Ptr {
		return ptr, nil
	}
	return ptr.Elem(), nil
}

func (m *Mapper) fill(md *model.Model, v reflect.Value, row Row) error {
	for _, f := range md.Fields {
		if !row.HasColumn(f.Column) {
			continue
		}
		raw := row.Value(f.Column)
		if IsAbsent(raw) {
			continue
		}

		a, err := m.cache.Get(md.Type, f.Name)
		if err != nil {
			return err
		}
		if err := a.SetValue(v, raw); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapper) rowError(rt reflect.Type, n int, err error) error {
	err = fmt.Errorf("dbutils: row %d: %w", n, err)
	m.logError(rt, err)
	return err
}

func (m *Mapper) logError(rt reflect.Type, err error) {
	if m.logger != nil {
		m.logger.Error("map %s: %v", rt, err)
	}
}

func (m *Mapper) logMapping(rt reflect.Type, rows int, d time.Duration) {
	if m.logger != nil {
		m.logger.Mapping(rt.String(), rows, d)
	}
}
