package accessor

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// setter writes raw into dst, an addressable field value. The conversion path
// is chosen per call from raw's dynamic type; only the destination side is
// fixed when the setter is built.
type setter func(dst reflect.Value, raw any) error

func newSetter(t reflect.Type, loc *time.Location) setter {
	scanner := reflect.PointerTo(t).Implements(scannerType)
	var convert setter = scanInto
	if !scanner {
		convert = kindSetter(t, loc)
	}
	nillable := isNillable(t)
	bytesDst := isBytes(t)

	return func(dst reflect.Value, raw any) error {
		if isNilPointer(raw) {
			raw = nil
		}
		if v, ok := raw.(driver.Valuer); ok && !reflect.TypeOf(raw).AssignableTo(t) {
			inner, err := v.Value()
			if err != nil {
				return err
			}
			raw = inner
		}
		if raw == nil {
			switch {
			case nillable:
				dst.SetZero()
				return nil
			case scanner:
				return scanInto(dst, nil)
			}
			return errUnsupported
		}

		rv := reflect.ValueOf(raw)
		if !bytesDst && rv.Type().AssignableTo(t) {
			dst.Set(rv)
			return nil
		}
		return convert(dst, raw)
	}
}

func scanInto(dst reflect.Value, raw any) error {
	return dst.Addr().Interface().(sql.Scanner).Scan(raw)
}

func kindSetter(t reflect.Type, loc *time.Location) setter {
	switch t.Kind() {
	case reflect.Bool:
		return func(dst reflect.Value, raw any) error {
			b, err := asBool(raw)
			if err != nil {
				return err
			}
			dst.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(dst reflect.Value, raw any) error {
			n, err := asInt(raw)
			if err != nil {
				return err
			}
			if dst.OverflowInt(n) {
				return fmt.Errorf("value %d overflows %s", n, t)
			}
			dst.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(dst reflect.Value, raw any) error {
			n, err := asUint(raw)
			if err != nil {
				return err
			}
			if dst.OverflowUint(n) {
				return fmt.Errorf("value %d overflows %s", n, t)
			}
			dst.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		return func(dst reflect.Value, raw any) error {
			f, err := asFloat(raw)
			if err != nil {
				return err
			}
			if dst.OverflowFloat(f) {
				return fmt.Errorf("value %g overflows %s", f, t)
			}
			dst.SetFloat(f)
			return nil
		}
	case reflect.String:
		return func(dst reflect.Value, raw any) error {
			s, err := asString(raw)
			if err != nil {
				return err
			}
			dst.SetString(s)
			return nil
		}
	case reflect.Ptr:
		elem := newSetter(t.Elem(), loc)
		return func(dst reflect.Value, raw any) error {
			v := reflect.New(t.Elem())
			if err := elem(v.Elem(), raw); err != nil {
				return err
			}
			dst.Set(v)
			return nil
		}
	}

	if isBytes(t) {
		return func(dst reflect.Value, raw any) error {
			b, err := asBytes(raw)
			if err != nil {
				return err
			}
			dst.SetBytes(b)
			return nil
		}
	}
	if t == timeType || (t.Kind() == reflect.Struct && t.ConvertibleTo(timeType)) {
		return func(dst reflect.Value, raw any) error {
			tm, err := asTime(raw, loc)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(tm).Convert(t))
			return nil
		}
	}

	return func(dst reflect.Value, raw any) error {
		rv := reflect.ValueOf(raw)
		if rv.Kind() != t.Kind() || !rv.Type().ConvertibleTo(t) {
			return errUnsupported
		}
		dst.Set(rv.Convert(t))
		return nil
	}
}

func asBool(raw any) (bool, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0, nil
	case reflect.String:
		return strconv.ParseBool(rv.String())
	}
	if b, ok := rawBytes(rv); ok {
		return strconv.ParseBool(string(b))
	}
	return false, errUnsupported
}

func asInt(raw any) (int64, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("value %g is not integral", f)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("value %g overflows int64", f)
		}
		return int64(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return strconv.ParseInt(rv.String(), 10, 64)
	}
	if b, ok := rawBytes(rv); ok {
		return strconv.ParseInt(string(b), 10, 64)
	}
	return 0, errUnsupported
}

func asUint(raw any) (uint64, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, fmt.Errorf("value %d is negative", n)
		}
		return uint64(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("value %g is not integral", f)
		}
		if f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("value %g overflows uint64", f)
		}
		return uint64(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return strconv.ParseUint(rv.String(), 10, 64)
	}
	if b, ok := rawBytes(rv); ok {
		return strconv.ParseUint(string(b), 10, 64)
	}
	return 0, errUnsupported
}

func asFloat(raw any) (float64, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return strconv.ParseFloat(rv.String(), 64)
	}
	if b, ok := rawBytes(rv); ok {
		return strconv.ParseFloat(string(b), 64)
	}
	return 0, errUnsupported
}

func asString(raw any) (string, error) {
	if tm, ok := raw.(time.Time); ok {
		return tm.Format(time.RFC3339Nano), nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	if b, ok := rawBytes(rv); ok {
		return string(b), nil
	}
	return "", errUnsupported
}

func asBytes(raw any) ([]byte, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return []byte(rv.String()), nil
	}
	if b, ok := rawBytes(rv); ok {
		if b == nil {
			return nil, nil
		}
		return append([]byte(nil), b...), nil
	}
	return nil, errUnsupported
}

func asTime(raw any, loc *time.Location) (time.Time, error) {
	rv := reflect.ValueOf(raw)
	if rv.Type() == timeType {
		return raw.(time.Time), nil
	}
	if rv.Kind() == reflect.Struct && rv.Type().ConvertibleTo(timeType) {
		return rv.Convert(timeType).Interface().(time.Time), nil
	}
	if rv.Kind() == reflect.String {
		return dateparse.ParseIn(rv.String(), loc)
	}
	if b, ok := rawBytes(rv); ok {
		return dateparse.ParseIn(string(b), loc)
	}
	return time.Time{}, errUnsupported
}

func rawBytes(rv reflect.Value) ([]byte, bool) {
	if isBytes(rv.Type()) {
		return rv.Bytes(), true
	}
	return nil, false
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isNilPointer(raw any) bool {
	rv := reflect.ValueOf(raw)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}
