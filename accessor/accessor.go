package accessor

import (
	"fmt"
	"reflect"

	"github.com/shrek82/dbutils/model"
)

// Accessor writes raw column values into one field of one struct type.
// It is immutable and safe for concurrent use.
type Accessor struct {
	field *model.Field
	set   setter
}

func compile(f *model.Field, opts *CacheOptions) *Accessor {
	return &Accessor{
		field: f,
		set:   newSetter(f.Type, opts.location()),
	}
}

// Field returns the descriptor the accessor is bound to.
func (a *Accessor) Field() *model.Field {
	return a.field
}

// Set assigns raw to the field of target, which must be a non-nil pointer to
// the accessor's struct type. raw is coerced to the field's declared type.
func (a *Accessor) Set(target any, raw any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: need a non-nil *%s, got %T", ErrInvalidTarget, a.field.Owner, target)
	}
	return a.SetValue(rv.Elem(), raw)
}

// SetValue is Set for an addressable struct value already in hand.
func (a *Accessor) SetValue(v reflect.Value, raw any) error {
	if !v.IsValid() || v.Type() != a.field.Owner || !v.CanAddr() {
		return fmt.Errorf("%w: need an addressable %s for field %s", ErrInvalidTarget, a.field.Owner, a.field.Name)
	}

	if err := a.set(v.FieldByIndex(a.field.Index), raw); err != nil {
		return a.mismatch(raw, err)
	}
	return nil
}

func (a *Accessor) mismatch(raw any, err error) error {
	if err == errUnsupported {
		err = nil
	}
	return &MismatchError{
		Field:    a.field.Name,
		Expected: a.field.Type,
		Actual:   reflect.TypeOf(raw),
		Err:      err,
	}
}
