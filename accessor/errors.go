package accessor

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrFieldNotWritable is returned when a field name has no writable field on the type.
	ErrFieldNotWritable = errors.New("dbutils: field not writable")
	// ErrTypeMismatch is returned when a raw value cannot be coerced to the field's declared type.
	ErrTypeMismatch = errors.New("dbutils: type mismatch")
	// ErrInvalidTarget is returned when an accessor is applied to a value of another type.
	ErrInvalidTarget = errors.New("dbutils: invalid target")
)

// errUnsupported marks a raw type the coercion rules have no path for.
var errUnsupported = errors.New("unsupported conversion")

// FieldError reports a field name that is not a writable field of Type.
type FieldError struct {
	Type  reflect.Type
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("dbutils: %s has no writable field %q", e.Type, e.Field)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrFieldNotWritable
}

// MismatchError reports a raw value that could not be assigned to Field.
type MismatchError struct {
	Field    string
	Expected reflect.Type
	Actual   reflect.Type // nil for a nil raw value
	Err      error        // parse or range failure, if any
}

func (e *MismatchError) Error() string {
	actual := "nil"
	if e.Actual != nil {
		actual = e.Actual.String()
	}
	msg := fmt.Sprintf("dbutils: type mismatch for field %s: cannot convert %s to %s", e.Field, actual, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}
