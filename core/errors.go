package core

import (
	"github.com/shrek82/dbutils/accessor"
	"github.com/shrek82/dbutils/model"
)

var (
	// ErrFieldNotWritable is returned when a field name has no writable field on the target type.
	ErrFieldNotWritable = accessor.ErrFieldNotWritable
	// ErrTypeMismatch is returned when a cell value cannot be coerced to its field's type.
	ErrTypeMismatch = accessor.ErrTypeMismatch
	// ErrConstruction is returned when the target type is not a struct or pointer to struct.
	ErrConstruction = model.ErrConstruction
	// ErrInvalidTarget is returned when a destination is not a pointer of the expected shape.
	ErrInvalidTarget = accessor.ErrInvalidTarget
)
