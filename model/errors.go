package model

import "errors"

// ErrConstruction is returned when a target type has no default-constructible
// struct shape.
var ErrConstruction = errors.New("dbutils: type cannot be constructed")
