package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldCount is wrapped by FieldCountError.
	ErrFieldCount = errors.New("field count mismatch")
	// ErrFieldFormat is wrapped by FieldFormatError.
	ErrFieldFormat = errors.New("field format mismatch")
	// ErrNumericFormat is wrapped by NumericFormatError.
	ErrNumericFormat = errors.New("numeric format invalid")
)

// FieldCountError reports a line that does not split into exactly three fields.
type FieldCountError struct {
	Got int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("expected %d fields, got %d", fieldCount, e.Got)
}

func (e *FieldCountError) Unwrap() error { return ErrFieldCount }

// FieldFormatError reports a field whose key does not match its position.
// Position is 1-based.
type FieldFormatError struct {
	Position int
	Key      string
}

func (e *FieldFormatError) Error() string {
	return fmt.Sprintf("field %d: expected %s=<value>", e.Position, e.Key)
}

func (e *FieldFormatError) Unwrap() error { return ErrFieldFormat }

// NumericFormatError reports a RAIN value that is not a base-10 integer.
type NumericFormatError struct {
	Value string
	Err   error
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("rain value %q is not an integer: %v", e.Value, e.Err)
}

func (e *NumericFormatError) Unwrap() []error { return []error{ErrNumericFormat, e.Err} }
