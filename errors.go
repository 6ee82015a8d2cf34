package sqlorm

import (
	"errors"
	"fmt"
)

/*
Error codes. You probably shouldn't use this directly; instead, use the `Err`
variables with `errors.Is`.
*/
type ErrCode string

const (
	ErrCodeUnknown          ErrCode = ""
	ErrCodeInvalidInput     ErrCode = "InvalidInput"
	ErrCodeInvalidValue     ErrCode = "InvalidValue"
	ErrCodeMissingField     ErrCode = "MissingField"
	ErrCodeArgCountMismatch ErrCode = "ArgCountMismatch"
	ErrCodeInternal         ErrCode = "Internal"
)

/*
Use blank error variables to detect error types:

	if errors.Is(err, sqlorm.ErrInvalidValue) {
		// Handle specific error.
	}

Note that errors returned by this package can't be compared via `==` because
they may include additional details about the circumstances. When compared by
`errors.Is`, they compare `.Cause` and fall back on `.Code`.
*/
var (
	ErrInvalidInput     Err = Err{Code: ErrCodeInvalidInput, Cause: errors.New(`invalid input`)}
	ErrInvalidValue     Err = Err{Code: ErrCodeInvalidValue, Cause: errors.New(`invalid value`)}
	ErrMissingField     Err = Err{Code: ErrCodeMissingField, Cause: errors.New(`missing field`)}
	ErrArgCountMismatch Err = Err{Code: ErrCodeArgCountMismatch, Cause: errors.New(`placeholder count doesn't match argument count`)}
	ErrInternal         Err = Err{Code: ErrCodeInternal, Cause: errors.New(`internal error`)}
)

// Type of errors returned by this package.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Implement `error`.
func (self Err) Error() string {
	if self == (Err{}) {
		return ``
	}
	msg := `[sqlorm]`
	if self.Code != ErrCodeUnknown {
		msg += fmt.Sprintf(` %s`, self.Code)
	}
	if self.While != `` {
		msg += fmt.Sprintf(` while %v`, self.While)
	}
	if self.Cause != nil {
		msg += `: ` + self.Cause.Error()
	}
	return msg
}

// Implement a hidden interface in "errors".
func (self Err) Is(other error) bool {
	if self.Cause != nil && errors.Is(self.Cause, other) {
		return true
	}
	err, ok := other.(Err)
	return ok && err.Code == self.Code
}

// Implement a hidden interface in "errors".
func (self Err) Unwrap() error {
	return self.Cause
}

func (self Err) while(while string) Err {
	self.While = while
	return self
}

func (self Err) because(cause error) Err {
	self.Cause = cause
	return self
}

func errInvalidInput(while string, format string, args ...any) Err {
	return Err{Code: ErrCodeInvalidInput, While: while, Cause: fmt.Errorf(format, args...)}
}

/*
Describes a value rejected at the API boundary. Carries the field (column or
key) the value was destined for, so callers can report the offending input
without parsing messages.
*/
type ValueError struct {
	Field string
	Value any
	Cause error
}

// Implement `error`.
func (self ValueError) Error() string {
	msg := fmt.Sprintf(`unsupported value %#v`, self.Value)
	if self.Field != `` {
		msg = fmt.Sprintf(`field %q: `, self.Field) + msg
	}
	if self.Cause != nil {
		msg += `: ` + self.Cause.Error()
	}
	return msg
}

// Implement a hidden interface in "errors".
func (self ValueError) Unwrap() error { return self.Cause }

func errInvalidValue(while, field string, val any, cause error) Err {
	return ErrInvalidValue.while(while).because(ValueError{Field: field, Value: val, Cause: cause})
}
