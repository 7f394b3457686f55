package diagnostics

import (
	"fmt"

	"github.com/funvibe/rangetyck/internal/token"
)

// DiagnosticError is a typing error tagged with a source span. Expected and
// Actual carry rendered types when the error compares two of them.
type DiagnosticError struct {
	Code     ErrorCode
	Span     token.Span
	Message  string
	Expected string
	Actual   string
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: error[%s]: %s", e.Span, e.Code, e.Message)
}

// NewError creates a diagnostic with a preformatted message.
func NewError(code ErrorCode, span token.Span, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Span: span, Message: msg}
}

// Incompatible reports that two types cannot be unified.
func Incompatible(span token.Span, expected, actual string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrT001,
		Span:     span,
		Message:  fmt.Sprintf("incompatible types: expected %s, found %s", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// NarrowRange reports that the range actual does not fit inside expected.
func NarrowRange(span token.Span, expected, actual [2]int64) *DiagnosticError {
	exp := fmt.Sprintf("%d upto %d", expected[0], expected[1])
	act := fmt.Sprintf("%d upto %d", actual[0], actual[1])
	return &DiagnosticError{
		Code:     ErrT002,
		Span:     span,
		Message:  fmt.Sprintf("range too narrow: %s does not contain %s", exp, act),
		Expected: exp,
		Actual:   act,
	}
}

// RecursiveInference reports an occurs-check failure.
func RecursiveInference(span token.Span, placeholder, ty string) *DiagnosticError {
	return &DiagnosticError{
		Code:     ErrT003,
		Span:     span,
		Message:  fmt.Sprintf("recursive inference: %s occurs in %s", placeholder, ty),
		Expected: placeholder,
		Actual:   ty,
	}
}

// Ambiguous reports an obligation that never became solvable.
func Ambiguous(span token.Span, what string) *DiagnosticError {
	msg := "ambiguous type"
	if what != "" {
		msg = fmt.Sprintf("ambiguous type: cannot solve %s", what)
	}
	return &DiagnosticError{Code: ErrT004, Span: span, Message: msg}
}

// NoSuchField reports a record that lacks the requested field.
func NoSuchField(span token.Span, record, field string) *DiagnosticError {
	return &DiagnosticError{
		Code:    ErrT005,
		Span:    span,
		Message: fmt.Sprintf("no field %q on %s", field, record),
		Actual:  record,
	}
}

// NotARecord reports field access on a type without fields.
func NotARecord(span token.Span, ty, field string) *DiagnosticError {
	return &DiagnosticError{
		Code:    ErrT006,
		Span:    span,
		Message: fmt.Sprintf("cannot access field %q: %s is not a record", field, ty),
		Actual:  ty,
	}
}

// NotNumeric reports a type used where a numeric type is required.
func NotNumeric(span token.Span, ty string) *DiagnosticError {
	return &DiagnosticError{
		Code:    ErrT007,
		Span:    span,
		Message: fmt.Sprintf("expected a numeric type, found %s", ty),
		Actual:  ty,
	}
}

// NotTextual reports a type used where a text type is required.
func NotTextual(span token.Span, ty string) *DiagnosticError {
	return &DiagnosticError{
		Code:    ErrT008,
		Span:    span,
		Message: fmt.Sprintf("expected a text type, found %s", ty),
		Actual:  ty,
	}
}
