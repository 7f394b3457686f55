package typesystem

import "fmt"

// MalformedRangeError is returned when a range is built with lo > hi.
type MalformedRangeError struct {
	Lo, Hi int64
}

func (e *MalformedRangeError) Error() string {
	return fmt.Sprintf("malformed range: %d upto %d (lower bound exceeds upper bound)", e.Lo, e.Hi)
}

// DoubleCommitError is the panic value raised when a placeholder that
// already has a binding is committed again. It signals a solver bug.
type DoubleCommitError struct {
	Var       UniVar
	Existing  Type
	Attempted Type
}

func (e *DoubleCommitError) Error() string {
	return fmt.Sprintf("placeholder %s committed twice: already %s, attempted %s", e.Var, e.Existing, e.Attempted)
}

// BindingConflictError is the panic value raised in debug mode when two
// instantiation contexts bind the same name to different types.
type BindingConflictError struct {
	Ref          Ref
	Outer, Inner Type
}

func (e *BindingConflictError) Error() string {
	return fmt.Sprintf("conflicting bindings for %s: %s vs %s", e.Ref, e.Outer, e.Inner)
}
