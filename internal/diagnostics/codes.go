package diagnostics

// ErrorCode identifies a class of diagnostic.
type ErrorCode string

// Type checker errors (T prefix)
const (
	ErrT001 ErrorCode = "T001" // incompatible types
	ErrT002 ErrorCode = "T002" // range too narrow
	ErrT003 ErrorCode = "T003" // recursive inference
	ErrT004 ErrorCode = "T004" // ambiguous
	ErrT005 ErrorCode = "T005" // no such field
	ErrT006 ErrorCode = "T006" // not a record
	ErrT007 ErrorCode = "T007" // not numeric
	ErrT008 ErrorCode = "T008" // not textual
)

// Input errors
const (
	ErrP001 ErrorCode = "P001" // malformed problem file
	ErrC001 ErrorCode = "C001" // malformed settings file
)

var codeTitles = map[ErrorCode]string{
	ErrT001: "incompatible types",
	ErrT002: "range too narrow",
	ErrT003: "recursive inference",
	ErrT004: "ambiguous",
	ErrT005: "no such field",
	ErrT006: "not a record",
	ErrT007: "not numeric",
	ErrT008: "not textual",
	ErrP001: "invalid problem",
	ErrC001: "invalid settings",
}

// Title returns the short human name of the code.
func (c ErrorCode) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}
	return "error"
}
