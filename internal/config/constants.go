package config

const Version = "0.3.0"

const SettingsFileName = "rangetyck.yaml"

// SettingsFileNames are all recognized settings file names, in lookup order.
var SettingsFileNames = []string{"rangetyck.yaml", "rangetyck.yml"}

// DefaultCountsDB is where placeholder counts are persisted between runs,
// relative to the directory holding the problem file.
const DefaultCountsDB = ".rangetyck/counts.db"

// IsTestMode indicates if the program is running under go test.
// Diagnostics drop colour and session ids in this mode.
var IsTestMode = false

// IsDebugMode enables internal consistency assertions (conflicting
// instantiation bindings panic instead of being resolved by order).
// Set once at startup from --debug or the settings file.
var IsDebugMode = false

// Designated nominal types
const (
	UnitTypeName = "unit"
	TextTypeName = "text"
)

// Colour modes for emitted diagnostics
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Constraint kinds as spelled in problem files
const (
	KindAssignable   = "assignable"
	KindEqual        = "equal"
	KindField        = "field"
	KindInstantiated = "instantiated"
	KindUnit         = "unit"
	KindNumeric      = "numeric"
	KindTextual      = "textual"
	KindTypeNumeric  = "type-numeric"
)

// ConstraintKinds lists every kind accepted in problem files.
var ConstraintKinds = []string{
	KindAssignable,
	KindEqual,
	KindField,
	KindInstantiated,
	KindUnit,
	KindNumeric,
	KindTextual,
	KindTypeNumeric,
}
