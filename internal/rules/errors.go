package rules

import "errors"

// Sentinel errors for rule loading and validation.
var (
	// ErrMissingField indicates a required field (e.g. id, source) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrDuplicateID indicates two or more rules share the same ID.
	ErrDuplicateID = errors.New("duplicate rule ID")
	// ErrUnknownRole indicates a trigger names a role outside the 12 titles.
	ErrUnknownRole = errors.New("unknown role")
	// ErrUnknownKind indicates a trigger names a kind outside lu/quan/ke/ji.
	ErrUnknownKind = errors.New("unknown transformation kind")
	// ErrUnknownTriggerType indicates a trigger type other than fly, self, or exist.
	ErrUnknownTriggerType = errors.New("unknown trigger type")
	// ErrInvalidTrigger indicates a field combination the trigger type does not accept.
	ErrInvalidTrigger = errors.New("invalid trigger")
	// ErrInvalidSeverity indicates a severity other than high, medium, or low.
	ErrInvalidSeverity = errors.New("invalid severity")
	// ErrUnsupportedFormat indicates a rule file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported rule file format")
	// ErrInvalidRuleSet wraps the validation failures of a rule file.
	ErrInvalidRuleSet = errors.New("invalid rule set")
)

// ValidationCategory classifies a validation error for programmatic handling.
type ValidationCategory string

const (
	// ValCatMissingField indicates a required field is empty.
	ValCatMissingField ValidationCategory = "missing_field"
	// ValCatDuplicateID indicates two or more rules share the same ID.
	ValCatDuplicateID ValidationCategory = "duplicate_id"
	// ValCatUnknownRole indicates an unrecognized role key.
	ValCatUnknownRole ValidationCategory = "unknown_role"
	// ValCatUnknownKind indicates an unrecognized transformation kind.
	ValCatUnknownKind ValidationCategory = "unknown_kind"
	// ValCatUnknownType indicates an unrecognized trigger type.
	ValCatUnknownType ValidationCategory = "unknown_type"
	// ValCatInvalidTrigger indicates fields that do not belong together.
	ValCatInvalidTrigger ValidationCategory = "invalid_trigger"
	// ValCatInvalidSeverity indicates an unrecognized severity.
	ValCatInvalidSeverity ValidationCategory = "invalid_severity"
)

// ValidationError records a validation problem with source context.
type ValidationError struct {
	Category   ValidationCategory
	RuleID     string
	SourceFile string
	Field      string
	Err        error
}

// Error returns a human-readable string including source file and rule context.
func (e *ValidationError) Error() string {
	src := e.SourceFile
	if src == "" {
		src = "<rules>"
	}
	if e.RuleID != "" {
		return src + ": rule " + e.RuleID + ": " + e.Err.Error()
	}
	return src + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
