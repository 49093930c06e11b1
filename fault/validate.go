package fault

import "strings"

// Violation messages shared by the guards.
const (
	TextRequired       = "Text is required"
	MessageRequired    = "Message is required"
	HeaderRequired     = "Header value is required"
	ContentRequired    = "Content is required"
	InvalidChunkRange  = "Invalid chunk range"
	ReasonInvalidArgs  = "invalid arguments"
	ReasonNullMessage  = "message is null"
	ReasonInvalidRange = "invalid chunk range"
)

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validator collects violations for one guard pass and raises them together.
type Validator struct {
	reason string
	data   Data
}

// NewValidator starts a guard pass. reason becomes InvalidError.Reason.
func NewValidator(reason string) *Validator {
	return &Validator{reason: reason, data: Data{}}
}

// Check records message under param when failed is true.
func (v *Validator) Check(failed bool, param, message string) *Validator {
	if failed {
		v.data.Add(param, message)
	}
	return v
}

// RequireText records TextRequired under param when value is blank.
func (v *Validator) RequireText(param, value string) *Validator {
	return v.Check(IsBlank(value), param, TextRequired)
}

// Err returns an *InvalidError holding every recorded violation, or nil.
func (v *Validator) Err() error {
	if len(v.data) == 0 {
		return nil
	}
	return &InvalidError{Reason: v.reason, Data: v.data}
}
