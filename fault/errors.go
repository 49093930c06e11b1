package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Tier names a layer of the service stack.
type Tier string

// Tiers, innermost first.
const (
	TierFoundation    Tier = "foundation"
	TierProcessing    Tier = "processing"
	TierOrchestration Tier = "orchestration"
)

// Below returns the tier directly beneath t, or "" for the foundation tier.
func (t Tier) Below() Tier {
	switch t {
	case TierOrchestration:
		return TierProcessing
	case TierProcessing:
		return TierFoundation
	default:
		return ""
	}
}

// Kind classifies a failure within a tier.
type Kind int

const (
	// KindValidation is caller input rejected by the tier's own guards.
	KindValidation Kind = iota
	// KindDependencyValidation is a validation failure raised by the tier beneath.
	KindDependencyValidation
	// KindDependency is a transport, environment, or lower-tier failure.
	KindDependency
	// KindService is an unanticipated failure.
	KindService
)

// String returns the kind name used in logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDependencyValidation:
		return "dependency_validation"
	case KindDependency:
		return "dependency"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Data maps a parameter name to human-readable violations.
type Data map[string][]string

// Add appends messages to key.
func (d Data) Add(key string, messages ...string) {
	d[key] = append(d[key], messages...)
}

// Clone returns a deep copy. A nil Data clones to an empty one.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the parameter names, sorted.
func (d Data) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders a one-line summary: "Key => a, b;  Other => c;  ".
func (d Data) String() string {
	var b strings.Builder
	for _, k := range d.Keys() {
		fmt.Fprintf(&b, "%s => %s;  ", k, strings.Join(d[k], ", "))
	}
	return b.String()
}

// violator is implemented by errors that carry violation data.
type violator interface {
	Violations() Data
}

// Error is a tier-scoped classified failure.
type Error struct {
	Tier Tier
	Kind Kind
	// Data holds parameter violations, copied from the wrapped cause when it carries any.
	Data Data
	// Err is the wrapped cause. Never nil for errors built by a Translator.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("mesh %s %s error", e.Tier, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Violations returns the parameter violations.
func (e *Error) Violations() Data {
	return e.Data
}

// InvalidError accumulates the violations found by one guard pass.
type InvalidError struct {
	Reason string
	Data   Data
}

func (e *InvalidError) Error() string {
	if len(e.Data) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + strings.TrimSpace(e.Data.String())
}

// Violations returns the parameter violations.
func (e *InvalidError) Violations() Data {
	return e.Data
}

// FailedServiceError marks an unanticipated failure caught at a tier boundary.
type FailedServiceError struct {
	Tier Tier
	Err  error
}

func (e *FailedServiceError) Error() string {
	return fmt.Sprintf("failed %s service: %v", e.Tier, e.Err)
}

// Unwrap returns the raw cause.
func (e *FailedServiceError) Unwrap() error {
	return e.Err
}

// KindOf returns the tier and kind of the outermost *Error in err's chain.
func KindOf(err error) (Tier, Kind, bool) {
	var fe *Error
	if !errors.As(err, &fe) {
		return "", 0, false
	}
	return fe.Tier, fe.Kind, true
}

// Is reports whether the outermost *Error in err's chain has the given tier and kind.
func Is(err error, tier Tier, kind Kind) bool {
	t, k, ok := KindOf(err)
	return ok && t == tier && k == kind
}

// ViolationsOf returns the violation data carried by the outermost error
// that has any, or nil.
func ViolationsOf(err error) Data {
	var v violator
	if errors.As(err, &v) {
		return v.Violations()
	}
	return nil
}

// Depth counts the *Error layers in err's chain.
func Depth(err error) int {
	n := 0
	for err != nil {
		if _, ok := err.(*Error); ok {
			n++
		}
		err = errors.Unwrap(err)
	}
	return n
}
