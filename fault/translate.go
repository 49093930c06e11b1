package fault

import "errors"

// Translator builds and classifies errors for one tier.
type Translator struct {
	tier Tier
}

// For returns the Translator for tier.
func For(tier Tier) Translator {
	return Translator{tier: tier}
}

// Tier returns the tier this Translator builds errors for.
func (t Translator) Tier() Tier {
	return t.tier
}

// Validation wraps a failure detected by this tier's own guards.
func (t Translator) Validation(err error) *Error {
	return t.build(KindValidation, err)
}

// DependencyValidation wraps a validation failure raised by the tier beneath.
func (t Translator) DependencyValidation(err error) *Error {
	return t.build(KindDependencyValidation, err)
}

// Dependency wraps a transport or lower-tier failure.
func (t Translator) Dependency(err error) *Error {
	return t.build(KindDependency, err)
}

// Service wraps err in a FailedServiceError, then in this tier's Service kind.
func (t Translator) Service(err error) *Error {
	return t.build(KindService, &FailedServiceError{Tier: t.tier, Err: err})
}

func (t Translator) build(kind Kind, err error) *Error {
	data := Data{}
	var v violator
	if err != nil && errors.As(err, &v) {
		data = v.Violations().Clone()
	}
	return &Error{Tier: t.tier, Kind: kind, Data: data, Err: err}
}

// Translate classifies err as surfaced to this tier.
//
// Errors raised by this tier's guards (*InvalidError not wrapped in a lower
// tier's *Error) become Validation. Errors from the tier directly beneath are
// re-wrapped once: its Validation and DependencyValidation become
// DependencyValidation, its Dependency and Service become Dependency.
// Everything else becomes Service. Translate returns nil for a nil err.
//
// The foundation tier has no tier beneath it and classifies transport
// failures itself before calling Translate for the remainder.
func (t Translator) Translate(err error) error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		if fe.Tier == t.tier {
			// Already classified by this tier.
			return fe
		}
		if fe.Tier == t.tier.Below() {
			switch fe.Kind {
			case KindValidation, KindDependencyValidation:
				return t.DependencyValidation(fe)
			case KindDependency, KindService:
				return t.Dependency(fe)
			}
		}
		return t.Service(err)
	}

	var ie *InvalidError
	if errors.As(err, &ie) {
		return t.Validation(ie)
	}

	return t.Service(err)
}
