// Package fault defines the layered error taxonomy shared by the mesh
// service tiers.
//
// Calls flow orchestration → processing → foundation → broker and errors
// flow back up. Each tier reports exactly one of four kinds:
//
//   - Validation: the tier's own guards rejected the caller's input.
//   - DependencyValidation: the tier beneath reported a validation failure.
//   - Dependency: the tier beneath (or the transport) failed.
//   - Service: anything unanticipated, wrapped in a FailedServiceError first.
//
// A tier adds at most one *Error per crossing, so the chain depth equals the
// number of tiers traversed plus the originating cause. Use errors.As with
// *Error to read the outermost classification, and errors.Is to reach the
// original cause (for example context.Canceled).
package fault
