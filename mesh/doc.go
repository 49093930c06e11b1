// Package mesh is the foundation tier of the mailbox client.
//
// It owns the direct broker calls: chunked sends that follow the caller's
// Mex-Chunk-Range header, retrieval that reassembles multi-part messages,
// tracking, and inbox listing. Every error leaving a Service is a
// *fault.Error of tier foundation:
//
//   - guard failures are Validation
//   - transport failures, unacceptable statuses, malformed chunk ranges on a
//     partial response, and context cancellation are Dependency
//   - anything else is Service, wrapped in a *fault.FailedServiceError
//
// The underlying cause stays reachable with errors.Is and errors.As.
package mesh
