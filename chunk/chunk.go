// Package chunk parses Mex-Chunk-Range values and splits outbound payloads.
//
// A chunk range is written "{current:total}" with 1-based integers. The send
// path parses it leniently (a missing or malformed chunk number means a
// single-part send) while the receive path parses it strictly: a malformed
// range on a partial response is an error, never a silent default.
package chunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

// DefaultMaxSize is the largest payload sent in a single chunk (100 MiB).
const DefaultMaxSize = 100 * 1024 * 1024

// Range is a parsed chunk range. Total 0 means the total was not a valid
// positive integer.
type Range struct {
	Current int
	Total   int
}

// Single is the range of a message sent in one part.
var Single = Range{Current: 1, Total: 1}

// String renders the wire form, e.g. "{2:5}".
func (r Range) String() string {
	return fmt.Sprintf("{%d:%d}", r.Current, r.Total)
}

// IsContinuation reports whether r names a chunk after the first.
func (r Range) IsContinuation() bool {
	return r.Current > 1
}

// Valid reports whether both parts are positive and Current does not exceed Total.
func (r Range) Valid() bool {
	return r.Current >= 1 && r.Total >= 1 && r.Current <= r.Total
}

// RangeError reports a chunk range that could not be parsed strictly.
type RangeError struct {
	Value  string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid chunk range %q: %s", e.Value, e.Reason)
}

// Violations reports the failure against the chunk range header.
func (e *RangeError) Violations() fault.Data {
	return fault.Data{types.HeaderChunkRange: {fault.InvalidChunkRange, e.Reason}}
}

// trim strips braces and surrounding whitespace.
func trim(value string) string {
	value = strings.ReplaceAll(value, "{", "")
	value = strings.ReplaceAll(value, "}", "")
	return strings.TrimSpace(value)
}

func positive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Parse strictly parses "{current:total}". Both parts must be positive
// integers and current must not exceed total.
func Parse(value string) (Range, error) {
	body := trim(value)
	if body == "" {
		return Range{}, &RangeError{Value: value, Reason: "header is missing"}
	}

	parts := strings.Split(body, ":")
	if len(parts) != 2 {
		return Range{}, &RangeError{Value: value, Reason: "expected current:total"}
	}

	current, ok := positive(parts[0])
	if !ok {
		return Range{}, &RangeError{Value: value, Reason: "chunk number is not a positive integer"}
	}
	total, ok := positive(parts[1])
	if !ok {
		return Range{}, &RangeError{Value: value, Reason: "chunk total is not a positive integer"}
	}
	if current > total {
		return Range{}, &RangeError{Value: value, Reason: "chunk number exceeds total"}
	}

	return Range{Current: current, Total: total}, nil
}

// ParseLenient parses a chunk range on the send path.
//
// The chunk number is the part before ':'. When the header is absent, blank,
// or the chunk number is not a positive integer the result is Single. For a
// chunk number above 1 the total is parsed separately and left at 0 when it
// is not a positive integer, so the continuation guard can reject it.
func ParseLenient(value string) Range {
	body := trim(value)
	if body == "" {
		return Single
	}

	parts := strings.SplitN(body, ":", 2)
	current, ok := positive(parts[0])
	if !ok || current <= 1 {
		if r, err := Parse(value); err == nil && r.Current == 1 {
			return r
		}
		return Single
	}

	r := Range{Current: current}
	if len(parts) == 2 {
		if total, ok := positive(parts[1]); ok {
			r.Total = total
		}
	}
	return r
}

// Split cuts payload into consecutive pieces of at most maxSize bytes.
// It always returns at least one piece; an empty payload yields one empty
// piece. A maxSize below 1 disables splitting.
func Split(payload []byte, maxSize int) [][]byte {
	if maxSize < 1 || len(payload) <= maxSize {
		return [][]byte{payload}
	}

	count := (len(payload) + maxSize - 1) / maxSize
	pieces := make([][]byte, 0, count)
	for start := 0; start < len(payload); start += maxSize {
		end := min(start+maxSize, len(payload))
		pieces = append(pieces, payload[start:end:end])
	}
	return pieces
}
