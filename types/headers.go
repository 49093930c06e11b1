package types

// Header names used on the mailbox wire.
const (
	HeaderFrom            = "Mex-From"
	HeaderTo              = "Mex-To"
	HeaderWorkflowID      = "Mex-WorkflowID"
	HeaderChunkRange      = "Mex-Chunk-Range"
	HeaderSubject         = "Mex-Subject"
	HeaderLocalID         = "Mex-LocalID"
	HeaderFileName        = "Mex-FileName"
	HeaderContentChecksum = "Mex-Content-Checksum"
	HeaderContentType     = "Content-Type"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAccept          = "Accept"
	HeaderClientVersion   = "Mex-ClientVersion"
	HeaderOSName          = "Mex-OSName"
	HeaderOSArchitecture  = "Mex-OSArchitecture"
	HeaderAuthorization   = "Authorization"
)

// DeclaredHeaders lists the header names above in their wire spelling.
var DeclaredHeaders = []string{
	HeaderFrom, HeaderTo, HeaderWorkflowID, HeaderChunkRange, HeaderSubject,
	HeaderLocalID, HeaderFileName, HeaderContentChecksum, HeaderContentType,
	HeaderContentEncoding, HeaderAccept, HeaderClientVersion, HeaderOSName,
	HeaderOSArchitecture, HeaderAuthorization,
}

// Headers is an ordered multimap of header name to values.
//
// Keys are case-sensitive and keep first-insertion order. Values for a key
// keep arrival order. The zero value is ready to use.
type Headers struct {
	keys   []string
	values map[string][]string
}

// NewHeaders builds Headers from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewHeaders(pairs ...string) Headers {
	var h Headers
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

// Add appends values to key. The key is registered even when no values are given.
func (h *Headers) Add(key string, values ...string) {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
	existing, ok := h.values[key]
	if !ok {
		h.keys = append(h.keys, key)
		existing = make([]string, 0, len(values))
	}
	h.values[key] = append(existing, values...)
}

// Set replaces the values of key, keeping its original position.
func (h *Headers) Set(key string, values ...string) {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = append([]string(nil), values...)
}

// Get returns the first value for key, or "" when the key is absent or empty.
func (h Headers) Get(key string) string {
	vs := h.values[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns a copy of all values for key in arrival order.
func (h Headers) Values(key string) []string {
	vs, ok := h.values[key]
	if !ok {
		return nil
	}
	return append([]string{}, vs...)
}

// Has reports whether key was added, regardless of its values.
func (h Headers) Has(key string) bool {
	_, ok := h.values[key]
	return ok
}

// Del removes key and its values.
func (h *Headers) Del(key string) {
	if _, ok := h.values[key]; !ok {
		return
	}
	delete(h.values, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i:i], h.keys[i+1:]...)
			break
		}
	}
}

// Keys returns header names in first-insertion order.
func (h Headers) Keys() []string {
	return append([]string(nil), h.keys...)
}

// Len returns the number of distinct keys.
func (h Headers) Len() int {
	return len(h.keys)
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	var out Headers
	for _, k := range h.keys {
		out.Add(k, h.values[k]...)
	}
	return out
}

// Merge appends every key and value of other onto h, in other's order.
func (h *Headers) Merge(other Headers) {
	for _, k := range other.keys {
		h.Add(k, other.values[k]...)
	}
}

// Map returns a plain map copy, for serialization.
func (h Headers) Map() map[string][]string {
	out := make(map[string][]string, len(h.keys))
	for _, k := range h.keys {
		out[k] = append([]string{}, h.values[k]...)
	}
	return out
}
