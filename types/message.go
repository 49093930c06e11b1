package types

// Message is a mailbox message as seen by the client.
//
// MessageID is assigned by the mailbox on the first send and is empty for a
// message that has not been sent yet. FileContent stays nil until the caller
// supplies it (send path) or the whole body has been assembled (receive path).
type Message struct {
	MessageID     string        `json:"message_id" msgpack:"message_id"`
	Headers       Headers       `json:"-" msgpack:"-"`
	FileContent   []byte        `json:"-" msgpack:"file_content"`
	StringContent string        `json:"string_content,omitempty" msgpack:"string_content,omitempty"`
	TrackingInfo  *TrackingInfo `json:"tracking_info,omitempty" msgpack:"tracking_info,omitempty"`
}

// Payload returns the bytes to transmit: FileContent when set, otherwise
// StringContent.
func (m *Message) Payload() []byte {
	if m.FileContent != nil {
		return m.FileContent
	}
	if m.StringContent != "" {
		return []byte(m.StringContent)
	}
	return nil
}

// Header returns the first value of the named header.
func (m *Message) Header(key string) string {
	return m.Headers.Get(key)
}
