package mesh

import (
	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

// Parameter names used in violation data.
const (
	ParamMessage   = "Message"
	ParamMessageID = "MessageId"
	ParamToken     = "Token"
)

// requiredSendHeaders must carry a non-blank first value on every send.
var requiredSendHeaders = []string{
	types.HeaderFrom,
	types.HeaderTo,
	types.HeaderWorkflowID,
}

func validateSend(msg *types.Message, token string) error {
	if msg == nil {
		return &fault.InvalidError{
			Reason: fault.ReasonNullMessage,
			Data:   fault.Data{ParamMessage: {fault.MessageRequired}},
		}
	}

	v := fault.NewValidator(fault.ReasonInvalidArgs).RequireText(ParamToken, token)
	for _, h := range requiredSendHeaders {
		v.Check(fault.IsBlank(msg.Header(h)), h, fault.HeaderRequired)
	}
	return v.Err()
}

// validateContinuation runs the extra guards of a chunk after the first in
// one pass. A bad range alone reports the invalid-range reason.
func validateContinuation(msg *types.Message, r chunk.Range) error {
	reason := fault.ReasonInvalidArgs
	if !fault.IsBlank(msg.MessageID) {
		reason = fault.ReasonInvalidRange
	}
	return fault.NewValidator(reason).
		RequireText(ParamMessageID, msg.MessageID).
		Check(!r.Valid(), types.HeaderChunkRange, fault.InvalidChunkRange).
		Err()
}

func validateIDAndToken(messageID, token string) error {
	return fault.NewValidator(fault.ReasonInvalidArgs).
		RequireText(ParamMessageID, messageID).
		RequireText(ParamToken, token).
		Err()
}

func validateToken(token string) error {
	return fault.NewValidator(fault.ReasonInvalidArgs).
		RequireText(ParamToken, token).
		Err()
}
