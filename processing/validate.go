package processing

import (
	"github.com/pithecene-io/mesh/fault"
	"github.com/pithecene-io/mesh/types"
)

// Parameter names used in violation data.
const (
	ParamMessage   = "Message"
	ParamMessageID = "MessageId"
	ParamToken     = "Token"
	ParamContent   = "Content"
)

func validateSend(msg *types.Message, token string) error {
	if msg == nil {
		return &fault.InvalidError{
			Reason: fault.ReasonNullMessage,
			Data:   fault.Data{ParamMessage: {fault.MessageRequired}},
		}
	}

	return fault.NewValidator(fault.ReasonInvalidArgs).
		RequireText(ParamToken, token).
		Check(msg.Payload() == nil, ParamContent, fault.ContentRequired).
		Check(fault.IsBlank(msg.Header(types.HeaderTo)), types.HeaderTo, fault.HeaderRequired).
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
