package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pithecene-io/mesh/chunk"
	"github.com/pithecene-io/mesh/types"
)

// listResponse is the body returned by the inbox listing.
type listResponse struct {
	Messages []string `json:"messages"`
}

// RetrieveMessage downloads messageID, reassembling it when the mailbox
// reports a partial response.
//
// A 200 response is complete. A 206 response carries Mex-Chunk-Range
// "{1:total}" and chunks 2..total are fetched in order and appended. The
// range is parsed strictly here: a malformed value fails the retrieval.
// Cancellation is checked before every continuation request, and no
// partial Message is ever returned.
func (s *Service) RetrieveMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	out, err := s.retrieveMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.classify(err)
	}
	return out, nil
}

func (s *Service) retrieveMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	if err := validateIDAndToken(messageID, token); err != nil {
		return nil, err
	}

	first, err := s.broker.GetMessage(ctx, messageID, token)
	if err != nil {
		return nil, err
	}
	if err := checkReceived("get_message", first); err != nil {
		return nil, err
	}

	content := append([]byte{}, first.Body...)
	headers := first.Header.Clone()

	if first.StatusCode == http.StatusPartialContent {
		r, err := chunk.Parse(headers.Get(types.HeaderChunkRange))
		if err != nil {
			return nil, err
		}

		for n := 2; n <= r.Total; n++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("retrieve chunk %d of %d: %w", n, r.Total, err)
			}

			resp, err := s.broker.GetChunk(ctx, messageID, n, token)
			if err != nil {
				return nil, err
			}
			if err := checkSuccess("get_chunk", resp); err != nil {
				return nil, err
			}
			content = append(content, resp.Body...)
		}
	}

	return &types.Message{
		MessageID:   messageID,
		Headers:     headers,
		FileContent: content,
	}, nil
}

// RetrieveMessages lists the ids of messages waiting in the inbox.
func (s *Service) RetrieveMessages(ctx context.Context, token string) ([]string, error) {
	ids, err := s.retrieveMessages(ctx, token)
	if err != nil {
		return nil, s.classify(err)
	}
	return ids, nil
}

func (s *Service) retrieveMessages(ctx context.Context, token string) ([]string, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}

	resp, err := s.broker.ListMessages(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess("list_messages", resp); err != nil {
		return nil, err
	}

	var body listResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decode inbox response: %w", err)
	}
	if body.Messages == nil {
		return []string{}, nil
	}
	return body.Messages, nil
}
