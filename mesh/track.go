package mesh

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pithecene-io/mesh/types"
)

// trackResponse is the outbox tracking body.
type trackResponse struct {
	AddressType          string `json:"addressType"`
	Checksum             string `json:"checksum"`
	ChunkCount           int    `json:"chunkCount"`
	CompressFlag         string `json:"compressFlag"`
	DownloadTimestamp    string `json:"downloadTimestamp"`
	DtsID                string `json:"dtsId"`
	EncryptedFlag        string `json:"encryptedFlag"`
	ExpiryTime           string `json:"expiryTime"`
	FileName             string `json:"fileName"`
	FileSize             int64  `json:"fileSize"`
	IsCompressed         string `json:"isCompressed"`
	LocalID              string `json:"localId"`
	MeshRecipientOdsCode string `json:"meshRecipientOdsCode"`
	MessageID            string `json:"messageId"`
	MessageType          string `json:"messageType"`
	PartnerID            string `json:"partnerId"`
	Recipient            string `json:"recipient"`
	RecipientName        string `json:"recipientName"`
	RecipientOrgCode     string `json:"recipientOrgCode"`
	RecipientSmtp        string `json:"recipientSmtp"`
	Sender               string `json:"sender"`
	SenderName           string `json:"senderName"`
	SenderOdsCode        string `json:"senderOdsCode"`
	SenderOrgCode        string `json:"senderOrgCode"`
	SenderSmtp           string `json:"senderSmtp"`
	Status               string `json:"status"`
	StatusSuccess        bool   `json:"statusSuccess"`
	UploadTimestamp      string `json:"uploadTimestamp"`
	Version              string `json:"version"`
	WorkflowID           string `json:"workflowId"`
}

func (r trackResponse) trackingInfo() *types.TrackingInfo {
	return &types.TrackingInfo{
		AddressType:          r.AddressType,
		Checksum:             r.Checksum,
		ChunkCount:           r.ChunkCount,
		CompressFlag:         r.CompressFlag,
		DownloadTimestamp:    r.DownloadTimestamp,
		DtsID:                r.DtsID,
		EncryptedFlag:        r.EncryptedFlag,
		ExpiryTime:           r.ExpiryTime,
		FileName:             r.FileName,
		FileSize:             r.FileSize,
		IsCompressed:         r.IsCompressed,
		LocalID:              r.LocalID,
		MeshRecipientOdsCode: r.MeshRecipientOdsCode,
		MessageID:            r.MessageID,
		MessageType:          r.MessageType,
		PartnerID:            r.PartnerID,
		Recipient:            r.Recipient,
		RecipientName:        r.RecipientName,
		RecipientOrgCode:     r.RecipientOrgCode,
		RecipientSmtp:        r.RecipientSmtp,
		Sender:               r.Sender,
		SenderName:           r.SenderName,
		SenderOdsCode:        r.SenderOdsCode,
		SenderOrgCode:        r.SenderOrgCode,
		SenderSmtp:           r.SenderSmtp,
		Status:               r.Status,
		StatusSuccess:        r.StatusSuccess,
		UploadTimestamp:      r.UploadTimestamp,
		Version:              r.Version,
		WorkflowID:           r.WorkflowID,
	}
}

// TrackMessage fetches the tracking record of a sent message.
func (s *Service) TrackMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	out, err := s.trackMessage(ctx, messageID, token)
	if err != nil {
		return nil, s.classify(err)
	}
	return out, nil
}

func (s *Service) trackMessage(ctx context.Context, messageID, token string) (*types.Message, error) {
	if err := validateIDAndToken(messageID, token); err != nil {
		return nil, err
	}

	resp, err := s.broker.TrackMessage(ctx, messageID, token)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess("track_message", resp); err != nil {
		return nil, err
	}

	var body trackResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decode tracking response: %w", err)
	}

	return &types.Message{
		MessageID:    messageID,
		Headers:      resp.Header.Clone(),
		TrackingInfo: body.trackingInfo(),
	}, nil
}
