package types

// TrackingInfo is the mailbox-reported delivery state of a sent message.
// It is created fresh for every track call and owned by the returned Message.
type TrackingInfo struct {
	AddressType          string `json:"address_type" msgpack:"address_type"`
	Checksum             string `json:"checksum" msgpack:"checksum"`
	ChunkCount           int    `json:"chunk_count" msgpack:"chunk_count"`
	CompressFlag         string `json:"compress_flag" msgpack:"compress_flag"`
	DownloadTimestamp    string `json:"download_timestamp" msgpack:"download_timestamp"`
	DtsID                string `json:"dts_id" msgpack:"dts_id"`
	EncryptedFlag        string `json:"encrypted_flag" msgpack:"encrypted_flag"`
	ExpiryTime           string `json:"expiry_time" msgpack:"expiry_time"`
	FileName             string `json:"file_name" msgpack:"file_name"`
	FileSize             int64  `json:"file_size" msgpack:"file_size"`
	IsCompressed         string `json:"is_compressed" msgpack:"is_compressed"`
	LocalID              string `json:"local_id" msgpack:"local_id"`
	MeshRecipientOdsCode string `json:"mesh_recipient_ods_code" msgpack:"mesh_recipient_ods_code"`
	MessageID            string `json:"message_id" msgpack:"message_id"`
	MessageType          string `json:"message_type" msgpack:"message_type"`
	PartnerID            string `json:"partner_id" msgpack:"partner_id"`
	Recipient            string `json:"recipient" msgpack:"recipient"`
	RecipientName        string `json:"recipient_name" msgpack:"recipient_name"`
	RecipientOrgCode     string `json:"recipient_org_code" msgpack:"recipient_org_code"`
	RecipientSmtp        string `json:"recipient_smtp" msgpack:"recipient_smtp"`
	Sender               string `json:"sender" msgpack:"sender"`
	SenderName           string `json:"sender_name" msgpack:"sender_name"`
	SenderOdsCode        string `json:"sender_ods_code" msgpack:"sender_ods_code"`
	SenderOrgCode        string `json:"sender_org_code" msgpack:"sender_org_code"`
	SenderSmtp           string `json:"sender_smtp" msgpack:"sender_smtp"`
	Status               string `json:"status" msgpack:"status"`
	StatusSuccess        bool   `json:"status_success" msgpack:"status_success"`
	UploadTimestamp      string `json:"upload_timestamp" msgpack:"upload_timestamp"`
	Version              string `json:"version" msgpack:"version"`
	WorkflowID           string `json:"workflow_id" msgpack:"workflow_id"`
}
