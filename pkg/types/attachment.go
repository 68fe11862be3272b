package types

type MediaType string

const (
	MEDIA_TYPE_IMAGE    MediaType = "image"
	MEDIA_TYPE_AUDIO    MediaType = "audio"
	MEDIA_TYPE_DOCUMENT MediaType = "document"
)

type Attachment struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	MessageID string    `json:"message_id" db:"message_id"`
	URL       string    `json:"url" db:"url"`
	MediaType MediaType `json:"media_type" db:"media_type"`
	Metadata  Metadata  `json:"metadata" db:"metadata"`
	AudioURL  string    `json:"audio_url,omitempty" db:"audio_url"`
	CreatedAt int64     `json:"created_at" db:"created_at"`
}

const (
	EXTRACTION_STATUS_OK      = "ok"
	EXTRACTION_STATUS_FAILED  = "failed"
	EXTRACTION_STATUS_TIMEOUT = "timeout"
)
