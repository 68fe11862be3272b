package types

type MessageRole string

const (
	ROLE_SYSTEM    MessageRole = "system"
	ROLE_USER      MessageRole = "user"
	ROLE_ASSISTANT MessageRole = "assistant"
)

func (r MessageRole) String() string {
	return string(r)
}

// ChatMessage rows are append only, ordered by (created_at, seq).
type ChatMessage struct {
	ID        string      `json:"id" db:"id"`
	SessionID string      `json:"session_id" db:"session_id"`
	Role      MessageRole `json:"role" db:"role"`
	Content   string      `json:"content" db:"content"`
	Metadata  Metadata    `json:"metadata" db:"metadata"`
	Seq       int64       `json:"-" db:"seq"`
	CreatedAt int64       `json:"created_at" db:"created_at"`
}

type ChatMessageWithAttachments struct {
	ChatMessage
	Attachments []*Attachment `json:"attachments"`
}

const (
	META_MODEL     = "model"
	META_DEGRADED  = "degraded"
	META_ABANDONED = "abandoned"
)
