package types

// TurnFile is the raw upload carried by a turn.
type TurnFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type TurnRequest struct {
	UserID      string
	SessionID   string
	Prompt      string
	File        *TurnFile
	AudioOutput bool
	VoiceStyle  string
}

type TurnResult struct {
	AssistantMessage string `json:"assistant_message"`
	SessionID        string `json:"session_id"`
	MessageID        string `json:"message_id"`
	UploadedFileURL  string `json:"uploaded_file_url,omitempty"`
	AudioOutputURL   string `json:"audio_output_url,omitempty"`
}
