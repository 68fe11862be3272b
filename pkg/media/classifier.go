// Package media decides how an incoming turn is processed from the uploaded
// file's content type.
package media

import (
	"errors"
	"mime"
	"strings"

	"github.com/1abhi6/BharatLens/pkg/types"
)

var (
	ErrEmptyTurn            = errors.New("empty turn: prompt or file required")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

type Kind int

const (
	TextOnly Kind = iota
	Image
	Audio
	Document
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Audio:
		return "audio"
	case Document:
		return "document"
	default:
		return "text"
	}
}

// MediaType maps the kind to the attachment media type. TextOnly has none.
func (k Kind) MediaType() types.MediaType {
	switch k {
	case Image:
		return types.MEDIA_TYPE_IMAGE
	case Audio:
		return types.MEDIA_TYPE_AUDIO
	case Document:
		return types.MEDIA_TYPE_DOCUMENT
	default:
		return ""
	}
}

// DefaultPrompt is stored as the user message when a file arrives without text.
func (k Kind) DefaultPrompt() string {
	switch k {
	case Image:
		return "Uploaded a image"
	case Audio:
		return "Uploaded a audio"
	case Document:
		return "Uploaded a document"
	default:
		return ""
	}
}

// SessionTitle names a session created by a file upload.
func (k Kind) SessionTitle() string {
	switch k {
	case Image:
		return "Image Session"
	case Audio:
		return "Audio Session"
	case Document:
		return "Document Session"
	default:
		return ""
	}
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var kinds = map[string]Kind{
	"image/jpeg": Image,
	"image/png":  Image,
	"image/webp": Image,

	"audio/mpeg":  Audio,
	"audio/wav":   Audio,
	"audio/mp3":   Audio,
	"audio/webm":  Audio,
	"audio/x-wav": Audio,
	"audio/ogg":   Audio,

	ContentTypePDF:  Document,
	ContentTypeDOCX: Document,
	"document/pdf":  Document,
	"document/docx": Document,
}

// Normalize lower-cases a content type and drops its parameters.
func Normalize(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func Classify(contentType string, hasFile bool, prompt string) (Kind, error) {
	if !hasFile {
		if strings.TrimSpace(prompt) == "" {
			return TextOnly, ErrEmptyTurn
		}
		return TextOnly, nil
	}

	kind, ok := kinds[Normalize(contentType)]
	if !ok {
		return TextOnly, ErrUnsupportedMediaType
	}
	return kind, nil
}

// FormatHint returns the transcription container hint for an audio content type.
func FormatHint(contentType string) string {
	switch Normalize(contentType) {
	case "audio/wav", "audio/x-wav":
		return "wav"
	case "audio/webm":
		return "webm"
	case "audio/ogg":
		return "ogg"
	default:
		return "mp3"
	}
}
