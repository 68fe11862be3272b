package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownVoice          = errors.New("unknown voice style")
	ErrSpeechSynthesisFailed = errors.New("speech synthesis failed")
)

type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceVerse   Voice = "verse"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"

	DefaultVoice = VoiceAlloy
)

var voices = map[Voice]struct{}{
	VoiceAlloy:   {},
	VoiceVerse:   {},
	VoiceFable:   {},
	VoiceOnyx:    {},
	VoiceNova:    {},
	VoiceShimmer: {},
}

// ParseVoice accepts the closed set of voices. Blank selects DefaultVoice.
func ParseVoice(s string) (Voice, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultVoice, nil
	}
	if _, ok := voices[Voice(s)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVoice, s)
	}
	return Voice(s), nil
}

type TTS interface {
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)
}

type Uploader interface {
	Put(ctx context.Context, data []byte, name, contentType string) (string, error)
}

type Synthesizer struct {
	tts       TTS
	store     Uploader
	modelName string
}

func New(tts TTS, store Uploader, modelName string) *Synthesizer {
	return &Synthesizer{tts: tts, store: store, modelName: modelName}
}

// Synthesize renders text as mp3, stores it and returns its URL.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice Voice) (string, map[string]any, error) {
	if voice == "" {
		voice = DefaultVoice
	}

	audio, err := s.tts.SynthesizeSpeech(ctx, text, string(voice))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrSpeechSynthesisFailed, err.Error())
	}
	if len(audio) == 0 {
		return "", nil, fmt.Errorf("%w: empty audio", ErrSpeechSynthesisFailed)
	}

	url, err := s.store.Put(ctx, audio, uuid.NewString()+".mp3", "audio/mpeg")
	if err != nil {
		return "", nil, fmt.Errorf("%w: upload: %s", ErrSpeechSynthesisFailed, err.Error())
	}

	return url, map[string]any{
		"voice_style": string(voice),
		"model":       s.modelName,
	}, nil
}
