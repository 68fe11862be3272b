package srv

import (
	"context"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/ai/speech"
)

// ArtifactStore keeps uploaded and generated files and hands back public URLs.
type ArtifactStore interface {
	Put(ctx context.Context, data []byte, name, contentType string) (string, error)
	Get(ctx context.Context, url string) ([]byte, error)
}

type VisionDescriber interface {
	Describe(ctx context.Context, imageURL string) (ai.Extraction, error)
}

type AudioTranscriber interface {
	Transcribe(ctx context.Context, jobName, sourceURL, formatHint string) (ai.Extraction, error)
}

type DocumentExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) (ai.Extraction, error)
}

type TextRecognizer interface {
	Recognize(ctx context.Context, data []byte) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice speech.Voice) (string, map[string]any, error)
}

type ApplyFunc func(s *Srv)

// Srv holds every external client. It is built once at startup.
type Srv struct {
	ai       *AI
	artifact ArtifactStore
}

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Srv) AI() *AI {
	return s.ai
}

func (s *Srv) Artifacts() ArtifactStore {
	return s.artifact
}

func ApplyArtifactStore(store ArtifactStore) ApplyFunc {
	return func(s *Srv) {
		s.artifact = store
	}
}
