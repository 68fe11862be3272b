package srv

import (
	"github.com/1abhi6/BharatLens/pkg/ai"
)

type AI struct {
	models      ai.ModelName
	completer   ai.Completer
	vision      VisionDescriber
	transcriber AudioTranscriber
	document    DocumentExtractor
	speech      SpeechSynthesizer
	ocr         TextRecognizer
}

type AIOption func(a *AI)

func WithCompleter(c ai.Completer) AIOption {
	return func(a *AI) { a.completer = c }
}

func WithVision(v VisionDescriber) AIOption {
	return func(a *AI) { a.vision = v }
}

func WithTranscriber(t AudioTranscriber) AIOption {
	return func(a *AI) { a.transcriber = t }
}

func WithDocumentExtractor(d DocumentExtractor) AIOption {
	return func(a *AI) { a.document = d }
}

func WithSpeech(sp SpeechSynthesizer) AIOption {
	return func(a *AI) { a.speech = sp }
}

func WithOCR(o TextRecognizer) AIOption {
	return func(a *AI) { a.ocr = o }
}

func ApplyAI(models ai.ModelName, opts ...AIOption) ApplyFunc {
	return func(s *Srv) {
		a := &AI{models: models}
		for _, o := range opts {
			o(a)
		}
		s.ai = a
	}
}

func (a *AI) Models() ai.ModelName {
	return a.models
}

func (a *AI) Completer() ai.Completer {
	return a.completer
}

func (a *AI) Vision() VisionDescriber {
	return a.vision
}

// Transcriber is nil when no transcription service is configured.
func (a *AI) Transcriber() AudioTranscriber {
	return a.transcriber
}

func (a *AI) Document() DocumentExtractor {
	return a.document
}

func (a *AI) Speech() SpeechSynthesizer {
	return a.speech
}

// OCR is shared by image turns and the scanned PDF fallback. It may be nil.
func (a *AI) OCR() TextRecognizer {
	return a.ocr
}

func (a *AI) Status() map[string]bool {
	return map[string]bool{
		"chat_available":       a.completer != nil,
		"vision_available":     a.vision != nil,
		"transcribe_available": a.transcriber != nil,
		"document_available":   a.document != nil,
		"speech_available":     a.speech != nil,
		"ocr_available":        a.ocr != nil,
	}
}
