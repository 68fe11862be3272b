package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/1abhi6/BharatLens/pkg/ai"
)

const (
	SYSTEM_PROMPT      = "You are an assistant that describes images and extracts any visible text."
	INSTRUCTION_PROMPT = "Describe this image briefly. If there is any text, extract it."
)

var ErrExtractionFailed = errors.New("image extraction failed")

type Model interface {
	Describe(ctx context.Context, system, instruction, imageURL string) (string, error)
}

type Describer struct {
	model     Model
	modelName string
}

func New(model Model, modelName string) *Describer {
	return &Describer{model: model, modelName: modelName}
}

func (d *Describer) Describe(ctx context.Context, imageURL string) (ai.Extraction, error) {
	text, err := d.model.Describe(ctx, SYSTEM_PROMPT, INSTRUCTION_PROMPT, imageURL)
	if err != nil {
		return ai.Extraction{}, fmt.Errorf("%w: %s", ErrExtractionFailed, err.Error())
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ai.Extraction{}, fmt.Errorf("%w: empty description", ErrExtractionFailed)
	}

	return ai.Extraction{
		Text: text,
		Meta: map[string]any{
			"extractor": "vision",
			"model":     d.modelName,
		},
	}, nil
}
