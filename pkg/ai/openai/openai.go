package openai

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/1abhi6/BharatLens/pkg/ai"
)

const (
	NAME = "openai"

	DEFAULT_VISION_MODEL = openai.GPT4o
	DEFAULT_TTS_MODEL    = "gpt-4o-mini-tts"
)

type Driver struct {
	client *openai.Client
	model  ai.ModelName
}

func NewClient(token, proxy string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	return openai.NewClientWithConfig(cfg)
}

func New(token, proxy string, model ai.ModelName) *Driver {
	if model.ChatModel == "" {
		model.ChatModel = openai.GPT4oMini
	}
	if model.VisionModel == "" {
		model.VisionModel = DEFAULT_VISION_MODEL
	}
	if model.TTSModel == "" {
		model.TTSModel = DEFAULT_TTS_MODEL
	}

	return &Driver{
		client: NewClient(token, proxy),
		model:  model,
	}
}

func (s *Driver) Model() ai.ModelName {
	return s.model
}

func (s *Driver) Complete(ctx context.Context, messages []ai.Message) (ai.CompleteResult, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model.ChatModel,
		Messages: ai.ToOpenAIMessages(messages),
	}

	result := ai.CompleteResult{Model: s.model.ChatModel}
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return result, fmt.Errorf("Completion error: %w", err)
	}
	slog.Debug("Complete", slog.Int("messages", len(messages)), slog.String("driver", NAME), slog.String("model", s.model.ChatModel))

	if len(resp.Choices) == 0 {
		return result, ai.ErrNoChoices
	}

	result.Text = resp.Choices[0].Message.Content
	result.Usage = &resp.Usage
	if resp.Model != "" {
		result.Model = resp.Model
	}
	return result, nil
}

// Describe sends one multimodal request: a system prompt, then the
// instruction together with the image URL.
func (s *Driver) Describe(ctx context.Context, system, instruction, imageURL string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Vision completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrNoChoices
	}
	slog.Debug("Describe", slog.String("driver", NAME), slog.String("model", s.model.VisionModel))

	return resp.Choices[0].Message.Content, nil
}

// SynthesizeSpeech returns mp3 audio for text.
func (s *Driver) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model.TTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("Speech error: %w", err)
	}
	defer resp.Close()

	return io.ReadAll(resp)
}
