package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	"github.com/1abhi6/BharatLens/pkg/types"
)

const (
	// ERROR_PREFIX marks assistant text produced in place of a model reply.
	ERROR_PREFIX = "Error from LLM: "

	DEFAULT_TOKEN_ENCODING = "cl100k_base"
)

var ErrNoChoices = errors.New("empty choices")

type ModelName struct {
	ChatModel   string `toml:"chat_model"`
	VisionModel string `toml:"vision_model"`
	TTSModel    string `toml:"tts_model"`
}

// Message is one entry of the chat history sent to a model.
type Message struct {
	Role    types.MessageRole
	Content string
}

type CompleteResult struct {
	Text  string
	Model string
	Usage *openai.Usage
}

type Completer interface {
	Complete(ctx context.Context, messages []Message) (CompleteResult, error)
}

// Extraction is the text derived from an uploaded artifact.
type Extraction struct {
	Text string
	Meta map[string]any
}

func ToOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	return lo.Map(messages, func(item Message, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{
			Role:    item.Role.String(),
			Content: item.Content,
		}
	})
}

// Generate makes exactly one completion call. It never fails: any error is
// folded into the returned text behind ERROR_PREFIX.
func Generate(ctx context.Context, c Completer, messages []Message) string {
	res, err := c.Complete(ctx, messages)
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = ErrNoChoices
	}
	if err != nil {
		slog.Error("failed to generate reply", slog.String("error", err.Error()), slog.Int("messages", len(messages)))
		return ERROR_PREFIX + err.Error()
	}
	return res.Text
}

func IsDegraded(text string) bool {
	return strings.HasPrefix(text, ERROR_PREFIX)
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		enc, encErr = tiktoken.GetEncoding(DEFAULT_TOKEN_ENCODING)
	})
	return enc, encErr
}

// TruncateTokens cuts text to at most max tokens on a token boundary.
// When the encoding is unavailable it falls back to max runes.
func TruncateTokens(text string, max int) string {
	if max <= 0 {
		return ""
	}
	// a token is never shorter than one byte
	if len(text) <= max {
		return text
	}

	tkm, err := encoding()
	if err != nil {
		slog.Warn("token encoding unavailable, truncating by runes", slog.String("error", err.Error()))
		r := []rune(text)
		if len(r) <= max {
			return text
		}
		return string(r[:max])
	}

	tokens := tkm.Encode(text, nil, nil)
	if len(tokens) <= max {
		return text
	}
	return tkm.Decode(tokens[:max])
}
