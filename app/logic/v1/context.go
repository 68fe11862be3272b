package v1

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/1abhi6/BharatLens/app/store"
	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/media"
	"github.com/1abhi6/BharatLens/pkg/types"
)

const (
	DEFAULT_HISTORY_WINDOW      = 5
	DEFAULT_MAX_EVIDENCE_TOKENS = 3000
)

// Evidence is the text derived from the current turn's attachment.
// It is shown to the model but never persisted as a message.
type Evidence struct {
	Kind media.Kind
	Text string
	Err  error
}

func (e *Evidence) render(maxTokens int) string {
	header := fmt.Sprintf("[%s context]\n", e.Kind)
	if e.Err != nil {
		return header + "Extraction failed: " + e.Err.Error()
	}
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return header + "No text could be extracted."
	}
	return header + ai.TruncateTokens(text, maxTokens)
}

// ContextAssembler builds the model input from the most recent persisted
// messages of a session.
type ContextAssembler struct {
	messages     store.ChatMessageStore
	window       int
	maxEvidence  int
	systemPrompt string
}

func NewContextAssembler(messages store.ChatMessageStore, window, maxEvidenceTokens int, systemPrompt string) *ContextAssembler {
	if window <= 0 {
		window = DEFAULT_HISTORY_WINDOW
	}
	if maxEvidenceTokens <= 0 {
		maxEvidenceTokens = DEFAULT_MAX_EVIDENCE_TOKENS
	}
	return &ContextAssembler{
		messages:     messages,
		window:       window,
		maxEvidence:  maxEvidenceTokens,
		systemPrompt: strings.TrimSpace(systemPrompt),
	}
}

// Assemble returns [system prompt] + the last window messages in creation
// order + [evidence]. The current user message is expected to be persisted
// already, so it is the last history entry.
func (a *ContextAssembler) Assemble(ctx context.Context, sessionID string, ev *Evidence) ([]ai.Message, error) {
	history, err := a.messages.ListRecent(ctx, sessionID, uint64(a.window))
	if err != nil {
		return nil, err
	}
	return a.build(history, ev), nil
}

func (a *ContextAssembler) build(history []*types.ChatMessage, ev *Evidence) []ai.Message {
	res := make([]ai.Message, 0, len(history)+2)
	if a.systemPrompt != "" {
		res = append(res, ai.Message{Role: types.ROLE_SYSTEM, Content: a.systemPrompt})
	}

	res = append(res, lo.Map(history, func(item *types.ChatMessage, _ int) ai.Message {
		return ai.Message{Role: item.Role, Content: item.Content}
	})...)

	if ev != nil {
		res = append(res, ai.Message{Role: types.ROLE_SYSTEM, Content: ev.render(a.maxEvidence)})
	}
	return res
}
