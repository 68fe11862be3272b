package v1

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/media"
	"github.com/1abhi6/BharatLens/pkg/types"
)

func seedConversation(t *testing.T, stores *memStores, sessionID string, n int) {
	t.Helper()
	require.NoError(t, stores.ChatSessionStore().Create(context.Background(), types.ChatSession{ID: sessionID, UserID: "u1"}))
	for i := 0; i < n; i++ {
		role := types.ROLE_USER
		if i%2 == 1 {
			role = types.ROLE_ASSISTANT
		}
		require.NoError(t, stores.ChatMessageStore().Create(context.Background(), &types.ChatMessage{
			ID:        sessionID + "-" + string(rune('a'+i)),
			SessionID: sessionID,
			Role:      role,
			Content:   string(rune('a' + i)),
		}))
	}
}

func TestAssembleWindow(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5, 9} {
		stores := newMemStores()
		seedConversation(t, stores, "s1", n)

		a := NewContextAssembler(stores.ChatMessageStore(), 5, 100, "")
		msgs, err := a.Assemble(context.Background(), "s1", nil)
		require.NoError(t, err)
		require.Len(t, msgs, min(n, 5))

		// oldest first, ending with the newest message
		for i, m := range msgs {
			assert.Equal(t, string(rune('a'+n-len(msgs)+i)), m.Content)
		}
	}
}

func TestAssembleEvidenceAndSystemPrompt(t *testing.T) {
	stores := newMemStores()
	seedConversation(t, stores, "s1", 1)

	a := NewContextAssembler(stores.ChatMessageStore(), 0, 0, "  Answer in simple words.  ")
	assert.Equal(t, DEFAULT_HISTORY_WINDOW, a.window)
	assert.Equal(t, DEFAULT_MAX_EVIDENCE_TOKENS, a.maxEvidence)

	msgs, err := a.Assemble(context.Background(), "s1", &Evidence{Kind: media.Document, Text: "  scheme text  "})
	require.NoError(t, err)
	assert.Equal(t, []ai.Message{
		{Role: types.ROLE_SYSTEM, Content: "Answer in simple words."},
		{Role: types.ROLE_USER, Content: "a"},
		{Role: types.ROLE_SYSTEM, Content: "[document context]\nscheme text"},
	}, msgs)
}

func TestAssemblePropagatesStoreError(t *testing.T) {
	stores := newMemStores()
	stores.failListRecent = stderrors.New("replica down")

	_, err := NewContextAssembler(stores.ChatMessageStore(), 5, 100, "").Assemble(context.Background(), "s1", nil)
	assert.Error(t, err)
}

func TestEvidenceRender(t *testing.T) {
	assert.Equal(t, "[image context]\nNo text could be extracted.", (&Evidence{Kind: media.Image, Text: " \n"}).render(10))
	assert.Equal(t, "[audio context]\nExtraction failed: boom", (&Evidence{Kind: media.Audio, Err: stderrors.New("boom")}).render(10))
	assert.Equal(t, "[document context]\nfits", (&Evidence{Kind: media.Document, Text: "fits"}).render(10))
}
