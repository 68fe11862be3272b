package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/ai/openai"
	"github.com/1abhi6/BharatLens/pkg/types"
)

func chatResponse(content string) goopenai.ChatCompletionResponse {
	return goopenai.ChatCompletionResponse{
		ID:     "chatcmpl-1",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []goopenai.ChatCompletionChoice{
			{
				Index:        0,
				Message:      goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: content},
				FinishReason: goopenai.FinishReasonStop,
			},
		},
	}
}

func newServer(t *testing.T, handler http.HandlerFunc) *openai.Driver {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return openai.New("test-token", srv.URL+"/v1", ai.ModelName{})
}

func TestComplete(t *testing.T) {
	var got goopenai.ChatCompletionRequest
	d := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("hello there"))
	})

	res, err := d.Complete(context.Background(), []ai.Message{
		{Role: types.ROLE_SYSTEM, Content: "be brief"},
		{Role: types.ROLE_USER, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Text)
	assert.Equal(t, goopenai.GPT4oMini, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
}

func TestCompleteError(t *testing.T) {
	d := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	})

	_, err := d.Complete(context.Background(), []ai.Message{{Role: types.ROLE_USER, Content: "hi"}})
	assert.Error(t, err)

	text := ai.Generate(context.Background(), d, []ai.Message{{Role: types.ROLE_USER, Content: "hi"}})
	assert.True(t, ai.IsDegraded(text))
}

func TestDescribe(t *testing.T) {
	var raw map[string]any
	d := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("A red bus. Text: DELHI"))
	})

	text, err := d.Describe(context.Background(), "sys", "describe", "https://img/x.png")
	require.NoError(t, err)
	assert.Equal(t, "A red bus. Text: DELHI", text)
	assert.Equal(t, goopenai.GPT4o, raw["model"])

	msgs := raw["messages"].([]any)
	require.Len(t, msgs, 2)
	parts := msgs[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "https://img/x.png", image["image_url"].(map[string]any)["url"])
}

func TestSynthesizeSpeech(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	d := openai.New("test-token", srv.URL+"/v1", ai.ModelName{TTSModel: string(goopenai.TTSModel1)})
	audio, err := d.SynthesizeSpeech(context.Background(), "namaste", string(goopenai.VoiceAlloy))
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
	assert.Equal(t, "alloy", got["voice"])
	assert.Equal(t, "namaste", got["input"])
	assert.Equal(t, "mp3", got["response_format"])
}
