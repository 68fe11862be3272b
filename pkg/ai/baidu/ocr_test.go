package baidu

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "PDF file", data: []byte("%PDF-1.4\n"), expected: "pdf"},
		{name: "PNG image", data: []byte("\x89PNG\r\n\x1a\n"), expected: "image"},
		{name: "JPEG image", data: []byte{0xFF, 0xD8, 0xFF}, expected: "image"},
		{name: "WEBP image", data: []byte("RIFF\x00\x00\x00\x00WEBP"), expected: "image"},
		{name: "Unknown file", data: []byte("unknown"), expected: "unknown"},
		{name: "Empty data", data: []byte{}, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectFileType(tt.data))
		})
	}
}

func TestRecognize(t *testing.T) {
	pdf := []byte("%PDF-1.7 scanned")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))

		var req ocrRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, FILE_TYPE_PDF, req.FileType)
		assert.Equal(t, base64.StdEncoding.EncodeToString(pdf), req.File)

		io.WriteString(w, `{"errorCode":0,"result":{"layoutParsingResults":[{"markdown":{"text":"# Page 1"}},{"markdown":{"text":"Page 2"}}]}}`)
	}))
	defer srv.Close()

	text, err := New(Config{APIURL: srv.URL, Token: "secret"}).Recognize(context.Background(), pdf)
	require.NoError(t, err)
	assert.Equal(t, "# Page 1\n\n---\n\nPage 2", text)
}

func TestRecognizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errorCode":500,"errorMsg":"quota exceeded"}`)
	}))
	defer srv.Close()

	d := New(Config{APIURL: srv.URL})

	_, err := d.Recognize(context.Background(), []byte("%PDF-1.4"))
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = d.Recognize(context.Background(), []byte("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}
