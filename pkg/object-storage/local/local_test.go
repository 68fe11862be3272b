package local

import (
	"bytes"
	"context"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir(), "http://localhost/static/")
	require.NoError(t, err)

	data := make([]byte, 4096)
	_, err = rand.Read(data)
	require.NoError(t, err)

	url, err := store.Put(context.Background(), data, "../voice note.mp3", "audio/mpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost/static/"))
	assert.True(t, strings.HasSuffix(url, "-voice note.mp3"))

	got, err := store.Get(context.Background(), url)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestGetForeignURL(t *testing.T) {
	store, err := New(t.TempDir(), "http://localhost/static")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "http://elsewhere/static/a.png")
	assert.ErrorIs(t, err, ErrForeignURL)

	_, err = store.Get(context.Background(), "http://localhost/static/../secret")
	assert.ErrorIs(t, err, ErrForeignURL)
}
