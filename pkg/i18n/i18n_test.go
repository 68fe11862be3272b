package i18n

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLocalizerGet(t *testing.T) {
	l := NewLocalizer("en", "hi")

	assert.Equal(t, "Session not found", l.Get("en", ERROR_SESSION_NOT_FOUND))
	assert.Equal(t, "सत्र नहीं मिला", l.Get("hi", ERROR_SESSION_NOT_FOUND))
	assert.Equal(t, "अपलोड की गई फ़ाइल सहेजी नहीं जा सकी", l.Get("hi", ERROR_UPLOAD_FAILED))
}

func TestLocalizerFallsBack(t *testing.T) {
	l := NewLocalizer("en", "hi")
	l.bundle.MustAddMessages(language.English, &i18n.Message{
		ID:    "error.english.only",
		Other: "Only in english",
	})

	// missing in hindi, falls back to english
	assert.Equal(t, "Only in english", l.Get("hi", "error.english.only"))
	// unknown language returns the key
	assert.Equal(t, ERROR_INTERNAL, l.Get("fr", ERROR_INTERNAL))
	// unknown key returns the key
	assert.Equal(t, "error.nope", l.Get("en", "error.nope"))
}

func TestMessageFilesShareKeys(t *testing.T) {
	load := func(name string) map[string]string {
		raw, err := f.ReadFile(name)
		require.NoError(t, err)
		res := make(map[string]string)
		require.NoError(t, toml.Unmarshal(raw, &res))
		return res
	}

	en, hi := load("en.toml"), load("hi.toml")
	require.NotEmpty(t, en)
	for key := range en {
		assert.Contains(t, hi, key)
	}
	for key := range hi {
		assert.Contains(t, en, key)
	}
}
