package v1

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/types"
)

func TestChatSessionLifecycle(t *testing.T) {
	stores := newMemStores()
	l := NewChatSessionLogicWithStores(context.Background(), stores, "u1")

	session, err := l.CreateChatSession("  " + strings.Repeat("क", 60) + "  ")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Len(t, []rune(session.Title), SESSION_TITLE_MAX_RUNES)

	got, err := l.GetChatSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = l.CreateChatSession("second")
	require.NoError(t, err)

	list, total, err := l.ListUserChatSessions(1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), total)

	require.NoError(t, l.DeleteChatSession(session.ID))
	_, err = l.GetChatSession(session.ID)
	assert.Equal(t, http.StatusNotFound, errorCode(t, err))
}

func TestChatSessionOwnership(t *testing.T) {
	stores := newMemStores()
	owner := NewChatSessionLogicWithStores(context.Background(), stores, "u1")
	other := NewChatSessionLogicWithStores(context.Background(), stores, "u2")

	session, err := owner.CreateChatSession("mine")
	require.NoError(t, err)

	_, err = other.GetChatSession(session.ID)
	assert.Equal(t, http.StatusForbidden, errorCode(t, err))

	err = other.DeleteChatSession(session.ID)
	assert.Equal(t, http.StatusForbidden, errorCode(t, err))

	_, err = other.ListSessionMessages(session.ID, 1, 20)
	assert.Equal(t, http.StatusForbidden, errorCode(t, err))

	list, total, err := other.ListUserChatSessions(1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestListSessionMessagesWithAttachments(t *testing.T) {
	stores := newMemStores()
	seedConversation(t, stores, "s1", 2)
	require.NoError(t, stores.AttachmentStore().Create(context.Background(), types.Attachment{
		ID:        "att-1",
		SessionID: "s1",
		MessageID: "s1-a",
		URL:       "https://files.test/a.png",
		MediaType: types.MEDIA_TYPE_IMAGE,
	}))

	l := NewChatSessionLogicWithStores(context.Background(), stores, "u1")
	msgs, err := l.ListSessionMessages("s1", 1, 20)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "att-1", msgs[0].Attachments[0].ID)
	assert.NotNil(t, msgs[1].Attachments)
	assert.Empty(t, msgs[1].Attachments)
}
