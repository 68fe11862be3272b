package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/testutils"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

type testDSN string

func (d testDSN) FormatDSN() string { return string(d) }

func setupProvider(t *testing.T) *Provider {
	dsn := testutils.RequireEnv(t, testutils.ENV_POSTGRESQL_DSN)
	p := MustSetup(testDSN(dsn))()
	require.NoError(t, p.Install())
	return p
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, uint64(0), pageOffset(0, 20))
	assert.Equal(t, uint64(0), pageOffset(1, 20))
	assert.Equal(t, uint64(40), pageOffset(3, 20))
}

func TestStoresAgainstPostgres(t *testing.T) {
	p := setupProvider(t)
	ctx := context.Background()

	// install is idempotent
	require.NoError(t, p.Install())

	user := types.User{
		ID:             utils.GenUniqIDStr(),
		Email:          utils.GenUniqIDStr() + "@Example.com",
		HashedPassword: "x",
		IsActive:       true,
		CreatedAt:      time.Now().Unix(),
	}
	require.NoError(t, p.UserStore().Create(ctx, user))
	got, err := p.UserStore().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	session := types.ChatSession{ID: utils.GenUniqIDStr(), UserID: user.ID, Title: "t"}
	require.NoError(t, p.ChatSessionStore().Create(ctx, session))

	old := time.Now().Add(-time.Hour).Unix()
	var ids []string
	for i, role := range []types.MessageRole{types.ROLE_USER, types.ROLE_ASSISTANT, types.ROLE_USER} {
		msg := &types.ChatMessage{
			ID:        utils.GenUniqIDStr(),
			SessionID: session.ID,
			Role:      role,
			Content:   string(rune('a' + i)),
			CreatedAt: old,
		}
		require.NoError(t, p.ChatMessageStore().Create(ctx, msg))
		assert.NotZero(t, msg.Seq)
		ids = append(ids, msg.ID)
	}

	recent, err := p.ChatMessageStore().ListRecent(ctx, session.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[1], recent[0].ID)
	assert.Equal(t, ids[2], recent[1].ID)

	pending, err := p.ChatMessageStore().ListUnanswered(ctx, time.Now().Unix(), 1000)
	require.NoError(t, err)
	pendingIDs := make(map[string]bool)
	for _, m := range pending {
		pendingIDs[m.ID] = true
	}
	assert.False(t, pendingIDs[ids[0]])
	assert.True(t, pendingIDs[ids[2]])

	require.NoError(t, p.AttachmentStore().Create(ctx, types.Attachment{
		ID:        utils.GenUniqIDStr(),
		SessionID: session.ID,
		MessageID: ids[0],
		URL:       "https://files.test/a.png",
		MediaType: types.MEDIA_TYPE_IMAGE,
		Metadata:  types.Metadata{"description": "a"},
	}))

	other := types.ChatSession{ID: utils.GenUniqIDStr(), UserID: user.ID}
	require.NoError(t, p.ChatSessionStore().Create(ctx, other))
	err = p.AttachmentStore().Create(ctx, types.Attachment{
		ID:        utils.GenUniqIDStr(),
		SessionID: other.ID,
		MessageID: ids[0],
		URL:       "https://files.test/b.png",
		MediaType: types.MEDIA_TYPE_IMAGE,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	atts, err := p.AttachmentStore().ListByMessages(ctx, ids)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "a", atts[0].Metadata.String("description"))
	assert.Empty(t, atts[0].AudioURL)

	require.NoError(t, p.ChatSessionStore().Delete(ctx, session.ID))
	left, err := p.ChatMessageStore().ListSessionMessages(ctx, session.ID, 0, types.NO_PAGINATION)
	require.NoError(t, err)
	assert.Empty(t, left)
	atts, err = p.AttachmentStore().ListBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, atts)

	require.NoError(t, p.ChatSessionStore().Delete(ctx, other.ID))
}
