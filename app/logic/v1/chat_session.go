package v1

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/1abhi6/BharatLens/app/core"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const SESSION_TITLE_MAX_RUNES = 50

type ChatSessionLogic struct {
	ctx    context.Context
	stores Stores
	user   string
}

func NewChatSessionLogic(ctx context.Context, core *core.Core) *ChatSessionLogic {
	claims, _ := InjectTokenClaim(ctx)
	return NewChatSessionLogicWithStores(ctx, core.Store(), claims.User)
}

func NewChatSessionLogicWithStores(ctx context.Context, stores Stores, userID string) *ChatSessionLogic {
	return &ChatSessionLogic{
		ctx:    ctx,
		stores: stores,
		user:   userID,
	}
}

func (l *ChatSessionLogic) CreateChatSession(title string) (*types.ChatSession, error) {
	now := time.Now().Unix()
	session := types.ChatSession{
		ID:        utils.GenUniqIDStr(),
		UserID:    l.user,
		Title:     utils.FirstRunes(strings.TrimSpace(title), SESSION_TITLE_MAX_RUNES),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.stores.ChatSessionStore().Create(l.ctx, session); err != nil {
		return nil, errors.New("ChatSessionLogic.CreateChatSession.ChatSessionStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &session, nil
}

func (l *ChatSessionLogic) GetChatSession(sessionID string) (*types.ChatSession, error) {
	return checkSessionOwner(l.ctx, l.stores.ChatSessionStore(), sessionID, l.user)
}

func (l *ChatSessionLogic) ListUserChatSessions(page, pageSize uint64) ([]*types.ChatSession, int64, error) {
	list, err := l.stores.ChatSessionStore().ListUserSessions(l.ctx, l.user, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("ChatSessionLogic.ListUserChatSessions.ChatSessionStore.ListUserSessions", i18n.ERROR_INTERNAL, err)
	}

	total, err := l.stores.ChatSessionStore().TotalUserSessions(l.ctx, l.user)
	if err != nil {
		return nil, 0, errors.New("ChatSessionLogic.ListUserChatSessions.ChatSessionStore.TotalUserSessions", i18n.ERROR_INTERNAL, err)
	}
	return list, total, nil
}

// DeleteChatSession removes the session with its messages and attachments.
func (l *ChatSessionLogic) DeleteChatSession(sessionID string) error {
	if _, err := checkSessionOwner(l.ctx, l.stores.ChatSessionStore(), sessionID, l.user); err != nil {
		return errors.Trace("ChatSessionLogic.DeleteChatSession", err)
	}

	if err := l.stores.ChatSessionStore().Delete(l.ctx, sessionID); err != nil {
		return errors.New("ChatSessionLogic.DeleteChatSession.ChatSessionStore.Delete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// ListSessionMessages returns the transcript in creation order, each message with its attachments.
func (l *ChatSessionLogic) ListSessionMessages(sessionID string, page, pageSize uint64) ([]*types.ChatMessageWithAttachments, error) {
	if _, err := checkSessionOwner(l.ctx, l.stores.ChatSessionStore(), sessionID, l.user); err != nil {
		return nil, errors.Trace("ChatSessionLogic.ListSessionMessages", err)
	}

	msgs, err := l.stores.ChatMessageStore().ListSessionMessages(l.ctx, sessionID, page, pageSize)
	if err != nil {
		return nil, errors.New("ChatSessionLogic.ListSessionMessages.ChatMessageStore.ListSessionMessages", i18n.ERROR_INTERNAL, err)
	}

	attachments, err := l.stores.AttachmentStore().ListByMessages(l.ctx, lo.Map(msgs, func(item *types.ChatMessage, _ int) string {
		return item.ID
	}))
	if err != nil {
		return nil, errors.New("ChatSessionLogic.ListSessionMessages.AttachmentStore.ListByMessages", i18n.ERROR_INTERNAL, err)
	}
	byMessage := lo.GroupBy(attachments, func(item *types.Attachment) string {
		return item.MessageID
	})

	return lo.Map(msgs, func(item *types.ChatMessage, _ int) *types.ChatMessageWithAttachments {
		return &types.ChatMessageWithAttachments{
			ChatMessage: *item,
			Attachments: lo.Ternary(byMessage[item.ID] != nil, byMessage[item.ID], []*types.Attachment{}),
		}
	}), nil
}
