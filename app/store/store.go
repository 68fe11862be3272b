package store

import (
	"context"

	"github.com/1abhi6/BharatLens/pkg/sqlstore"
	"github.com/1abhi6/BharatLens/pkg/types"
)

type UserStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetByEmail(ctx context.Context, email string) (*types.User, error)
}

type ChatSessionStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.ChatSession) error
	GetChatSession(ctx context.Context, id string) (*types.ChatSession, error)
	// ListUserSessions returns the user's sessions, most recently updated first.
	ListUserSessions(ctx context.Context, userID string, page, pageSize uint64) ([]*types.ChatSession, error)
	TotalUserSessions(ctx context.Context, userID string) (int64, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ChatMessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data *types.ChatMessage) error
	GetMessage(ctx context.Context, id string) (*types.ChatMessage, error)
	// ListRecent returns at most limit newest messages of the session in creation order.
	ListRecent(ctx context.Context, sessionID string, limit uint64) ([]*types.ChatMessage, error)
	ListSessionMessages(ctx context.Context, sessionID string, page, pageSize uint64) ([]*types.ChatMessage, error)
	// ListUnanswered returns user messages created before the given unix time
	// that no later assistant message in the same session follows.
	ListUnanswered(ctx context.Context, before int64, limit uint64) ([]*types.ChatMessage, error)
}

type AttachmentStore interface {
	sqlstore.SqlCommons
	// Create fails with sql.ErrNoRows when the message does not belong to the session.
	Create(ctx context.Context, data types.Attachment) error
	ListByMessages(ctx context.Context, messageIDs []string) ([]*types.Attachment, error)
	ListBySession(ctx context.Context, sessionID string) ([]*types.Attachment, error)
}
