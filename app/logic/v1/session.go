package v1

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net/http"

	"github.com/1abhi6/BharatLens/app/store"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/types"
)

// checkSessionOwner loads the session and rejects it when it belongs to someone else.
func checkSessionOwner(ctx context.Context, sessions store.ChatSessionStore, sessionID, userID string) (*types.ChatSession, error) {
	session, err := sessions.GetChatSession(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("checkSessionOwner.ChatSessionStore.GetChatSession.nil", i18n.ERROR_SESSION_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("checkSessionOwner.ChatSessionStore.GetChatSession", i18n.ERROR_INTERNAL, err)
	}

	if session.UserID != userID {
		return nil, errors.New("checkSessionOwner.unauth", i18n.ERROR_SESSION_FORBIDDEN, nil).Code(http.StatusForbidden)
	}
	return session, nil
}
