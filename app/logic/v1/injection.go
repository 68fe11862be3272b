package v1

import (
	"context"

	"github.com/1abhi6/BharatLens/app/store"
	"github.com/1abhi6/BharatLens/pkg/security"
)

const TOKEN_CONTEXT_KEY = "__bharatlens.access_token"

// InjectTokenClaim get user token claims from context
func InjectTokenClaim(ctx context.Context) (security.TokenClaims, bool) {
	val, ok := ctx.Value(TOKEN_CONTEXT_KEY).(security.TokenClaims)
	return val, ok
}

// Stores is the persistence the logic layer works against. *sqlstore.Provider implements it.
type Stores interface {
	UserStore() store.UserStore
	ChatSessionStore() store.ChatSessionStore
	ChatMessageStore() store.ChatMessageStore
	AttachmentStore() store.AttachmentStore
}
