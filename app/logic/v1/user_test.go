package v1

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/app/core"
	"github.com/1abhi6/BharatLens/pkg/security"
)

func newUserLogic(stores *memStores) *UserLogic {
	return NewUserLogicWithStores(context.Background(), stores, core.Security{
		JWTSecret: "test-secret",
		TokenTTL:  core.Duration{Duration: time.Hour},
	})
}

func TestRegisterAndLogin(t *testing.T) {
	stores := newMemStores()
	l := newUserLogic(stores)

	user, err := l.Register(" Asha@Example.com ", "s3cret", " Asha ")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, "Asha", user.FullName)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret", user.HashedPassword)

	res, err := l.Login("asha@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, TOKEN_TYPE_BEARER, res.TokenType)

	claims, err := security.ParseJWT(res.AccessToken, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.User)
	assert.Equal(t, res.ExpiresAt, claims.ExpireTime)

	got, err := l.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestRegisterRejects(t *testing.T) {
	l := newUserLogic(newMemStores())

	_, err := l.Register("", "pw", "")
	assert.Equal(t, http.StatusBadRequest, errorCode(t, err))

	_, err = l.Register("a@b.in", "pw", "")
	require.NoError(t, err)
	_, err = l.Register("A@B.in", "pw2", "")
	assert.Equal(t, http.StatusBadRequest, errorCode(t, err))
}

func TestLoginRejects(t *testing.T) {
	l := newUserLogic(newMemStores())
	_, err := l.Register("a@b.in", "pw", "")
	require.NoError(t, err)

	_, err = l.Login("a@b.in", "wrong")
	assert.Equal(t, http.StatusUnauthorized, errorCode(t, err))

	_, err = l.Login("nobody@b.in", "pw")
	assert.Equal(t, http.StatusUnauthorized, errorCode(t, err))

	_, err = l.GetUser("missing")
	assert.Equal(t, http.StatusUnauthorized, errorCode(t, err))
}
