package v1

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/1abhi6/BharatLens/app/core"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/security"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const TOKEN_TYPE_BEARER = "bearer"

// UserLogic serves callers that are not logged in yet, plus the profile lookup.
type UserLogic struct {
	ctx    context.Context
	stores Stores
	cfg    core.Security
}

func NewUserLogic(ctx context.Context, core *core.Core) *UserLogic {
	return NewUserLogicWithStores(ctx, core.Store(), core.Cfg().Security)
}

func NewUserLogicWithStores(ctx context.Context, stores Stores, cfg core.Security) *UserLogic {
	return &UserLogic{
		ctx:    ctx,
		stores: stores,
		cfg:    cfg,
	}
}

func (l *UserLogic) Register(email, password, fullName string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("UserLogic.Register.check", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	exist, err := l.stores.UserStore().GetByEmail(l.ctx, email)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("UserLogic.Register.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("UserLogic.Register.exist", i18n.ERROR_EMAIL_ALREADY_REGISTERD, nil).Code(http.StatusBadRequest)
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, errors.New("UserLogic.Register.HashPassword", i18n.ERROR_INTERNAL, err)
	}

	user := types.User{
		ID:             utils.GenUniqIDStr(),
		Email:          email,
		HashedPassword: hashed,
		FullName:       strings.TrimSpace(fullName),
		IsActive:       true,
		CreatedAt:      time.Now().Unix(),
	}
	if err = l.stores.UserStore().Create(l.ctx, user); err != nil {
		return nil, errors.New("UserLogic.Register.UserStore.Create", i18n.ERROR_INTERNAL, err)
	}
	return &user, nil
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (l *UserLogic) Login(email, password string) (LoginResult, error) {
	user, err := l.stores.UserStore().GetByEmail(l.ctx, email)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, errors.New("UserLogic.Login.UserStore.GetByEmail", i18n.ERROR_INTERNAL, err)
	}
	if user == nil || !user.IsActive {
		return LoginResult{}, errors.New("UserLogic.Login.user.nil", i18n.ERROR_LOGIN_INCORRECT, nil).Code(http.StatusUnauthorized)
	}

	if err = security.CheckPassword(user.HashedPassword, password); err != nil {
		return LoginResult{}, errors.New("UserLogic.Login.CheckPassword", i18n.ERROR_LOGIN_INCORRECT, err).Code(http.StatusUnauthorized)
	}

	claims := security.NewTokenClaims(user.ID, user.Email, l.cfg.TokenTTL.Duration)
	token, err := security.GenerateJWT(claims, []byte(l.cfg.JWTSecret))
	if err != nil {
		return LoginResult{}, errors.New("UserLogic.Login.GenerateJWT", i18n.ERROR_INTERNAL, err)
	}

	return LoginResult{
		AccessToken: token,
		TokenType:   TOKEN_TYPE_BEARER,
		ExpiresAt:   claims.ExpireTime,
	}, nil
}

func (l *UserLogic) GetUser(userID string) (*types.User, error) {
	user, err := l.stores.UserStore().GetUser(l.ctx, userID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("UserLogic.GetUser.UserStore.GetUser.nil", i18n.ERROR_UNAUTHORIZED, err).Code(http.StatusUnauthorized)
		}
		return nil, errors.New("UserLogic.GetUser.UserStore.GetUser", i18n.ERROR_INTERNAL, err)
	}
	return user, nil
}
