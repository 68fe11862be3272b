package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/1abhi6/BharatLens/app/core"
	v1 "github.com/1abhi6/BharatLens/app/logic/v1"
	"github.com/1abhi6/BharatLens/app/response"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/security"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// Authorization accepts "Authorization: Bearer <jwt>".
func Authorization(core *core.Core) gin.HandlerFunc {
	secret := []byte(core.Cfg().Security.JWTSecret)
	return func(c *gin.Context) {
		claims, err := ParseBearerToken(c.GetHeader(security.TOKEN_KEY), secret)
		if err != nil {
			response.APIError(c, errors.Trace("middleware.Authorization", err))
			return
		}

		c.Set(v1.TOKEN_CONTEXT_KEY, *claims)
		c.Set(response.UserKey, claims.User)
	}
}

func ParseBearerToken(header string, secret []byte) (*security.TokenClaims, error) {
	if header == "" {
		return nil, errors.New("ParseBearerToken.header.nil", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}
	token, found := strings.CutPrefix(header, security.TOKEN_PREFIX)
	if !found || token == "" {
		return nil, errors.New("ParseBearerToken.prefix", i18n.ERROR_UNAUTHORIZED, nil).Code(http.StatusUnauthorized)
	}

	claims, err := security.VerifyToken(token, secret)
	if err != nil {
		return nil, errors.New("ParseBearerToken.VerifyToken", i18n.ERROR_INVALID_TOKEN, err).Code(http.StatusUnauthorized)
	}
	return claims, nil
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Accept-Language, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type LimiterFunc func(key string, opts ...core.LimitOption) gin.HandlerFunc

func UseLimit(appCore *core.Core, operation string, genKeyFunc func(c *gin.Context) string, opts ...core.LimitOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !appCore.UseLimiter(genKeyFunc(c), opts...).Allow() {
			response.APIError(c, errors.New("middleware.limiter."+operation, i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}

// ApiTimer records the latency of every routed request and counts error responses.
func ApiTimer(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		api := c.FullPath()
		if api == "" {
			c.Next()
			return
		}

		timer := core.Metrics().ApiResponseTimer(api)
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			core.Metrics().ApiErrorInc(c.Request.Method, api, status)
		}
	}
}
