package response

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const (
	RequestIDKey = "request_id"
	ResponseKey  = "response_key"
	LocalizerKey = "i18n"
	// UserKey holds the caller id once the auth middleware accepted a token.
	UserKey = "user"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LocalizerKey, l)
	}
}

func InjectResponseLocalizer(c *gin.Context) (i18n.Localizer, bool) {
	l, ok := c.Get(LocalizerKey)
	if !ok {
		return i18n.Localizer{}, false
	}
	res, ok := l.(i18n.Localizer)
	return res, ok
}

type EmptyStruct struct{}

// Response is the envelope of every api reply.
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data"`
}

type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ListResponse[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}

// GetLangFromRequestOrDefault picks the first supported language of Accept-Language.
func GetLangFromRequestOrDefault(c *gin.Context) string {
	for _, v := range utils.ParseAcceptLanguage(c.Request.Header.Get("Accept-Language")) {
		tag := strings.ToLower(v.Tag)
		if i18n.ALLOW_LANG[tag] {
			return tag
		}
		if base, _, ok := strings.Cut(tag, "-"); ok && i18n.ALLOW_LANG[base] {
			return base
		}
	}
	return i18n.DEFAULT_LANG
}

func getResponse(c *gin.Context) *Response {
	if v, ok := c.Get(ResponseKey); ok {
		if res, ok := v.(*Response); ok {
			return res
		}
	}
	return &Response{}
}

func APIError(c *gin.Context, err error) {
	c.Abort()

	res := getResponse(c)
	httpStatus := http.StatusInternalServerError
	if cerr, ok := errors.As(err); ok {
		httpStatus = cerr.GetCode()
		res.Meta.Message = cerr.Message()
		if l, ok := InjectResponseLocalizer(c); ok {
			res.Meta.Message = l.Get(GetLangFromRequestOrDefault(c), cerr.Message())
		}
	} else {
		res.Meta.Message = err.Error()
	}
	res.Meta.Code = httpStatus

	c.JSON(httpStatus, res)
	printErrorLog(c, res, err)
}

func printErrorLog(c *gin.Context, res *Response, err error) {
	attrs := []any{
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.String("request_id", res.Meta.RequestID),
		slog.Int("code", res.Meta.Code),
		slog.String("error", err.Error()),
		slog.Int64("end_time", time.Now().Unix()),
	}
	if uid := c.GetString(UserKey); uid != "" {
		attrs = append(attrs, slog.String("uid", uid))
	}
	slog.Error("response error", attrs...)
}

func printSuccessLog(c *gin.Context, res *Response) {
	attrs := []any{
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.String("request_id", res.Meta.RequestID),
		slog.String("params", c.Request.URL.Query().Encode()),
		slog.Int64("end_time", time.Now().Unix()),
	}
	if uid := c.GetString(UserKey); uid != "" {
		attrs = append(attrs, slog.String("uid", uid))
	}
	slog.Info("request success", attrs...)
}

func APISuccess(c *gin.Context, data interface{}) {
	c.Abort()
	res := getResponse(c)
	if data != nil {
		res.Data = data
	}
	c.JSON(http.StatusOK, res)
	printSuccessLog(c, res)
}

func NewResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ResponseKey, &Response{
			Meta: Meta{
				RequestID: utils.GenRandomID(),
			},
		})
	}
}
