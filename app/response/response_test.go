package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ProvideResponseLocalizer(i18n.NewLocalizer("en", "hi")), NewResponse())
	return r
}

func do(t *testing.T, r *gin.Engine, lang string) (*httptest.ResponseRecorder, Response) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestAPIErrorLocalized(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		APIError(c, errors.New("test", i18n.ERROR_SESSION_NOT_FOUND, nil).Code(http.StatusNotFound))
	})

	w, res := do(t, r, "en-IN,en;q=0.8")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, res.Meta.Code)
	assert.Equal(t, "Session not found", res.Meta.Message)
	assert.NotEmpty(t, res.Meta.RequestID)
}

func TestAPIErrorPlain(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		APIError(c, stderrors.New("boom"))
	})

	w, res := do(t, r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", res.Meta.Message)
}

func TestAPISuccess(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		APISuccess(c, map[string]string{"status": "ok"})
	})

	w, res := do(t, r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, res.Data)
}

func TestGetLangFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Request.Header.Set("Accept-Language", "hi-IN,en;q=0.5")
	assert.Equal(t, "hi", GetLangFromRequestOrDefault(c))

	c.Request.Header.Set("Accept-Language", "fr")
	assert.Equal(t, i18n.DEFAULT_LANG, GetLangFromRequestOrDefault(c))
}
