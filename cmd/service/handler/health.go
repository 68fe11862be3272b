package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1abhi6/BharatLens/app/response"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
)

type HealthResponse struct {
	Status string          `json:"status"`
	DB     string          `json:"db"`
	Models map[string]bool `json:"models"`
}

func (s *HttpSrv) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.Core.Store().Ping(ctx); err != nil {
		response.APIError(c, errors.New("HttpSrv.Health.Ping", i18n.ERROR_INTERNAL, err).Code(http.StatusServiceUnavailable))
		return
	}

	response.APISuccess(c, HealthResponse{
		Status: "ok",
		DB:     "ok",
		Models: s.Core.Srv().AI().Status(),
	})
}
