package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/1abhi6/BharatLens/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
