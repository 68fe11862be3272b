package service

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1abhi6/BharatLens/app/core"
	v1 "github.com/1abhi6/BharatLens/app/logic/v1"
	"github.com/1abhi6/BharatLens/app/response"
	"github.com/1abhi6/BharatLens/cmd/service/handler"
	"github.com/1abhi6/BharatLens/cmd/service/middleware"
	"github.com/1abhi6/BharatLens/pkg/metrics"
)

func serve(core *core.Core) error {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	return core.HttpEngine().Run(core.Cfg().Addr)
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	cfg := s.Core.Cfg()
	userLimit := GetUserLimitBuilder(s.Core)
	turnLimit := userLimit("turn", core.WithLimit(cfg.Chat.TurnRatePerMinute), core.WithRange(time.Minute))

	s.Engine.MaxMultipartMemory = int64(cfg.Chat.MaxUploadMB) << 20
	s.Engine.Use(gin.Recovery())
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())
	if cfg.ObjectStorage.Driver != "s3" {
		s.Engine.Static(core.STATIC_PATH, cfg.ObjectStorage.Local.Dir)
	}

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.ApiTimer(s.Core))
	s.Engine.GET("/", s.Health)

	apiV1 := s.Engine.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", s.Register)
			auth.POST("/login", s.Login)
		}

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		authed.GET("/users/me", s.GetUser)

		sessions := authed.Group("/sessions")
		{
			sessions.POST("", s.CreateChatSession)
			sessions.GET("", s.ListChatSessions)
			sessions.GET("/:session", s.GetChatSession)
			sessions.DELETE("/:session", s.DeleteChatSession)
			sessions.GET("/:session/messages", s.ListChatSessionMessages)
		}

		authed.POST("/turns", turnLimit, s.Turn)
		authed.POST("/chat/:session/messages", turnLimit, s.SendChatMessage)
	}
}
