package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/1abhi6/BharatLens/app/logic/v1"
	"github.com/1abhi6/BharatLens/app/response"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

type CreateChatSessionRequest struct {
	Title string `json:"title" form:"title"`
}

func (s *HttpSrv) CreateChatSession(c *gin.Context) {
	var req CreateChatSessionRequest
	if c.Request.ContentLength != 0 {
		if err := utils.BindArgsWithGin(c, &req); err != nil {
			response.APIError(c, err)
			return
		}
	}

	session, err := v1.NewChatSessionLogic(c, s.Core).CreateChatSession(req.Title)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, session)
}

type ListChatSessionsRequest struct {
	Page     uint64 `json:"page" form:"page"`
	Pagesize uint64 `json:"pagesize" form:"pagesize" binding:"max=100"`
}

func (r *ListChatSessionsRequest) normalize() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Pagesize == 0 {
		r.Pagesize = types.DEFAULT_PAGE_SIZE
	}
}

func (s *HttpSrv) ListChatSessions(c *gin.Context) {
	var req ListChatSessionsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	req.normalize()

	list, total, err := v1.NewChatSessionLogic(c, s.Core).ListUserChatSessions(req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, response.ListResponse[*types.ChatSession]{
		List:  list,
		Total: total,
	})
}

func (s *HttpSrv) GetChatSession(c *gin.Context) {
	session, err := v1.NewChatSessionLogic(c, s.Core).GetChatSession(c.Param("session"))
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, session)
}

func (s *HttpSrv) DeleteChatSession(c *gin.Context) {
	if err := v1.NewChatSessionLogic(c, s.Core).DeleteChatSession(c.Param("session")); err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, nil)
}

func (s *HttpSrv) ListChatSessionMessages(c *gin.Context) {
	var req ListChatSessionsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}

	list, err := v1.NewChatSessionLogic(c, s.Core).ListSessionMessages(c.Param("session"), req.Page, req.Pagesize)
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, response.ListResponse[*types.ChatMessageWithAttachments]{
		List:  list,
		Total: int64(len(list)),
	})
}
