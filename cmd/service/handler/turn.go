package handler

import (
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/1abhi6/BharatLens/app/logic/v1"
	"github.com/1abhi6/BharatLens/app/response"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const TURN_FILE_FIELD = "file"

type TurnRequest struct {
	SessionID   string `form:"session_id"`
	Prompt      string `form:"prompt"`
	AudioOutput bool   `form:"audio_output"`
	VoiceStyle  string `form:"voice_style"`
}

// Turn accepts a multipart turn: an optional file plus optional text fields.
func (s *HttpSrv) Turn(c *gin.Context) {
	maxBytes := int64(s.Core.Cfg().Chat.MaxUploadMB) << 20
	// form fields ride along with the file
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

	var req TurnRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, tooLargeOr(err))
		return
	}

	file, err := readTurnFile(c, maxBytes)
	if err != nil {
		response.APIError(c, err)
		return
	}

	claims, _ := v1.InjectTokenClaim(c)
	res, err := v1.NewTurnLogic(c.Request.Context(), s.Core).Process(types.TurnRequest{
		UserID:      claims.User,
		SessionID:   req.SessionID,
		Prompt:      req.Prompt,
		File:        file,
		AudioOutput: req.AudioOutput,
		VoiceStyle:  req.VoiceStyle,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}

func readTurnFile(c *gin.Context, maxBytes int64) (*types.TurnFile, error) {
	header, err := c.FormFile(TURN_FILE_FIELD)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, tooLargeOr(err)
	}
	if header.Size > maxBytes {
		return nil, errors.New("readTurnFile.size", i18n.ERROR_FILE_TOO_LARGE, nil).Code(http.StatusRequestEntityTooLarge)
	}

	data, err := readAll(header)
	if err != nil {
		return nil, errors.New("readTurnFile.readAll", i18n.ERROR_INTERNAL, err)
	}

	return &types.TurnFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func tooLargeOr(err error) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.New("HttpSrv.Turn.MaxBytes", i18n.ERROR_FILE_TOO_LARGE, err).Code(http.StatusRequestEntityTooLarge)
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.New("HttpSrv.Turn.Bind", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
}

type SendChatMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	AudioOutput bool   `json:"audio_output"`
	VoiceStyle  string `json:"voice_style"`
}

// SendChatMessage is a text-only turn on an existing session.
func (s *HttpSrv) SendChatMessage(c *gin.Context) {
	var req SendChatMessageRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	claims, _ := v1.InjectTokenClaim(c)
	res, err := v1.NewTurnLogic(c.Request.Context(), s.Core).Process(types.TurnRequest{
		UserID:      claims.User,
		SessionID:   c.Param("session"),
		Prompt:      req.Content,
		AudioOutput: req.AudioOutput,
		VoiceStyle:  req.VoiceStyle,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}

	response.APISuccess(c, res)
}
