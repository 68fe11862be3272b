package v1

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/1abhi6/BharatLens/app/core"
	"github.com/1abhi6/BharatLens/app/core/srv"
	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/ai/speech"
	"github.com/1abhi6/BharatLens/pkg/ai/transcribe"
	"github.com/1abhi6/BharatLens/pkg/errors"
	"github.com/1abhi6/BharatLens/pkg/i18n"
	"github.com/1abhi6/BharatLens/pkg/media"
	"github.com/1abhi6/BharatLens/pkg/safe"
	"github.com/1abhi6/BharatLens/pkg/types"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const (
	// STATUS_CLIENT_CLOSED_REQUEST is returned when the caller left before the turn finished.
	STATUS_CLIENT_CLOSED_REQUEST = 499

	TRANSCRIBE_JOB_PREFIX = "bl-"
	IMAGE_OCR_HEADER      = "Text found in the image:\n"
	DEFAULT_TURN_TIMEOUT  = 3 * time.Minute
)

type TurnState string

const (
	TURN_STATE_VALIDATING          TurnState = "validating"
	TURN_STATE_SESSION_RESOLVED    TurnState = "session_resolved"
	TURN_STATE_ARTIFACT_PROCESSED  TurnState = "artifact_processed"
	TURN_STATE_TEXT_ONLY           TurnState = "text_only"
	TURN_STATE_USER_PERSISTED      TurnState = "user_message_persisted"
	TURN_STATE_CONTEXT_ASSEMBLED   TurnState = "context_assembled"
	TURN_STATE_RESPONSE_GENERATED  TurnState = "response_generated"
	TURN_STATE_ASSISTANT_PERSISTED TurnState = "assistant_message_persisted"
	TURN_STATE_AUDIO_SYNTHESIZED   TurnState = "audio_synthesized"
	TURN_STATE_DONE                TurnState = "done"
)

var errTurnPanicked = stderrors.New("turn aborted by panic")

// TurnDeps carries everything a turn touches.
type TurnDeps struct {
	Stores  Stores
	Srv     *srv.Srv
	Metrics *core.Metrics
	Chat    core.ChatConfig
}

type TurnLogic struct {
	ctx       context.Context
	deps      TurnDeps
	assembler *ContextAssembler
}

// NewTurnLogic expects the request context, not the gin context: the turn
// keeps running after the handler returns.
func NewTurnLogic(ctx context.Context, core *core.Core) *TurnLogic {
	return NewTurnLogicWithDeps(ctx, TurnDeps{
		Stores:  core.Store(),
		Srv:     core.Srv(),
		Metrics: core.Metrics(),
		Chat:    core.Cfg().Chat,
	})
}

func NewTurnLogicWithDeps(ctx context.Context, deps TurnDeps) *TurnLogic {
	return &TurnLogic{
		ctx:       ctx,
		deps:      deps,
		assembler: NewContextAssembler(deps.Stores.ChatMessageStore(), deps.Chat.HistoryWindow, deps.Chat.MaxEvidenceTokens, deps.Chat.SystemPrompt),
	}
}

type turn struct {
	id      string
	req     types.TurnRequest
	kind    media.Kind
	voice   speech.Voice
	session *types.ChatSession
	upload  *upload
	user    *types.ChatMessage
}

func (t *turn) to(state TurnState) {
	slog.Debug("turn state changed", slog.String("turn", t.id), slog.String("state", string(state)))
}

type upload struct {
	attachmentID string
	url          string
	meta         types.Metadata
	evidence     *Evidence
}

type turnOutcome struct {
	res *types.TurnResult
	err error
}

// Process runs one conversational turn. Everything up to the user message is
// bound to the caller's context. After the user message is stored the turn
// is finished on a detached context so a disconnect never strands it.
func (l *TurnLogic) Process(req types.TurnRequest) (*types.TurnResult, error) {
	t := &turn{id: utils.GenRandomID(), req: req}
	t.to(TURN_STATE_VALIDATING)

	if err := l.validate(t); err != nil {
		return nil, err
	}

	if err := l.resolveSession(t); err != nil {
		return nil, err
	}
	t.to(TURN_STATE_SESSION_RESOLVED)

	if req.File != nil {
		up, err := l.processFile(t)
		if err != nil {
			return nil, err
		}
		t.upload = up
		t.to(TURN_STATE_ARTIFACT_PROCESSED)
	} else {
		t.to(TURN_STATE_TEXT_ONLY)
	}

	content := req.Prompt
	if t.kind != media.TextOnly && strings.TrimSpace(content) == "" {
		content = t.kind.DefaultPrompt()
	}
	t.user = &types.ChatMessage{
		ID:        utils.GenUniqIDStr(),
		SessionID: t.session.ID,
		Role:      types.ROLE_USER,
		Content:   content,
		Metadata:  types.Metadata{},
	}
	if err := l.deps.Stores.ChatMessageStore().Create(l.ctx, t.user); err != nil {
		return nil, errors.New("TurnLogic.Process.ChatMessageStore.Create.user", i18n.ERROR_INTERNAL, err)
	}
	t.to(TURN_STATE_USER_PERSISTED)

	timeout := l.deps.Chat.TurnTimeout.Duration
	if timeout <= 0 {
		timeout = DEFAULT_TURN_TIMEOUT
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), timeout)

	done := make(chan turnOutcome, 1)
	l.deps.Metrics.TurnStarted(t.kind.String())
	go safe.RunWithLog(func() {
		start := time.Now()
		out := turnOutcome{err: errors.New("TurnLogic.Process.finish.panic", i18n.ERROR_INTERNAL, errTurnPanicked)}
		defer cancel()
		defer func() {
			status := "ok"
			if out.err != nil {
				status = "failed"
			}
			l.deps.Metrics.ObserveBackgroundTurn(status, time.Since(start).Seconds())
			l.deps.Metrics.TurnFinished(t.kind.String())
			if l.ctx.Err() != nil {
				slog.Info("turn finished after the client left", slog.String("turn", t.id),
					slog.String("session_id", t.session.ID), slog.String("status", status))
			}
			done <- out
		}()
		out.res, out.err = l.finish(bg, t)
	}, "TurnLogic.finish")

	if out, ok := waitTurn(l.ctx, done); ok {
		return out.res, out.err
	}
	slog.Warn("client left during turn, finishing in background", slog.String("turn", t.id), slog.String("session_id", t.session.ID))
	return nil, errors.New("TurnLogic.Process.ctx.Done", i18n.ERROR_INTERNAL, l.ctx.Err()).Code(STATUS_CLIENT_CLOSED_REQUEST)
}

// waitTurn reports false only when ctx ended and the turn is still running.
// A turn that is already done wins over a cancelled ctx.
func waitTurn(ctx context.Context, done <-chan turnOutcome) (turnOutcome, bool) {
	select {
	case out := <-done:
		return out, true
	case <-ctx.Done():
		select {
		case out := <-done:
			return out, true
		default:
			return turnOutcome{}, false
		}
	}
}

func (l *TurnLogic) validate(t *turn) error {
	var contentType string
	if t.req.File != nil {
		contentType = t.req.File.ContentType
	}

	kind, err := media.Classify(contentType, t.req.File != nil, t.req.Prompt)
	switch {
	case stderrors.Is(err, media.ErrEmptyTurn):
		return errors.New("TurnLogic.validate.Classify", i18n.ERROR_EMPTY_TURN, err).Code(http.StatusBadRequest)
	case stderrors.Is(err, media.ErrUnsupportedMediaType):
		return errors.New("TurnLogic.validate.Classify", i18n.ERROR_UNSUPPORTED_MEDIA_TYPE, err).Code(http.StatusUnsupportedMediaType)
	case err != nil:
		return errors.New("TurnLogic.validate.Classify", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}

	voice, err := speech.ParseVoice(t.req.VoiceStyle)
	if err != nil {
		return errors.New("TurnLogic.validate.ParseVoice", i18n.ERROR_UNKNOWN_VOICE, err).Code(http.StatusBadRequest)
	}

	t.kind = kind
	t.voice = voice
	return nil
}

func (l *TurnLogic) resolveSession(t *turn) error {
	sessions := l.deps.Stores.ChatSessionStore()
	if t.req.SessionID != "" {
		session, err := checkSessionOwner(l.ctx, sessions, t.req.SessionID, t.req.UserID)
		if err != nil {
			return errors.Trace("TurnLogic.resolveSession", err)
		}
		t.session = session
		return nil
	}

	title := t.kind.SessionTitle()
	if title == "" {
		title = utils.FirstRunes(t.req.Prompt, SESSION_TITLE_MAX_RUNES)
	}
	now := time.Now().Unix()
	session := types.ChatSession{
		ID:        utils.GenUniqIDStr(),
		UserID:    t.req.UserID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sessions.Create(l.ctx, session); err != nil {
		return errors.New("TurnLogic.resolveSession.ChatSessionStore.Create", i18n.ERROR_INTERNAL, err)
	}
	t.session = &session
	return nil
}

func (l *TurnLogic) processFile(t *turn) (*upload, error) {
	file := t.req.File
	url, err := l.deps.Srv.Artifacts().Put(l.ctx, file.Data, file.Name, file.ContentType)
	if err != nil {
		return nil, errors.New("TurnLogic.processFile.Artifacts.Put", i18n.ERROR_UPLOAD_FAILED, err)
	}

	up := &upload{
		attachmentID: utils.GenUniqIDStr(),
		url:          url,
	}

	start := time.Now()
	ext, err := l.extract(t, up)
	status := extractionStatus(err)
	l.deps.Metrics.ObserveExtraction(t.kind.String(), status, time.Since(start).Seconds())

	meta := types.Metadata{}
	for k, v := range ext.Meta {
		meta[k] = v
	}
	meta["filename"] = file.Name
	meta["content_type"] = media.Normalize(file.ContentType)
	meta["size"] = len(file.Data)
	meta["extraction_status"] = status
	meta["extracted_text"] = ext.Text
	if t.kind == media.Image {
		meta["description"] = ext.Text
	}
	if err != nil {
		meta["extraction_error"] = err.Error()
		slog.Warn("extraction failed, continuing without it", slog.String("turn", t.id),
			slog.String("kind", t.kind.String()), slog.String("status", status), slog.String("error", err.Error()))
	}

	up.meta = meta
	up.evidence = &Evidence{Kind: t.kind, Text: ext.Text, Err: err}
	return up, nil
}

func (l *TurnLogic) extract(t *turn, up *upload) (ai.Extraction, error) {
	file := t.req.File
	models := l.deps.Srv.AI()

	switch t.kind {
	case media.Image:
		return l.describeImage(t, up)
	case media.Audio:
		if models.Transcriber() == nil {
			return ai.Extraction{}, fmt.Errorf("%w: no transcription service configured", transcribe.ErrTranscriptionFailed)
		}
		return models.Transcriber().Transcribe(l.ctx, TRANSCRIBE_JOB_PREFIX+up.attachmentID, up.url, media.FormatHint(file.ContentType))
	case media.Document:
		if models.Document() == nil {
			return ai.Extraction{}, stderrors.New("document extractor is not configured")
		}
		return models.Document().Extract(l.ctx, file.Name, file.ContentType, file.Data)
	case media.TextOnly:
		return ai.Extraction{}, nil
	}
	return ai.Extraction{}, nil
}

// describeImage asks the vision model for a description and appends any text
// the OCR engine reads from the same bytes. OCR problems never fail the turn.
func (l *TurnLogic) describeImage(t *turn, up *upload) (ai.Extraction, error) {
	models := l.deps.Srv.AI()
	if models.Vision() == nil {
		return ai.Extraction{}, stderrors.New("vision model is not configured")
	}
	ext, err := models.Vision().Describe(l.ctx, up.url)
	if err != nil || models.OCR() == nil {
		return ext, err
	}
	if ext.Meta == nil {
		ext.Meta = map[string]any{}
	}

	text, err := models.OCR().Recognize(l.ctx, t.req.File.Data)
	if err != nil {
		ext.Meta["ocr_error"] = err.Error()
		slog.Warn("image ocr failed, keeping the description only", slog.String("turn", t.id), slog.String("error", err.Error()))
		return ext, nil
	}
	if text = strings.TrimSpace(utils.CleanText(text)); text != "" {
		ext.Meta["ocr_text"] = text
		ext.Text = strings.TrimSpace(ext.Text) + "\n\n" + IMAGE_OCR_HEADER + text
	}
	return ext, nil
}

func extractionStatus(err error) string {
	switch {
	case err == nil:
		return types.EXTRACTION_STATUS_OK
	case stderrors.Is(err, transcribe.ErrTranscriptionTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return types.EXTRACTION_STATUS_TIMEOUT
	default:
		return types.EXTRACTION_STATUS_FAILED
	}
}

// finish runs steps after the user message is durable. Every write is its own statement.
func (l *TurnLogic) finish(ctx context.Context, t *turn) (*types.TurnResult, error) {
	result := &types.TurnResult{SessionID: t.session.ID}

	var evidence *Evidence
	if t.upload != nil {
		result.UploadedFileURL = t.upload.url
		evidence = t.upload.evidence

		if err := l.deps.Stores.AttachmentStore().Create(ctx, types.Attachment{
			ID:        t.upload.attachmentID,
			SessionID: t.session.ID,
			MessageID: t.user.ID,
			URL:       t.upload.url,
			MediaType: t.kind.MediaType(),
			Metadata:  t.upload.meta,
		}); err != nil {
			return nil, errors.New("TurnLogic.finish.AttachmentStore.Create", i18n.ERROR_INTERNAL, err)
		}
	}

	messages, err := l.assembler.Assemble(ctx, t.session.ID, evidence)
	if err != nil {
		slog.Warn("failed to load history, answering from the current message only", slog.String("turn", t.id), slog.String("error", err.Error()))
		messages = l.assembler.build([]*types.ChatMessage{t.user}, evidence)
	}
	t.to(TURN_STATE_CONTEXT_ASSEMBLED)

	text := l.generate(ctx, messages)
	t.to(TURN_STATE_RESPONSE_GENERATED)

	assistant := &types.ChatMessage{
		ID:        utils.GenUniqIDStr(),
		SessionID: t.session.ID,
		Role:      types.ROLE_ASSISTANT,
		Content:   text,
		Metadata:  types.Metadata{types.META_MODEL: l.deps.Srv.AI().Models().ChatModel},
	}
	if ai.IsDegraded(text) {
		assistant.Metadata[types.META_DEGRADED] = true
	}
	if err = l.deps.Stores.ChatMessageStore().Create(ctx, assistant); err != nil {
		return nil, errors.New("TurnLogic.finish.ChatMessageStore.Create.assistant", i18n.ERROR_INTERNAL, err)
	}
	t.to(TURN_STATE_ASSISTANT_PERSISTED)

	if err = l.deps.Stores.ChatSessionStore().Touch(ctx, t.session.ID); err != nil {
		slog.Warn("failed to touch session", slog.String("session_id", t.session.ID), slog.String("error", err.Error()))
	}

	result.AssistantMessage = text
	result.MessageID = assistant.ID

	if t.req.AudioOutput {
		if url := l.synthesize(ctx, t, assistant); url != "" {
			result.AudioOutputURL = url
			t.to(TURN_STATE_AUDIO_SYNTHESIZED)
		}
	}

	t.to(TURN_STATE_DONE)
	return result, nil
}

func (l *TurnLogic) generate(ctx context.Context, messages []ai.Message) string {
	completer := l.deps.Srv.AI().Completer()
	if completer == nil {
		return ai.ERROR_PREFIX + "no chat model configured"
	}
	return ai.Generate(ctx, completer, messages)
}

// synthesize returns the generated audio url, or "" when any step failed.
func (l *TurnLogic) synthesize(ctx context.Context, t *turn, assistant *types.ChatMessage) string {
	synth := l.deps.Srv.AI().Speech()
	if synth == nil {
		l.deps.Metrics.SpeechErrorInc("not_configured")
		slog.Warn("audio output requested but no speech model is configured", slog.String("turn", t.id))
		return ""
	}

	url, meta, err := synth.Synthesize(ctx, assistant.Content, t.voice)
	if err != nil {
		l.deps.Metrics.SpeechErrorInc("synthesis")
		slog.Error("failed to synthesize speech", slog.String("turn", t.id), slog.String("error", err.Error()))
		return ""
	}

	err = l.deps.Stores.AttachmentStore().Create(ctx, types.Attachment{
		ID:        utils.GenUniqIDStr(),
		SessionID: t.session.ID,
		MessageID: assistant.ID,
		URL:       url,
		AudioURL:  url,
		MediaType: types.MEDIA_TYPE_AUDIO,
		Metadata:  types.Metadata(meta),
	})
	if err != nil {
		l.deps.Metrics.SpeechErrorInc("persist")
		slog.Error("failed to persist speech attachment", slog.String("turn", t.id), slog.String("error", err.Error()))
		return ""
	}
	return url
}
