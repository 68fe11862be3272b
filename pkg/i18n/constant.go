package i18n

var ALLOW_LANG = map[string]bool{
	"en": true,
	"hi": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_EXIST             = "error.exist"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"
	ERROR_INVALID_TOKEN     = "error.invalid.token"

	ERROR_SESSION_NOT_FOUND       = "error.session.notfound"
	ERROR_SESSION_FORBIDDEN       = "error.session.forbidden"
	ERROR_EMPTY_TURN              = "error.turn.empty"
	ERROR_UNSUPPORTED_MEDIA_TYPE  = "error.media.unsupported"
	ERROR_UNKNOWN_VOICE           = "error.voice.unknown"
	ERROR_UPLOAD_FAILED           = "error.upload.failed"
	ERROR_EMAIL_ALREADY_REGISTERD = "error.email.registered"
	ERROR_LOGIN_INCORRECT         = "error.login.incorrect"
	ERROR_FILE_TOO_LARGE          = "error.file.too_large"
)
