package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	UserAlreadyExistsCode      = 1001
	UserAlreadyExistsMessage   = "user already exists"
	UserNotFoundCode           = 1002
	UserNotFoundMessage        = "user not found"
	InvalidCredentialsCode     = 1003
	InvalidCredentialsMessage  = "invalid credentials"
	RefreshCookieMissingCode   = 2001
	RefreshCookieMissingMsg    = "refresh token cookie missing"
	SessionNotFoundCode        = 2002
	SessionNotFoundMessage     = "refresh session not found"
	SessionExpiredCode         = 2003
	SessionExpiredMessage      = "refresh token expired"
	SessionLifetimeCode        = 2004
	SessionLifetimeMessage     = "refresh token lifetime limit reached"
	SessionRotationFailedCode  = 2005
	SessionRotationFailedMsg   = "refresh token rotation failed"
	RecordNotFoundCode         = 3001
	RecordNotFoundMessage      = "record not found"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
}

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	messages := map[ErrorCode]ErrorMessage{
		UserAlreadyExistsCode:     UserAlreadyExistsMessage,
		UserNotFoundCode:          UserNotFoundMessage,
		InvalidCredentialsCode:    InvalidCredentialsMessage,
		RefreshCookieMissingCode:  RefreshCookieMissingMsg,
		SessionNotFoundCode:       SessionNotFoundMessage,
		SessionExpiredCode:        SessionExpiredMessage,
		SessionLifetimeCode:       SessionLifetimeMessage,
		SessionRotationFailedCode: SessionRotationFailedMsg,
		RecordNotFoundCode:        RecordNotFoundMessage,
	}

	if msg, ok := messages[code]; ok {
		errorStruct.ErrorCode = code
		errorStruct.ErrorMessage = msg
	}

	return errorStruct
}
