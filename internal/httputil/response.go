package httputil

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"omegavideos/internal/logging"
	"omegavideos/internal/model"
	"omegavideos/internal/validation"
)

// Error codes shared by every endpoint
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = model.CodeAuthRequired
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// MaxJSONBodyBytes caps JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.Warn().Err(err).Msg("failed to encode response")
		}
	}
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// WriteError writes an error response:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
	WriteJSON(w, status, response)
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteBadRequestWithCode writes a 400 Bad Request error with a custom code
func WriteBadRequestWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode writes a 401 Unauthorized error with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

// WriteForbidden writes a 403 Forbidden error
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteConflict writes a 409 Conflict error
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, ErrCodeConflict, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// validationCodes maps each rule-specific sentinel to its response code.
var validationCodes = []struct {
	err  error
	code string
}{
	{model.ErrTitleRequired, model.CodeTitleRequired},
	{model.ErrTitleTooLong, model.CodeTitleTooLong},
	{model.ErrDescriptionTooLong, model.CodeDescriptionTooLong},
	{model.ErrCommentEmpty, model.CodeCommentEmpty},
	{model.ErrCommentTooLong, model.CodeCommentTooLong},
	{model.ErrBioTooLong, model.CodeBioTooLong},
	{model.ErrInvalidLanguage, model.CodeInvalidLanguage},
	{model.ErrOrphanReply, model.CodeOrphanReply},
	{model.ErrInvalidFollowTarget, model.CodeInvalidFollowTarget},
	{model.ErrFileTooLarge, model.CodeFileTooLarge},
	{model.ErrUnsupportedVideoType, model.CodeUnsupportedVideoType},
	{model.ErrInvalidImageType, model.CodeInvalidImageType},
	{model.ErrMediaRequired, model.CodeMediaRequired},
}

// WriteServiceError maps a service error onto the response envelope.
// Unknown errors are logged with the request id and answered with 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *validation.RequestError
	switch {
	case errors.As(err, &reqErr):
		WriteBadRequestWithCode(w, model.CodeValidation, reqErr.Error())
	case errors.Is(err, model.ErrValidation):
		code := model.CodeValidation
		for _, vc := range validationCodes {
			if errors.Is(err, vc.err) {
				code = vc.code
				break
			}
		}
		WriteBadRequestWithCode(w, code, err.Error())
	case errors.Is(err, model.ErrAuthenticationRequired):
		WriteUnauthorized(w, "Authentication required")
	case errors.Is(err, model.ErrInvalidCredentials):
		WriteUnauthorizedWithCode(w, model.CodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, model.ErrForbidden):
		WriteForbidden(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrUserExists):
		WriteConflict(w, "Username or email already taken")
	default:
		log := logging.FromContext(r.Context())
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		WriteInternalError(w, "Internal server error")
	}
}
