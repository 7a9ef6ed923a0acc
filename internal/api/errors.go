package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/domain"
	"github.com/phrazzld/taskmanager-api/internal/platform/media"
	"github.com/phrazzld/taskmanager-api/internal/service/auth"
	"github.com/phrazzld/taskmanager-api/internal/store"
)

// Client-facing messages that are part of the API contract.
const (
	MsgInvalidUpdates   = "Invalid updates."
	MsgUnableToLogin    = "Unable to login."
	MsgAvatarMissing    = "The user or the avatar does not exist."
	MsgAvatarUploaded   = "The file was uploaded."
	MsgInvalidBody      = "Invalid request body"
	MsgUnexpectedError  = "An unexpected error occurred"
	MsgTaskNotFound     = "Task not found"
	MsgUserNotFound     = "User not found"
	MsgEmailExists      = "Email already exists"
	MsgPleaseUploadFile = "Please upload an image"
)

// fieldErrors are the domain validation errors whose text is safe to show.
var fieldErrors = []error{
	domain.ErrEmptyName,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrPasswordContains,
	domain.ErrNegativeAge,
	domain.ErrEmptyDescription,
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidUpdates),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrInvalidEntity),
		media.IsUploadError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedError
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return MsgUnableToLogin
	case errors.Is(err, auth.ErrUnauthorized):
		return "Please authenticate."

	case errors.Is(err, store.ErrTaskNotFound):
		return MsgTaskNotFound
	case errors.Is(err, store.ErrAvatarNotFound):
		return MsgAvatarMissing
	case errors.Is(err, store.ErrUserNotFound):
		return MsgUserNotFound

	case errors.Is(err, store.ErrEmailExists):
		return MsgEmailExists
	case errors.Is(err, domain.ErrInvalidUpdates):
		return MsgInvalidUpdates
	case errors.Is(err, domain.ErrValidation):
		return validationMessage(err)
	case errors.Is(err, shared.ErrInvalidJSON):
		return MsgInvalidBody
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, media.ErrUnsupportedType):
		return MsgPleaseUploadFile
	case errors.Is(err, media.ErrTooLarge):
		return "File too large"
	case errors.Is(err, media.ErrDecode):
		return "Unable to read image"

	default:
		return MsgUnexpectedError
	}
}

// validationMessage returns the field rule a validation error violated,
// e.g. "password must be at least 7 characters long".
func validationMessage(err error) string {
	for _, fieldErr := range fieldErrors {
		if errors.Is(err, fieldErr) {
			return strings.TrimPrefix(fieldErr.Error(), domain.ErrValidation.Error()+": ")
		}
	}
	return "Validation error"
}

// HandleAPIError writes the status and safe message for err and logs err.
// defaultMsg, when non-empty, replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
