// AngelaMos | 2026
// http.go

package errtext

import (
	"errors"
	"net/http"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/core"
)

// HTTPError wraps a backend failure as an AppError carrying the translated
// user-facing message and a status derived from the structured code.
func HTTPError(err error) *core.AppError {
	message := Translate(err)

	return &core.AppError{
		Code:    codeString(err),
		Message: message,
		Status:  statusFor(err, message),
		Err:     err,
	}
}

// WriteError renders a backend failure as the standard error envelope.
func WriteError(w http.ResponseWriter, err error) {
	core.JSONError(w, HTTPError(err))
}

func statusFor(err error, message string) int {
	var actorErr *actor.Error
	if errors.As(err, &actorErr) {
		switch actorErr.Code {
		case actor.CodeUnauthorized:
			// Anonymous callers get 401; signed-in callers lacking the role
			// get 403.
			if message == MsgSignInRequired ||
				message == MsgPurchaseSignIn ||
				message == MsgProfileSignIn {
				return http.StatusUnauthorized
			}
			return http.StatusForbidden
		case actor.CodeNotFound:
			return http.StatusNotFound
		case actor.CodeConflict:
			return http.StatusConflict
		case actor.CodeInvalid:
			return http.StatusBadRequest
		case actor.CodeUnavailable:
			return http.StatusServiceUnavailable
		}
	}

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeString(err error) string {
	var actorErr *actor.Error
	if errors.As(err, &actorErr) {
		switch actorErr.Code {
		case actor.CodeUnauthorized:
			return "UNAUTHORIZED"
		case actor.CodeNotFound:
			return "NOT_FOUND"
		case actor.CodeConflict:
			return "CONFLICT"
		case actor.CodeInvalid:
			return "INVALID_INPUT"
		case actor.CodeUnavailable:
			return "UNAVAILABLE"
		}
	}
	return "BACKEND_ERROR"
}
