// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/taskledger/taskledger/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Authentication failures are the exception: they always produce a bare 401
// with an empty body so a caller cannot tell which check rejected it.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrTokenInvalid), errors.Is(err, shared.ErrNotAuthenticated):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, shared.ErrInvalidCredentials):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, shared.ErrDuplicateEmail):
		Problem(w, http.StatusConflict, "Duplicate", "")
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
