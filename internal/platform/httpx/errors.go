package httpx

import (
	"context"
	"errors"
	"net/http"
)

// RespondError writes the problem response for errors no handler claimed:
// validation failures become 400, expired request contexts 503 and anything
// else an opaque 500.
func RespondError(w http.ResponseWriter, err error) {
	var fields FieldErrors
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &fields):
		RespondValidation(w, fields)
	case errors.As(err, &tooLarge):
		Problem(w, http.StatusRequestEntityTooLarge, "Request Too Large", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		Problem(w, http.StatusServiceUnavailable, "Unavailable", "request timed out")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
