package handlers

import (
	"net/http"

	apperrors "github.com/3leaps/objfs/internal/errors"
)

// HTTPErrorResponder writes an error response for a handler failure.
type HTTPErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

var defaultErrorResponder HTTPErrorResponder = apperrors.RespondWithError

var httpErrorResponder = defaultErrorResponder

// SetHTTPErrorResponder overrides how handlers render errors. Passing
// nil restores the default responder.
func SetHTTPErrorResponder(responder HTTPErrorResponder) {
	if responder == nil {
		httpErrorResponder = defaultErrorResponder
		return
	}
	httpErrorResponder = responder
}

// ResetHTTPErrorResponder restores the default responder.
func ResetHTTPErrorResponder() {
	httpErrorResponder = defaultErrorResponder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}
