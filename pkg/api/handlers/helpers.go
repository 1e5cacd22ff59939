package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/depot/internal/logger"
	"github.com/marmos91/depot/pkg/credentials"
	"github.com/marmos91/depot/pkg/store/blob"
)

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// respondStoreError maps credential store failures onto problem responses.
//
// Outages of the blob backend yield 503 so load balancers retry elsewhere.
// A malformed credential document is an operator problem, not a client one,
// and yields 500 with enough detail to point at the document.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blob.ErrUnavailable):
		logger.ErrorCtx(r.Context(), "credential store unavailable", logger.KeyError, err)
		ServiceUnavailable(w, "Credential store is unavailable")
	case errors.Is(err, credentials.ErrMalformedDocument):
		logger.ErrorCtx(r.Context(), "credential document is malformed", logger.KeyError, err)
		InternalServerError(w, "Credential document is malformed")
	default:
		logger.ErrorCtx(r.Context(), "credential store operation failed", logger.KeyError, err)
		InternalServerError(w, "Credential store operation failed")
	}
}
